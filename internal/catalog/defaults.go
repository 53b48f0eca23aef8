package catalog

import "github.com/ppiankov/lightship/internal/model"

func density(v float64) *float64 {
	return &v
}

// DefaultCategories returns the PCR macro-group taxonomy used by shipyard exports
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: "hull_structures", Code: "HS", Name: "Hull and Structures", Description: "Hull plating, frames, bulkheads, decks and superstructure"},
		{ID: "machinery_propulsion", Code: "MP", Name: "Machinery and Propulsion", Description: "Main engines, gearboxes, shafting, propellers and auxiliaries"},
		{ID: "ship_systems", Code: "SS", Name: "Ship Systems", Description: "Piping, HVAC, fuel, bilge, fire fighting and fresh water systems"},
		{ID: "electrical_electronics", Code: "SE", Name: "Ship Electrical Systems and Electronics", Description: "Generators, switchboards, cabling, navigation and communication equipment"},
		{ID: "insulation_fitting", Code: "IS", Name: "Insulation and Fitting Structures", Description: "Thermal and acoustic insulation, joinery, interior outfitting"},
		{ID: "deck_machinery", Code: "DE", Name: "Deck Machinery and Equipment", Description: "Anchoring, mooring, cranes, davits and deck hardware"},
		{ID: "paintings", Code: "PA", Name: "Paintings", Description: "Primers, antifouling and finishing coats"},
	}
}

// DefaultMaterials returns the built-in reference materials with GWP factors in kg CO2e per kg
func DefaultMaterials() []model.Material {
	return []model.Material{
		// Metals
		{ID: "steel_carbon", Name: "Acciaio al carbonio", Aliases: []string{"acciaio", "steel", "carbon steel", "acciaio carbonio", "ferro"}, Category: "Metalli", GWPFactor: 2.1, Unit: "kg", Density: density(7850), Description: "Acciaio al carbonio standard per costruzioni navali"},
		{ID: "steel_stainless", Name: "Acciaio inossidabile", Aliases: []string{"inox", "stainless steel", "acciaio inossidabile", "aisi 316", "aisi 304"}, Category: "Metalli", GWPFactor: 6.2, Unit: "kg", Density: density(8000), Description: "Acciaio inossidabile per ambienti marini"},
		{ID: "steel_galvanized", Name: "Acciaio zincato", Aliases: []string{"acciaio zincato", "galvanized steel", "zincato"}, Category: "Metalli", GWPFactor: 2.8, Unit: "kg", Density: density(7850), Description: "Acciaio con rivestimento di zinco"},
		{ID: "aluminum_primary", Name: "Alluminio primario", Aliases: []string{"alluminio", "aluminum", "aluminium", "lega alluminio"}, Category: "Metalli", GWPFactor: 11.5, Unit: "kg", Density: density(2700), Description: "Alluminio da produzione primaria"},
		{ID: "aluminum_recycled", Name: "Alluminio riciclato", Aliases: []string{"alluminio riciclato", "recycled aluminum", "alluminio secondario"}, Category: "Metalli", GWPFactor: 0.7, Unit: "kg", Density: density(2700), Description: "Alluminio da materiale riciclato"},
		{ID: "copper", Name: "Rame", Aliases: []string{"rame", "copper", "cu"}, Category: "Metalli", GWPFactor: 3.2, Unit: "kg", Density: density(8960), Description: "Rame puro per impianti elettrici"},
		{ID: "bronze", Name: "Bronzo", Aliases: []string{"bronzo", "bronze", "lega bronzo"}, Category: "Metalli", GWPFactor: 4.1, Unit: "kg", Density: density(8800), Description: "Lega di rame e stagno"},
		{ID: "brass", Name: "Ottone", Aliases: []string{"ottone", "brass", "lega ottone"}, Category: "Metalli", GWPFactor: 3.8, Unit: "kg", Density: density(8500), Description: "Lega di rame e zinco"},

		// Composites
		{ID: "fiberglass", Name: "Fibra di vetro", Aliases: []string{"fibra di vetro", "fiberglass", "vetroresina", "grp", "frp"}, Category: "Compositi", GWPFactor: 1.8, Unit: "kg", Density: density(1800), Description: "Materiale composito fibra di vetro/resina"},
		{ID: "carbon_fiber", Name: "Fibra di carbonio", Aliases: []string{"fibra di carbonio", "carbon fiber", "carbonio", "cfrp"}, Category: "Compositi", GWPFactor: 24.0, Unit: "kg", Density: density(1600), Description: "Materiale composito in fibra di carbonio"},
		{ID: "kevlar", Name: "Kevlar", Aliases: []string{"kevlar", "aramid", "fibra aramidica"}, Category: "Compositi", GWPFactor: 28.5, Unit: "kg", Density: density(1440), Description: "Fibra aramidica ad alta resistenza"},

		// Wood
		{ID: "teak", Name: "Teak", Aliases: []string{"teak", "legno teak"}, Category: "Legno", GWPFactor: 0.4, Unit: "kg", Density: density(650), Description: "Legno tropicale per ponti e finiture"},
		{ID: "mahogany", Name: "Mogano", Aliases: []string{"mogano", "mahogany", "legno mogano"}, Category: "Legno", GWPFactor: 0.5, Unit: "kg", Density: density(550), Description: "Legno pregiato per interni"},
		{ID: "plywood_marine", Name: "Compensato marino", Aliases: []string{"compensato", "plywood", "compensato marino", "multistrato"}, Category: "Legno", GWPFactor: 0.8, Unit: "kg", Density: density(600), Description: "Pannelli multistrato per uso marino"},

		// Coatings
		{ID: "antifouling_paint", Name: "Vernice antivegetativa", Aliases: []string{"antifouling", "vernice antivegetativa", "antincrostante"}, Category: "Vernici", GWPFactor: 4.5, Unit: "kg", Density: density(1400), Description: "Vernice per protezione carena"},
		{ID: "primer", Name: "Primer", Aliases: []string{"primer", "fondo", "sottosmalto"}, Category: "Vernici", GWPFactor: 3.2, Unit: "kg", Density: density(1300), Description: "Vernice di fondo"},
		{ID: "topcoat", Name: "Smalto di finitura", Aliases: []string{"smalto", "topcoat", "finitura", "vernice"}, Category: "Vernici", GWPFactor: 3.8, Unit: "kg", Density: density(1200), Description: "Vernice di finitura"},

		// Plastics
		{ID: "pvc", Name: "PVC", Aliases: []string{"pvc", "polivinilcloruro", "vinyl"}, Category: "Plastiche", GWPFactor: 2.2, Unit: "kg", Density: density(1400), Description: "Cloruro di polivinile"},
		{ID: "polyethylene", Name: "Polietilene", Aliases: []string{"polietilene", "pe", "polyethylene"}, Category: "Plastiche", GWPFactor: 1.9, Unit: "kg", Density: density(950), Description: "Polietilene ad alta densità"},

		// Insulation
		{ID: "polyurethane_foam", Name: "Schiuma poliuretanica", Aliases: []string{"poliuretano", "schiuma", "isolante", "pu foam"}, Category: "Isolanti", GWPFactor: 3.8, Unit: "kg", Density: density(40), Description: "Isolante termico in schiuma PU"},

		// Glass
		{ID: "tempered_glass", Name: "Vetro temperato", Aliases: []string{"vetro", "glass", "vetro temperato", "cristallo"}, Category: "Vetro", GWPFactor: 0.9, Unit: "kg", Density: density(2500), Description: "Vetro di sicurezza temperato"},

		// Textiles
		{ID: "dacron", Name: "Dacron", Aliases: []string{"dacron", "poliestere", "tessuto vele"}, Category: "Tessuti", GWPFactor: 2.1, Unit: "kg", Density: density(200), Description: "Tessuto in poliestere per vele"},
	}
}
