package extract

import "github.com/ppiankov/lightship/internal/model"

func testMaterials() []model.Material {
	return []model.Material{
		{ID: "steel_carbon", Name: "Acciaio al carbonio", Aliases: []string{"acciaio", "steel", "carbon steel", "ferro"}, GWPFactor: 2.1, Unit: "kg"},
		{ID: "steel_stainless", Name: "Acciaio inossidabile", Aliases: []string{"inox", "stainless steel", "aisi 316"}, GWPFactor: 6.2, Unit: "kg"},
		{ID: "aluminum_primary", Name: "Alluminio primario", Aliases: []string{"alluminio", "aluminum", "aluminium"}, GWPFactor: 11.5, Unit: "kg"},
		{ID: "copper", Name: "Rame", Aliases: []string{"rame", "copper", "cu"}, GWPFactor: 3.2, Unit: "kg"},
		{ID: "polyethylene", Name: "Polietilene", Aliases: []string{"polietilene", "pe", "polyethylene"}, GWPFactor: 1.9, Unit: "kg"},
		{ID: "tempered_glass", Name: "Vetro temperato", Aliases: []string{"vetro temperato", "tempered glass"}, GWPFactor: 0.9, Unit: "kg"},
	}
}

func testCategories() []model.Category {
	return []model.Category{
		{ID: "hull_structures", Code: "HS", Name: "Hull and Structures"},
		{ID: "machinery_propulsion", Code: "MP", Name: "Machinery and Propulsion"},
		{ID: "paintings", Code: "PA", Name: "Paintings"},
	}
}

func testParser() *LineParser {
	return NewLineParser(
		NewMatcher(testMaterials(), DefaultMinFragmentLength),
		NewCategoryResolver(testCategories()),
		DefaultParserOptions(),
	)
}
