package model

// GWPResult is the emissions calculation for one or more documents
type GWPResult struct {
	Materials              []MaterialResult `json:"materials"` // Sorted by descending GWPTotal
	TotalGWP               float64          `json:"total_gwp"` // kg CO2e
	TotalWeight            float64          `json:"total_weight"`
	GWPPerTonne            float64          `json:"gwp_per_tonne"` // t CO2e per t of material; 0 when weight is 0
	Breakdown              PhaseBreakdown   `json:"breakdown"`
	Benchmarks             Benchmarks       `json:"benchmarks"`
	Status                 BenchmarkStatus  `json:"status"`
	ExceedsRegulatoryLimit bool             `json:"exceeds_regulatory_limit"`
	Categories             []CategoryImpact `json:"categories"`
	Stats                  GWPStats         `json:"stats"`
}

// MaterialResult is the emissions attributed to one parsed line
type MaterialResult struct {
	Item          ParsedMaterial `json:"item"`
	GWPFactor     float64        `json:"gwp_factor"`
	DefaultFactor bool           `json:"default_factor"` // Factor came from policy, not the catalog
	GWPTotal      float64        `json:"gwp_total"`
	Percentage    float64        `json:"percentage"`
}

// PhaseBreakdown splits the total across lifecycle phases using fixed policy ratios.
// The ratios are configuration, not derived from the input.
type PhaseBreakdown struct {
	Production float64 `json:"production"`
	Transport  float64 `json:"transport"`
	Processing float64 `json:"processing"`
}

// Benchmarks are static reference values the total is compared against
type Benchmarks struct {
	BestPractice    float64 `json:"best_practice"`
	IndustryAverage float64 `json:"industry_average"`
	RegulatoryLimit float64 `json:"regulatory_limit"`
}

// BenchmarkStatus classifies a total against the benchmarks
type BenchmarkStatus string

const (
	StatusExcellent        BenchmarkStatus = "excellent"         // Below best practice
	StatusGood             BenchmarkStatus = "good"              // Below industry average
	StatusNeedsImprovement BenchmarkStatus = "needs_improvement" // At or above industry average
	StatusUnknown          BenchmarkStatus = "unknown"           // Nothing to classify
)

// CategoryImpact is the emissions share of one PCR macro-group
type CategoryImpact struct {
	ID         string  `json:"id"` // Empty for the uncategorized remainder
	Code       string  `json:"code,omitempty"`
	Name       string  `json:"name"`
	GWP        float64 `json:"gwp"`
	Weight     float64 `json:"weight"`
	Items      int     `json:"items"`
	Percentage float64 `json:"percentage"`
}

// GWPStats counts identification coverage of the aggregated items
type GWPStats struct {
	TotalMaterials      int     `json:"total_materials"`
	IdentifiedMaterials int     `json:"identified_materials"`
	Unidentified        int     `json:"unidentified_materials"`
	IdentificationRate  float64 `json:"identification_rate"` // percent
	TotalWeight         float64 `json:"total_weight"`
}
