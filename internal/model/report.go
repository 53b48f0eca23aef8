package model

import "time"

// Report represents the complete lightship analysis report
type Report struct {
	ID             string    `json:"id"`
	GeneratedAt    time.Time `json:"generated_at"`
	Project        Project   `json:"project"`
	CatalogVersion string    `json:"catalog_version"` // Snapshot every document was matched against

	Documents []ParsedDocument `json:"documents"`
	Parsing   []ParsingStats   `json:"parsing"` // One entry per document

	Result  GWPResult `json:"result"`
	Signals []Signal  `json:"signals"` // Diagnostics, never affect totals
	Policy  GWPConfig `json:"policy"`  // Policy constants the result was computed with

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (separate, never affects totals)
}

// Project carries descriptive information about the vessel being assessed
type Project struct {
	Name       string `json:"name,omitempty"`
	VesselType string `json:"vessel_type,omitempty"`
	Shipyard   string `json:"shipyard,omitempty"`
	Owner      string `json:"owner,omitempty"`
}

// Signal represents a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs and formulas behind the signal
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalIdentificationRate SignalType = "identification_rate"  // Share of lines matched to the catalog
	SignalCategorizationRate SignalType = "categorization_rate"  // Share of lines under a macro-group
	SignalLowConfidence      SignalType = "low_confidence"       // Matches that need human review
	SignalDefaultFactorShare SignalType = "default_factor_share" // GWP computed from the default factor
	SignalRegulatoryLimit    SignalType = "regulatory_limit"     // Total exceeds the regulatory benchmark
	SignalEmptyDocument      SignalType = "empty_document"       // A document produced no materials
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains an optional LLM-generated narrative.
// It is produced after the calculation and never feeds back into it.
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	StrictSources bool     `json:"strict_sources"` // Whether source allowlist enforcement was enabled
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// SubjectFromReport returns a short human label for the report
func SubjectFromReport(r *Report) string {
	if r.Project.Name != "" {
		return r.Project.Name
	}
	if len(r.Documents) == 1 {
		return r.Documents[0].FileName
	}
	if len(r.Documents) > 1 {
		return "combined"
	}
	return "empty"
}
