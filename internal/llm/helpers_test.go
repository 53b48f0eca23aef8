package llm

import (
	"context"

	"github.com/ppiankov/lightship/internal/model"
)

// mockProvider implements Provider for summarizer tests
type mockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	lastReq   SummarizeRequest
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func testReport() model.Report {
	steel := &model.Material{ID: "steel_carbon", Name: "Acciaio al carbonio", GWPFactor: 1.85, Unit: "kg"}
	return model.Report{
		Project: model.Project{Name: "MV Aurora"},
		Documents: []model.ParsedDocument{
			{FileName: "fincantieri.csv", Metadata: model.DocumentMetadata{Origin: "https://yard.example.com/fincantieri.csv"}},
			{FileName: "local.txt", Metadata: model.DocumentMetadata{Origin: "/tmp/local.txt"}},
			{FileName: "again.csv", Metadata: model.DocumentMetadata{Origin: "https://yard.example.com/fincantieri.csv"}},
		},
		Result: model.GWPResult{
			TotalGWP:    185000,
			TotalWeight: 100000,
			GWPPerTonne: 1.85,
			Status:      model.StatusExcellent,
			Benchmarks:  model.Benchmarks{BestPractice: 2200, IndustryAverage: 2850, RegulatoryLimit: 3500},
			Materials: []model.MaterialResult{
				{Item: model.ParsedMaterial{OriginalText: "Acciaio 100 t", Material: steel}, GWPFactor: 1.85, GWPTotal: 185000, Percentage: 100},
			},
			Stats: model.GWPStats{TotalMaterials: 1, IdentifiedMaterials: 1},
		},
		Signals: []model.Signal{
			{Type: model.SignalIdentificationRate, Severity: model.SeverityInfo, Description: "100.0% of lines identified"},
		},
	}
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
