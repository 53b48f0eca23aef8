package score

import (
	"testing"

	"github.com/ppiankov/lightship/internal/model"
)

func findSignal(signals []model.Signal, typ model.SignalType) (model.Signal, bool) {
	for _, s := range signals {
		if s.Type == typ {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestScorer_EndToEndSignals(t *testing.T) {
	doc := parseDefault(t, "HS - Hull\nAcciaio 100 t\nMP - Machinery\nAlluminio 10 t")
	docs := []model.ParsedDocument{doc}
	result := NewAggregator(model.DefaultGWPConfig()).AggregateDocuments(docs)

	signals := NewScorer(0.8).Signals(docs, result)

	ident, ok := findSignal(signals, model.SignalIdentificationRate)
	if !ok {
		t.Fatal("Expected identification_rate signal")
	}
	if ident.Severity != model.SeverityInfo {
		t.Errorf("Expected info severity for full identification, got %s", ident.Severity)
	}
	if ident.Data["formula"] == nil {
		t.Error("Expected formula in signal data")
	}

	reg, ok := findSignal(signals, model.SignalRegulatoryLimit)
	if !ok {
		t.Fatal("Expected regulatory_limit signal")
	}
	if reg.Severity != model.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", reg.Severity)
	}

	if _, ok := findSignal(signals, model.SignalDefaultFactorShare); ok {
		t.Error("Expected no default_factor_share signal when everything is identified")
	}
	if _, ok := findSignal(signals, model.SignalLowConfidence); ok {
		t.Error("Expected no low_confidence signal for exact alias matches")
	}
}

func TestScorer_DefaultFactorAndLowConfidence(t *testing.T) {
	doc := parseDefault(t, "Misterium 100 t\nLamiera acciaio 1 t")
	docs := []model.ParsedDocument{doc}
	result := NewAggregator(model.DefaultGWPConfig()).AggregateDocuments(docs)

	signals := NewScorer(0.8).Signals(docs, result)

	share, ok := findSignal(signals, model.SignalDefaultFactorShare)
	if !ok {
		t.Fatal("Expected default_factor_share signal")
	}
	if share.Severity != model.SeverityCritical {
		t.Errorf("Expected critical share, got %s", share.Severity)
	}

	low, ok := findSignal(signals, model.SignalLowConfidence)
	if !ok {
		t.Fatal("Expected low_confidence signal")
	}
	if low.Data["count"] != 1 {
		t.Errorf("Expected 1 low confidence item, got %v", low.Data["count"])
	}

	cat, ok := findSignal(signals, model.SignalCategorizationRate)
	if !ok || cat.Severity != model.SeverityCritical {
		t.Errorf("Expected critical categorization signal, got %+v", cat)
	}
}

func TestScorer_EmptyDocument(t *testing.T) {
	doc := parseDefault(t, "")
	docs := []model.ParsedDocument{doc}
	result := NewAggregator(model.DefaultGWPConfig()).AggregateDocuments(docs)

	signals := NewScorer(0).Signals(docs, result)
	if len(signals) != 1 {
		t.Fatalf("Expected only the empty_document signal, got %d", len(signals))
	}
	if signals[0].Type != model.SignalEmptyDocument {
		t.Errorf("Expected empty_document, got %s", signals[0].Type)
	}
}

func TestScorer_SignalsDoNotChangeResult(t *testing.T) {
	doc := parseDefault(t, "HS - Hull\nAcciaio 100 t")
	docs := []model.ParsedDocument{doc}
	result := NewAggregator(model.DefaultGWPConfig()).AggregateDocuments(docs)
	before := result.TotalGWP

	NewScorer(0.8).Signals(docs, result)
	if result.TotalGWP != before {
		t.Errorf("Expected total unchanged, got %v", result.TotalGWP)
	}
}
