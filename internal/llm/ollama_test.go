package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ollamaServer answers /api/generate with the given JSON and records the request
func ollamaServer(t *testing.T, status int, body string, got *ollamaRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:8b"}]}`))
		case "/api/generate":
			if got != nil {
				if err := json.NewDecoder(r.Body).Decode(got); err != nil {
					t.Errorf("Decode request: %v", err)
				}
			}
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOllamaProvider_Summarize_SendsReportFigures(t *testing.T) {
	var got ollamaRequest
	server := ollamaServer(t, http.StatusOK,
		`{"model":"llama3.1:8b","response":"  Steel dominates the hull (185,000 kg CO2e).  ","done":true,"prompt_eval_count":120,"eval_count":30}`, &got)
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL + "/", Model: "llama3.1:8b", MaxTokens: 400})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Report: testReport()})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if got.Model != "llama3.1:8b" || got.Stream {
		t.Errorf("Expected non-streaming request for llama3.1:8b, got %+v", got)
	}
	if got.System != systemPrompt {
		t.Errorf("Expected system prompt, got %q", got.System)
	}
	if got.Options.NumPredict != 400 {
		t.Errorf("Expected num_predict 400, got %d", got.Options.NumPredict)
	}
	for _, want := range []string{"Subject: MV Aurora", "Total GWP: 185000.00 kg CO2e", "Acciaio al carbonio"} {
		if !strings.Contains(got.Prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	if resp.Summary != "Steel dominates the hull (185,000 kg CO2e)." {
		t.Errorf("Expected trimmed summary, got %q", resp.Summary)
	}
	if resp.TokensUsed != 150 {
		t.Errorf("Expected 150 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "llama3.1:8b" {
		t.Errorf("Expected model from response, got %s", resp.Model)
	}
}

func TestOllamaProvider_Summarize_EstimatesTokens(t *testing.T) {
	server := ollamaServer(t, http.StatusOK, `{"model":"mistral","response":"abcdefgh","done":true}`, nil)
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral"})
	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Report: testReport(), Prompt: "12345678"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if resp.TokensUsed != 4 {
		t.Errorf("Expected (8+8)/4 = 4 estimated tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Summarize_Errors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		strict  bool
		urls    []string
		wantErr string
	}{
		{"api error", http.StatusInternalServerError, `{"error":"model 'llama3.1:8b' not found"}`, false, nil, "not found"},
		{"plain error body", http.StatusBadGateway, `upstream down`, false, nil, "upstream down"},
		{"malformed json", http.StatusOK, `{malformed json`, false, nil, "unmarshal response"},
		{"citation leak", http.StatusOK, `{"response":"See https://elsewhere.example.org/x","done":true}`, true,
			[]string{"https://yard.example.com/fincantieri.csv"}, "cited disallowed URL"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			server := ollamaServer(t, c.status, c.body, nil)
			defer server.Close()

			provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b", StrictSources: c.strict})
			_, err := provider.Summarize(context.Background(), SummarizeRequest{Report: testReport(), SourceURLs: c.urls})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Errorf("Expected error containing %q, got %v", c.wantErr, err)
			}
			if c.strict && !errors.Is(err, ErrCitationLeak) {
				t.Errorf("Expected ErrCitationLeak, got %v", err)
			}
		})
	}
}

func TestOllamaProvider_Summarize_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Report: testReport()})
	if err == nil || !strings.Contains(err.Error(), "must be specified") {
		t.Errorf("Expected error about missing model, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := ollamaServer(t, http.StatusOK, `{}`, nil)
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available when /api/tags answers")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected unavailable on 503")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected unavailable when the server is gone")
	}
}
