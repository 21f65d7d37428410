package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/temirov/quote-pipeline/internal/ledger"
	"github.com/temirov/quote-pipeline/internal/pipeline"
)

func TestWorkerRunSendsPersonaAndTask(t *testing.T) {
	var received ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := json.NewDecoder(request.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writer.Header().Set("Content-Type", "application/json")
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": "All items available"}},
			},
		}
		if err := json.NewEncoder(writer).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	worker := NewStageWorker(Client{HTTPBaseURL: server.URL, APIKey: "test"}, pipeline.StageInventory, "")
	result, err := worker.Run(context.Background(), "  Customer request: 100 sheets  ")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result != "All items available" {
		t.Fatalf("unexpected result %q", result)
	}
	if received.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", received.Model)
	}
	if received.Temperature == nil || *received.Temperature != DefaultTemperature {
		t.Fatalf("expected temperature %v, got %v", DefaultTemperature, received.Temperature)
	}
	if len(received.Messages) != 2 {
		t.Fatalf("expected two messages, got %d", len(received.Messages))
	}
	systemPrompt := received.Messages[0].Content
	for _, expected := range []string{"InventoryAgent", ledger.ToolInventorySnapshot, ledger.ToolEstimateDelivery, "starting with ERROR"} {
		if !strings.Contains(systemPrompt, expected) {
			t.Fatalf("system prompt missing %q:\n%s", expected, systemPrompt)
		}
	}
	if received.Messages[1].Content != "Customer request: 100 sheets" {
		t.Fatalf("unexpected user prompt %q", received.Messages[1].Content)
	}
}

func TestWorkerRunWrapsTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	worker := NewStageWorker(Client{HTTPBaseURL: server.URL, APIKey: "test"}, pipeline.StageOrdering, "gpt-test")
	_, err := worker.Run(context.Background(), "finalize")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.HasPrefix(err.Error(), "OrderingAgent: llm http error 502") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestWorkerOmitsDefaultTemperatures(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := json.NewDecoder(request.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	worker := Worker{Client: Client{HTTPBaseURL: server.URL, APIKey: "test"}, Name: "QuotingAgent", Temperature: 1}
	if _, err := worker.Run(context.Background(), "quote"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, present := received["temperature"]; present {
		t.Fatalf("temperature should be omitted, got %v", received["temperature"])
	}
}
