package quotepipeline_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	quotepipeline "github.com/temirov/quote-pipeline/cmd/quote-pipeline"
	"github.com/temirov/quote-pipeline/internal/llm"
)

const (
	testAPIKeyEnvironmentVariable = "QUOTE_PIPELINE_TEST_API_KEY"
	configurationTemplate         = `common:
  api:
    endpoint: %s
    api_key_env: ` + testAPIKeyEnvironmentVariable + `
  logging:
    level: error
    format: json
  defaults:
    timeout_seconds: 5
    concurrency: 2
company:
  name: Paper Co
models:
  - name: test
    model_id: gpt-test
    default: true
stages:
  - name: ordering
    tools: [create_transaction, estimate_delivery]
`
	requestsCSV = "job,need_size,event,request,request_date\n" +
		"instructor,Small,school play,\"200 sheets of colored paper, assorted\",4/9/25\n" +
		"manager,huge,gala,100 envelopes,4/2/25\n" +
		"planner,LARGE,parade,500 flyers,4/3/25\n" +
		"clerk,medium,sale,no stock item,4/1/25\n"
)

type chatServer struct {
	server *httptest.Server
	calls  atomic.Int64
}

// newChatServer answers as each agent. Requests mentioning "no stock item"
// fail at the inventory stage.
func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	chat := &chatServer{}
	chat.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		chat.calls.Add(1)
		var payload llm.ChatCompletionRequest
		if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		systemPrompt, task := payload.Messages[0].Content, payload.Messages[1].Content
		answer := ""
		switch {
		case strings.Contains(systemPrompt, "InventoryAgent") && strings.Contains(task, "no stock item"):
			answer = "ERROR: item not carried"
		case strings.Contains(systemPrompt, "InventoryAgent"):
			answer = "items available"
		case strings.Contains(systemPrompt, "QuotingAgent"):
			answer = "quote $10"
		case strings.Contains(systemPrompt, "OrderingAgent"):
			if strings.Contains(systemPrompt, "financial_report") {
				t.Errorf("ordering tools should come from configuration")
			}
			answer = "  order placed  "
		}
		writer.Header().Set("Content-Type", "application/json")
		response := map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": answer}}},
		}
		if err := json.NewEncoder(writer).Encode(response); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(chat.server.Close)
	return chat
}

func writeFile(t *testing.T, path string, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestRunProcessesRequestsInDateOrder(t *testing.T) {
	chat := newChatServer(t)
	directory := t.TempDir()
	configurationPath := writeFile(t, filepath.Join(directory, "config.yaml"), fmt.Sprintf(configurationTemplate, chat.server.URL))
	inputPath := writeFile(t, filepath.Join(directory, "requests.csv"), requestsCSV)
	outputPath := filepath.Join(directory, "out", "results.csv")
	t.Setenv(testAPIKeyEnvironmentVariable, "secret")

	var stdout, stderr bytes.Buffer
	command := quotepipeline.NewRootCommand()
	command.SetOut(&stdout)
	command.SetErr(&stderr)
	command.SetArgs([]string{"run", "--config", configurationPath, "--input", inputPath, "--output", outputPath, "--env-file", ""})

	if err := command.Execute(); err != nil {
		t.Fatalf("execute run: %v\nstderr:\n%s", err, stderr.String())
	}

	expectedLines := []string{
		"Request 4: ERROR (inventory): Inventory check failed: ERROR: item not carried",
		"Request 3: order placed",
		"Request 1: order placed",
		"Request 2: ERROR (validation): need_size: invalid order size \"huge\"",
	}
	gotLines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(gotLines) != len(expectedLines) {
		t.Fatalf("expected %d lines, got:\n%s", len(expectedLines), stdout.String())
	}
	for index, expected := range expectedLines {
		if gotLines[index] != expected {
			t.Fatalf("line %d: expected %q, got %q", index, expected, gotLines[index])
		}
	}
	if calls := chat.calls.Load(); calls != 7 {
		t.Fatalf("expected 7 chat calls, got %d", calls)
	}

	resultsFile, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer resultsFile.Close()
	rows, err := csv.NewReader(resultsFile).ReadAll()
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "request_id,request_date,job,event,status,context,response" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if strings.Join(rows[1][:6], ",") != "4,2025-04-01,clerk,sale,failed,inventory" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if strings.Join(rows[3], ",") != "1,2025-04-09,instructor,school play,success,,order placed" {
		t.Fatalf("unexpected success row %v", rows[3])
	}
	if rows[4][1] != "" || rows[4][5] != "validation" {
		t.Fatalf("unexpected rejected row %v", rows[4])
	}
}

func TestRunRequiresAPIKey(t *testing.T) {
	chat := newChatServer(t)
	directory := t.TempDir()
	configurationPath := writeFile(t, filepath.Join(directory, "config.yaml"), fmt.Sprintf(configurationTemplate, chat.server.URL))
	inputPath := writeFile(t, filepath.Join(directory, "requests.csv"), requestsCSV)
	t.Setenv(testAPIKeyEnvironmentVariable, "")

	command := quotepipeline.NewRootCommand()
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"run", "--config", configurationPath, "--input", inputPath, "--env-file", ""})

	err := command.Execute()
	if err == nil || !strings.Contains(err.Error(), "missing API key: set "+testAPIKeyEnvironmentVariable) {
		t.Fatalf("expected missing API key error, got %v", err)
	}
	if chat.calls.Load() != 0 {
		t.Fatalf("no chat calls expected")
	}
}

func TestRunLoadsAPIKeyFromEnvFile(t *testing.T) {
	chat := newChatServer(t)
	directory := t.TempDir()
	configurationPath := writeFile(t, filepath.Join(directory, "config.yaml"), fmt.Sprintf(configurationTemplate, chat.server.URL))
	inputPath := writeFile(t, filepath.Join(directory, "requests.csv"), "job,need_size,event,request,request_date\nclerk,small,sale,pens,2025-05-01\n")
	envFilePath := writeFile(t, filepath.Join(directory, "test.env"), testAPIKeyEnvironmentVariable+"=from-dotenv\n")
	if previous, present := os.LookupEnv(testAPIKeyEnvironmentVariable); present {
		t.Cleanup(func() { _ = os.Setenv(testAPIKeyEnvironmentVariable, previous) })
	} else {
		t.Cleanup(func() { _ = os.Unsetenv(testAPIKeyEnvironmentVariable) })
	}
	_ = os.Unsetenv(testAPIKeyEnvironmentVariable)

	var stdout bytes.Buffer
	command := quotepipeline.NewRootCommand()
	command.SetOut(&stdout)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"run", "--config", configurationPath, "--input", inputPath, "--env-file", envFilePath})

	if err := command.Execute(); err != nil {
		t.Fatalf("execute run: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "Request 1: order placed" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestStagesListsConfiguredStages(t *testing.T) {
	directory := t.TempDir()
	configurationPath := writeFile(t, filepath.Join(directory, "config.yaml"), fmt.Sprintf(configurationTemplate, "https://example.test/v1"))

	var stdout bytes.Buffer
	command := quotepipeline.NewRootCommand()
	command.SetOut(&stdout)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"stages", "--config", configurationPath})

	if err := command.Execute(); err != nil {
		t.Fatalf("execute stages: %v", err)
	}
	expected := "inventory\t(agent=InventoryAgent, model=gpt-test, tools=get_inventory,get_stock,estimate_delivery)\n" +
		"quoting\t(agent=QuotingAgent, model=gpt-test, tools=search_quotes,get_inventory,get_stock)\n" +
		"ordering\t(agent=OrderingAgent, model=gpt-test, tools=create_transaction,estimate_delivery)\n"
	if stdout.String() != expected {
		t.Fatalf("unexpected listing:\n%s", stdout.String())
	}
}
