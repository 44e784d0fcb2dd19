package integrationtest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/randalmurphal/autoflow"
	"github.com/randalmurphal/autoflow/notify"
	llm "github.com/randalmurphal/llmkit/claude"
)

// setupServices wires a full service set against temporary storage and
// returns a context with everything injected.
func setupServices(t *testing.T, gateway autoflow.ToolGateway, client llm.Client) (*autoflow.Services, context.Context) {
	t.Helper()

	services, err := autoflow.NewServices(autoflow.ServicesConfig{
		Gateway: gateway,
		LLM:     client,
		BaseDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}

	return services, services.InjectAll(context.Background())
}

// mockResponses creates a MockClient with sequential responses.
func mockResponses(responses ...string) *llm.MockClient {
	return llm.NewMockClient("").WithResponses(responses...)
}

// toolDirective renders the JSON action an agent-driving model emits to
// call a tool.
func toolDirective(t *testing.T, tool string, params map[string]any) string {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"action": "tool",
		"tool":   tool,
		"params": params,
	})
	if err != nil {
		t.Fatalf("marshal directive: %v", err)
	}
	return string(raw)
}

// finalDirective renders the JSON action that ends an agent run.
func finalDirective(t *testing.T, answer string) string {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"action": "final",
		"answer": answer,
	})
	if err != nil {
		t.Fatalf("marshal directive: %v", err)
	}
	return string(raw)
}

// notificationCapture captures notifications for testing.
type notificationCapture struct {
	events []notify.Event
}

func (n *notificationCapture) Notify(ctx context.Context, event notify.Event) error {
	n.events = append(n.events, event)
	return nil
}

// byType filters the captured events by type.
func (n *notificationCapture) byType(eventType notify.EventType) []notify.Event {
	var out []notify.Event
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
