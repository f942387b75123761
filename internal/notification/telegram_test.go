package notification

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"url-monitor-go/pkg/model"
)

// botAPIStub captures sendMessage payloads posted to a fake Bot API
type botAPIStub struct {
	server   *httptest.Server
	payloads []map[string]interface{}
}

func newBotAPIStub(t *testing.T) *botAPIStub {
	t.Helper()
	stub := &botAPIStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err == nil {
			stub.payloads = append(stub.payloads, payload)
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func newStubbedService(stub *botAPIStub) *TelegramService {
	svc := NewTelegramService(TelegramConfig{APIToken: "test-token", BaseURL: stub.server.URL + "/bot"})
	svc.rateLimiter = time.Tick(time.Millisecond)
	return svc
}

func TestNotifyFailureSendsAlertToOwner(t *testing.T) {
	stub := newBotAPIStub(t)
	svc := newStubbedService(stub)

	svc.NotifyFailure(model.PingResult{
		URL:          "https://down.example.com",
		StatusCode:   503,
		ResponseTime: 1.234,
		Success:      false,
		Error:        "503 Service Unavailable",
		Timestamp:    time.Now(),
	}, 1691680798)

	if len(stub.payloads) != 1 {
		t.Fatalf("Expected 1 API call, got %d", len(stub.payloads))
	}

	payload := stub.payloads[0]
	if payload["chat_id"].(float64) != 1691680798 {
		t.Errorf("Expected alert addressed to owner chat, got %v", payload["chat_id"])
	}

	text := payload["text"].(string)
	for _, want := range []string{"URL DOWN ALERT", "https://down.example.com", "503", "1.234s"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected alert text to contain %q, got:\n%s", want, text)
		}
	}
}

func TestNotifyFailureSwallowsDeliveryErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewTelegramService(TelegramConfig{APIToken: "test-token", BaseURL: server.URL + "/bot"})
	svc.rateLimiter = time.Tick(time.Millisecond)

	// Must not panic or propagate anything
	svc.NotifyFailure(model.PingResult{URL: "https://down.example.com"}, 1)
}

func TestSendMessageWithKeyboard(t *testing.T) {
	stub := newBotAPIStub(t)
	svc := newStubbedService(stub)

	keyboard := model.TelegramInlineKeyboard{
		InlineKeyboard: [][]model.TelegramInlineButton{
			{{Text: "Remove", CallbackData: "remove_url_7"}},
		},
	}
	if err := svc.SendMessageWithKeyboard(42, "pick one", keyboard); err != nil {
		t.Fatalf("SendMessageWithKeyboard returned error: %v", err)
	}

	if len(stub.payloads) != 1 {
		t.Fatalf("Expected 1 API call, got %d", len(stub.payloads))
	}
	if _, ok := stub.payloads[0]["reply_markup"]; !ok {
		t.Error("Expected reply_markup in payload")
	}
}

func TestSendMessageReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewTelegramService(TelegramConfig{APIToken: "test-token", BaseURL: server.URL + "/bot"})
	svc.rateLimiter = time.Tick(time.Millisecond)

	err := svc.SendMessage(42, "hello")
	if err == nil {
		t.Fatal("Expected error for non-200 API response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Expected API description in error, got %v", err)
	}
}
