package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"url-monitor-go/internal/admin"
	"url-monitor-go/internal/monitor"
	"url-monitor-go/internal/store/memory"
	"url-monitor-go/internal/urls"
	"url-monitor-go/pkg/model"
)

// fakeMessenger captures outgoing bot messages
type fakeMessenger struct {
	messages  []string
	chats     []int64
	keyboards []model.TelegramInlineKeyboard
	answers   []string
}

func (f *fakeMessenger) SendMessage(chatID int64, message string) error {
	f.chats = append(f.chats, chatID)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessenger) SendMessageWithKeyboard(chatID int64, message string, keyboard model.TelegramInlineKeyboard) error {
	f.chats = append(f.chats, chatID)
	f.messages = append(f.messages, message)
	f.keyboards = append(f.keyboards, keyboard)
	return nil
}

func (f *fakeMessenger) AnswerCallbackQuery(callbackQueryID, text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) lastMessage() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

type botFixture struct {
	handler   *TelegramBotHandler
	messenger *fakeMessenger
	store     *memory.URLStore
}

func newBotFixture(t *testing.T, primaryAdmin int64) *botFixture {
	t.Helper()
	st := memory.NewURLStore()
	messenger := &fakeMessenger{}
	urlService := urls.NewURLService(st)
	scheduler := monitor.NewScheduler(st, nil, 60, 5, 7)
	admins := admin.NewRegistry(primaryAdmin, nil)

	return &botFixture{
		handler:   NewTelegramBotHandler(messenger, urlService, scheduler, admins),
		messenger: messenger,
		store:     st,
	}
}

func message(chatID int64, text string) *model.TelegramMessage {
	return &model.TelegramMessage{
		Chat: model.TelegramChat{ID: chatID, Type: "private"},
		Text: text,
	}
}

func TestNonAdminIsRejected(t *testing.T) {
	f := newBotFixture(t, 100)

	f.handler.handleMessage(message(999, "/seturl example.com"))

	if !strings.Contains(f.messenger.lastMessage(), "restricted") {
		t.Errorf("Expected rejection message, got %q", f.messenger.lastMessage())
	}
	if all, _ := f.store.GetAllURLs(); len(all) != 0 {
		t.Error("Expected no url to be registered for non-admin")
	}
}

func TestSetURLCommand(t *testing.T) {
	f := newBotFixture(t, 100)

	f.handler.handleMessage(message(100, "/seturl example.com"))

	if !strings.Contains(f.messenger.lastMessage(), "https://example.com") {
		t.Errorf("Expected confirmation with normalized url, got %q", f.messenger.lastMessage())
	}
	if _, err := f.store.GetURL(100, "https://example.com"); err != nil {
		t.Errorf("Expected url to be registered: %v", err)
	}

	// Duplicates are reported, not re-added
	f.handler.handleMessage(message(100, "/seturl https://example.com"))
	if !strings.Contains(f.messenger.lastMessage(), "already") {
		t.Errorf("Expected duplicate notice, got %q", f.messenger.lastMessage())
	}
}

func TestSetURLRejectsInvalid(t *testing.T) {
	f := newBotFixture(t, 100)

	f.handler.handleMessage(message(100, "/seturl not a url"))

	if !strings.Contains(f.messenger.lastMessage(), "valid URL") {
		t.Errorf("Expected validation message, got %q", f.messenger.lastMessage())
	}
}

func TestRemoveURLCommand(t *testing.T) {
	f := newBotFixture(t, 100)
	f.handler.handleMessage(message(100, "/seturl example.com"))

	f.handler.handleMessage(message(100, "/removeurl example.com"))
	if !strings.Contains(f.messenger.lastMessage(), "Stopped monitoring") {
		t.Errorf("Expected removal confirmation, got %q", f.messenger.lastMessage())
	}

	f.handler.handleMessage(message(100, "/removeurl example.com"))
	if !strings.Contains(f.messenger.lastMessage(), "not being monitored") {
		t.Errorf("Expected not-monitored notice on second removal, got %q", f.messenger.lastMessage())
	}
}

func TestRemoveURLWithoutArgumentOffersButtons(t *testing.T) {
	f := newBotFixture(t, 100)
	f.handler.handleMessage(message(100, "/seturl a.example.com"))
	f.handler.handleMessage(message(100, "/seturl b.example.com"))

	f.handler.handleMessage(message(100, "/removeurl"))

	if len(f.messenger.keyboards) != 1 {
		t.Fatalf("Expected one keyboard, got %d", len(f.messenger.keyboards))
	}
	if got := len(f.messenger.keyboards[0].InlineKeyboard); got != 2 {
		t.Errorf("Expected 2 buttons, got %d", got)
	}
}

func TestRemoveCallbackChecksOwnership(t *testing.T) {
	f := newBotFixture(t, 100)
	f.handler.admins.AddAdmin(200)
	f.handler.handleMessage(message(100, "/seturl example.com"))

	u, err := f.store.GetURL(100, "https://example.com")
	if err != nil {
		t.Fatalf("GetURL returned error: %v", err)
	}

	// Another admin pressing a button for someone else's url gets refused
	f.handler.handleCallbackQuery(&model.TelegramCallbackQuery{
		ID:      "cb-1",
		Data:    "remove_url_" + strconv.Itoa(u.ID),
		Message: message(200, ""),
	})
	if _, err := f.store.GetURL(100, "https://example.com"); err != nil {
		t.Error("Expected url to survive foreign removal attempt")
	}

	// The owner can remove it
	f.handler.handleCallbackQuery(&model.TelegramCallbackQuery{
		ID:      "cb-2",
		Data:    "remove_url_" + strconv.Itoa(u.ID),
		Message: message(100, ""),
	})
	if _, err := f.store.GetURL(100, "https://example.com"); err == nil {
		t.Error("Expected url to be removed by its owner")
	}
}

func TestAdminManagementPrimaryOnly(t *testing.T) {
	f := newBotFixture(t, 100)
	f.handler.admins.AddAdmin(200)

	f.handler.handleMessage(message(200, "/addadmin 300"))
	if f.handler.admins.IsAdmin(300) {
		t.Error("Expected non-primary admin to be unable to add admins")
	}

	f.handler.handleMessage(message(100, "/addadmin 300"))
	if !f.handler.admins.IsAdmin(300) {
		t.Error("Expected primary admin to add an admin")
	}

	f.handler.handleMessage(message(100, "/removeadmin 300"))
	if f.handler.admins.IsAdmin(300) {
		t.Error("Expected primary admin to remove an admin")
	}
}

func TestListURLsCommand(t *testing.T) {
	f := newBotFixture(t, 100)

	f.handler.handleMessage(message(100, "/listurls"))
	if !strings.Contains(f.messenger.lastMessage(), "No URLs") {
		t.Errorf("Expected empty-list notice, got %q", f.messenger.lastMessage())
	}

	f.handler.handleMessage(message(100, "/seturl example.com"))
	f.handler.handleMessage(message(100, "/listurls"))
	if !strings.Contains(f.messenger.lastMessage(), "https://example.com") {
		t.Errorf("Expected url in listing, got %q", f.messenger.lastMessage())
	}
}

func TestWebhookDispatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newBotFixture(t, 100)

	router := gin.New()
	router.POST("/webhook", f.handler.WebhookHandler)

	body := `{"update_id":1,"message":{"message_id":1,"chat":{"id":100,"type":"private"},"text":"/seturl example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from webhook, got %d", w.Code)
	}
	if _, err := f.store.GetURL(100, "https://example.com"); err != nil {
		t.Errorf("Expected webhook command to register the url: %v", err)
	}
}

