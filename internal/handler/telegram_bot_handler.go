package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"url-monitor-go/internal/admin"
	"url-monitor-go/internal/monitor"
	"url-monitor-go/internal/urls"
	"url-monitor-go/pkg/model"
)

// BotMessenger is the slice of the Telegram service the bot handler needs
type BotMessenger interface {
	SendMessage(chatID int64, message string) error
	SendMessageWithKeyboard(chatID int64, message string, keyboard model.TelegramInlineKeyboard) error
	AnswerCallbackQuery(callbackQueryID, text string) error
}

// TelegramBotHandler routes chat commands from the Telegram webhook to the
// monitoring core. It is presentation glue: all monitoring semantics live
// in the services it calls.
type TelegramBotHandler struct {
	messenger  BotMessenger
	urlService *urls.URLService
	scheduler  *monitor.Scheduler
	admins     *admin.Registry
}

// NewTelegramBotHandler creates a new bot handler
func NewTelegramBotHandler(messenger BotMessenger, urlService *urls.URLService, scheduler *monitor.Scheduler, admins *admin.Registry) *TelegramBotHandler {
	return &TelegramBotHandler{
		messenger:  messenger,
		urlService: urlService,
		scheduler:  scheduler,
		admins:     admins,
	}
}

// WebhookHandler handles incoming webhook requests from Telegram
func (h *TelegramBotHandler) WebhookHandler(c *gin.Context) {
	var update model.TelegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if update.Message != nil {
		h.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleMessage processes incoming text messages
func (h *TelegramBotHandler) handleMessage(message *model.TelegramMessage) {
	if message.Text == "" {
		return
	}

	chatID := message.Chat.ID
	command, args := splitCommand(message.Text)

	if !h.admins.IsAdmin(chatID) {
		h.send(chatID, "⛔ This bot is restricted to authorized admins.")
		return
	}

	switch command {
	case "/start":
		h.handleStart(chatID)
	case "/help":
		h.handleHelp(chatID)
	case "/seturl":
		h.handleSetURL(chatID, args)
	case "/removeurl":
		h.handleRemoveURL(chatID, args)
	case "/listurls":
		h.handleListURLs(chatID)
	case "/status":
		h.handleStatus(chatID)
	case "/pingnow":
		h.handlePingNow(chatID)
	case "/addadmin":
		h.handleAddAdmin(chatID, args)
	case "/removeadmin":
		h.handleRemoveAdmin(chatID, args)
	case "/listadmins":
		h.handleListAdmins(chatID)
	}
}

func splitCommand(text string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	command := strings.ToLower(parts[0])
	// Strip the @BotName suffix used in group chats
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	if len(parts) == 2 {
		return command, strings.TrimSpace(parts[1])
	}
	return command, ""
}

func (h *TelegramBotHandler) send(chatID int64, message string) {
	if err := h.messenger.SendMessage(chatID, message); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (h *TelegramBotHandler) handleStart(chatID int64) {
	h.send(chatID, "👋 *URL Monitor Bot*\n\n"+
		"I keep an eye on your URLs and alert you when they go down.\n\n"+
		"Use /seturl to register a URL and /help to see every command.")
}

func (h *TelegramBotHandler) handleHelp(chatID int64) {
	help := "*Commands*\n\n" +
		"/seturl <url> - start monitoring a URL\n" +
		"/removeurl [url] - stop monitoring a URL\n" +
		"/listurls - list your monitored URLs\n" +
		"/status - monitoring status and per-URL state\n" +
		"/pingnow - check all your URLs right now\n"
	if h.admins.IsPrimaryAdmin(chatID) {
		help += "\n*Admin management*\n\n" +
			"/addadmin <chat_id> - grant access\n" +
			"/removeadmin <chat_id> - revoke access\n" +
			"/listadmins - list admins\n"
	}
	h.send(chatID, help)
}

func (h *TelegramBotHandler) handleSetURL(chatID int64, args string) {
	if args == "" {
		h.send(chatID, "Usage: /seturl <url>\n\nExample: /seturl https://example.com")
		return
	}

	stored, err := h.urlService.AddURL(chatID, args)
	if err != nil {
		switch err {
		case urls.ErrInvalidURL:
			h.send(chatID, fmt.Sprintf("❌ `%s` does not look like a valid URL.", args))
		case urls.ErrAlreadyExists:
			h.send(chatID, fmt.Sprintf("ℹ️ `%s` is already being monitored.", urls.NormalizeURL(args)))
		case urls.ErrLimitReached:
			h.send(chatID, "❌ You have reached your URL limit.")
		default:
			log.Printf("Error adding url for chat %d: %v", chatID, err)
			h.send(chatID, "❌ Something went wrong, please try again.")
		}
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Now monitoring `%s`.\n\nYou will be alerted when it goes down.", stored))
}

func (h *TelegramBotHandler) handleRemoveURL(chatID int64, args string) {
	if args != "" {
		if err := h.urlService.RemoveURL(chatID, args); err != nil {
			if err == urls.ErrNotRegistered {
				h.send(chatID, fmt.Sprintf("❌ `%s` is not being monitored.", urls.NormalizeURL(args)))
			} else {
				log.Printf("Error removing url for chat %d: %v", chatID, err)
				h.send(chatID, "❌ Something went wrong, please try again.")
			}
			return
		}
		h.send(chatID, fmt.Sprintf("✅ Stopped monitoring `%s`.", urls.NormalizeURL(args)))
		return
	}

	// Without an argument, offer the URL list as buttons
	response, err := h.urlService.GetURLs(chatID)
	if err != nil {
		log.Printf("Error listing urls for chat %d: %v", chatID, err)
		h.send(chatID, "❌ Something went wrong, please try again.")
		return
	}
	if len(response.URLs) == 0 {
		h.send(chatID, "📭 You don't have any URLs to remove.")
		return
	}

	keyboard := model.TelegramInlineKeyboard{}
	for _, u := range response.URLs {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, []model.TelegramInlineButton{
			{Text: u.URL, CallbackData: fmt.Sprintf("remove_url_%d", u.ID)},
		})
	}

	if err := h.messenger.SendMessageWithKeyboard(chatID, "🗑️ Select a URL to remove:", keyboard); err != nil {
		log.Printf("Failed to send removal keyboard to chat %d: %v", chatID, err)
	}
}

func (h *TelegramBotHandler) handleListURLs(chatID int64) {
	response, err := h.urlService.GetURLs(chatID)
	if err != nil {
		log.Printf("Error listing urls for chat %d: %v", chatID, err)
		h.send(chatID, "❌ Something went wrong, please try again.")
		return
	}

	if len(response.URLs) == 0 {
		h.send(chatID, "📭 No URLs are being monitored.\n\nUse /seturl <url> to add one.")
		return
	}

	message := fmt.Sprintf("📋 *Monitored URLs* (%d/%d)\n\n", response.TotalURLs, response.URLLimit)
	for i, u := range response.URLs {
		message += fmt.Sprintf("%d. %s `%s`\n", i+1, statusEmoji(u.Status), u.URL)
	}
	h.send(chatID, message)
}

func (h *TelegramBotHandler) handleStatus(chatID int64) {
	status := h.scheduler.Status()

	running := "🔴 stopped"
	if status.IsRunning {
		running = "🟢 running"
	}
	message := fmt.Sprintf("*Monitoring:* %s\n*Interval:* %ds\n*Timeout:* %ds\n\n",
		running, status.PingInterval, status.RequestTimeout)

	response, err := h.urlService.GetURLs(chatID)
	if err != nil {
		log.Printf("Error listing urls for chat %d: %v", chatID, err)
		h.send(chatID, "❌ Something went wrong, please try again.")
		return
	}

	if len(response.URLs) == 0 {
		message += "No URLs registered."
		h.send(chatID, message)
		return
	}

	for _, u := range response.URLs {
		line := fmt.Sprintf("%s `%s`", statusEmoji(u.Status), u.URL)
		if u.LastResponseTime != nil {
			line += fmt.Sprintf(" - %.3fs", *u.LastResponseTime)
		}
		if u.LastCheck != nil {
			line += fmt.Sprintf(" (checked %s)", u.LastCheck.Format("15:04:05"))
		}
		message += line + "\n"
	}
	h.send(chatID, message)
}

func (h *TelegramBotHandler) handlePingNow(chatID int64) {
	results, err := h.scheduler.PingOwnerURLs(chatID)
	if err != nil {
		log.Printf("Error during on-demand ping for chat %d: %v", chatID, err)
	}

	if len(results) == 0 {
		h.send(chatID, "📭 No URLs to ping.\n\nUse /seturl <url> to add one.")
		return
	}

	online := 0
	message := fmt.Sprintf("🏓 *Ping results* (%d URLs)\n\n", len(results))
	for url, r := range results {
		if r.Success {
			online++
			message += fmt.Sprintf("🟢 `%s` - %d (%.3fs)\n", url, r.StatusCode, r.ResponseTime)
		} else {
			message += fmt.Sprintf("🔴 `%s` - %s\n", url, r.Error)
		}
	}
	message += fmt.Sprintf("\n%d/%d online", online, len(results))
	h.send(chatID, message)
}

func (h *TelegramBotHandler) handleAddAdmin(chatID int64, args string) {
	if !h.admins.IsPrimaryAdmin(chatID) {
		h.send(chatID, "⛔ Only the primary admin can manage admins.")
		return
	}

	newAdmin, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		h.send(chatID, "Usage: /addadmin <chat_id>")
		return
	}

	if !h.admins.AddAdmin(newAdmin) {
		h.send(chatID, fmt.Sprintf("ℹ️ %d is already an admin.", newAdmin))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Added admin %d.", newAdmin))
}

func (h *TelegramBotHandler) handleRemoveAdmin(chatID int64, args string) {
	if !h.admins.IsPrimaryAdmin(chatID) {
		h.send(chatID, "⛔ Only the primary admin can manage admins.")
		return
	}

	target, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		h.send(chatID, "Usage: /removeadmin <chat_id>")
		return
	}

	if !h.admins.RemoveAdmin(target) {
		h.send(chatID, fmt.Sprintf("❌ Cannot remove %d.", target))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Removed admin %d.", target))
}

func (h *TelegramBotHandler) handleListAdmins(chatID int64) {
	if !h.admins.IsPrimaryAdmin(chatID) {
		h.send(chatID, "⛔ Only the primary admin can manage admins.")
		return
	}

	message := "*Admins*\n\n"
	for _, id := range h.admins.ListAdmins() {
		if h.admins.IsPrimaryAdmin(id) {
			message += fmt.Sprintf("• %d (primary)\n", id)
		} else {
			message += fmt.Sprintf("• %d\n", id)
		}
	}
	h.send(chatID, message)
}

// handleCallbackQuery processes inline keyboard button clicks
func (h *TelegramBotHandler) handleCallbackQuery(callback *model.TelegramCallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	if !h.admins.IsAdmin(chatID) {
		h.answer(callback.ID, "⛔ Not authorized")
		return
	}

	if strings.HasPrefix(callback.Data, "remove_url_") {
		h.handleRemoveCallback(chatID, callback)
	}
}

func (h *TelegramBotHandler) handleRemoveCallback(chatID int64, callback *model.TelegramCallbackQuery) {
	id, err := strconv.Atoi(strings.TrimPrefix(callback.Data, "remove_url_"))
	if err != nil {
		h.answer(callback.ID, "❌ Invalid selection")
		return
	}

	u, err := h.urlService.GetURLByID(id)
	if err != nil || u.OwnerID != chatID {
		h.answer(callback.ID, "❌ URL not found")
		return
	}

	if err := h.urlService.RemoveURL(chatID, u.URL); err != nil {
		h.answer(callback.ID, "❌ Failed to remove URL")
		return
	}

	h.answer(callback.ID, "✅ URL removed")
	h.send(chatID, fmt.Sprintf("✅ Stopped monitoring `%s`.", u.URL))
}

func (h *TelegramBotHandler) answer(callbackID, text string) {
	if err := h.messenger.AnswerCallbackQuery(callbackID, text); err != nil {
		log.Printf("Failed to answer callback query: %v", err)
	}
}

func statusEmoji(status string) string {
	switch status {
	case model.StatusOnline:
		return "🟢"
	case model.StatusOffline:
		return "🔴"
	default:
		return "⚪"
	}
}
