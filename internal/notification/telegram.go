package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"url-monitor-go/pkg/model"
)

// TelegramConfig holds the configuration for Telegram API
type TelegramConfig struct {
	APIToken string
	BaseURL  string
}

// TelegramService manages interactions with the Telegram Bot API. It is the
// alert dispatcher for the monitoring core: delivery failures are logged
// here and never propagated back into the monitoring loop.
type TelegramService struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter <-chan time.Time
}

// NewTelegramService creates a new telegram service
func NewTelegramService(config TelegramConfig) *TelegramService {
	// Set defaults if not provided
	if config.BaseURL == "" {
		config.BaseURL = "https://api.telegram.org/bot"
	}

	return &TelegramService{
		config:      config,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rateLimiter: time.Tick(500 * time.Millisecond), // Max 2 API calls per second
	}
}

// SetupBot verifies the token against the Bot API and returns bot details
func (s *TelegramService) SetupBot() (model.TelegramBot, error) {
	<-s.rateLimiter // Rate limiting

	url := fmt.Sprintf("%s%s/getMe", s.config.BaseURL, s.config.APIToken)
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return model.TelegramBot{}, fmt.Errorf("failed to connect to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TelegramBot{}, fmt.Errorf("failed to read API response: %w", err)
	}

	var response struct {
		OK     bool              `json:"ok"`
		Result model.TelegramBot `json:"result"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return model.TelegramBot{}, fmt.Errorf("failed to parse API response: %w", err)
	}

	if !response.OK {
		return model.TelegramBot{}, fmt.Errorf("Telegram API error: %s", string(body))
	}

	return response.Result, nil
}

// NotifyFailure sends a down alert for a failed probe to the owning admin.
// It satisfies the scheduler's Alerter contract: fire and forget, errors
// are logged and swallowed.
func (s *TelegramService) NotifyFailure(result model.PingResult, ownerID int64) {
	errText := result.Error
	if errText == "" {
		errText = "Unknown error"
	}

	message := "🚨 *URL DOWN ALERT* 🚨\n\n"
	message += fmt.Sprintf("*URL:* `%s`\n", result.URL)
	message += fmt.Sprintf("*Status Code:* %d\n", result.StatusCode)
	message += fmt.Sprintf("*Response Time:* %.3fs\n", result.ResponseTime)
	message += fmt.Sprintf("*Error:* %s\n", errText)
	message += fmt.Sprintf("*Time:* %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	message += "Please check the URL status immediately."

	if err := s.SendMessage(ownerID, message); err != nil {
		log.Printf("Failed to send alert for %s to admin %d: %v", result.URL, ownerID, err)
		return
	}
	log.Printf("Alert sent for %s to admin %d", result.URL, ownerID)
}

// SendMessage sends a Markdown text message to a specific Telegram chat
func (s *TelegramService) SendMessage(chatID int64, message string) error {
	return s.send(chatID, message, nil)
}

// SendMessageWithKeyboard sends a message with an inline keyboard attached
func (s *TelegramService) SendMessageWithKeyboard(chatID int64, message string, keyboard model.TelegramInlineKeyboard) error {
	return s.send(chatID, message, &keyboard)
}

func (s *TelegramService) send(chatID int64, message string, keyboard *model.TelegramInlineKeyboard) error {
	<-s.rateLimiter // Rate limiting

	url := fmt.Sprintf("%s%s/sendMessage", s.config.BaseURL, s.config.APIToken)

	requestBody := map[string]interface{}{
		"chat_id":    chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		requestBody["reply_markup"] = keyboard
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// AnswerCallbackQuery acknowledges an inline keyboard button press
func (s *TelegramService) AnswerCallbackQuery(callbackQueryID, text string) error {
	<-s.rateLimiter // Rate limiting

	url := fmt.Sprintf("%s%s/answerCallbackQuery", s.config.BaseURL, s.config.APIToken)

	requestBody := map[string]interface{}{
		"callback_query_id": callbackQueryID,
		"text":              text,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
