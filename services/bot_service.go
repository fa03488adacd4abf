package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"spark_server/models"
)

// Bot webhook event types.
const (
	BotEventMatch   = "MATCH"
	BotEventMessage = "MESSAGE"
)

// BotService calls the external reply-generation webhook and writes the
// reply back as an ordinary chat message from the bot identity.
type BotService struct {
	WebhookURL string
	HTTPClient *http.Client
	Chat       *ChatService
}

type botRequest struct {
	MatchID string `json:"matchId"`
	Type    string `json:"type"`
	UserID  string `json:"userId"`
}

type botResponse struct {
	Reply string `json:"reply"`
}

// RequestReplyAsync fires the webhook in the background. Reply failures are
// logged and dropped; bots never block or fail a user-facing operation.
func (s *BotService) RequestReplyAsync(matchID, eventType, botUserID string) {
	if s.WebhookURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.requestReply(ctx, matchID, eventType, botUserID); err != nil {
			log.Printf("⚠️ Bot reply for match %s failed: %v", matchID, err)
		}
	}()
}

func (s *BotService) requestReply(ctx context.Context, matchID, eventType, botUserID string) error {
	payload, err := json.Marshal(botRequest{MatchID: matchID, Type: eventType, UserID: botUserID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var parsed botResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode webhook response: %w", err)
	}
	if parsed.Reply == "" {
		return nil
	}

	// The reply goes through the same append path as a human message, so
	// previews and unread counters stay correct.
	_, err = s.Chat.AppendMessage(ctx, models.Message{
		MatchID:  matchID,
		SenderID: botUserID,
		Text:     parsed.Reply,
		Type:     models.MessageTypeUser,
	})
	return err
}
