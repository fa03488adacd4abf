package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// NotificationService hands push payloads to the external dispatcher.
// Delivery failures and invalid-token pruning are the dispatcher's problem;
// this side only logs.
type NotificationService struct {
	DispatchURL string
	HTTPClient  *http.Client
}

type pushPayload struct {
	Tokens []string `json:"tokens"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Link   string   `json:"link"`
}

// NotifyAsync posts the payload in the background.
func (s *NotificationService) NotifyAsync(tokens []string, title, body, link string) {
	if s.DispatchURL == "" || len(tokens) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.dispatch(ctx, pushPayload{Tokens: tokens, Title: title, Body: body, Link: link}); err != nil {
			log.Printf("⚠️ Push dispatch failed: %v", err)
		}
	}()
}

func (s *NotificationService) dispatch(ctx context.Context, payload pushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.DispatchURL, bytes.NewReader(body))
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
	resp.Body.Close()
	return nil
}
