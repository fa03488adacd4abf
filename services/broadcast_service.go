package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"spark_server/models"
	"spark_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// BroadcastService injects one-to-many system notices into every user's
// synthetic "system" conversation. The audience is unbounded, so the
// per-recipient fan-out cannot ride a single transaction; instead each
// merge-write is idempotent and a failed run reports how far it got so the
// caller can re-run with the same broadcast.
type BroadcastService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
}

type BroadcastResult struct {
	BroadcastID    string `json:"broadcastId"`
	RecipientCount int    `json:"recipientCount"`
}

// Broadcast creates a SystemBroadcast and fans it out to every active user
// (bots excluded unless includeBots).
func (s *BroadcastService) Broadcast(ctx context.Context, text string, includeBots bool) (*BroadcastResult, error) {
	if text == "" {
		return nil, validationErrorf("broadcast text is required")
	}

	recipients, err := s.Profiles.ListProfiles(ctx, includeBots)
	if err != nil {
		return nil, err
	}

	broadcast := models.SystemBroadcast{
		BroadcastID: uuid.NewString(),
		Text:        text,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, r := range recipients {
		broadcast.SentTo = append(broadcast.SentTo, r.UserID)
	}

	if err := s.Dynamo.PutItem(ctx, models.SystemBroadcastsTable, broadcast); err != nil {
		return nil, fmt.Errorf("failed to store broadcast: %w", err)
	}

	written := 0
	for _, r := range recipients {
		if err := s.writeSystemView(ctx, r.UserID, text, true); err != nil {
			log.Printf("❌ Broadcast %s failed for recipient %s: %v", broadcast.BroadcastID, r.UserID, err)
			return nil, &PartialFanoutError{Written: written, Total: len(recipients), Err: err}
		}
		written++
	}

	log.Printf("📣 Broadcast %s delivered to %d users", broadcast.BroadcastID, written)
	return &BroadcastResult{BroadcastID: broadcast.BroadcastID, RecipientCount: written}, nil
}

// DeleteBroadcast blanks the preview for every recipient. The view documents
// themselves survive; only the broadcast content is withdrawn.
func (s *BroadcastService) DeleteBroadcast(ctx context.Context, broadcastID string) error {
	if broadcastID == "" {
		return validationErrorf("broadcastId is required")
	}

	broadcast, err := s.getBroadcast(ctx, broadcastID)
	if err != nil {
		return err
	}

	key := map[string]types.AttributeValue{
		"broadcastId": &types.AttributeValueMemberS{Value: broadcastID},
	}
	if _, err := s.Dynamo.UpdateItem(ctx, models.SystemBroadcastsTable,
		"SET deleted = :true", key,
		map[string]types.AttributeValue{":true": &types.AttributeValueMemberBOOL{Value: true}}, nil); err != nil {
		return fmt.Errorf("failed to mark broadcast %s deleted: %w", broadcastID, err)
	}

	written := 0
	for _, userID := range broadcast.SentTo {
		if err := s.writeSystemView(ctx, userID, models.PreviewBroadcastDeleted, false); err != nil {
			return &PartialFanoutError{Written: written, Total: len(broadcast.SentTo), Err: err}
		}
		written++
	}

	log.Printf("🗑️ Broadcast %s withdrawn from %d users", broadcastID, written)
	return nil
}

// MarkSeen records that userID has seen every visible broadcast addressed to
// them. Called when the system conversation is opened.
func (s *BroadcastService) MarkSeen(ctx context.Context, userID string) error {
	var broadcasts []models.SystemBroadcast
	err := s.Dynamo.ScanWithFilter(ctx, models.SystemBroadcastsTable, func(item map[string]types.AttributeValue) bool {
		if utils.ExtractBool(item, "deleted") {
			return false
		}
		if attr, ok := item["sentTo"]; ok {
			if set, ok := attr.(*types.AttributeValueMemberSS); ok {
				for _, v := range set.Value {
					if v == userID {
						return true
					}
				}
			}
		}
		return false
	}, &broadcasts)
	if err != nil {
		return err
	}

	for _, b := range broadcasts {
		key := map[string]types.AttributeValue{
			"broadcastId": &types.AttributeValueMemberS{Value: b.BroadcastID},
		}
		// ADD on a string set is idempotent; re-opening re-adds nothing.
		if _, err := s.Dynamo.UpdateItem(ctx, models.SystemBroadcastsTable,
			"ADD seenBy :user", key,
			map[string]types.AttributeValue{
				":user": &types.AttributeValueMemberSS{Value: []string{userID}},
			}, nil); err != nil {
			return fmt.Errorf("failed to mark broadcast %s seen: %w", b.BroadcastID, err)
		}
	}
	return nil
}

// writeSystemView merge-writes one user's synthetic system conversation row.
func (s *BroadcastService) writeSystemView(ctx context.Context, userID, lastMessage string, unread bool) error {
	key := map[string]types.AttributeValue{
		"userId":  &types.AttributeValueMemberS{Value: userID},
		"matchId": &types.AttributeValueMemberS{Value: models.SystemMatchID},
	}
	_, err := s.Dynamo.UpdateItem(ctx, models.UserMatchesTable,
		"SET lastMessage = :lm, lastMessageAt = :lma, hasUnreadSystemMessage = :unread", key,
		map[string]types.AttributeValue{
			":lm":     &types.AttributeValueMemberS{Value: lastMessage},
			":lma":    &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			":unread": &types.AttributeValueMemberBOOL{Value: unread},
		}, nil)
	return err
}

func (s *BroadcastService) getBroadcast(ctx context.Context, broadcastID string) (*models.SystemBroadcast, error) {
	key := map[string]types.AttributeValue{
		"broadcastId": &types.AttributeValueMemberS{Value: broadcastID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.SystemBroadcastsTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: broadcast %s", ErrNotFound, broadcastID)
	}

	var broadcast models.SystemBroadcast
	if err := attributevalue.UnmarshalMap(item, &broadcast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal broadcast %s: %w", broadcastID, err)
	}
	return &broadcast, nil
}
