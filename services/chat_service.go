package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"spark_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ChatService owns the per-match message log and the unread bookkeeping on
// both participants' views. A message append is one transaction: the message
// row, the sender's preview, and the recipient's preview + unread increment
// land together or not at all.
type ChatService struct {
	Dynamo     *DynamoService
	Profiles   *UserProfileService
	Broadcasts *BroadcastService
	Notifier   *NotificationService
	Bot        *BotService
}

// AppendMessage stores a new message with a server-assigned timestamp and
// fans the preview out to both participants.
func (s *ChatService) AppendMessage(ctx context.Context, message models.Message) (*models.Message, error) {
	if message.MatchID == "" || message.SenderID == "" {
		return nil, validationErrorf("matchId and senderId are required")
	}
	if message.Text == "" && message.ImageURL == "" && message.AudioURL == "" {
		return nil, validationErrorf("message needs text, image, or audio content")
	}
	if message.Type == "" {
		message.Type = models.MessageTypeUser
		if message.AudioURL != "" {
			message.Type = models.MessageTypeAudio
		}
	}
	if message.Type == models.MessageTypeViewOnce && message.ImageURL == "" {
		return nil, validationErrorf("view-once message needs an image")
	}

	match, err := s.getMatch(ctx, message.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.HasUser(message.SenderID) {
		return nil, validationErrorf("sender %s is not part of match %s", message.SenderID, message.MatchID)
	}
	recipientID := match.OtherUser(message.SenderID)

	// Sort key is the server clock; the uuid suffix keeps two messages in
	// the same nanosecond from colliding.
	message.MessageID = uuid.NewString()
	message.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano) + "#" + message.MessageID[:8]
	message.IsEdited = false
	message.Viewed = false

	item, err := attributevalue.MarshalMap(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	preview := message.Preview()
	items := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName: tableName(models.MessagesTable),
			Item:      item,
		}},
		s.previewUpdate(message.SenderID, message.MatchID, preview, message.CreatedAt, false),
		s.previewUpdate(recipientID, message.MatchID, preview, message.CreatedAt, true),
	}

	if err := s.Dynamo.TransactWrite(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to append message to %s: %w", message.MatchID, err)
	}
	log.Printf("📩 Message %s stored for match %s", message.MessageID, message.MatchID)

	s.afterAppend(ctx, &message, recipientID)
	return &message, nil
}

// previewUpdate merge-writes one participant's lastMessage fields; the
// recipient side also takes the unread increment.
func (s *ChatService) previewUpdate(ownerID, matchID, preview, createdAt string, isRecipient bool) types.TransactWriteItem {
	updateExpression := "SET lastMessage = :lm, lastMessageAt = :lma"
	values := map[string]types.AttributeValue{
		":lm":  &types.AttributeValueMemberS{Value: preview},
		":lma": &types.AttributeValueMemberS{Value: createdAt},
	}
	if isRecipient {
		updateExpression += " ADD unreadCount :one"
		values[":one"] = &types.AttributeValueMemberN{Value: "1"}
	}

	return types.TransactWriteItem{Update: &types.Update{
		TableName: tableName(models.UserMatchesTable),
		Key: map[string]types.AttributeValue{
			"userId":  &types.AttributeValueMemberS{Value: ownerID},
			"matchId": &types.AttributeValueMemberS{Value: matchID},
		},
		UpdateExpression:          strPtr(updateExpression),
		ExpressionAttributeValues: values,
	}}
}

// EditMessage rewrites a text message's body. Only the sender may edit, and
// only messages without media payloads.
func (s *ChatService) EditMessage(ctx context.Context, matchID, createdAt, senderID, newText string) error {
	if matchID == "" || createdAt == "" || senderID == "" {
		return validationErrorf("matchId, createdAt, and senderId are required")
	}
	if newText == "" {
		return validationErrorf("edited text cannot be empty")
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.MessagesTable,
		"SET #text = :text, isEdited = :true, editedAt = :now",
		"senderId = :sender AND attribute_not_exists(imageUrl) AND attribute_not_exists(audioUrl)",
		messageKey(matchID, createdAt),
		map[string]types.AttributeValue{
			":text":   &types.AttributeValueMemberS{Value: newText},
			":true":   &types.AttributeValueMemberBOOL{Value: true},
			":now":    &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			":sender": &types.AttributeValueMemberS{Value: senderID},
		},
		map[string]string{"#text": "text"})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return fmt.Errorf("%w: message is not editable by %s", ErrConflict, senderID)
		}
		return err
	}
	return nil
}

// DeleteMessage removes a single message. Only the sender may delete.
func (s *ChatService) DeleteMessage(ctx context.Context, matchID, createdAt, senderID string) error {
	if matchID == "" || createdAt == "" || senderID == "" {
		return validationErrorf("matchId, createdAt, and senderId are required")
	}

	err := s.Dynamo.TransactWrite(ctx, []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName:           tableName(models.MessagesTable),
			Key:                 messageKey(matchID, createdAt),
			ConditionExpression: strPtr("senderId = :sender"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sender": &types.AttributeValueMemberS{Value: senderID},
			},
		},
	}})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return fmt.Errorf("%w: message does not exist or belongs to another sender", ErrConflict)
		}
		return err
	}
	return nil
}

// GetMessages fetches the latest messages for a match, returned oldest-first
// so the newest message sits at the bottom of the chat screen.
func (s *ChatService) GetMessages(ctx context.Context, matchID string, limit int) ([]models.Message, error) {
	if matchID == "" {
		return nil, validationErrorf("matchId is required")
	}
	if limit <= 0 {
		limit = 50
	}

	keyCondition := "#matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	expressionNames := map[string]string{"#matchId": "matchId"}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkConversationOpened resets the opener's unread counter. For the system
// conversation it also marks visible broadcasts as seen. Opening an
// already-read conversation is a no-op state-wise.
func (s *ChatService) MarkConversationOpened(ctx context.Context, userID, matchID string) error {
	if userID == "" || matchID == "" {
		return validationErrorf("userId and matchId are required")
	}

	updateExpression := "SET unreadCount = :zero"
	values := map[string]types.AttributeValue{
		":zero": &types.AttributeValueMemberN{Value: "0"},
	}
	if matchID == models.SystemMatchID {
		updateExpression += ", hasUnreadSystemMessage = :false"
		values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	key := map[string]types.AttributeValue{
		"userId":  &types.AttributeValueMemberS{Value: userID},
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	if _, err := s.Dynamo.UpdateItem(ctx, models.UserMatchesTable, updateExpression, key, values, nil); err != nil {
		return fmt.Errorf("failed to reset unread count for %s/%s: %w", userID, matchID, err)
	}

	if matchID == models.SystemMatchID && s.Broadcasts != nil {
		if err := s.Broadcasts.MarkSeen(ctx, userID); err != nil {
			// Seen-tracking is advisory; the unread reset already landed.
			log.Printf("⚠️ Failed to mark broadcasts seen for %s: %v", userID, err)
		}
	}
	return nil
}

func (s *ChatService) getMatch(ctx context.Context, matchID string) (*models.Match, error) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", matchID, err)
	}
	return &match, nil
}

// afterAppend fires the out-of-band collaborators: push to the recipient and
// the bot reply hook. Failures here never unwind the committed append.
func (s *ChatService) afterAppend(ctx context.Context, message *models.Message, recipientID string) {
	recipient, err := s.Profiles.GetProfile(ctx, recipientID)
	if err != nil {
		log.Printf("⚠️ Could not load recipient %s for post-append hooks: %v", recipientID, err)
		return
	}

	if s.Notifier != nil {
		s.Notifier.NotifyAsync(recipient.PushTokens, "New message",
			message.Preview(), "/matches/"+message.MatchID)
	}
	if s.Bot != nil && recipient.IsBot {
		s.Bot.RequestReplyAsync(message.MatchID, BotEventMessage, recipientID)
	}
}

func messageKey(matchID, createdAt string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"matchId":   &types.AttributeValueMemberS{Value: matchID},
		"createdAt": &types.AttributeValueMemberS{Value: createdAt},
	}
}
