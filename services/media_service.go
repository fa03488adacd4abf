package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"spark_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MediaService enforces at-most-one-open semantics on view-once photo
// messages. The authoritative "viewed" fact is the conditional transition
// here; any client countdown is presentation only.
type MediaService struct {
	Dynamo *DynamoService
	Blobs  *S3Service
}

// OpenViewOnce transitions a view-once message from sent to opened. The
// transition, the content purge, and both participants' preview updates are
// one transaction; the condition guarantees a second open by anyone changes
// nothing. Blob deletion follows asynchronously and never blocks or rolls
// back the transition.
func (s *MediaService) OpenViewOnce(ctx context.Context, matchID, createdAt, viewerID string) error {
	if matchID == "" || createdAt == "" || viewerID == "" {
		return validationErrorf("matchId, createdAt, and viewerId are required")
	}

	message, err := s.getMessage(ctx, matchID, createdAt)
	if err != nil {
		return err
	}
	if message.SenderID == viewerID {
		return fmt.Errorf("%w: sender cannot open their own view-once photo", ErrConflict)
	}

	imagePublicID := message.ImagePublicID

	items := []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:           tableName(models.MessagesTable),
			Key:                 messageKey(matchID, createdAt),
			UpdateExpression:    strPtr("SET viewed = :true, #type = :viewedType, #text = :placeholder REMOVE imageUrl, imagePublicId"),
			ConditionExpression: strPtr("#type = :sentType AND viewed = :false AND senderId <> :viewer"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":true":        &types.AttributeValueMemberBOOL{Value: true},
				":false":       &types.AttributeValueMemberBOOL{Value: false},
				":viewedType":  &types.AttributeValueMemberS{Value: models.MessageTypeViewOnceViewed},
				":sentType":    &types.AttributeValueMemberS{Value: models.MessageTypeViewOnce},
				":placeholder": &types.AttributeValueMemberS{Value: models.PlaceholderPhotoOpened},
				":viewer":      &types.AttributeValueMemberS{Value: viewerID},
			},
			ExpressionAttributeNames: map[string]string{"#type": "type", "#text": "text"},
		}},
		s.openedPreviewUpdate(message.SenderID, matchID),
		s.openedPreviewUpdate(viewerID, matchID),
	}

	if err := s.Dynamo.TransactWrite(ctx, items); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return fmt.Errorf("%w: view-once message already opened", ErrConflict)
		}
		return fmt.Errorf("failed to open view-once message: %w", err)
	}
	log.Printf("👁️ View-once message at %s/%s opened by %s", matchID, createdAt, viewerID)

	// Storage reclamation is best-effort; the access guarantee is already
	// committed above.
	if s.Blobs != nil && imagePublicID != "" {
		go s.Blobs.DeleteObjectAsync(imagePublicID)
	}
	return nil
}

func (s *MediaService) openedPreviewUpdate(ownerID, matchID string) types.TransactWriteItem {
	return types.TransactWriteItem{Update: &types.Update{
		TableName: tableName(models.UserMatchesTable),
		Key: map[string]types.AttributeValue{
			"userId":  &types.AttributeValueMemberS{Value: ownerID},
			"matchId": &types.AttributeValueMemberS{Value: matchID},
		},
		UpdateExpression: strPtr("SET lastMessage = :lm"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lm": &types.AttributeValueMemberS{Value: models.PreviewPhotoOpened},
		},
	}}
}

func (s *MediaService) getMessage(ctx context.Context, matchID, createdAt string) (*models.Message, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MessagesTable, messageKey(matchID, createdAt))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: message %s/%s", ErrNotFound, matchID, createdAt)
	}

	var message models.Message
	if err := attributevalue.UnmarshalMap(item, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &message, nil
}
