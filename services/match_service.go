package services

import (
	"context"
	"fmt"
	"log"

	"spark_server/models"
	"spark_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// cascadePageSize keeps each cascade chunk within the 25-item BatchWriteItem
// limit.
const cascadePageSize = 25

type MatchService struct {
	Dynamo *DynamoService
}

// GetMatchesForUser returns the user's denormalized match views for the list
// screen, sorted by the store's key order.
func (s *MatchService) GetMatchesForUser(ctx context.Context, userID string) ([]models.MatchView, error) {
	if userID == "" {
		return nil, validationErrorf("userId is required")
	}

	keyCondition := "userId = :user"
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.UserMatchesTable, keyCondition, expressionValues, nil, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches for %s: %w", userID, err)
	}

	var views []models.MatchView
	if err := attributevalue.UnmarshalListOfMaps(items, &views); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match views: %w", err)
	}
	return views, nil
}

// GetMatch returns the canonical match record, or ErrNotFound.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
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

// Unmatch irreversibly deletes the match: every message, both views, then
// the canonical record. The walk is paginated and every delete tolerates
// already-absent items, so a cascade interrupted mid-way can simply be
// re-run. Messages go first: whatever remains after a partial failure still
// points at an intact relationship.
func (s *MatchService) Unmatch(ctx context.Context, matchID, userA, userB string) error {
	if matchID == "" || userA == "" || userB == "" {
		return validationErrorf("matchId and both user ids are required")
	}
	if matchID == models.SystemMatchID {
		return validationErrorf("the system conversation cannot be unmatched")
	}

	log.Printf("💔 Unmatching %s (%s / %s)", matchID, userA, userB)

	if err := s.deleteAllMessages(ctx, matchID); err != nil {
		return fmt.Errorf("unmatch cascade for %s failed during message deletion: %w", matchID, err)
	}

	for _, userID := range []string{userA, userB} {
		key := map[string]types.AttributeValue{
			"userId":  &types.AttributeValueMemberS{Value: userID},
			"matchId": &types.AttributeValueMemberS{Value: matchID},
		}
		if err := s.Dynamo.DeleteItem(ctx, models.UserMatchesTable, key); err != nil {
			return fmt.Errorf("unmatch cascade for %s failed deleting view of %s: %w", matchID, userID, err)
		}
	}

	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	if err := s.Dynamo.DeleteItem(ctx, models.MatchesTable, key); err != nil {
		return fmt.Errorf("unmatch cascade for %s failed deleting canonical record: %w", matchID, err)
	}

	log.Printf("✅ Unmatch complete for %s", matchID)
	return nil
}

// deleteAllMessages walks the message log page by page, deleting each page
// in one batch. Deleting from the front while paging from the front means
// re-querying without a cursor after each batch always sees the remainder.
func (s *MatchService) deleteAllMessages(ctx context.Context, matchID string) error {
	keyCondition := "matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}

	for {
		items, _, err := s.Dynamo.QueryPage(ctx, models.MessagesTable, keyCondition, expressionValues, cascadePageSize, nil)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		writeRequests := make([]types.WriteRequest, 0, len(items))
		for _, item := range items {
			createdAt := utils.ExtractString(item, "createdAt")
			if createdAt == "" {
				continue
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: messageKey(matchID, createdAt),
				},
			})
		}

		if err := s.Dynamo.BatchWriteItems(ctx, models.MessagesTable, writeRequests); err != nil {
			return err
		}
		log.Printf("🧹 Deleted %d messages for match %s", len(writeRequests), matchID)

		if len(items) < cascadePageSize {
			return nil
		}
	}
}
