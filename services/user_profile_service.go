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
)

// UserProfileService owns the profile fields the engine projects into match
// views: display name, photos, bot flag, push tokens.
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetProfile retrieves a user profile, or ErrNotFound.
func (s *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, validationErrorf("userId is required")
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	return &profile, nil
}

// SaveProfile creates or overwrites a profile.
func (s *UserProfileService) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.UserID == "" {
		return validationErrorf("userId is required")
	}
	if profile.CreatedAt == "" {
		profile.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.UserID, err)
	}
	log.Printf("✅ Profile saved: %s", profile.UserID)
	return nil
}

// UpdateLastSeen stamps the presence field.
func (s *UserProfileService) UpdateLastSeen(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	_, err := s.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET lastSeenAt = :now", key,
		map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		}, nil)
	return err
}

// ListProfiles returns every profile, optionally excluding bots. Used by the
// broadcast fan-out.
func (s *UserProfileService) ListProfiles(ctx context.Context, includeBots bool) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := s.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		return includeBots || !utils.ExtractBool(item, "isBot")
	}, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}
