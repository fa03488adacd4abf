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
)

// transitionRetries bounds the optimistic-concurrency retry loop. Both
// participants can swipe in the same instant; the loser of the version race
// re-reads and re-derives.
const transitionRetries = 3

// MatchTransitionResult reports what a recorded swipe did to the canonical
// match.
type MatchTransitionResult struct {
	MatchID    string `json:"matchId"`
	OldStatus  string `json:"oldStatus"`
	NewStatus  string `json:"newStatus"`
	NewMatch   bool   `json:"newMatch"` // true when this swipe completed the match
	ActorID    string `json:"actorId"`
	TargetID   string `json:"targetId"`
	Decision   string `json:"decision"`
}

// InteractionService records swipes and drives the canonical match state
// machine. The canonical record and both per-user views are written in one
// DynamoDB transaction so neither participant can observe a half-applied
// transition.
type InteractionService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
	Notifier *NotificationService
	Bot      *BotService
}

// RecordSwipe stores the actor's decision toward the target and applies the
// resulting match transition.
func (s *InteractionService) RecordSwipe(ctx context.Context, actorID, targetID, decision string) (*MatchTransitionResult, error) {
	if actorID == "" || targetID == "" {
		return nil, validationErrorf("actorId and targetId are required")
	}
	if actorID == targetID {
		return nil, validationErrorf("cannot swipe on yourself")
	}
	if !models.IsValidDecision(decision) {
		return nil, validationErrorf("unknown decision %q", decision)
	}

	log.Printf("🔄 Recording swipe %s -> %s (%s)", actorID, targetID, decision)

	targetProfile, err := s.Profiles.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}
	actorProfile, err := s.Profiles.GetProfile(ctx, actorID)
	if err != nil {
		return nil, err
	}

	matchID := models.MatchIDFor(actorID, targetID)

	// Swipe decisions are immutable once the pair has matched; only the
	// unmatch cascade ends a matched relationship.
	existing, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.StatusMatched {
		return nil, fmt.Errorf("%w: pair %s is already matched", ErrConflict, matchID)
	}

	if err := s.saveInteraction(ctx, actorID, targetID, decision); err != nil {
		return nil, err
	}

	var result *MatchTransitionResult
	for attempt := 0; attempt < transitionRetries; attempt++ {
		result, err = s.applyTransition(ctx, actorID, targetID, decision, actorProfile, targetProfile)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConditionFailed) {
			return nil, err
		}
		log.Printf("⚠️ Transition for %s lost a write race (attempt %d), retrying", matchID, attempt+1)
	}
	if err != nil {
		return nil, fmt.Errorf("match transition for %s did not settle after %d attempts: %w", matchID, transitionRetries, err)
	}

	if result.NewMatch {
		log.Printf("🎉 Match confirmed: %s ❤️ %s", actorID, targetID)
		s.afterMatch(result, actorProfile, targetProfile)
	}
	return result, nil
}

// GetInteraction retrieves the actor's recorded decision toward target, or
// nil when no swipe exists.
func (s *InteractionService) GetInteraction(ctx context.Context, actorID, targetID string) (*models.Interaction, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.InteractionPK(actorID)},
		"SK": &types.AttributeValueMemberS{Value: models.InteractionSK(targetID)},
	}

	item, err := s.Dynamo.GetItem(ctx, models.InteractionsTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	var interaction models.Interaction
	if err := attributevalue.UnmarshalMap(item, &interaction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interaction: %w", err)
	}
	return &interaction, nil
}

// GetUserInteractions fetches all swipes recorded by a user.
func (s *InteractionService) GetUserInteractions(ctx context.Context, actorID string) ([]models.Interaction, error) {
	keyCondition := "PK = :user"
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: models.InteractionPK(actorID)},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.InteractionsTable, keyCondition, expressionValues, nil, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	var interactions []models.Interaction
	if err := attributevalue.UnmarshalListOfMaps(items, &interactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interactions: %w", err)
	}
	return interactions, nil
}

func (s *InteractionService) saveInteraction(ctx context.Context, actorID, targetID, decision string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	previous, err := s.GetInteraction(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	createdAt := now
	if previous != nil {
		createdAt = previous.CreatedAt
	}

	interaction := models.Interaction{
		PK:        models.InteractionPK(actorID),
		SK:        models.InteractionSK(targetID),
		ActorID:   actorID,
		TargetID:  targetID,
		Decision:  decision,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	if err := s.Dynamo.PutItem(ctx, models.InteractionsTable, interaction); err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (s *InteractionService) getMatch(ctx context.Context, matchID string) (*models.Match, error) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", matchID, err)
	}
	return &match, nil
}

// applyTransition performs one transactional read-derive-write round: the
// canonical match and both per-user views succeed or fail together.
func (s *InteractionService) applyTransition(
	ctx context.Context,
	actorID, targetID, decision string,
	actorProfile, targetProfile *models.UserProfile,
) (*MatchTransitionResult, error) {
	matchID := models.MatchIDFor(actorID, targetID)
	now := time.Now().UTC().Format(time.RFC3339)

	current, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	oldStatus := ""
	counterpartDecision := ""
	next := models.Match{
		MatchID:   matchID,
		Status:    models.StatusPending,
		CreatedAt: now,
		Version:   1,
	}
	next.User1ID, next.User2ID = models.SortedPair(actorID, targetID)

	if current != nil {
		if current.Status == models.StatusMatched {
			// Entering matched is idempotent; a concurrent writer got there
			// first and this swipe must not disturb matchDate.
			return &MatchTransitionResult{
				MatchID:   matchID,
				OldStatus: current.Status,
				NewStatus: current.Status,
				ActorID:   actorID,
				TargetID:  targetID,
				Decision:  decision,
			}, nil
		}
		next = *current
		next.Version = current.Version + 1
		oldStatus = current.Status
		counterpartDecision = current.ActionFor(targetID)
	}

	if actorID == next.User1ID {
		next.User1Action = decision
	} else {
		next.User2Action = decision
	}
	next.Status = models.DeriveMatchStatus(decision, counterpartDecision)
	next.UpdatedAt = now

	if next.Status == models.StatusSuperLikePending && decision == models.DecisionSuperLike {
		next.IsSuperLike = true
		next.SuperLikeInitiator = actorID
	}

	newMatch := next.Status == models.StatusMatched && oldStatus != models.StatusMatched
	if newMatch {
		next.MatchDate = now
	}

	items := []types.TransactWriteItem{s.canonicalPut(&next, current)}
	items = append(items,
		s.viewUpdate(actorID, &next, targetProfile, newMatch, false),
		s.viewUpdate(targetID, &next, actorProfile, newMatch, true),
	)

	if err := s.Dynamo.TransactWrite(ctx, items); err != nil {
		return nil, err
	}

	return &MatchTransitionResult{
		MatchID:   matchID,
		OldStatus: oldStatus,
		NewStatus: next.Status,
		NewMatch:  newMatch,
		ActorID:   actorID,
		TargetID:  targetID,
		Decision:  decision,
	}, nil
}

// canonicalPut writes the full canonical record, guarded against concurrent
// writers: creation requires the item to be absent, updates require the
// version observed by the read.
func (s *InteractionService) canonicalPut(next *models.Match, current *models.Match) types.TransactWriteItem {
	item, err := attributevalue.MarshalMap(next)
	if err != nil {
		// Match has no unmarshalable fields; treated as unreachable.
		log.Printf("❌ Failed to marshal match %s: %v", next.MatchID, err)
	}

	put := &types.Put{
		TableName: tableName(models.MatchesTable),
		Item:      item,
	}
	if current == nil {
		put.ConditionExpression = strPtr("attribute_not_exists(matchId)")
	} else {
		put.ConditionExpression = strPtr("version = :v")
		put.ExpressionAttributeValues = map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", current.Version)},
		}
	}
	return types.TransactWriteItem{Put: put}
}

// viewUpdate merge-writes one participant's denormalized view. Fields not in
// the update expression (unreadCount, lastMessage outside a fresh match) are
// preserved.
func (s *InteractionService) viewUpdate(
	ownerID string,
	match *models.Match,
	counterpart *models.UserProfile,
	newMatch bool,
	isRecipientSide bool,
) types.TransactWriteItem {
	// The side that did not trigger a fresh match has one unseen event: the
	// match itself. Everyone else keeps whatever unreadCount they had.
	unreadClause := "unreadCount = if_not_exists(unreadCount, :unread)"
	unreadValue := "0"
	if newMatch && isRecipientSide {
		unreadClause = "unreadCount = :unread"
		unreadValue = "1"
	}

	updateExpression := "SET #status = :status, counterpartId = :cid, counterpartName = :cname, counterpartPhoto = :cphoto, isSuperLike = :isl, " + unreadClause
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: match.Status},
		":cid":    &types.AttributeValueMemberS{Value: counterpart.UserID},
		":cname":  &types.AttributeValueMemberS{Value: counterpart.Name},
		":cphoto": &types.AttributeValueMemberS{Value: counterpart.FirstPhoto()},
		":isl":    &types.AttributeValueMemberBOOL{Value: match.IsSuperLike},
		":unread": &types.AttributeValueMemberN{Value: unreadValue},
	}
	names := map[string]string{"#status": "status"}

	if match.SuperLikeInitiator != "" {
		updateExpression += ", superLikeInitiator = :sli"
		values[":sli"] = &types.AttributeValueMemberS{Value: match.SuperLikeInitiator}
	}
	if newMatch {
		updateExpression += ", matchDate = :md, lastMessage = :lm, lastMessageAt = :lma"
		values[":md"] = &types.AttributeValueMemberS{Value: match.MatchDate}
		values[":lm"] = &types.AttributeValueMemberS{Value: models.PreviewMatched}
		values[":lma"] = &types.AttributeValueMemberS{Value: match.MatchDate}
	}

	return types.TransactWriteItem{Update: &types.Update{
		TableName: tableName(models.UserMatchesTable),
		Key: map[string]types.AttributeValue{
			"userId":  &types.AttributeValueMemberS{Value: ownerID},
			"matchId": &types.AttributeValueMemberS{Value: match.MatchID},
		},
		UpdateExpression:          strPtr(updateExpression),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
	}}
}

// afterMatch fires the out-of-band collaborators for a fresh match: push
// notification to the counterpart and the bot reply hook. Neither affects
// the already committed transition.
func (s *InteractionService) afterMatch(result *MatchTransitionResult, actorProfile, targetProfile *models.UserProfile) {
	if s.Notifier != nil {
		s.Notifier.NotifyAsync(targetProfile.PushTokens, "It's a match!",
			fmt.Sprintf("You matched with %s", actorProfile.Name), "/matches/"+result.MatchID)
	}
	if s.Bot != nil && targetProfile.IsBot {
		s.Bot.RequestReplyAsync(result.MatchID, BotEventMatch, targetProfile.UserID)
	}
}

func tableName(name string) *string { return &name }

func strPtr(s string) *string { return &s }
