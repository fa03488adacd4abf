package services

import (
	"context"
	"fmt"
	"testing"

	"spark_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagePage(t *testing.T, matchID string, count int) []map[string]types.AttributeValue {
	t.Helper()
	items := make([]map[string]types.AttributeValue, 0, count)
	for i := 0; i < count; i++ {
		av, err := attributevalue.MarshalMap(models.Message{
			MatchID:   matchID,
			CreatedAt: fmt.Sprintf("2026-08-01T10:00:%02dZ#msg%d", i, i),
			SenderID:  "alice",
			Text:      "hi",
			Type:      models.MessageTypeUser,
		})
		require.NoError(t, err)
		items = append(items, av)
	}
	return items
}

func TestUnmatch_CascadeOrder(t *testing.T) {
	fake := newFakeDynamo(t)
	fake.stubQueryPage(messagePage(t, "alice#bob", 2), nil)
	svc := &MatchService{Dynamo: &DynamoService{Client: fake}}

	err := svc.Unmatch(context.Background(), "alice#bob", "alice", "bob")
	require.NoError(t, err)

	// Messages first, in one batch.
	require.Len(t, fake.batchWrites, 1)
	requests := fake.batchWrites[0].RequestItems[models.MessagesTable]
	assert.Len(t, requests, 2)
	for _, request := range requests {
		require.NotNil(t, request.DeleteRequest)
		assert.Equal(t, "alice#bob", avString(request.DeleteRequest.Key, "matchId"))
	}

	// Then both views, then the canonical record.
	require.Len(t, fake.deletes, 3)
	assert.Equal(t, models.UserMatchesTable, *fake.deletes[0].TableName)
	assert.Equal(t, "alice", avString(fake.deletes[0].Key, "userId"))
	assert.Equal(t, models.UserMatchesTable, *fake.deletes[1].TableName)
	assert.Equal(t, "bob", avString(fake.deletes[1].Key, "userId"))
	assert.Equal(t, models.MatchesTable, *fake.deletes[2].TableName)
	assert.Equal(t, "alice#bob", avString(fake.deletes[2].Key, "matchId"))
}

func TestUnmatch_PaginatesLongHistories(t *testing.T) {
	fake := newFakeDynamo(t)
	fake.stubQueryPage(messagePage(t, "alice#bob", cascadePageSize), nil)
	fake.stubQueryPage(messagePage(t, "alice#bob", 3), nil)
	svc := &MatchService{Dynamo: &DynamoService{Client: fake}}

	err := svc.Unmatch(context.Background(), "alice#bob", "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, fake.batchWrites, 2)
}

func TestUnmatch_RerunAfterInterruptionIsIdempotent(t *testing.T) {
	fake := newFakeDynamo(t)
	// No messages left: a previous attempt already cleared them.
	svc := &MatchService{Dynamo: &DynamoService{Client: fake}}

	err := svc.Unmatch(context.Background(), "alice#bob", "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, fake.batchWrites)
	assert.Len(t, fake.deletes, 3)
}

func TestUnmatch_SystemConversationRefused(t *testing.T) {
	fake := newFakeDynamo(t)
	svc := &MatchService{Dynamo: &DynamoService{Client: fake}}

	err := svc.Unmatch(context.Background(), models.SystemMatchID, "alice", "system")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, fake.deletes)
}

func TestGetMatch_NotFound(t *testing.T) {
	svc := &MatchService{Dynamo: &DynamoService{Client: newFakeDynamo(t)}}

	_, err := svc.GetMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMatchesForUser_RequiresUserID(t *testing.T) {
	svc := &MatchService{Dynamo: &DynamoService{Client: newFakeDynamo(t)}}

	_, err := svc.GetMatchesForUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}
