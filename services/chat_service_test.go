package services

import (
	"context"
	"testing"

	"spark_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatService(fake *fakeDynamoClient) *ChatService {
	dynamo := &DynamoService{Client: fake}
	return &ChatService{
		Dynamo:     dynamo,
		Profiles:   &UserProfileService{Dynamo: dynamo},
		Broadcasts: &BroadcastService{Dynamo: dynamo, Profiles: &UserProfileService{Dynamo: dynamo}},
	}
}

func stubMatch(fake *fakeDynamoClient, matchID, user1, user2, status string) {
	fake.stubItem(models.MatchesTable, map[string]string{"matchId": matchID}, models.Match{
		MatchID: matchID,
		User1ID: user1,
		User2ID: user2,
		Status:  status,
		Version: 1,
	})
}

func TestAppendMessage_TextMessage(t *testing.T) {
	fake := newFakeDynamo(t)
	stubMatch(fake, "alice#bob", "alice", "bob", models.StatusMatched)
	stubProfile(fake, "bob", "Bob")
	svc := newTestChatService(fake)

	stored, err := svc.AppendMessage(context.Background(), models.Message{
		MatchID:  "alice#bob",
		SenderID: "alice",
		Text:     "hey there",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MessageTypeUser, stored.Type)
	assert.NotEmpty(t, stored.MessageID)
	assert.NotEmpty(t, stored.CreatedAt, "timestamp is server-assigned")

	require.Len(t, fake.transacts, 1)
	items := fake.transacts[0].TransactItems
	require.Len(t, items, 3)

	put := items[0].Put
	require.NotNil(t, put)
	assert.Equal(t, models.MessagesTable, *put.TableName)
	assert.Equal(t, "hey there", avString(put.Item, "text"))

	senderView := items[1].Update
	assert.Equal(t, "alice", avString(senderView.Key, "userId"))
	assert.NotContains(t, *senderView.UpdateExpression, "ADD unreadCount",
		"sender has read their own message")
	assert.Equal(t, "hey there", avString(senderView.ExpressionAttributeValues, ":lm"))

	recipientView := items[2].Update
	assert.Equal(t, "bob", avString(recipientView.Key, "userId"))
	assert.Contains(t, *recipientView.UpdateExpression, "ADD unreadCount :one")
	assert.Equal(t, "1", avNumber(recipientView.ExpressionAttributeValues, ":one"))
}

func TestAppendMessage_Previews(t *testing.T) {
	cases := []struct {
		name    string
		message models.Message
		preview string
	}{
		{
			name:    "voice note",
			message: models.Message{MatchID: "alice#bob", SenderID: "alice", AudioURL: "s3://a.ogg", AudioDuration: 8},
			preview: models.PreviewVoiceMessage,
		},
		{
			name:    "photo",
			message: models.Message{MatchID: "alice#bob", SenderID: "alice", ImageURL: "s3://p.jpg"},
			preview: models.PreviewPhoto,
		},
		{
			name:    "view-once photo",
			message: models.Message{MatchID: "alice#bob", SenderID: "alice", ImageURL: "s3://p.jpg", Type: models.MessageTypeViewOnce},
			preview: models.PreviewPhoto,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeDynamo(t)
			stubMatch(fake, "alice#bob", "alice", "bob", models.StatusMatched)
			stubProfile(fake, "bob", "Bob")
			svc := newTestChatService(fake)

			_, err := svc.AppendMessage(context.Background(), tc.message)
			require.NoError(t, err)

			recipientView := fake.transacts[0].TransactItems[2].Update
			assert.Equal(t, tc.preview, avString(recipientView.ExpressionAttributeValues, ":lm"))
		})
	}
}

func TestAppendMessage_Validation(t *testing.T) {
	svc := newTestChatService(newFakeDynamo(t))

	t.Run("empty message", func(t *testing.T) {
		_, err := svc.AppendMessage(context.Background(), models.Message{MatchID: "m", SenderID: "alice"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("view-once needs image", func(t *testing.T) {
		_, err := svc.AppendMessage(context.Background(), models.Message{
			MatchID: "m", SenderID: "alice", Text: "x", Type: models.MessageTypeViewOnce,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown match", func(t *testing.T) {
		_, err := svc.AppendMessage(context.Background(), models.Message{
			MatchID: "nope", SenderID: "alice", Text: "x",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("sender outside the match", func(t *testing.T) {
		fake := newFakeDynamo(t)
		stubMatch(fake, "alice#bob", "alice", "bob", models.StatusMatched)
		svc := newTestChatService(fake)

		_, err := svc.AppendMessage(context.Background(), models.Message{
			MatchID: "alice#bob", SenderID: "mallory", Text: "hi",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestEditMessage(t *testing.T) {
	t.Run("sets edit markers", func(t *testing.T) {
		fake := newFakeDynamo(t)
		svc := newTestChatService(fake)

		err := svc.EditMessage(context.Background(), "alice#bob", "ts1", "alice", "fixed typo")
		require.NoError(t, err)

		require.Len(t, fake.updates, 1)
		update := fake.updates[0]
		assert.Contains(t, *update.UpdateExpression, "isEdited")
		assert.Contains(t, *update.ConditionExpression, "attribute_not_exists(imageUrl)")
		assert.Equal(t, "alice", avString(update.ExpressionAttributeValues, ":sender"))
	})

	t.Run("media or foreign messages are rejected", func(t *testing.T) {
		fake := newFakeDynamo(t)
		fake.updateErrAt = 1
		fake.updateErr = conditionFailedUpdateErr()
		svc := newTestChatService(fake)

		err := svc.EditMessage(context.Background(), "alice#bob", "ts1", "mallory", "hacked")
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestDeleteMessage_OnlySender(t *testing.T) {
	fake := newFakeDynamo(t)
	fake.transactErrs = []error{conditionFailedTransactErr()}
	svc := newTestChatService(fake)

	err := svc.DeleteMessage(context.Background(), "alice#bob", "ts1", "mallory")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMarkConversationOpened(t *testing.T) {
	t.Run("resets unread count", func(t *testing.T) {
		fake := newFakeDynamo(t)
		svc := newTestChatService(fake)

		err := svc.MarkConversationOpened(context.Background(), "alice", "alice#bob")
		require.NoError(t, err)

		require.Len(t, fake.updates, 1)
		update := fake.updates[0]
		assert.Equal(t, models.UserMatchesTable, *update.TableName)
		assert.Contains(t, *update.UpdateExpression, "unreadCount = :zero")
		assert.Equal(t, "0", avNumber(update.ExpressionAttributeValues, ":zero"))
	})

	t.Run("idempotent", func(t *testing.T) {
		fake := newFakeDynamo(t)
		svc := newTestChatService(fake)

		require.NoError(t, svc.MarkConversationOpened(context.Background(), "alice", "alice#bob"))
		require.NoError(t, svc.MarkConversationOpened(context.Background(), "alice", "alice#bob"))

		// Both writes set zero; counters can never go negative.
		for _, update := range fake.updates {
			assert.Equal(t, "0", avNumber(update.ExpressionAttributeValues, ":zero"))
		}
	})

	t.Run("system conversation clears the broadcast flag", func(t *testing.T) {
		fake := newFakeDynamo(t)
		svc := newTestChatService(fake)

		err := svc.MarkConversationOpened(context.Background(), "alice", models.SystemMatchID)
		require.NoError(t, err)

		update := fake.updates[0]
		assert.Contains(t, *update.UpdateExpression, "hasUnreadSystemMessage = :false")
	})
}

func TestGetMessages_RequiresMatchID(t *testing.T) {
	svc := newTestChatService(newFakeDynamo(t))
	_, err := svc.GetMessages(context.Background(), "", 50)
	assert.ErrorIs(t, err, ErrValidation)
}
