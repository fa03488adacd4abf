package models

type SystemBroadcast struct {
	BroadcastID string   `dynamodbav:"broadcastId" json:"broadcastId"`
	Text        string   `dynamodbav:"text" json:"text"`
	CreatedAt   string   `dynamodbav:"createdAt" json:"createdAt"`
	SentTo      []string `dynamodbav:"sentTo,stringset,omitempty" json:"sentTo,omitempty"`
	SeenBy      []string `dynamodbav:"seenBy,stringset,omitempty" json:"seenBy,omitempty"`
	Deleted     bool     `dynamodbav:"deleted" json:"deleted"`
}

// SystemBroadcastsTable is the DynamoDB table name for system broadcasts
const SystemBroadcastsTable = "SystemBroadcasts"
