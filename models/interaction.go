package models

type Interaction struct {
	PK        string `dynamodbav:"PK" json:"PK"`               // ✅ Partition Key: "USER#actor"
	SK        string `dynamodbav:"SK" json:"SK"`               // ✅ Sort Key: "TARGET#target"
	ActorID   string `dynamodbav:"actorId" json:"actorId"`     // ✅ Who swiped
	TargetID  string `dynamodbav:"targetId" json:"targetId"`   // ✅ Who was swiped on
	Decision  string `dynamodbav:"decision" json:"decision"`   // ✅ like, dislike, superlike
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"` // ✅ First swipe timestamp
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt"` // ✅ Last overwrite timestamp
}

// ✅ Define table name
const InteractionsTable = "Interactions"

// ✅ Key prefixes for the Interactions table
const (
	InteractionPKPrefix = "USER#"
	InteractionSKPrefix = "TARGET#"
)

// InteractionPK builds the partition key for an actor's interactions.
func InteractionPK(actorID string) string {
	return InteractionPKPrefix + actorID
}

// InteractionSK builds the sort key for a swipe target.
func InteractionSK(targetID string) string {
	return InteractionSKPrefix + targetID
}
