package models

// MatchView is the per-user denormalized projection of a match, read by the
// match list screen. Each user exclusively owns writes to their own views;
// status fields mirror the canonical Match after fan-out settles.
type MatchView struct {
	UserID                 string `dynamodbav:"userId" json:"userId"`   // ✅ Partition Key (owner)
	MatchID                string `dynamodbav:"matchId" json:"matchId"` // ✅ Sort Key
	Status                 string `dynamodbav:"status,omitempty" json:"status,omitempty"`
	CounterpartID          string `dynamodbav:"counterpartId,omitempty" json:"counterpartId,omitempty"`
	CounterpartName        string `dynamodbav:"counterpartName,omitempty" json:"counterpartName,omitempty"`
	CounterpartPhoto       string `dynamodbav:"counterpartPhoto,omitempty" json:"counterpartPhoto,omitempty"`
	LastMessage            string `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt          string `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	UnreadCount            int    `dynamodbav:"unreadCount" json:"unreadCount"`
	IsSuperLike            bool   `dynamodbav:"isSuperLike" json:"isSuperLike"`
	SuperLikeInitiator     string `dynamodbav:"superLikeInitiator,omitempty" json:"superLikeInitiator,omitempty"`
	MatchDate              string `dynamodbav:"matchDate,omitempty" json:"matchDate,omitempty"`
	HasUnreadSystemMessage bool   `dynamodbav:"hasUnreadSystemMessage" json:"hasUnreadSystemMessage"` // system row only
}

// UserMatchesTable is the DynamoDB table name for per-user match views
const UserMatchesTable = "UserMatches"
