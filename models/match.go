package models

// Match is the canonical record of a pairwise relationship. It is jointly
// written by both participants, so every mutation goes through a
// transactional read-modify-write guarded by Version.
type Match struct {
	MatchID            string `dynamodbav:"matchId" json:"matchId"`
	User1ID            string `dynamodbav:"user1Id" json:"user1Id"` // lexicographically smaller id
	User2ID            string `dynamodbav:"user2Id" json:"user2Id"`
	Status             string `dynamodbav:"status" json:"status"` // pending, superlike_pending, matched
	User1Action        string `dynamodbav:"user1Action,omitempty" json:"user1Action,omitempty"`
	User2Action        string `dynamodbav:"user2Action,omitempty" json:"user2Action,omitempty"`
	MatchDate          string `dynamodbav:"matchDate,omitempty" json:"matchDate,omitempty"` // set once, on entering matched
	IsSuperLike        bool   `dynamodbav:"isSuperLike" json:"isSuperLike"`
	SuperLikeInitiator string `dynamodbav:"superLikeInitiator,omitempty" json:"superLikeInitiator,omitempty"`
	Version            int64  `dynamodbav:"version" json:"version"`
	CreatedAt          string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt          string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// MatchesTable is the DynamoDB table name for canonical matches
const MatchesTable = "Matches"

// MatchIDFor derives the canonical matchId for a pair of users: the two ids
// sorted lexicographically and joined, so both sides compute the same key.
func MatchIDFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "#" + b
}

// SortedPair returns the pair in canonical (user1, user2) order.
func SortedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// ActionFor returns the stored action slot for the given participant.
func (m *Match) ActionFor(userID string) string {
	if userID == m.User1ID {
		return m.User1Action
	}
	return m.User2Action
}

// OtherUser returns the counterpart of userID in this match.
func (m *Match) OtherUser(userID string) string {
	if userID == m.User1ID {
		return m.User2ID
	}
	return m.User1ID
}

// HasUser reports whether userID participates in this match.
func (m *Match) HasUser(userID string) bool {
	return userID == m.User1ID || userID == m.User2ID
}

func isPositive(decision string) bool {
	return decision == DecisionLike || decision == DecisionSuperLike
}

// DeriveMatchStatus computes the canonical status from the two most recent
// per-user decisions. counterpartDecision may be empty when the other side
// has never swiped.
//
//	dislike   / any               -> pending
//	like      / none, dislike     -> pending
//	like      / like, superlike   -> matched
//	superlike / none, dislike     -> superlike_pending
//	superlike / like, superlike   -> matched
func DeriveMatchStatus(actorDecision, counterpartDecision string) string {
	if isPositive(actorDecision) && isPositive(counterpartDecision) {
		return StatusMatched
	}
	if actorDecision == DecisionSuperLike {
		return StatusSuperLikePending
	}
	return StatusPending
}
