package models

// ✅ Swipe decisions
const (
	DecisionLike      = "like"
	DecisionDislike   = "dislike"
	DecisionSuperLike = "superlike"
)

// ✅ Canonical match statuses
const (
	StatusPending          = "pending"
	StatusSuperLikePending = "superlike_pending"
	StatusMatched          = "matched"
)

// ✅ Message types
const (
	MessageTypeUser           = "user"
	MessageTypeAudio          = "audio"
	MessageTypeViewOnce       = "view-once"
	MessageTypeViewOnceViewed = "view-once-viewed"
	MessageTypeSystem         = "system"
)

// SystemMatchID is the synthetic matchId used for broadcast conversations.
const SystemMatchID = "system"

// ✅ Preview strings shown on the match list screen
const (
	PreviewMatched          = "You matched! Say hi."
	PreviewPhoto            = "📷 Photo"
	PreviewPhotoOpened      = "📷 Photo opened"
	PreviewVoiceMessage     = "▶️ Voice message"
	PreviewBroadcastDeleted = "System message deleted"
)

// PlaceholderPhotoOpened replaces a view-once message body once opened.
const PlaceholderPhotoOpened = "Photo opened"

// IsValidDecision reports whether d is one of the three allowed swipe decisions.
func IsValidDecision(d string) bool {
	return d == DecisionLike || d == DecisionDislike || d == DecisionSuperLike
}
