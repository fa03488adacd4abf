package models

type Message struct {
	MatchID       string `dynamodbav:"matchId" json:"matchId"`     // ✅ Partition Key
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"` // ✅ Sort Key (server-assigned)
	MessageID     string `dynamodbav:"messageId" json:"messageId"`
	SenderID      string `dynamodbav:"senderId" json:"senderId"`
	Text          string `dynamodbav:"text,omitempty" json:"text,omitempty"`
	ImageURL      string `dynamodbav:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePublicID string `dynamodbav:"imagePublicId,omitempty" json:"imagePublicId,omitempty"`
	AudioURL      string `dynamodbav:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	AudioDuration int    `dynamodbav:"audioDuration,omitempty" json:"audioDuration,omitempty"`
	Type          string `dynamodbav:"type" json:"type"` // user, audio, view-once, view-once-viewed, system
	IsEdited      bool   `dynamodbav:"isEdited" json:"isEdited"`
	EditedAt      string `dynamodbav:"editedAt,omitempty" json:"editedAt,omitempty"`
	Viewed        bool   `dynamodbav:"viewed" json:"viewed"` // view-once lifecycle flag
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"

// HasMedia reports whether the message carries an image or audio payload.
// Media messages cannot be edited.
func (m *Message) HasMedia() bool {
	return m.ImageURL != "" || m.ImagePublicID != "" || m.AudioURL != ""
}

// Preview returns the type-appropriate summary string shown as the match
// list's lastMessage for this message.
func (m *Message) Preview() string {
	switch m.Type {
	case MessageTypeViewOnce:
		return PreviewPhoto
	case MessageTypeViewOnceViewed:
		return PreviewPhotoOpened
	case MessageTypeAudio:
		return PreviewVoiceMessage
	default:
		if m.Text != "" {
			return m.Text
		}
		if m.ImageURL != "" {
			return PreviewPhoto
		}
		return ""
	}
}
