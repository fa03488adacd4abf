package models

type UserProfile struct {
	UserID     string   `dynamodbav:"userId" json:"userId"`
	Name       string   `dynamodbav:"name" json:"name"`
	Photos     []string `dynamodbav:"photos,omitempty" json:"photos,omitempty"`
	Gender     string   `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Age        int      `dynamodbav:"age,omitempty" json:"age,omitempty"`
	Bio        string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	IsBot      bool     `dynamodbav:"isBot" json:"isBot"`
	PushTokens []string `dynamodbav:"pushTokens,omitempty" json:"pushTokens,omitempty"`
	CreatedAt  string   `dynamodbav:"createdAt" json:"createdAt"`
	LastSeenAt string   `dynamodbav:"lastSeenAt,omitempty" json:"lastSeenAt,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// FirstPhoto returns the profile's primary photo URL, if any.
func (p *UserProfile) FirstPhoto() string {
	if len(p.Photos) > 0 {
		return p.Photos[0]
	}
	return ""
}
