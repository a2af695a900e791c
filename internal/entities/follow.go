package entities

// FollowUser is a user as shown in follower lists and recommendations.
type FollowUser struct {
	ID              int64  `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageKey string `json:"profileImageKey,omitempty"`
	Following       bool   `json:"following"`
	FollowsYou      bool   `json:"followsYou"`
}
