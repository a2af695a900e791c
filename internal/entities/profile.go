package entities

// Profile is the public profile of a user.
type Profile struct {
	ID              int64  `json:"id"`
	Email           string `json:"email,omitempty"`
	Nickname        string `json:"nickname"`
	Bio             string `json:"bio"`
	ProfileImageKey string `json:"profileImageKey,omitempty"`
	FollowerCount   int    `json:"followerCount"`
	FollowingCount  int    `json:"followingCount"`
	PostCount       int    `json:"postCount"`
	Following       bool   `json:"following"`
}

// UpdateProfileRequest carries the fields to change. Nil fields are kept.
type UpdateProfileRequest struct {
	Nickname        *string `json:"nickname,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	ProfileImageKey *string `json:"profileImageKey,omitempty"`
}

// Apply returns p with the requested changes merged in.
func (r UpdateProfileRequest) Apply(p Profile) Profile {
	if r.Nickname != nil {
		p.Nickname = *r.Nickname
	}
	if r.Bio != nil {
		p.Bio = *r.Bio
	}
	if r.ProfileImageKey != nil {
		p.ProfileImageKey = *r.ProfileImageKey
	}
	return p
}
