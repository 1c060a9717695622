package client

// TokenResponse is the body returned by the OAuth token endpoint.
type TokenResponse struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	Scope        string  `json:"scope"`
	CreatedAt    int64   `json:"created_at"`
	UserID       int64   `json:"user_id"`
	Username     string  `json:"username"`
}

// PhotoResult is one item of a photo listing page.
type PhotoResult struct {
	ID          string  `json:"id"`
	CreatedAt   string  `json:"created_at"`
	Description *string `json:"description,omitempty"`
	URLs        URLs    `json:"urls"`
	LikedByUser bool    `json:"liked_by_user"`
}

// URLs lists the renditions of a photo.
type URLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// UserResult is the part of a public user profile the client reads.
type UserResult struct {
	Username     string        `json:"username"`
	ProfileImage *ProfileImage `json:"profile_image"`
}

// ProfileImage holds avatar URLs in several sizes.
type ProfileImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// MeResult is the signed-in user's own profile.
type MeResult struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}
