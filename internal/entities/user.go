package entities

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest exchanges credentials for a session token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is an authenticated login.
type Session struct {
	Token  string `json:"token" yaml:"token"`
	UserID int64  `json:"userId" yaml:"user_id"`
	Email  string `json:"email" yaml:"email"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
