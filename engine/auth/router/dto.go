package authrouter

import (
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
)

// TokenRequest accepts the OAuth2 password form (username/password) or the
// equivalent JSON body (email/password).
type TokenRequest struct {
	Email    string `json:"email"    form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is returned unwrapped so OAuth2 clients can read it directly.
type TokenResponse struct {
	AccessToken string    `json:"access_token" example:"dd_3q9Yw..."`
	TokenType   string    `json:"token_type"   example:"bearer"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MeResponse is the caller's identity plus the shell routes it may open.
type MeResponse struct {
	User   *model.User `json:"user"`
	Role   model.Role  `json:"role"   example:"reviewer"`
	Routes []string    `json:"routes" example:"/applications,/customers"`
}
