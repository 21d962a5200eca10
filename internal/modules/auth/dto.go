package auth

import "time"

// RegisterRequest is the payload for self-service parent registration.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response payload.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // seconds until access token expires
	TokenType    string       `json:"token_type"`
	User         UserResponse `json:"user"`
}

// RefreshTokenRequest represents the refresh token request payload.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse represents the refresh token response payload.
// Refresh tokens are not rotated in the core spec, so only a new access
// token is returned.
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// ForgotPasswordRequest requests a reset token be issued for an email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest resets a password given a valid reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// VerifyEmailRequest carries the opaque email-verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ChangePasswordRequest is used by an already-authenticated user to change
// their own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserResponse represents the user data in responses.
type UserResponse struct {
	ID            uint       `json:"id"`
	SchoolID      *uint      `json:"school_id"`
	Role          string     `json:"role"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at"`
}

// TokenPair is a pair of access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenClaims represents the claims carried by a JWT. Role and SchoolID are
// embedded for efficiency but are re-validated against the database on
// every request per spec §4.2.
type TokenClaims struct {
	UserID   uint   `json:"user_id"`
	SchoolID *uint  `json:"school_id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Type     string `json:"type"` // "access" or "refresh"
}
