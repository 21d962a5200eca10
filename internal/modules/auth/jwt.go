package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ppdb/admissions-backend/internal/config"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
)

// JWTManager handles JWT token operations.
type JWTManager struct {
	secretKey            []byte
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	issuer               string
}

// jwtClaims is the wire shape of a PPDB token. user_id and type are the
// only claims the core relies on (sub carries the email and is not read);
// role and school_id ride along for cheap
// middleware checks but are re-validated against the database on every
// request.
type jwtClaims struct {
	UserID   uint   `json:"user_id"`
	SchoolID *uint  `json:"school_id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Type     string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// UnmarshalJSON handles school_id arriving as a JSON number.
func (c *jwtClaims) UnmarshalJSON(data []byte) error {
	type Alias jwtClaims
	aux := &struct {
		SchoolID interface{} `json:"school_id"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.SchoolID != nil {
		switch v := aux.SchoolID.(type) {
		case float64:
			schoolID := uint(v)
			c.SchoolID = &schoolID
		case int:
			schoolID := uint(v)
			c.SchoolID = &schoolID
		case int64:
			schoolID := uint(v)
			c.SchoolID = &schoolID
		case uint:
			c.SchoolID = &v
		}
	}

	return nil
}

// NewJWTManager creates a new JWT manager from the configured TTLs.
func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{
		secretKey:            []byte(cfg.SecretKey),
		accessTokenDuration:  time.Duration(cfg.AccessTokenDuration) * time.Minute,
		refreshTokenDuration: time.Duration(cfg.RefreshTokenDuration) * time.Hour,
		issuer:               cfg.Issuer,
	}
}

// GenerateTokenPair issues a fresh access and refresh token for a user.
func (m *JWTManager) GenerateTokenPair(claims TokenClaims) (*TokenPair, error) {
	accessToken, err := m.generateToken(claims, "access", m.accessTokenDuration)
	if err != nil {
		return nil, err
	}

	refreshToken, err := m.generateToken(claims, "refresh", m.refreshTokenDuration)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.accessTokenDuration.Seconds()),
	}, nil
}

// GenerateAccessToken issues a single access token, used by Refresh.
func (m *JWTManager) GenerateAccessToken(claims TokenClaims) (string, error) {
	return m.generateToken(claims, "access", m.accessTokenDuration)
}

func (m *JWTManager) generateToken(claims TokenClaims, tokenType string, duration time.Duration) (string, error) {
	now := time.Now()
	expiresAt := now.Add(duration)

	jc := jwtClaims{
		UserID:   claims.UserID,
		SchoolID: claims.SchoolID,
		Role:     claims.Role,
		Email:    claims.Email,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(m.secretKey)
}

// ValidateToken parses and verifies a JWT of either type.
func (m *JWTManager) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrTokenMalformed
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &TokenClaims{
		UserID:   claims.UserID,
		SchoolID: claims.SchoolID,
		Role:     claims.Role,
		Email:    claims.Email,
		Type:     claims.Type,
	}, nil
}

// ValidateAccessToken validates a token and requires it be an access token.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != "access" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateRefreshToken validates a token and requires it be a refresh token.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GetAccessTokenDuration returns the access token lifetime in seconds.
func (m *JWTManager) GetAccessTokenDuration() int64 {
	return int64(m.accessTokenDuration.Seconds())
}
