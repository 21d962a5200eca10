package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Notifier is the narrow collaborator auth uses to emit user-facing
// notifications. Satisfied by notification.Service.
type Notifier interface {
	SendNotification(ctx context.Context, userID uint, notifType models.NotificationType, title, message string, data map[string]interface{}) error
}

// Service defines the interface for auth business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshTokenResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

type service struct {
	repo          Repository
	jwtManager    *JWTManager
	notifier      Notifier
	resetTokenTTL time.Duration
}

// NewService creates a new auth service. notifier may be nil in contexts
// (tests, seeding) where notification delivery is irrelevant.
func NewService(repo Repository, jwtManager *JWTManager, notifier Notifier, resetTokenTTL time.Duration) Service {
	return &service{
		repo:          repo,
		jwtManager:    jwtManager,
		notifier:      notifier,
		resetTokenTTL: resetTokenTTL,
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register creates a parent account pending email verification.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("email sudah terdaftar")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("gagal memproses password").Wrap(err)
	}

	token, err := randomToken()
	if err != nil {
		return nil, apperr.Internal("gagal membuat token verifikasi").Wrap(err)
	}

	user := &models.User{
		Role:                   models.RoleParent,
		Email:                  req.Email,
		PasswordHash:           hashed,
		FullName:               req.FullName,
		Phone:                  req.Phone,
		NationalID:             req.NationalID,
		EmailVerified:          false,
		EmailVerificationToken: &token,
		IsActive:               true,
	}
	if err := user.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Internal("gagal membuat akun").Wrap(err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Login authenticates a user and issues a fresh token pair.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.Unauthorized("email atau password salah").WithReason("invalid_credentials")
		}
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("email atau password salah").WithReason("invalid_credentials")
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("akun tidak aktif").WithReason("account_inactive")
	}
	if user.School != nil && !user.School.IsOperational() {
		return nil, apperr.Forbidden("sekolah tidak aktif").WithReason("school_inactive")
	}
	if !user.EmailVerified {
		return nil, apperr.Forbidden("email belum diverifikasi").WithReason("email_unverified")
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		return nil, apperr.Internal("gagal membuat token").Wrap(err)
	}

	now := time.Now()
	_ = s.repo.UpdateLastLogin(ctx, user.ID, now)
	user.UpdateLastLogin(now)

	return &LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
		TokenType:    "Bearer",
		User:         toUserResponse(user),
	}, nil
}

// Refresh issues a new access token from a valid refresh token. Refresh
// tokens are not rotated.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshTokenResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("refresh token tidak valid").Wrap(err)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("user tidak ditemukan")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("akun tidak aktif")
	}
	if user.School != nil && !user.School.IsOperational() {
		return nil, apperr.Unauthorized("sekolah tidak aktif")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(claimsFor(user))
	if err != nil {
		return nil, apperr.Internal("gagal membuat token").Wrap(err)
	}

	return &RefreshTokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   s.jwtManager.GetAccessTokenDuration(),
		TokenType:   "Bearer",
	}, nil
}

// VerifyEmail marks a user's email verified using the opaque token.
func (s *service) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.FindByEmailVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenUnknown) {
			return apperr.BadRequest("token verifikasi tidak dikenali")
		}
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}

	user.MarkEmailVerified()
	if err := s.repo.Save(ctx, user); err != nil {
		return apperr.Internal("gagal menyimpan verifikasi").Wrap(err)
	}
	return nil
}

// ForgotPassword always succeeds regardless of whether the email exists,
// to avoid leaking account existence.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return apperr.Internal("gagal membuat token reset").Wrap(err)
	}
	expires := time.Now().Add(s.resetTokenTTL)
	user.SetResetPasswordToken(token, expires)

	if err := s.repo.Save(ctx, user); err != nil {
		return apperr.Internal("gagal menyimpan token reset").Wrap(err)
	}

	if s.notifier != nil {
		_ = s.notifier.SendNotification(ctx, user.ID, models.NotificationPasswordResetReq,
			"Permintaan reset password",
			"Kami menerima permintaan untuk mereset password akun Anda.",
			map[string]interface{}{"token": token})
	}

	return nil
}

// ResetPassword verifies the reset token and expiry, then rehashes the
// password and clears the token.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.FindByResetPasswordToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenUnknown) {
			return apperr.BadRequest("token reset tidak dikenali")
		}
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}

	if user.ResetPasswordExpires == nil || time.Now().After(*user.ResetPasswordExpires) {
		return apperr.BadRequest("token reset sudah kedaluwarsa")
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("gagal memproses password").Wrap(err)
	}

	user.PasswordHash = hashed
	user.ClearResetPasswordToken()
	if err := s.repo.Save(ctx, user); err != nil {
		return apperr.Internal("gagal menyimpan password").Wrap(err)
	}
	return nil
}

// ChangePassword changes an authenticated user's password, requiring the
// old password.
func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return apperr.NotFound("user tidak ditemukan")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.Unauthorized("password lama salah").WithReason("password_mismatch")
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("gagal memproses password").Wrap(err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		return apperr.Internal("gagal menyimpan password").Wrap(err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound("user tidak ditemukan")
	}
	return user, nil
}

func claimsFor(user *models.User) TokenClaims {
	return TokenClaims{
		UserID:   user.ID,
		SchoolID: user.SchoolID,
		Role:     string(user.Role),
		Email:    user.Email,
	}
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		SchoolID:      user.SchoolID,
		Role:          string(user.Role),
		Email:         user.Email,
		FullName:      user.FullName,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		LastLoginAt:   user.LastLoginAt,
	}
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
