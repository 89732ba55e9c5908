package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/pkg/events"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
	"github.com/Skotchmaster/admin_dashboard/pkg/tokens"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidToken       = "Invalid or expired token"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredSession       = errors.New("expired session")
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAuthenticationFailed
	OutcomeInvalidToken
	OutcomeExpiredSession
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthenticationFailed:
		return "authentication_failed"
	case OutcomeInvalidToken:
		return "invalid_token"
	case OutcomeExpiredSession:
		return "expired_session"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Err returns the sentinel error for a failed outcome, nil for success.
func (o Outcome) Err() error {
	switch o {
	case OutcomeAuthenticationFailed:
		return ErrAuthenticationFailed
	case OutcomeInvalidToken:
		return ErrInvalidToken
	case OutcomeExpiredSession:
		return ErrExpiredSession
	default:
		return nil
	}
}

type AuthResult struct {
	Outcome      Outcome
	Message      string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

func (r *AuthResult) OK() bool { return r != nil && r.Outcome == OutcomeSuccess }

func failed(o Outcome) *AuthResult {
	msg := MsgInvalidToken
	if o == OutcomeAuthenticationFailed {
		msg = MsgInvalidCredentials
	}
	return &AuthResult{Outcome: o, Message: msg}
}

type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	Roles(ctx context.Context, user *models.User) ([]string, error)
	Save(ctx context.Context, user *models.User) error
}

// AuthService issues access tokens and keeps one rotating refresh token per
// user. The refresh slot is read, compared and overwritten without locking:
// concurrent logins or refreshes for one user are last-writer-wins.
type AuthService struct {
	Store     CredentialStore
	Tokens    TokenConfig
	Publisher events.Publisher
	Now       func() time.Time
}

func NewAuthService(store CredentialStore, cfg TokenConfig, publisher events.Publisher) *AuthService {
	return &AuthService{Store: store, Tokens: cfg, Publisher: publisher, Now: time.Now}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) CreateAccessToken(claims tokens.AccessClaims, now time.Time) (string, time.Time, error) {
	exp := now.Add(AccessTokenTTL)

	claims.Issuer = s.Tokens.Issuer
	claims.Audience = nil
	if s.Tokens.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.Tokens.Audience}
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = nil
	claims.ExpiresAt = jwt.NewNumericDate(exp)

	token, err := tokens.Sign(claims, s.Tokens.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// rotateRefreshToken overwrites the user's refresh slot in memory; the caller persists it.
func rotateRefreshToken(user *models.User, now time.Time) (string, time.Time) {
	token := uuid.NewString()
	exp := now.Add(RefreshTokenTTL)
	user.RefreshToken = &token
	user.RefreshTokenExpiry = &exp
	return token, exp
}

// Login checks the credentials and issues an access token plus a new refresh
// token. If saving the refresh token fails, the result still carries both
// tokens and the error is returned alongside it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("login_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil || !s.Store.VerifyPassword(user, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return failed(OutcomeAuthenticationFailed), nil
	}

	roles, err := s.Store.Roles(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot load roles", "error", err)
		return nil, fmt.Errorf("load roles: %w", err)
	}

	now := s.now()
	claims := tokens.AccessClaims{
		Name:  user.UserName,
		Email: user.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.UserName,
			ID:      uuid.NewString(),
		},
	}
	accessToken, accessExp, err := s.CreateAccessToken(claims, now)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshExp := rotateRefreshToken(user, now)
	res := &AuthResult{
		Outcome:      OutcomeSuccess,
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: refreshToken,
		RefreshExp:   refreshExp,
	}

	if err := s.Store.Save(ctx, user); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot persist refresh token", "error", err)
		return res, fmt.Errorf("persist refresh token: %w", err)
	}

	s.publish(ctx, user, "user_logged_in")
	l.Info("login_successful", "user", user.UserName)
	return res, nil
}

// Refresh exchanges an access token (expired or not) plus the user's current
// refresh token for a new access token and a rotated refresh token. The new
// access token reuses the old token's claims, so role changes only show up
// after the next Login.
//
// A failed save behaves as in Login.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.ClaimsFromExpiredToken(accessToken, s.Tokens.Secret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid access token", "error", err)
		return failed(OutcomeInvalidToken), nil
	}
	if claims.Name == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "token has no name claim")
		return failed(OutcomeInvalidToken), nil
	}
	l = l.With("user", claims.Name)

	user, err := s.Store.FindByName(ctx, claims.Name)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("refresh_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, fmt.Errorf("find user by name: %w", err)
	}
	if user == nil {
		l.Warn("refresh_failed", "status", 401, "reason", "user not found")
		return failed(OutcomeInvalidToken), nil
	}
	if user.RefreshToken == nil || refreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token mismatch")
		return failed(OutcomeInvalidToken), nil
	}

	now := s.now()
	if user.RefreshTokenExpiry == nil || !user.RefreshTokenExpiry.After(now) {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token expired")
		return failed(OutcomeExpiredSession), nil
	}

	newAccess, accessExp, err := s.CreateAccessToken(*claims, now)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	newRefresh, refreshExp := rotateRefreshToken(user, now)
	res := &AuthResult{
		Outcome:      OutcomeSuccess,
		AccessToken:  newAccess,
		AccessExp:    accessExp,
		RefreshToken: newRefresh,
		RefreshExp:   refreshExp,
	}

	if err := s.Store.Save(ctx, user); err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot persist rotated refresh token", "error", err)
		return res, fmt.Errorf("persist refresh token: %w", err)
	}

	l.Info("refresh_successful")
	return res, nil
}

func (s *AuthService) publish(ctx context.Context, user *models.User, eventType string) {
	if s.Publisher == nil {
		return
	}
	ev := events.New(eventType, map[string]any{"userID": user.ID, "username": user.UserName})
	if err := s.Publisher.PublishEvent(ctx, fmt.Sprint(user.ID), ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "type", eventType, "error", err)
	}
}
