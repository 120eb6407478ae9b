// Package auth implements the devstack's password accounts, JWT access
// tokens and rotating refresh tokens.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidandcat/fridge/internal/apperr"
	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/db"
)

const (
	audience        = "authenticated"
	confirmAudience = "email_confirmation"
	confirmTTL      = 24 * time.Hour
	minPassword     = 6
	refreshTokenLen = 40
)

// Messages match the hosted identity provider so clients classify them the
// same way.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgEmailNotConfirmed  = "Email not confirmed"
	MsgAlreadyRegistered  = "User already registered"
	MsgWeakPassword       = "Password should be at least 6 characters."
	MsgInvalidRefresh     = "Invalid Refresh Token: Refresh Token Not Found"
)

type Claims struct {
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// User is the account shape returned by the auth endpoints.
type User struct {
	ID           string         `json:"id"`
	Aud          string         `json:"aud"`
	Role         string         `json:"role"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	ConfirmedAt  *time.Time     `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type Service struct {
	store          *db.Store
	secret         []byte
	accessTTL      time.Duration
	refreshTTL     time.Duration
	RequireConfirm bool
	log            *slog.Logger
	now            func() time.Time
}

func NewService(store *db.Store, cfg config.AuthConfig, log *slog.Logger) *Service {
	return &Service{
		store:          store,
		secret:         []byte(cfg.JWTSecret),
		accessTTL:      cfg.AccessTTL,
		refreshTTL:     cfg.RefreshTTL,
		RequireConfirm: cfg.RequireConfirm,
		log:            log,
		now:            time.Now,
	}
}

func toUser(u *db.User) User {
	meta := map[string]any{}
	if err := json.Unmarshal([]byte(u.Metadata), &meta); err != nil {
		meta = map[string]any{}
	}
	return User{
		ID:           u.ID,
		Aud:          audience,
		Role:         audience,
		Email:        u.Email,
		UserMetadata: meta,
		ConfirmedAt:  u.ConfirmedAt,
		CreatedAt:    u.CreatedAt,
	}
}

// SignUp creates an account. The session is nil when the account must be
// confirmed by email first.
func (s *Service) SignUp(email, password string, metadata map[string]any) (*User, *Session, error) {
	if len(password) < minPassword {
		return nil, nil, apperr.New(apperr.CodeValidation, MsgWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, apperr.BadRequest("invalid user metadata")
	}

	now := s.now().UTC()
	row := &db.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     string(meta),
		CreatedAt:    now,
	}
	if !s.RequireConfirm {
		row.ConfirmedAt = &now
	}
	if err := s.store.CreateUser(row); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, nil, apperr.Conflict(MsgAlreadyRegistered)
		}
		return nil, nil, err
	}
	s.log.Info("user signed up", "user_id", row.ID, "confirmed", row.ConfirmedAt != nil)

	u := toUser(row)
	if s.RequireConfirm {
		return &u, nil, nil
	}
	sess, err := s.issue(row)
	if err != nil {
		return nil, nil, err
	}
	return &u, sess, nil
}

func (s *Service) SignIn(email, password string) (*Session, error) {
	u, err := s.store.UserByEmail(email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.BadRequest(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.BadRequest(MsgInvalidCredentials)
	}
	if u.ConfirmedAt == nil {
		return nil, apperr.BadRequest(MsgEmailNotConfirmed)
	}
	return s.issue(u)
}

// Refresh trades a refresh token for a new session. The old token is
// consumed.
func (s *Service) Refresh(token string) (*Session, error) {
	uid, err := s.store.ConsumeRefreshToken(token, s.now())
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.BadRequest(MsgInvalidRefresh)
	}
	if err != nil {
		return nil, err
	}
	u, err := s.store.UserByID(uid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.BadRequest(MsgInvalidRefresh)
	}
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Logout revokes every refresh token of the user. Access tokens stay valid
// until they expire.
func (s *Service) Logout(userID string) error {
	return s.store.RevokeUserTokens(userID)
}

func (s *Service) User(userID string) (*User, error) {
	u, err := s.store.UserByID(userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	out := toUser(u)
	return &out, nil
}

func (s *Service) issue(u *db.User) (*Session, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	user := toUser(u)

	claims := Claims{
		Email:        u.Email,
		Role:         audience,
		UserMetadata: user.UserMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := gonanoid.New(refreshTokenLen)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.store.SaveRefreshToken(refresh, u.ID, now.Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL / time.Second),
		ExpiresAt:    exp.Unix(),
		RefreshToken: refresh,
		User:         user,
	}, nil
}

func (s *Service) parse(token, aud string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthorized("JWT expired")
		}
		return nil, apperr.Unauthorized("invalid JWT")
	}
	return claims, nil
}

// Verify checks an access token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims, err := s.parse(strings.TrimSpace(token), audience)
	if err != nil {
		return nil, err
	}
	if claims.Role != audience || claims.Subject == "" {
		return nil, apperr.Unauthorized("invalid JWT")
	}
	return claims, nil
}

// ConfirmationToken returns a signed token for the email confirmation
// link of userID.
func (s *Service) ConfirmationToken(userID, email string) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{confirmAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(confirmTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Confirm marks the account named by a confirmation token as confirmed.
func (s *Service) Confirm(token string) error {
	claims, err := s.parse(token, confirmAudience)
	if err != nil {
		return apperr.Forbidden("Email link is invalid or has expired")
	}
	if err := s.store.ConfirmUser(claims.Subject, s.now()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	return nil
}

// DisplayName picks a greeting name from the account metadata, falling
// back to the local part of the email.
func (u User) DisplayName() string {
	if name, ok := u.UserMetadata["full_name"].(string); ok && name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
