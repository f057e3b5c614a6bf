package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aryabov/movify/internal/hash"
	"github.com/aryabov/movify/internal/logging"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/perms"
	"github.com/aryabov/movify/internal/repo"
	"github.com/aryabov/movify/internal/tokens"
)

const minPasswordLen = 8

// storeTimeout bounds the user re-fetch on the authentication path so a
// request never suspends indefinitely on the store.
const storeTimeout = 3 * time.Second

type AuthService struct {
	Repo      *repo.GormRepo
	Perms     *perms.Table
	JWTSecret []byte
	TokenTTL  time.Duration
}

type LoginResult struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        models.PublicUser
}

type RegisterInput struct {
	Username           string
	Password           string
	FullName           string
	Role               string
	MustChangePassword *bool
}

// Identity is the resolved caller of an authenticated request. It is built
// from the current stored record, not from the token snapshot, so permission
// changes apply on the next request.
type Identity struct {
	ID                 uint
	Username           string
	FullName           string
	Role               string
	IsAdmin            bool
	IsModerator        bool
	MustChangePassword bool
	Perms              []string
}

// EffectivePerms prefers the stored per-user snapshot over the role default.
func (s *AuthService) EffectivePerms(u *models.User) []string {
	if len(u.Perms) > 0 {
		out := make([]string, len(u.Perms))
		copy(out, u.Perms)
		return out
	}
	return s.Perms.ForRole(u.Role)
}

func (s *AuthService) PublicUser(u *models.User) models.PublicUser {
	role := strings.ToLower(u.Role)
	return models.PublicUser{
		ID:                 u.ID,
		Username:           u.Username,
		FullName:           u.FullName,
		Role:               role,
		IsAdmin:            role == perms.RoleAdmin,
		IsModerator:        role == perms.RoleAdmin || role == perms.RoleModerator,
		MustChangePassword: u.MustChangePassword,
		Perms:              s.EffectivePerms(u),
	}
}

func (s *AuthService) issueToken(u *models.User) (string, error) {
	pub := s.PublicUser(u)
	now := time.Now()
	claims := tokens.AccessClaims{
		Username:           pub.Username,
		FullName:           pub.FullName,
		Role:               pub.Role,
		IsAdmin:            pub.IsAdmin,
		IsModerator:        pub.IsModerator,
		MustChangePassword: pub.MustChangePassword,
		PasswordVersion:    u.PasswordVersion,
		Perms:              pub.Perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	}
	return tokens.SignAccessToken(claims, s.JWTSecret)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401)
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   s.TokenTTL,
		User:        s.PublicUser(user),
	}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrValidation
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !perms.KnownRole(role) {
		role = perms.RoleUser
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	mustChange := true
	if in.MustChangePassword != nil {
		mustChange = *in.MustChangePassword
	}

	user := models.User{
		Username:           username,
		PasswordHash:       pwHash,
		FullName:           strings.TrimSpace(in.FullName),
		Role:               role,
		MustChangePassword: mustChange,
		PasswordVersion:    1,
		Perms:              s.Perms.ForRole(role),
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			l.Warn("register_failed", "status", 409, "username", username)
			return nil, err
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "role", role)
	pub := s.PublicUser(&user)
	return &pub, nil
}

// ChangePassword is the only path that increments the fencing counter; every
// token issued before the change becomes permanently invalid.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		l.Error("change_password_failed", "status", 500, "error", err)
		return "", err
	}
	if !hash.CheckPassword(user.PasswordHash, currentPassword) {
		l.Warn("change_password_failed", "status", 400)
		return "", ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLen {
		return "", ErrValidation
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return "", err
	}
	if err := s.Repo.RotatePassword(ctx, userID, newHash); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return "", err
	}

	// Reload so the token embeds the bumped counter.
	user, err = s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return "", err
	}

	l.Info("password_changed", "password_version", user.PasswordVersion)
	return token, nil
}

// Authenticate verifies a presented token and resolves the caller against
// the current stored record.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := tokens.AccessClaimsFromToken(rawToken, s.JWTSecret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}

	fetchCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.Repo.GetUserByID(fetchCtx, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if claims.PasswordVersion != user.PasswordVersion {
		return nil, ErrStaleToken
	}

	pub := s.PublicUser(user)
	return &Identity{
		ID:                 pub.ID,
		Username:           pub.Username,
		FullName:           pub.FullName,
		Role:               pub.Role,
		IsAdmin:            pub.IsAdmin,
		IsModerator:        pub.IsModerator,
		MustChangePassword: pub.MustChangePassword,
		Perms:              pub.Perms,
	}, nil
}

// Authorize is a pure check over the resolved identity. Admin passes every
// check; otherwise all required permissions must be granted.
func (s *AuthService) Authorize(ident *Identity, required ...string) error {
	if ident == nil {
		return ErrUnauthorized
	}
	if ident.Role == perms.RoleAdmin {
		return nil
	}
	granted := make(map[string]struct{}, len(ident.Perms))
	for _, p := range ident.Perms {
		granted[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := granted[p]; !ok {
			return &PermissionError{
				Role:     ident.Role,
				Required: required,
				Granted:  ident.Perms,
			}
		}
	}
	return nil
}
