package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reviewdb/internal/codes"
	"reviewdb/internal/config"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/repository"
	"reviewdb/internal/notify"
)

var (
	ErrUsernameReserved = errors.New("username is reserved")
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrNameInUse        = errors.New("username already in use")
	ErrEmailInUse       = errors.New("email already in use")
	ErrInvalidCode      = errors.New("invalid confirmation code")
	ErrCodeThrottled    = errors.New("confirmation code requested too recently")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUserNotFound     = errors.New("user not found")
)

// reservedUsername cannot be claimed: /users/me addresses the caller.
const reservedUsername = "me"

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// Claims is the JWT payload issued on successful code exchange.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string      `json:"user_id"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	Privileged bool        `json:"privileged"`
}

type AuthService interface {
	// Signup creates (or reuses) a pending identity and dispatches a
	// confirmation code to its email.
	Signup(username, email string) error
	// ExchangeCode turns a valid confirmation code into a bearer token.
	ExchangeCode(username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	codeStore codes.Store
	notifier  notify.Notifier
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codeStore codes.Store,
	notifier notify.Notifier,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		codeStore: codeStore,
		notifier:  notifier,
		jwtSecret: cfg.JWTSecret,
		jwtExpiry: cfg.JWTExpiry, // 24 hours
	}
}

// validateUsername enforces the reserved name and the allowed alphabet.
// Shared with the admin-side user creation path.
func validateUsername(username string) error {
	if strings.EqualFold(username, reservedUsername) {
		return ErrUsernameReserved
	}
	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// Signup: Pending state of the flow. Re-requesting signup for an exactly
// matching existing (username, email) pair is idempotent and re-issues the
// code; a partial collision is a conflict naming the taken field.
func (s *authService) Signup(username, email string) error {
	ctx := context.Background()

	if err := validateUsername(username); err != nil {
		return err
	}
	email = strings.TrimSpace(strings.ToLower(email))

	existing, err := s.userRepo.FindByUsername(username)
	switch {
	case err == nil:
		if existing.Email != email {
			return ErrNameInUse
		}
		// exact match: reuse the identity, fall through to issue a code
	case isNotFound(err):
		if _, emailErr := s.userRepo.FindByEmail(email); emailErr == nil {
			return ErrEmailInUse
		}
		user := &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
		if createErr := s.userRepo.Create(user); createErr != nil {
			// a concurrent signup may have won the uniqueness race
			if repository.IsUniqueViolation(createErr, "") {
				return ErrNameInUse
			}
			return createErr
		}
	default:
		return err
	}

	code, err := s.codeStore.Issue(ctx, username, email)
	if err != nil {
		if errors.Is(err, codes.ErrResendThrottled) {
			return ErrCodeThrottled
		}
		return err
	}

	return s.notifier.SendConfirmationCode(ctx, email, username, code)
}

// ExchangeCode: Pending -> Verified transition. The code is consumed on
// success; re-exchange fails with ErrInvalidCode.
func (s *authService) ExchangeCode(username, code string) (string, error) {
	ctx := context.Background()

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if isNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := s.codeStore.Verify(ctx, username, code); err != nil {
		if errors.Is(err, codes.ErrCodeInvalid) {
			return "", ErrInvalidCode
		}
		return "", err
	}

	return s.generateToken(user)
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Privileged: user.IsPrivileged(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
