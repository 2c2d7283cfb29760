package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewdb/internal/codes"
	"reviewdb/internal/config"
	"reviewdb/internal/http-api/models"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(username string) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(search, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// MockCodeStore mocks the confirmation code store
type MockCodeStore struct {
	mock.Mock
}

func (m *MockCodeStore) Issue(ctx context.Context, username, email string) (string, error) {
	args := m.Called(ctx, username, email)
	return args.String(0), args.Error(1)
}

func (m *MockCodeStore) Verify(ctx context.Context, username, code string) error {
	args := m.Called(ctx, username, code)
	return args.Error(0)
}

// MockNotifier mocks the email notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmationCode(ctx context.Context, toEmail, username, code string) error {
	args := m.Called(ctx, toEmail, username, code)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-key-at-least-32-chars-long",
		JWTExpiry: 24 * time.Hour,
	}
}

func newTestAuthService(userRepo *MockUserRepository, store *MockCodeStore, notifier *MockNotifier) AuthService {
	return NewAuthService(userRepo, store, notifier, testConfig())
}

func TestSignup_NewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, store, notifier)

	userRepo.On("FindByUsername", "alice").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByEmail", "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)
	store.On("Issue", mock.Anything, "alice", "alice@example.com").Return("123456", nil)
	notifier.On("SendConfirmationCode", mock.Anything, "alice@example.com", "alice", "123456").Return(nil)

	err := svc.Signup("alice", "alice@example.com")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSignup_ReservedUsername(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockCodeStore), new(MockNotifier))

	err := svc.Signup("me", "me@example.com")
	assert.ErrorIs(t, err, ErrUsernameReserved)

	// case-insensitive
	err = svc.Signup("Me", "me@example.com")
	assert.ErrorIs(t, err, ErrUsernameReserved)
}

func TestSignup_InvalidUsername(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockCodeStore), new(MockNotifier))

	err := svc.Signup("bad name!", "bad@example.com")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestSignup_UsernameTakenByOtherEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockCodeStore), new(MockNotifier))

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		Username: "alice",
		Email:    "other@example.com",
	}, nil)

	err := svc.Signup("alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrNameInUse)
}

func TestSignup_EmailTakenByOtherUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockCodeStore), new(MockNotifier))

	userRepo.On("FindByUsername", "alice").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByEmail", "taken@example.com").Return(&models.User{
		Username: "bob",
		Email:    "taken@example.com",
	}, nil)

	err := svc.Signup("alice", "taken@example.com")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignup_RepeatIsIdempotent(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, store, notifier)

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		Username: "alice",
		Email:    "alice@example.com",
	}, nil)
	store.On("Issue", mock.Anything, "alice", "alice@example.com").Return("654321", nil)
	notifier.On("SendConfirmationCode", mock.Anything, "alice@example.com", "alice", "654321").Return(nil)

	err := svc.Signup("alice", "alice@example.com")

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSignup_Throttled(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	svc := newTestAuthService(userRepo, store, new(MockNotifier))

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		Username: "alice",
		Email:    "alice@example.com",
	}, nil)
	store.On("Issue", mock.Anything, "alice", "alice@example.com").Return("", codes.ErrResendThrottled)

	err := svc.Signup("alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrCodeThrottled)
}

func TestExchangeCode_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	svc := newTestAuthService(userRepo, store, new(MockNotifier))

	user := &models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
	}
	userRepo.On("FindByUsername", "alice").Return(user, nil)
	store.On("Verify", mock.Anything, "alice", "123456").Return(nil)

	token, err := svc.ExchangeCode("alice", "123456")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.False(t, claims.Privileged)
}

func TestExchangeCode_UnknownUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockCodeStore), new(MockNotifier))

	userRepo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ExchangeCode("ghost", "123456")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExchangeCode_WrongCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	svc := newTestAuthService(userRepo, store, new(MockNotifier))

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		ID:       "user-1",
		Username: "alice",
	}, nil)
	store.On("Verify", mock.Anything, "alice", "000000").Return(codes.ErrCodeInvalid)

	_, err := svc.ExchangeCode("alice", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestExchangeCode_AdminClaimsArePrivileged(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	svc := newTestAuthService(userRepo, store, new(MockNotifier))

	userRepo.On("FindByUsername", "root").Return(&models.User{
		ID:       "user-2",
		Username: "root",
		Role:     models.RoleAdmin,
	}, nil)
	store.On("Verify", mock.Anything, "root", "123456").Return(nil)

	token, err := svc.ExchangeCode("root", "123456")
	assert.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.Privileged)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testConfig()
	svc := NewAuthService(new(MockUserRepository), new(MockCodeStore), new(MockNotifier), cfg)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
		UserID:   "user-1",
		Username: "alice",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	assert.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockCodeStore), new(MockNotifier))

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "user-1",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("a-completely-different-signing-secret"))
	assert.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockCodeStore), new(MockNotifier))

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
