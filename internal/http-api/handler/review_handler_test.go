package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/permissions"
	"reviewdb/internal/http-api/service"
)

// MockReviewService mocks the ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(titleID int64, authorID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(titleID, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) UpdateReview(titleID, reviewID int64, actor permissions.Actor, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(titleID, reviewID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) DeleteReview(titleID, reviewID int64, actor permissions.Actor) error {
	args := m.Called(titleID, reviewID, actor)
	return args.Error(0)
}

func (m *MockReviewService) GetReview(titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) GetTitleReviews(titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedReviewResponse), args.Error(1)
}

// stubAuth injects an authenticated actor the way the real middleware does
func stubAuth(actor permissions.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", actor.ID)
		c.Set("username", actor.Username)
		c.Set("role", actor.Role)
		c.Set("privileged", actor.Privileged)
		c.Next()
	}
}

func newReviewRouter(svc service.ReviewService, actor permissions.Actor) *gin.Engine {
	router := setupRouter()
	v1 := router.Group("/api/v1")
	NewReviewHandler(svc).RegisterRoutes(v1, stubAuth(actor))
	return router
}

func TestCreateReviewEndpoint_Success(t *testing.T) {
	mockSvc := new(MockReviewService)
	actor := permissions.Actor{ID: "user-1", Username: "alice", Role: models.RoleUser}
	router := newReviewRouter(mockSvc, actor)

	mockSvc.On("CreateReview", int64(1), "user-1", dto.CreateReviewRequest{Text: "great", Score: 9}).
		Return(&dto.ReviewResponse{ID: 42, Author: "alice", Text: "great", Score: 9}, nil)

	w := postJSON(router, "/api/v1/titles/1/reviews", gin.H{"text": "great", "score": 9})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.ReviewResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "alice", resp.Author)
}

func TestCreateReviewEndpoint_ScoreOutOfRange(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := newReviewRouter(mockSvc, permissions.Actor{ID: "user-1", Role: models.RoleUser})

	w := postJSON(router, "/api/v1/titles/1/reviews", gin.H{"text": "x", "score": 11})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReviewEndpoint_Duplicate(t *testing.T) {
	mockSvc := new(MockReviewService)
	actor := permissions.Actor{ID: "user-1", Role: models.RoleUser}
	router := newReviewRouter(mockSvc, actor)

	mockSvc.On("CreateReview", int64(1), "user-1", mock.Anything).Return(nil, service.ErrDuplicateReview)

	w := postJSON(router, "/api/v1/titles/1/reviews", gin.H{"text": "again", "score": 5})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteReviewEndpoint_ForbiddenForStranger(t *testing.T) {
	mockSvc := new(MockReviewService)
	actor := permissions.Actor{ID: "user-2", Username: "bob", Role: models.RoleUser}
	router := newReviewRouter(mockSvc, actor)

	mockSvc.On("DeleteReview", int64(1), int64(5), actor).Return(service.ErrForbidden)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/titles/1/reviews/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReviewEndpoint_ModeratorAllowed(t *testing.T) {
	mockSvc := new(MockReviewService)
	actor := permissions.Actor{ID: "mod-1", Username: "mod", Role: models.RoleModerator}
	router := newReviewRouter(mockSvc, actor)

	mockSvc.On("DeleteReview", int64(1), int64(5), actor).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/titles/1/reviews/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListReviewsEndpoint_Public(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupRouter()
	v1 := router.Group("/api/v1")
	// reads never pass through auth, so a rejecting stub proves it
	NewReviewHandler(mockSvc).RegisterRoutes(v1, func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})

	mockSvc.On("GetTitleReviews", int64(1), 1, 20).Return(&dto.PaginatedReviewResponse{
		Data:  []dto.ReviewResponse{{ID: 1, Score: 8}},
		Page:  1,
		Total: 1,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles/1/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetReviewEndpoint_BadID(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := newReviewRouter(mockSvc, permissions.Actor{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles/abc/reviews/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
