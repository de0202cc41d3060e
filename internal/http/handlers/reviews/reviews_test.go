package reviews

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListReviews(ctx context.Context, titleID int64, page models.Page) (models.PageResult[models.Review], error) {
	args := m.Called(ctx, titleID, page)
	return args.Get(0).(models.PageResult[models.Review]), args.Error(1)
}

func (m *ServiceMock) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	res, _ := args.Get(0).(*models.Review)
	return res, args.Error(1)
}

func (m *ServiceMock) CreateReview(ctx context.Context, actor *models.User, titleID int64, in models.ReviewInput) (*models.Review, error) {
	args := m.Called(ctx, actor, titleID, in)
	res, _ := args.Get(0).(*models.Review)
	return res, args.Error(1)
}

func (m *ServiceMock) UpdateReview(ctx context.Context, actor *models.User, titleID, reviewID int64, patch models.ReviewPatch) (*models.Review, error) {
	args := m.Called(ctx, actor, titleID, reviewID, patch)
	res, _ := args.Get(0).(*models.Review)
	return res, args.Error(1)
}

func (m *ServiceMock) DeleteReview(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	return m.Called(ctx, actor, titleID, reviewID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var (
	pagination = config.Pagination{PageSize: 10, MaxPageSize: 100}
	alice      = &models.User{ID: 1, Username: "alice", Role: models.RoleUser}
	moder      = &models.User{ID: 2, Username: "moder", Role: models.RoleModerator}
	bob        = &models.User{ID: 3, Username: "bob", Role: models.RoleUser}
)

func request(method, body string, params map[string]string, actor *models.User) *http.Request {
	req := httptest.NewRequest(method, "/v1/titles/1/reviews", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if actor != nil {
		ctx = middlewarectx.WithUser(ctx, actor)
	}
	return req.WithContext(ctx)
}

func textPtr(s string) *string { return &s }

func TestList(t *testing.T) {
	review := models.Review{ID: 5, Author: "alice", Text: "great", Score: 9, PubDate: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	tests := []struct {
		name     string
		params   map[string]string
		setup    func(*ServiceMock)
		wantCode int
		wantBody string
	}{
		{
			name:   "reviews of title",
			params: map[string]string{"title_id": "1"},
			setup: func(m *ServiceMock) {
				m.On("ListReviews", mock.Anything, int64(1), models.Page{Number: 1, Size: 10}).
					Return(models.PageResult[models.Review]{Items: []models.Review{review}, Count: 1}, nil).Once()
			},
			wantCode: http.StatusOK,
			wantBody: `{"id":5,"author":"alice","text":"great","score":9,"pub_date":"2024-01-02T03:04:05Z"}`,
		},
		{
			name:   "unknown title",
			params: map[string]string{"title_id": "9"},
			setup: func(m *ServiceMock) {
				m.On("ListReviews", mock.Anything, int64(9), mock.Anything).
					Return(models.PageResult[models.Review]{}, fmt.Errorf("reviews.ListReviews: %w", storage.ErrNotFound)).Once()
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setup(svc)
			h := New(newNoopLogger(), svc, pagination)

			rr := httptest.NewRecorder()
			h.List(rr, request(http.MethodGet, "", tt.params, nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestCreate(t *testing.T) {
	params := map[string]string{"title_id": "1"}
	input := models.ReviewInput{Text: "great", Score: 9}

	tests := []struct {
		name     string
		body     string
		actor    *models.User
		setup    func(*ServiceMock)
		wantCode int
		wantBody string
	}{
		{
			name:  "created",
			body:  `{"text":"great","score":9}`,
			actor: alice,
			setup: func(m *ServiceMock) {
				m.On("CreateReview", mock.Anything, alice, int64(1), input).
					Return(&models.Review{ID: 5, Author: "alice", Text: "great", Score: 9}, nil).Once()
			},
			wantCode: http.StatusCreated,
			wantBody: `"author":"alice"`,
		},
		{
			name:     "score out of range",
			body:     `{"text":"great","score":11}`,
			actor:    alice,
			setup:    func(_ *ServiceMock) {},
			wantCode: http.StatusBadRequest,
			wantBody: `"score":[`,
		},
		{
			name:     "missing text",
			body:     `{"score":5}`,
			actor:    alice,
			setup:    func(_ *ServiceMock) {},
			wantCode: http.StatusBadRequest,
			wantBody: `"text":["This field is required."]`,
		},
		{
			name: "anonymous",
			body: `{"text":"great","score":9}`,
			setup: func(m *ServiceMock) {
				m.On("CreateReview", mock.Anything, (*models.User)(nil), int64(1), input).
					Return(nil, services.ErrUnauthenticated).Once()
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:  "second review",
			body:  `{"text":"great","score":9}`,
			actor: alice,
			setup: func(m *ServiceMock) {
				m.On("CreateReview", mock.Anything, alice, int64(1), input).
					Return(nil, services.NewFieldError(services.NonFieldErrors, "You have already reviewed this title.", storage.ErrReviewExists)).Once()
			},
			wantCode: http.StatusBadRequest,
			wantBody: `"non_field_errors":["You have already reviewed this title."]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setup(svc)
			h := New(newNoopLogger(), svc, pagination)

			rr := httptest.NewRecorder()
			h.Create(rr, request(http.MethodPost, tt.body, params, tt.actor))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdate_Permissions(t *testing.T) {
	params := map[string]string{"title_id": "1", "review_id": "5"}
	patch := models.ReviewPatch{Text: textPtr("edited")}

	tests := []struct {
		name     string
		actor    *models.User
		err      error
		wantCode int
	}{
		{name: "anonymous", err: services.ErrUnauthenticated, wantCode: http.StatusUnauthorized},
		{name: "not the author", actor: bob, err: services.ErrForbidden, wantCode: http.StatusForbidden},
		{name: "author", actor: alice, wantCode: http.StatusOK},
		{name: "moderator", actor: moder, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			var res *models.Review
			if tt.err == nil {
				res = &models.Review{ID: 5, Author: "alice", Text: "edited", Score: 9}
			}
			svc.On("UpdateReview", mock.Anything, tt.actor, int64(1), int64(5), patch).Return(res, tt.err).Once()
			h := New(newNoopLogger(), svc, pagination)

			rr := httptest.NewRecorder()
			h.Update(rr, request(http.MethodPatch, `{"text":"edited"}`, params, tt.actor))

			assert.Equal(t, tt.wantCode, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("GetReview", mock.Anything, int64(2), int64(5)).
		Return(nil, fmt.Errorf("reviews.GetReview: %w", storage.ErrNotFound)).Once()
	svc.On("DeleteReview", mock.Anything, moder, int64(1), int64(5)).Return(nil).Once()
	h := New(newNoopLogger(), svc, pagination)

	rr := httptest.NewRecorder()
	h.Get(rr, request(http.MethodGet, "", map[string]string{"title_id": "2", "review_id": "5"}, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, request(http.MethodDelete, "", map[string]string{"title_id": "1", "review_id": "5"}, moder))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, request(http.MethodDelete, "", map[string]string{"title_id": "1", "review_id": "x"}, moder))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	svc.AssertExpectations(t)
}
