package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) Create(ctx context.Context, in service.CreateGroupInput) (*model.Group, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupService) Get(ctx context.Context, groupID, userID uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *MockGroupService) Join(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *MockGroupService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *MockGroupService) ListMembers(ctx context.Context, groupID, userID uuid.UUID) ([]model.GroupMember, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupMember), args.Error(1)
}

func (m *MockGroupService) RoleFor(ctx context.Context, groupID, userID uuid.UUID) (live.Role, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Get(0).(live.Role), args.Error(1)
}

func TestGroupHandler_CreateGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	userID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setup          func(*MockGroupService)
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			body: `{"name":"Lisbon 2026","description":"spring trip"}`,
			setup: func(svc *MockGroupService) {
				svc.On("Create", mock.Anything, service.CreateGroupInput{
					Name:        "Lisbon 2026",
					Description: "spring trip",
					CreatedBy:   userID,
				}).Return(&model.Group{
					ID:        uuid.New(),
					Name:      "Lisbon 2026",
					CreatedBy: userID,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp serializer.Response
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				data, ok := resp.Data.(map[string]interface{})
				assert.True(t, ok)
				assert.Equal(t, "Lisbon 2026", data["name"])
			},
		},
		{
			name:           "bad request - missing name",
			body:           `{"description":"no name"}`,
			setup:          func(svc *MockGroupService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockGroupService{}
			tt.setup(svc)

			h := NewGroupHandler(svc)

			w := httptest.NewRecorder()
			_, r := gin.CreateTestContext(w)
			r.Use(asUser(userID, "Alice"))
			r.POST("/groups", h.CreateGroup)

			req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGroupHandler_Membership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	groupID := uuid.New()
	userID := uuid.New()

	t.Run("join", func(t *testing.T) {
		svc := &MockGroupService{}
		svc.On("Join", mock.Anything, groupID, userID).Return(nil)

		h := NewGroupHandler(svc)
		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(asUser(userID, "Alice"))
		r.POST("/groups/:group_id/join", h.JoinGroup)

		req := httptest.NewRequest(http.MethodPost, "/groups/"+groupID.String()+"/join", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("join by code uppercases the code", func(t *testing.T) {
		svc := &MockGroupService{}
		svc.On("JoinByCode", mock.Anything, "WXYZ2345", userID).
			Return(&model.Group{ID: groupID, Name: "trip", JoinCode: "WXYZ2345"}, nil)

		h := NewGroupHandler(svc)
		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(asUser(userID, "Alice"))
		r.POST("/groups/join", h.JoinByCode)

		req := httptest.NewRequest(http.MethodPost, "/groups/join", strings.NewReader(`{"code":"wxyz2345"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("join by unknown code is not found", func(t *testing.T) {
		svc := &MockGroupService{}
		svc.On("JoinByCode", mock.Anything, "BADCODE2", userID).Return(nil, service.ErrGroupNotFound)

		h := NewGroupHandler(svc)
		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(asUser(userID, "Alice"))
		r.POST("/groups/join", h.JoinByCode)

		req := httptest.NewRequest(http.MethodPost, "/groups/join", strings.NewReader(`{"code":"badcode2"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("get as non-member is forbidden", func(t *testing.T) {
		svc := &MockGroupService{}
		svc.On("Get", mock.Anything, groupID, userID).Return(nil, service.ErrNotMember)

		h := NewGroupHandler(svc)
		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(asUser(userID, "Alice"))
		r.GET("/groups/:group_id", h.GetGroup)

		req := httptest.NewRequest(http.MethodGet, "/groups/"+groupID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("get missing group is not found", func(t *testing.T) {
		svc := &MockGroupService{}
		svc.On("Get", mock.Anything, groupID, userID).Return(nil, service.ErrGroupNotFound)

		h := NewGroupHandler(svc)
		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(asUser(userID, "Alice"))
		r.GET("/groups/:group_id", h.GetGroup)

		req := httptest.NewRequest(http.MethodGet, "/groups/"+groupID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("delete as non-owner is forbidden", func(t *testing.T) {
		svc := &MockGroupService{}
		svc.On("Delete", mock.Anything, groupID, userID).Return(live.ErrOwnerOnly)

		h := NewGroupHandler(svc)
		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(asUser(userID, "Alice"))
		r.DELETE("/groups/:group_id", h.DeleteGroup)

		req := httptest.NewRequest(http.MethodDelete, "/groups/"+groupID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertExpectations(t)
	})
}
