package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/divesh330/timevault/internal/api/handlers"
	"github.com/divesh330/timevault/internal/errs"
	"github.com/divesh330/timevault/internal/models"
)

func setupAuthRouter(svc *MockUserService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewAuthHandler(svc)

	r := gin.New()
	r.POST("/v1/auth/register", handler.Register)
	r.POST("/v1/auth/login", handler.Login)
	r.GET("/v1/auth/me", authAs(userID, models.RoleUser), handler.Me)
	return r
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := setupAuthRouter(mockSvc, "")

	expected := &models.User{ID: "user-1", Name: "Ada", Email: "ada@example.com", PasswordHash: "secret-hash"}
	mockSvc.On("Register", mock.Anything, "Ada", "ada@example.com", "correct horse").
		Return(expected, nil)

	body, _ := json.Marshal(gin.H{"name": "Ada", "email": "ada@example.com", "password": "correct horse"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")
	var respBody models.PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "user-1", respBody.ID)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_BindingRejectsShortPassword(t *testing.T) {
	mockSvc := new(MockUserService)
	r := setupAuthRouter(mockSvc, "")

	body, _ := json.Marshal(gin.H{"name": "Ada", "email": "ada@example.com", "password": "short"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockSvc := new(MockUserService)
	r := setupAuthRouter(mockSvc, "")

	mockSvc.On("Register", mock.Anything, "Ada", "ada@example.com", "correct horse").
		Return(nil, errs.New(errs.KindConflict, "email ada@example.com is already registered"))

	body, _ := json.Marshal(gin.H{"name": "Ada", "email": "ada@example.com", "password": "correct horse"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	r := setupAuthRouter(mockSvc, "")

	user := &models.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}
	mockSvc.On("Login", mock.Anything, "ada@example.com", "correct horse").
		Return("signed.jwt.token", user, nil)

	body, _ := json.Marshal(gin.H{"email": "ada@example.com", "password": "correct horse"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "signed.jwt.token", respBody.Token)
	assert.Equal(t, "user-1", respBody.User.ID)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockUserService)
	r := setupAuthRouter(mockSvc, "")

	mockSvc.On("Login", mock.Anything, "ada@example.com", "wrong password").
		Return("", nil, errs.New(errs.KindUnauthorized, "invalid email or password"))

	body, _ := json.Marshal(gin.H{"email": "ada@example.com", "password": "wrong password"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Me(t *testing.T) {
	mockSvc := new(MockUserService)
	r := setupAuthRouter(mockSvc, "user-1")

	user := &models.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}
	mockSvc.On("FindByID", mock.Anything, "user-1").Return(user, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/auth/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody models.PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "ada@example.com", respBody.Email)
	mockSvc.AssertExpectations(t)
}
