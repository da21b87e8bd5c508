package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/divesh330/timevault/internal/api/handlers"
	"github.com/divesh330/timevault/internal/errs"
	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/services"
)

func setupTransactionRouter(svc services.ITransactionService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTransactionHandler(svc)

	r := gin.New()
	authed := r.Group("/", authAs(userID, models.RoleUser))
	authed.POST("/v1/transaction", handler.CreateTransaction)
	authed.GET("/v1/transaction", handler.GetUserTransactions)
	authed.GET("/v1/transaction/:id", handler.GetTransactionByID)
	authed.PATCH("/v1/transaction/:id/status", handler.UpdateTransactionStatus)
	return r
}

func TestTransactionHandler_CreateTransaction_Success(t *testing.T) {
	mockSvc := new(MockTransactionService)
	r := setupTransactionRouter(mockSvc, "buyer-1")

	expected := &models.Transaction{
		ID:      "txn-1",
		BuyerID: "buyer-1",
		WatchID: "listing-1",
		Price:   9000,
		Status:  models.TransactionStatusPending,
	}
	mockSvc.On("CreateTransaction", mock.Anything, "buyer-1", "listing-1", "221B Baker Street", "TRK-1").
		Return(expected, nil)

	body, _ := json.Marshal(gin.H{
		"watch_id":      "listing-1",
		"shipping_info": "221B Baker Street",
		"tracking_id":   "TRK-1",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/transaction", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "txn-1", respBody.ID)
	assert.Equal(t, models.TransactionStatusPending, respBody.Status)
	mockSvc.AssertExpectations(t)
}

func TestTransactionHandler_CreateTransaction_MissingWatchID(t *testing.T) {
	mockSvc := new(MockTransactionService)
	r := setupTransactionRouter(mockSvc, "buyer-1")

	body, _ := json.Marshal(gin.H{"shipping_info": "somewhere"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/transaction", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "CreateTransaction")
}

func TestTransactionHandler_CreateTransaction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not available", errs.New(errs.KindListingNotAvailable, "listing listing-1 is not available for purchase"), http.StatusConflict},
		{"self purchase", errs.New(errs.KindSelfPurchase, "buyers cannot purchase their own listing"), http.StatusForbidden},
		{"payment failed", errs.New(errs.KindPaymentFailed, "payment failed for listing listing-1"), http.StatusPaymentRequired},
		{"not found", errs.New(errs.KindNotFound, "listing listing-1 not found"), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := new(MockTransactionService)
			r := setupTransactionRouter(mockSvc, "buyer-1")
			mockSvc.On("CreateTransaction", mock.Anything, "buyer-1", "listing-1", "", "").
				Return(nil, tc.err)

			body, _ := json.Marshal(gin.H{"watch_id": "listing-1"})
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/v1/transaction", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestTransactionHandler_GetUserTransactions_DefaultsToAll(t *testing.T) {
	mockSvc := new(MockTransactionService)
	r := setupTransactionRouter(mockSvc, "user-1")

	mockSvc.On("GetUserTransactions", mock.Anything, "user-1", services.TransactionTypeAll).
		Return([]services.UserTransaction{
			{Transaction: models.Transaction{ID: "txn-1"}, Type: "purchase"},
		}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/transaction", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []services.UserTransaction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	require.Len(t, respBody.Data, 1)
	assert.Equal(t, "purchase", respBody.Data[0].Type)
	mockSvc.AssertExpectations(t)
}

func TestTransactionHandler_GetTransactionByID_Forbidden(t *testing.T) {
	mockSvc := new(MockTransactionService)
	r := setupTransactionRouter(mockSvc, "stranger")

	mockSvc.On("GetTransactionByID", mock.Anything, "stranger", "txn-1").
		Return(nil, errs.New(errs.KindForbidden, "only the buyer or seller may view transaction txn-1"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/transaction/txn-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestTransactionHandler_UpdateTransactionStatus_Success(t *testing.T) {
	mockSvc := new(MockTransactionService)
	r := setupTransactionRouter(mockSvc, "seller-1")

	completedAt := time.Now().UTC()
	expected := &models.Transaction{
		ID:          "txn-1",
		SellerID:    "seller-1",
		Status:      models.TransactionStatusCompleted,
		CompletedAt: &completedAt,
	}
	mockSvc.On("UpdateTransactionStatus", mock.Anything, "seller-1", "txn-1", "completed").
		Return(expected, nil)

	body, _ := json.Marshal(gin.H{"status": "completed"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/v1/transaction/txn-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, models.TransactionStatusCompleted, respBody.Status)
	assert.NotNil(t, respBody.CompletedAt)
	mockSvc.AssertExpectations(t)
}

func TestTransactionHandler_UpdateTransactionStatus_InvalidTransition(t *testing.T) {
	mockSvc := new(MockTransactionService)
	r := setupTransactionRouter(mockSvc, "seller-1")

	mockSvc.On("UpdateTransactionStatus", mock.Anything, "seller-1", "txn-1", "cancelled").
		Return(nil, errs.New(errs.KindInvalidStateTransition, "transaction txn-1 cannot move from completed to cancelled"))

	body, _ := json.Marshal(gin.H{"status": "cancelled"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/v1/transaction/txn-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}
