package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReader struct {
	mock.Mock
}

func (m *MockReader) GetOrCreateWallet(ctx context.Context, memberID int) (*Wallet, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wallet), args.Error(1)
}

func (m *MockReader) GetTransactions(ctx context.Context, memberID int, limit, offset int) ([]Transaction, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

func setupRouter(h *Handler, memberID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if memberID > 0 {
			c.Set(auth.ContextMemberID, memberID)
		}
		c.Next()
	})
	r.GET("/wallet", h.GetBalance)
	r.GET("/wallet/transactions", h.ListTransactions)
	return r
}

func TestGetBalance(t *testing.T) {
	repo := new(MockReader)
	repo.On("GetOrCreateWallet", mock.Anything, 20).
		Return(&Wallet{ID: 7, MemberID: 20, Balance: decimal.RequireFromString("1700.50")}, nil)

	w := httptest.NewRecorder()
	setupRouter(NewHandler(repo), 20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wallet", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1700.5", body["balance"])
	repo.AssertExpectations(t)
}

func TestGetBalance_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(NewHandler(new(MockReader)), 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wallet", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBalance_Error(t *testing.T) {
	repo := new(MockReader)
	repo.On("GetOrCreateWallet", mock.Anything, 20).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	setupRouter(NewHandler(repo), 20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wallet", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListTransactions(t *testing.T) {
	repo := new(MockReader)
	repo.On("GetTransactions", mock.Anything, 20, 10, 5).
		Return([]Transaction{{ID: 1, Kind: KindFee, Amount: decimal.NewFromInt(-200)}}, nil)

	w := httptest.NewRecorder()
	setupRouter(NewHandler(repo), 20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=10&offset=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body []Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, KindFee, body[0].Kind)
	repo.AssertExpectations(t)
}
