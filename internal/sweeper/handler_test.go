package sweeper

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/booking"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/clock"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/sweeps", h.RunSweep)
	return r
}

func TestRunSweepHandler(t *testing.T) {
	explicit := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	visits := new(MockVisits)
	visits.On("DueVisits", mock.Anything, explicit).Return([]booking.Visit{{ID: 1}}, nil)
	visits.On("SweepVisit", mock.Anything, 1, explicit).Return(booking.SweepMissed, decimal.NewFromInt(300), nil)
	visits.On("DueVisits", mock.Anything, asOf).Return([]booking.Visit{}, nil)

	clk := clock.NewManual(asOf)
	r := setupRouter(NewHandler(New(visits, clk), clk))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sweeps?as_of=2024-01-01T09:00:00Z", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Missed)
	assert.Equal(t, "300", res.FeesCharged.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sweeps", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sweeps?as_of=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	visits.AssertExpectations(t)
}

func TestRunSweepHandler_Locked(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb)
	rmock.ExpectSetNX(LockKey, locker.token, defaultLockTTL).SetVal(false)

	clk := clock.NewManual(asOf)
	r := setupRouter(NewHandler(New(new(MockVisits), clk, WithLocker(locker)), clk))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sweeps", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
