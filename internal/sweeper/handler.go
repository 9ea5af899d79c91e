package sweeper

import (
	"errors"
	"net/http"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/api"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/clock"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	sweeper *Sweeper
	clock   clock.Clock
}

func NewHandler(s *Sweeper, clk clock.Clock) *Handler {
	return &Handler{sweeper: s, clock: clk}
}

// RunSweep godoc
// @Summary      Run the missed-visit sweep
// @Description  Completes checked-in visits and marks no-shows missed, charging the late fee.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        as_of  query     string  false  "RFC3339 instant, defaults to now"
// @Success      200  {object}  sweeper.Result
// @Failure      400  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/sweeps [post]
func (h *Handler) RunSweep(c *gin.Context) {
	asOf := h.clock.Now()
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "as_of must be RFC3339"})
			return
		}
		asOf = t
	}

	res, err := h.sweeper.RunMissedVisitSweep(c.Request.Context(), asOf)
	if errors.Is(err, ErrSweepInProgress) {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error(), Code: "sweep_in_progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "sweep failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}
