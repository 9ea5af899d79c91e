package membership

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/api"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type EntitlementResponse struct {
	Membership *Membership `json:"membership"`
	Snapshot   Snapshot    `json:"snapshot"`
	Remaining  *int        `json:"remaining_day_credits"`
}

// GetEntitlement godoc
// @Summary      Membership entitlement
// @Description  Returns used and remaining day credits of the caller's membership.
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        membershipID  path      int  true  "Membership ID"
// @Success      200  {object}  membership.EntitlementResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /memberships/{membershipID}/entitlement [get]
func (h *Handler) GetEntitlement(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	ctx := c.Request.Context()
	m, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load membership"})
		return
	}
	if m.MemberID != memberID {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only view your own memberships"})
		return
	}

	p, err := h.repo.GetPlan(ctx, m.PlanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load plan"})
		return
	}

	used, err := h.repo.CountVisits(ctx, m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to count visits"})
		return
	}

	snap, err := NewSnapshot(m, p, used)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Membership data is inconsistent"})
		return
	}

	c.JSON(http.StatusOK, EntitlementResponse{Membership: m, Snapshot: snap, Remaining: snap.Remaining()})
}
