package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/api"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/auth"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/facility"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/logger"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader may carry the request key instead of the JSON body.
const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// CreateBooking godoc
// @Summary      Book a visit
// @Description  Books one visit in a facility slot and charges the plan's daily rate. Retrying with the same request key returns the original visit.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                 false  "Request key"
// @Param        request          body      booking.CreateRequest  true   "Booking"
// @Success      201  {object}  booking.CreateBookingResponse
// @Failure      400  {object}  api.ValidationErrorResponse
// @Failure      402  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}
	req.MemberID = memberID
	if req.RequestKey == "" {
		req.RequestKey = c.GetHeader(IdempotencyHeader)
	}

	v, err := h.svc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateBookingResponse{VisitID: v.ID, Visit: v})
}

// CreateRecurringBooking godoc
// @Summary      Book a recurring series
// @Description  Books every date of the pattern independently. The manifest lists the visit or the failure reason per date.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      booking.RecurringRequest  true  "Series"
// @Success      200  {object}  booking.RecurringBookingResponse
// @Failure      400  {object}  api.ValidationErrorResponse
// @Router       /bookings/recurring [post]
func (h *Handler) CreateRecurringBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}
	req.MemberID = memberID
	if req.RequestKey == "" {
		req.RequestKey = c.GetHeader(IdempotencyHeader)
	}

	manifest, err := h.svc.CreateRecurringBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecurringBookingResponse{Manifest: manifest})
}

// CancelBooking godoc
// @Summary      Cancel a visit
// @Description  Cancels a scheduled visit. Inside the facility's cancellation window a fee is charged, or the cancel is refused when the facility blocks late changes.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        visitID  path      int                    true   "Visit ID"
// @Param        request  body      booking.CancelRequest  false  "Reason"
// @Success      200  {object}  booking.CancelBookingResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse
// @Router       /bookings/{visitID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}
	visitID, ok := visitParam(c)
	if !ok {
		return
	}

	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
			return
		}
		if errs := api.ValidateStruct(req); len(errs) > 0 {
			api.RespondWithValidationErrors(c, errs)
			return
		}
	}

	fee, err := h.svc.CancelBooking(c.Request.Context(), memberID, visitID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{FeeCharged: fee})
}

// RescheduleBooking godoc
// @Summary      Reschedule a visit
// @Description  Moves a scheduled visit to another slot in one step. The original slot is kept if the new one cannot be reserved.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        visitID  path      int                        true  "Visit ID"
// @Param        request  body      booking.RescheduleRequest  true  "New slot"
// @Success      200  {object}  booking.RescheduleBookingResponse
// @Failure      400  {object}  api.ValidationErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse
// @Router       /bookings/{visitID}/reschedule [post]
func (h *Handler) RescheduleBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}
	visitID, ok := visitParam(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	v, fee, err := h.svc.RescheduleBooking(c.Request.Context(), memberID, visitID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RescheduleBookingResponse{FeeCharged: fee, Visit: v})
}

// CheckIn godoc
// @Summary      Check in
// @Description  Records arrival for a scheduled visit, from 15 minutes before start until an hour after.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        visitID  path      int  true  "Visit ID"
// @Success      200  {object}  booking.Visit
// @Failure      422  {object}  api.ErrorResponse
// @Router       /bookings/{visitID}/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}
	visitID, ok := visitParam(c)
	if !ok {
		return
	}

	v, err := h.svc.CheckIn(c.Request.Context(), memberID, visitID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// ListMyBookings godoc
// @Summary      My visits
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   booking.Visit
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	visits, err := h.svc.ListMemberVisits(c.Request.Context(), memberID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, visits)
}

// GetAvailableSlots godoc
// @Summary      Slot availability
// @Description  Lists the bookable slots of a facility on a date with the places left in each.
// @Tags         facilities
// @Security     BearerAuth
// @Produce      json
// @Param        facilityID  path      int     true  "Facility ID"
// @Param        date        query     string  true  "Date (YYYY-MM-DD)"
// @Success      200  {array}   booking.SlotAvailability
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /facilities/{facilityID}/slots [get]
func (h *Handler) GetAvailableSlots(c *gin.Context) {
	facilityID, err := strconv.Atoi(c.Param("facilityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid facility ID"})
		return
	}
	date, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	slots, err := h.svc.GetAvailableSlots(c.Request.Context(), facilityID, date)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// RefundFee godoc
// @Summary      Refund a visit fee
// @Description  Credits a charged policy fee back to the member's wallet. Repeating the call returns the first refund.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        visitID  path      int                    true  "Visit ID"
// @Param        request  body      booking.RefundRequest  true  "Fee"
// @Success      200  {object}  booking.RefundResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/visits/{visitID}/refunds [post]
func (h *Handler) RefundFee(c *gin.Context) {
	visitID, ok := visitParam(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	tr, err := h.svc.RefundFee(c.Request.Context(), visitID, req.Kind, req.Seq)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RefundResponse{Transaction: tr})
}

func visitParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("visitID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid visit ID"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("booking request failed", "path", c.FullPath())
		c.JSON(status, api.ErrorResponse{Error: "internal error", Code: Reason(err)})
		return
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error(), Code: Reason(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrEntitlementExhausted):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrMembershipNotEligible):
		return http.StatusForbidden
	case errors.Is(err, ErrVisitNotFound), errors.Is(err, ErrNotRefundable), errors.Is(err, facility.ErrFacilityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrDuplicateBookingForDay),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrAlreadyElapsed):
		return http.StatusConflict
	case errors.Is(err, ErrPolicyWindowViolation), errors.Is(err, ErrCheckInWindow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
