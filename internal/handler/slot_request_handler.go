package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	"github.com/sammy002621/parking-management-system-backend/internal/service"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
	"github.com/sammy002621/parking-management-system-backend/pkg/response"
)

// SlotRequestHandler wires HTTP endpoints to the allocation service.
type SlotRequestHandler struct {
	service *service.AllocationService
}

// NewSlotRequestHandler creates a new handler.
func NewSlotRequestHandler(svc *service.AllocationService) *SlotRequestHandler {
	return &SlotRequestHandler{service: svc}
}

// Create godoc
// @Summary Open a slot request
// @Description Creates a PENDING request for one of the caller's vehicles
// @Tags SlotRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slot-requests [post]
func (h *SlotRequestHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.CreateSlotRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List godoc
// @Summary List slot requests
// @Description Users see their own requests; admins see all
// @Tags SlotRequests
// @Produce json
// @Param status query string false "Status filter"
// @Param vehicle_id query string false "Vehicle filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /slot-requests [get]
func (h *SlotRequestHandler) List(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.SlotRequestFilter{VehicleID: c.Query("vehicle_id")}
	if status := c.Query("status"); status != "" {
		s := models.RequestStatus(status)
		filter.Status = &s
	}
	if claims.Role == models.RoleAdmin {
		filter.UserID = c.Query("user_id")
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	requests, pagination, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get a slot request
// @Tags SlotRequests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /slot-requests/{id} [get]
func (h *SlotRequestHandler) Get(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}

// Update godoc
// @Summary Update a pending request
// @Description Swaps the vehicle while the request is still PENDING
// @Tags SlotRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.UpdateSlotRequestPayload true "Request payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slot-requests/{id} [put]
func (h *SlotRequestHandler) Update(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.UpdateSlotRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	request, err := h.service.Update(c.Request.Context(), c.Param("id"), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}

// Cancel godoc
// @Summary Cancel a pending request
// @Tags SlotRequests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slot-requests/{id}/cancel [post]
func (h *SlotRequestHandler) Cancel(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}

// Approve godoc
// @Summary Approve a pending request
// @Description Binds a compatible slot, chosen manually via slot_id or automatically oldest-first
// @Tags SlotRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.ApproveSlotRequestPayload false "Manual slot choice"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /slot-requests/{id}/approve [post]
func (h *SlotRequestHandler) Approve(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.ApproveSlotRequestPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approve payload"))
			return
		}
	}

	request, err := h.service.Approve(c.Request.Context(), c.Param("id"), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags SlotRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.RejectSlotRequestPayload false "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slot-requests/{id}/reject [post]
func (h *SlotRequestHandler) Reject(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.RejectSlotRequestPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
			return
		}
	}

	request, err := h.service.Reject(c.Request.Context(), c.Param("id"), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}
