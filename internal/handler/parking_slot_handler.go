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

// ParkingSlotHandler wires HTTP endpoints to the slot inventory service.
type ParkingSlotHandler struct {
	service *service.ParkingSlotService
}

// NewParkingSlotHandler creates a new handler.
func NewParkingSlotHandler(svc *service.ParkingSlotService) *ParkingSlotHandler {
	return &ParkingSlotHandler{service: svc}
}

// Create godoc
// @Summary Create a parking slot
// @Tags ParkingSlots
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotPayload true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /parking-slots [post]
func (h *ParkingSlotHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.CreateSlotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.service.Create(c.Request.Context(), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, slot)
}

// List godoc
// @Summary List parking slots
// @Description Open to all authenticated users; availability listings are cached briefly
// @Tags ParkingSlots
// @Produce json
// @Param status query string false "Status filter (AVAILABLE or UNAVAILABLE)"
// @Param size query string false "Size filter"
// @Param vehicle_type query string false "Vehicle type filter"
// @Param search query string false "Search in slot number and location"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /parking-slots [get]
func (h *ParkingSlotHandler) List(c *gin.Context) {
	filter := models.SlotFilter{
		VehicleType: c.Query("vehicle_type"),
		Search:      c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		s := models.SlotStatus(status)
		filter.Status = &s
	}
	if size := c.Query("size"); size != "" {
		s := models.VehicleSize(size)
		filter.Size = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	slots, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slots, pagination)
}

// Get godoc
// @Summary Get a parking slot
// @Tags ParkingSlots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parking-slots/{id} [get]
func (h *ParkingSlotHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slot, nil)
}

// Update godoc
// @Summary Update a parking slot
// @Tags ParkingSlots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body service.UpdateSlotPayload true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /parking-slots/{id} [put]
func (h *ParkingSlotHandler) Update(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.UpdateSlotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete a parking slot
// @Description Refused while the slot is bound to an approved request
// @Tags ParkingSlots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /parking-slots/{id} [delete]
func (h *ParkingSlotHandler) Delete(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
