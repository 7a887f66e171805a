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

// VehicleHandler wires HTTP endpoints to the vehicle service.
type VehicleHandler struct {
	service *service.VehicleService
}

// NewVehicleHandler creates a new handler.
func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: svc}
}

// Create godoc
// @Summary Register a vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param payload body service.CreateVehiclePayload true "Vehicle payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.CreateVehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vehicle payload"))
		return
	}

	vehicle, err := h.service.Create(c.Request.Context(), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, vehicle)
}

// List godoc
// @Summary List vehicles
// @Description Users see their own vehicles; admins see all
// @Tags Vehicles
// @Produce json
// @Param size query string false "Size filter"
// @Param search query string false "Search in plate number and type"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.VehicleFilter{Search: c.Query("search")}
	if size := c.Query("size"); size != "" {
		s := models.VehicleSize(size)
		filter.Size = &s
	}
	if claims.Role == models.RoleAdmin {
		filter.UserID = c.Query("user_id")
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	vehicles, pagination, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, vehicles, pagination)
}

// Get godoc
// @Summary Get a vehicle
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	vehicle, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, vehicle, nil)
}

// Update godoc
// @Summary Update a vehicle
// @Description Changes size, type, or attributes; the plate number is immutable
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param payload body service.UpdateVehiclePayload true "Vehicle payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.UpdateVehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vehicle payload"))
		return
	}

	vehicle, err := h.service.Update(c.Request.Context(), c.Param("id"), payload, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, vehicle, nil)
}

// Delete godoc
// @Summary Delete a vehicle
// @Description Refused while the vehicle has a pending or approved slot request
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
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
