package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-access-service/internal/service"
	"vehicle-access-service/internal/utils"
)

// DashboardHandler exposes the manual approval store to operators and
// the administrative CRUD for the tables the evaluator reads.
type DashboardHandler struct {
	approvals *service.ApprovalService
	admin     *service.AdminService
	log       zerolog.Logger
}

func NewDashboardHandler(approvals *service.ApprovalService, admin *service.AdminService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{approvals: approvals, admin: admin, log: log}
}

func (h *DashboardHandler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/pending-vehicles", h.listPending)
	r.POST("/approve/:plate_number", h.approve)
	r.POST("/decline/:plate_number", h.decline)

	admin := r.Group("/api/v1")
	admin.Use(authMiddleware)
	{
		admin.POST("/vehicles/authorized", h.addAuthorizedVehicle)
		admin.GET("/vehicles/authorized", h.listAuthorizedVehicles)
		admin.DELETE("/vehicles/authorized/:plate_number", h.removeAuthorizedVehicle)

		admin.POST("/guest-vehicles", h.addGuestVehicle)
		admin.GET("/guest-vehicles", h.listGuestVehicles)
		admin.DELETE("/guest-vehicles/:id", h.removeGuestVehicle)

		admin.POST("/events", h.createEvent)
		admin.GET("/events", h.listEvents)
		admin.GET("/events/:id", h.getEvent)
		admin.PATCH("/events/:id/status", h.updateEventStatus)

		admin.POST("/events/:id/vehicles", h.addEventGuestVehicle)
		admin.GET("/events/:id/vehicles", h.listEventGuestVehicles)
		admin.DELETE("/events/:id/vehicles/:plate_number", h.removeEventGuestVehicle)
	}
}

func (h *DashboardHandler) listPending(c *gin.Context) {
	pending, err := h.approvals.ListPending(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(pending))
}

func (h *DashboardHandler) approve(c *gin.Context) {
	plate := utils.NormalizePlate(c.Param("plate_number"))
	count, err := h.approvals.Approve(c.Request.Context(), plate)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s approved and logged", plate),
		"records": count,
	})
}

func (h *DashboardHandler) decline(c *gin.Context) {
	plate := utils.NormalizePlate(c.Param("plate_number"))
	count, err := h.approvals.Decline(c.Request.Context(), plate)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s declined and logged", plate),
		"records": count,
	})
}

type authorizedVehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	OwnerName   string `json:"owner_name"`
	ContactInfo string `json:"contact_info"`
}

func (h *DashboardHandler) addAuthorizedVehicle(c *gin.Context) {
	var req authorizedVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	v, err := h.admin.AddAuthorizedVehicle(c.Request.Context(), req.PlateNumber, req.OwnerName, req.ContactInfo)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(v))
}

func (h *DashboardHandler) listAuthorizedVehicles(c *gin.Context) {
	vehicles, err := h.admin.ListAuthorizedVehicles(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicles))
}

func (h *DashboardHandler) removeAuthorizedVehicle(c *gin.Context) {
	if err := h.admin.RemoveAuthorizedVehicle(c.Request.Context(), c.Param("plate_number")); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type guestVehicleRequest struct {
	PlateNumber string    `json:"plate_number"`
	OwnerName   string    `json:"owner_name"`
	Reason      string    `json:"reason"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidUntil  time.Time `json:"valid_until"`
	AddedBy     string    `json:"added_by"`
}

func (h *DashboardHandler) addGuestVehicle(c *gin.Context) {
	var req guestVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	g, err := h.admin.AddGuestVehicle(c.Request.Context(), req.PlateNumber, req.OwnerName, req.Reason, req.ValidFrom, req.ValidUntil, req.AddedBy)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(g))
}

func (h *DashboardHandler) listGuestVehicles(c *gin.Context) {
	guests, err := h.admin.ListGuestVehicles(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(guests))
}

func (h *DashboardHandler) removeGuestVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
		return
	}
	if err := h.admin.RemoveGuestVehicle(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type eventRequest struct {
	EventName string `json:"event_name"`
	EventDate string `json:"event_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func (h *DashboardHandler) createEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	e, err := h.admin.CreateEvent(c.Request.Context(), req.EventName, req.EventDate, req.StartTime, req.EndTime, req.Status)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(e))
}

func (h *DashboardHandler) listEvents(c *gin.Context) {
	events, err := h.admin.ListEvents(c.Request.Context(), c.Query("status"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(events))
}

func (h *DashboardHandler) getEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid event id"))
		return
	}
	e, err := h.admin.GetEvent(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(e))
}

func (h *DashboardHandler) updateEventStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid event id"))
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	e, err := h.admin.UpdateEventStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(e))
}

type eventGuestVehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	Name        string `json:"name"`
	Reason      string `json:"reason"`
	AddedBy     string `json:"added_by"`
}

func (h *DashboardHandler) addEventGuestVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid event id"))
		return
	}
	var req eventGuestVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	v, err := h.admin.AddEventGuestVehicle(c.Request.Context(), id, req.PlateNumber, req.Name, req.Reason, req.AddedBy)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(v))
}

func (h *DashboardHandler) listEventGuestVehicles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid event id"))
		return
	}
	vehicles, err := h.admin.ListEventGuestVehicles(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicles))
}

func (h *DashboardHandler) removeEventGuestVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid event id"))
		return
	}
	if err := h.admin.RemoveEventGuestVehicle(c.Request.Context(), id, c.Param("plate_number")); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
