package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-access-service/internal/repository"
	"vehicle-access-service/internal/utils"
)

// LogsHandler is the read side of the ledger: vehicle log queries and
// the surveillance alert lifecycle.
type LogsHandler struct {
	repo *repository.AccessRepository
	log  zerolog.Logger
}

func NewLogsHandler(repo *repository.AccessRepository, log zerolog.Logger) *LogsHandler {
	return &LogsHandler{repo: repo, log: log}
}

func (h *LogsHandler) Register(r *gin.Engine) {
	r.GET("/api/vehicles/logs", h.listVehicleLogs)
	r.GET("/alerts", h.listAlerts)
	r.GET("/alerts/:id", h.getAlert)
	r.PATCH("/alerts/:id", h.updateAlert)
}

func (h *LogsHandler) listVehicleLogs(c *gin.Context) {
	plate := utils.NormalizePlate(c.Query("plate_number"))
	logs, err := h.repo.ListVehicleLogs(c.Request.Context(), plate)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(logs))
}

func (h *LogsHandler) listAlerts(c *gin.Context) {
	alerts, err := h.repo.ListAlerts(c.Request.Context(), c.Query("status"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(alerts))
}

func (h *LogsHandler) getAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid alert id"))
		return
	}
	alert, err := h.repo.GetAlert(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(alert))
}

func (h *LogsHandler) updateAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid alert id"))
		return
	}
	var update repository.AlertUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	alert, err := h.repo.UpdateAlert(c.Request.Context(), id, update)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(alert))
}
