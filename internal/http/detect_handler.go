package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/queue"
	"vehicle-access-service/internal/utils"
)

// DetectHandler is the pipeline ingress: one detection in, one
// message on the detection queue out.
type DetectHandler struct {
	pub queue.Publisher
	log zerolog.Logger
}

func NewDetectHandler(pub queue.Publisher, log zerolog.Logger) *DetectHandler {
	return &DetectHandler{pub: pub, log: log}
}

func (h *DetectHandler) Register(r *gin.Engine) {
	r.POST("/detect", h.detect)
}

func (h *DetectHandler) detect(c *gin.Context) {
	var entry access.DetectionEvent
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	entry.PlateNumber = utils.NormalizePlate(entry.PlateNumber)
	if entry.PlateNumber == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate_number is required"))
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := h.pub.Publish(c.Request.Context(), access.QueueVehicleDetected, entry); err != nil {
		h.log.Error().Err(err).Str("plate", entry.PlateNumber).Msg("failed to publish detection")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle detected",
		"data":    entry,
	})
}
