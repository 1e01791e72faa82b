package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"workflow-go/internal/dto"
	"workflow-go/internal/service"
	"workflow-go/internal/utils"
	"workflow-go/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SimulationHandler metrics, training and prediction stream endpoints
type SimulationHandler struct {
	simulationService *service.SimulationService
	streams           redis_limiter.Limiter
	logger            logrus.FieldLogger
}

// NewSimulationHandler creates a SimulationHandler. streams bounds open streams per user.
func NewSimulationHandler(simulationService *service.SimulationService, streams redis_limiter.Limiter, logger logrus.FieldLogger) *SimulationHandler {
	return &SimulationHandler{
		simulationService: simulationService,
		streams:           streams,
		logger:            logger,
	}
}

// Metrics GET /simulation/metrics
func (h *SimulationHandler) Metrics(c *gin.Context) {
	utils.SuccessResponse(c, h.simulationService.Metrics())
}

// Train POST /simulation/train. The body is optional.
func (h *SimulationHandler) Train(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, utils.FormatValidationError(err))
		return
	}

	resp, err := h.simulationService.Train(userID, req.DatasetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, resp)
}

// Stream GET /simulation/stream, server-sent events until the client goes away.
func (h *SimulationHandler) Stream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.streams.Acquire(ctx, userID); err != nil {
		if errors.Is(err, redis_limiter.ErrLimitReached) {
			err = service.ErrTooManyStreams
		}
		respondError(c, h.logger, err)
		return
	}
	defer h.streams.Release(context.WithoutCancel(ctx), userID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	log := h.logger.WithField("user_id", userID)
	log.Debug("prediction stream opened")

	err := h.simulationService.Stream(ctx, func(event dto.PredictionEvent) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	log.WithError(err).Debug("prediction stream closed")
}
