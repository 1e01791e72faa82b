package handler

import (
	"errors"
	"io"
	"net/http"

	"workflow-go/internal/dto"
	"workflow-go/internal/service"
	"workflow-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DatasetHandler upload and dataset endpoints
type DatasetHandler struct {
	datasetService *service.DatasetService
	logger         logrus.FieldLogger
}

// NewDatasetHandler creates a DatasetHandler.
func NewDatasetHandler(datasetService *service.DatasetService, logger logrus.FieldLogger) *DatasetHandler {
	return &DatasetHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// Upload POST /upload, multipart field "file".
func (h *DatasetHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		utils.BadRequest(c, "No file uploaded")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.datasetService.Ingest(userID, file.Filename, content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"file_id": resp.FileID,
		"records": resp.Records,
		"columns": resp.Columns,
	}).Info("dataset uploaded")

	utils.SuccessResponse(c, resp)
}

// List GET /datasets
func (h *DatasetHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	datasets, err := h.datasetService.ListByOwner(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, datasets)
}

// ValidateDateRanges POST /datasets/:id/date-ranges
func (h *DatasetHandler) ValidateDateRanges(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.DateRangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err))
		return
	}

	resp, err := h.datasetService.ValidateDateRanges(userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, resp)
}
