package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"workflow-go/internal/dto"
	"workflow-go/internal/models"
	"workflow-go/internal/repository"
	"workflow-go/internal/storage"
	"workflow-go/internal/utils"

	"github.com/google/uuid"
)

// DefaultDateRange label attached to every dataset. Decorative, not derived from the file.
const DefaultDateRange = "6 months"

// DatasetService ingests uploads and lists them per owner.
type DatasetService struct {
	datasetRepo repository.DatasetRepository
	blobs       storage.BlobStore
	random      RandomSource
	now         func() time.Time
}

// NewDatasetService creates a DatasetService. A nil random uses the default source.
func NewDatasetService(datasetRepo repository.DatasetRepository, blobs storage.BlobStore, random RandomSource) *DatasetService {
	if random == nil {
		random = defaultRandom
	}
	return &DatasetService{
		datasetRepo: datasetRepo,
		blobs:       blobs,
		random:      random,
		now:         time.Now,
	}
}

// Ingest parses content, stores it and records its metadata for ownerID.
// Parsing happens first so a malformed payload leaves nothing behind.
func (s *DatasetService) Ingest(ownerID, filename string, content []byte) (*dto.UploadResponse, error) {
	table, err := utils.ParseTable(filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	location, err := s.blobs.Save(filename, content)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	dataset := &models.Dataset{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		Name:       filename,
		FilePath:   location,
		Size:       int64(len(content)),
		Records:    table.Records(),
		Columns:    table.Columns(),
		PassRate:   s.passRate(),
		DateRange:  DefaultDateRange,
		UploadDate: s.now().UTC(),
		Status:     models.DatasetUploaded,
	}
	if start, end, ok := table.Bounds(); ok {
		dataset.StartTime = &start
		dataset.EndTime = &end
	}

	if err := s.datasetRepo.Create(dataset); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}

	return &dto.UploadResponse{
		Records:        dataset.Records,
		Columns:        dataset.Columns,
		PassRate:       dataset.PassRate,
		DateRange:      dataset.DateRange,
		FileID:         dataset.ID,
		StartTimestamp: dataset.StartTime,
		EndTimestamp:   dataset.EndTime,
	}, nil
}

// ListByOwner returns ownerID's datasets in upload order.
func (s *DatasetService) ListByOwner(ownerID string) ([]dto.DatasetSummary, error) {
	datasets, err := s.datasetRepo.ListByUserID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	summaries := make([]dto.DatasetSummary, 0, len(datasets))
	for _, d := range datasets {
		summaries = append(summaries, dto.DatasetSummary{
			ID:         d.ID,
			Name:       d.Name,
			Size:       d.Size,
			Columns:    d.Columns,
			Records:    d.Records,
			PassRate:   d.PassRate,
			DateRange:  d.DateRange,
			UploadDate: d.UploadDate,
			Status:     string(d.Status),
		})
	}
	return summaries, nil
}

// Get returns a dataset owned by ownerID.
func (s *DatasetService) Get(ownerID, datasetID string) (*models.Dataset, error) {
	dataset, err := s.datasetRepo.GetByIDAndUserID(datasetID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return dataset, nil
}

// ValidateDateRanges checks that train, test and simulation windows are ordered and
// inside the dataset's time span, and counts the rows in each window.
// Rule violations are reported in the response, not as errors.
func (s *DatasetService) ValidateDateRanges(ownerID, datasetID string, req *dto.DateRangesRequest) (*dto.DateRangesResponse, error) {
	dataset, err := s.Get(ownerID, datasetID)
	if err != nil {
		return nil, err
	}

	content, err := s.blobs.Load(dataset.FilePath)
	if err != nil {
		return nil, fmt.Errorf("load upload: %w", err)
	}
	table, err := utils.ParseTable(dataset.Name, content)
	if err != nil {
		return nil, fmt.Errorf("reparse upload: %w", err)
	}

	if req.TrainStart.After(req.TrainEnd) || req.TestStart.After(req.TestEnd) || req.SimStart.After(req.SimEnd) {
		return invalidRanges("Each period's start must be on or before its end."), nil
	}
	if !req.TrainEnd.Before(req.TestStart) || !req.TestEnd.Before(req.SimStart) {
		return invalidRanges("Ranges must be sequential: training, then testing, then simulation."), nil
	}

	dataStart, dataEnd, ok := table.Bounds()
	if !ok {
		return invalidRanges("The dataset has no rows."), nil
	}
	if req.TrainStart.Before(dataStart) || req.SimEnd.After(dataEnd) {
		return invalidRanges("Selected dates are outside the dataset range."), nil
	}

	counts := &dto.DateRangesCounts{}
	for _, ts := range table.Timestamps() {
		switch {
		case within(ts, req.TrainStart, req.TrainEnd):
			counts.Training++
		case within(ts, req.TestStart, req.TestEnd):
			counts.Testing++
		case within(ts, req.SimStart, req.SimEnd):
			counts.Simulation++
		}
	}

	return &dto.DateRangesResponse{Status: dto.DateRangesValid, Counts: counts}, nil
}

// passRate is a placeholder in [75, 94]; nothing in the file feeds it.
func (s *DatasetService) passRate() int {
	return int(math.Floor(s.random()*20 + 75))
}

func invalidRanges(message string) *dto.DateRangesResponse {
	return &dto.DateRangesResponse{Status: dto.DateRangesInvalid, Message: message}
}

func within(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}
