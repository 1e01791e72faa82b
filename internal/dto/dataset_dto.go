package dto

import "time"

// UploadResponse summary returned after a successful upload
type UploadResponse struct {
	Records        int        `json:"records"`
	Columns        int        `json:"columns"`
	PassRate       int        `json:"passRate"`
	DateRange      string     `json:"dateRange"`
	FileID         string     `json:"fileId"`
	StartTimestamp *time.Time `json:"startTimestamp,omitempty"`
	EndTimestamp   *time.Time `json:"endTimestamp,omitempty"`
}

// DatasetSummary owner-visible view of a dataset. Excludes the storage path.
type DatasetSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Columns    int       `json:"columns"`
	Records    int       `json:"records"`
	PassRate   int       `json:"passRate"`
	DateRange  string    `json:"dateRange"`
	UploadDate time.Time `json:"uploadDate"`
	Status     string    `json:"status"`
}

// DateRangesRequest train, test and simulation windows
type DateRangesRequest struct {
	TrainStart time.Time `json:"trainStart" binding:"required"`
	TrainEnd   time.Time `json:"trainEnd" binding:"required"`
	TestStart  time.Time `json:"testStart" binding:"required"`
	TestEnd    time.Time `json:"testEnd" binding:"required"`
	SimStart   time.Time `json:"simStart" binding:"required"`
	SimEnd     time.Time `json:"simEnd" binding:"required"`
}

const (
	DateRangesValid   = "valid"
	DateRangesInvalid = "invalid"
)

// DateRangesResponse validation outcome
type DateRangesResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Counts  *DateRangesCounts `json:"counts,omitempty"`
}

// DateRangesCounts rows falling in each window
type DateRangesCounts struct {
	Training   int `json:"training"`
	Testing    int `json:"testing"`
	Simulation int `json:"simulation"`
}
