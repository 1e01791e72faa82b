package models

import (
	"time"
)

// DatasetStatus lifecycle marker of an uploaded dataset.
type DatasetStatus string

const (
	DatasetUploaded   DatasetStatus = "uploaded"
	DatasetProcessing DatasetStatus = "processing"
	DatasetCompleted  DatasetStatus = "completed"
)

// Dataset metadata of one uploaded file. FilePath never leaves the server.
type Dataset struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	UserID     string        `gorm:"size:36;not null;index" json:"user_id"`
	Name       string        `gorm:"size:255;not null" json:"name"`
	FilePath   string        `gorm:"size:1024;not null" json:"-"`
	Size       int64         `gorm:"not null" json:"size"`
	Records    int           `gorm:"not null" json:"records"`
	Columns    int           `gorm:"not null" json:"columns"`
	PassRate   int           `gorm:"not null" json:"pass_rate"`
	DateRange  string        `gorm:"size:50" json:"date_range"`
	StartTime  *time.Time    `json:"start_time,omitempty"`
	EndTime    *time.Time    `json:"end_time,omitempty"`
	UploadDate time.Time     `gorm:"index" json:"upload_date"`
	Status     DatasetStatus `gorm:"size:20;default:'uploaded'" json:"status"`
}

// TableName overrides the gorm table name.
func (Dataset) TableName() string {
	return "datasets"
}
