package domain

import (
	"context"
	"time"
)

type DashboardStats struct {
	TotalSections int               `json:"total_sections"`
	Counts        map[Section]int64 `json:"counts"`
	LastUpdated   *time.Time        `json:"last_updated"`
	Status        string            `json:"status"`
	Sections      []SectionInfo     `json:"sections"`
}

type DashboardUsecase interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	// Export returns an XLSX workbook and its file name.
	Export(ctx context.Context, ownerID string) ([]byte, string, error)
}
