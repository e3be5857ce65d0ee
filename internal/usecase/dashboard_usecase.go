package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/security"

	"github.com/xuri/excelize/v2"
)

type dashboardUsecase struct {
	repo  domain.SectionRepository
	audit *security.SecurityLogger
	now   func() time.Time
}

func NewDashboardUsecase(repo domain.SectionRepository, audit *security.SecurityLogger) domain.DashboardUsecase {
	if audit == nil {
		audit = security.NopLogger()
	}
	return &dashboardUsecase{repo: repo, audit: audit, now: time.Now}
}

func (u *dashboardUsecase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		TotalSections: len(domain.AllSections),
		Counts:        make(map[domain.Section]int64, len(domain.AllSections)),
		Status:        "Live",
		Sections:      make([]domain.SectionInfo, 0, len(domain.AllSections)),
	}
	for _, section := range domain.AllSections {
		n, err := u.repo.Count(ctx, section)
		if err != nil {
			return nil, apperror.ConnectionFailed(err)
		}
		stats.Counts[section] = n
		stats.Sections = append(stats.Sections, section.Info())
	}

	last, err := u.repo.LastUpdated(ctx)
	if err != nil {
		return nil, apperror.ConnectionFailed(err)
	}
	stats.LastUpdated = last
	return stats, nil
}

// exportColumns is the sheet layout for a section: id, the inserted columns, created_at.
func exportColumns(section domain.Section) []string {
	form, err := domain.NewSectionForm(section)
	if err != nil {
		return nil
	}
	cols := []string{"id"}
	for _, c := range form.Row("", "").Columns() {
		if c == "user_id" {
			continue
		}
		cols = append(cols, c)
	}
	return append(cols, "created_at")
}

// Export writes the owner's rows of every section to one workbook, a sheet per section.
func (u *dashboardUsecase) Export(ctx context.Context, ownerID string) ([]byte, string, error) {
	if ownerID == "" {
		return nil, "", apperror.Unauthorized("User not authenticated")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	total := 0
	for i, section := range domain.AllSections {
		rows, err := u.repo.List(ctx, section, ownerID)
		if err != nil {
			return nil, "", apperror.Internal(err)
		}
		total += len(rows)

		sheet := section.Info().Title
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, "", fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		columns := exportColumns(section)
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			f.SetCellValue(sheet, cell, strings.ToUpper(strings.ReplaceAll(col, "_", " ")))
		}
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		f.SetCellStyle(sheet, "A1", endCell, headerStyle)

		for r, row := range rows {
			for c, col := range columns {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				f.SetCellValue(sheet, cell, cellValue(row[col]))
			}
		}

		for c := range columns {
			colName, _ := excelize.ColumnNumberToName(c + 1)
			f.SetColWidth(sheet, colName, colName, 24)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	u.audit.LogUserEvent(ctx, security.EventDataExport, ownerID, requestID(ctx), map[string]any{"rows": total})

	filename := fmt.Sprintf("portfolio_export_%s.xlsx", u.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(time.RFC3339)
	case *string:
		if t == nil {
			return ""
		}
		return *t
	default:
		return t
	}
}
