package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/export"
)

type occupancyRepository interface {
	ListOccupancy(ctx context.Context) ([]models.RoomOccupancy, error)
}

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportService produces downloadable occupancy reports.
type ReportService struct {
	rooms  occupancyRepository
	logger *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(rooms occupancyRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{rooms: rooms, logger: logger}
}

// Occupancy renders the current occupancy across all rooms in the
// requested format. Counts are read live from the assignment table.
func (s *ReportService) Occupancy(ctx context.Context, format ReportFormat) ([]byte, string, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report format %q", format))
	}

	rows, err := s.rooms.ListOccupancy(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupancy")
	}

	table := export.Table{
		Headers: []string{"Floor", "Room", "Capacity", "Occupants", "Free"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, map[string]string{
			"Floor":     row.FloorName,
			"Room":      row.RoomName,
			"Capacity":  strconv.Itoa(row.Capacity),
			"Occupants": strconv.Itoa(row.Occupants),
			"Free":      strconv.Itoa(row.Capacity - row.Occupants),
		})
	}

	switch format {
	case ReportFormatPDF:
		payload, err := export.PDF(table, "Hostel Occupancy Report")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return payload, "application/pdf", nil
	default:
		payload, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return payload, "text/csv", nil
	}
}
