package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
	"github.com/scrimplan/scrimplan-api/pkg/export"
)

// ExportFormat identifies a supported download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type scheduleReader interface {
	GetTeamSchedule(ctx context.Context, teamID, userID string) ([]models.TrainingSlot, error)
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportFile is a rendered schedule ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a team's persisted schedule into downloadable files.
type ExportService struct {
	schedules scheduleReader
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	enabled   bool
}

// NewExportService constructs an ExportService.
func NewExportService(schedules scheduleReader, csv csvRenderer, pdf pdfRenderer, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{schedules: schedules, csv: csv, pdf: pdf, enabled: enabled, logger: logger}
}

// ParseFormat validates the requested format string.
func ParseFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportFormatCSV, "":
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// ExportSchedule renders the team's schedule in the requested format. The
// caller must be a member; the schedule reader enforces that.
func (s *ExportService) ExportSchedule(ctx context.Context, teamID, userID string, format ExportFormat) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "schedule export is disabled")
	}
	slots, err := s.schedules.GetTeamSchedule(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}

	table := buildScheduleTable(teamID, slots)

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(table)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(table)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}

	file := &ExportFile{
		Filename:    buildExportFilename(teamID, format),
		ContentType: contentType,
		Payload:     payload,
	}
	s.logger.Info("schedule exported",
		zap.String("team_id", teamID),
		zap.String("format", string(format)),
		zap.Int("slots", len(slots)),
	)
	return file, nil
}

func buildScheduleTable(teamID string, slots []models.TrainingSlot) export.Table {
	rows := make([][]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, []string{
			slot.Date.UTC().Format("2006-01-02"),
			slot.Date.UTC().Format("15:04"),
			fmt.Sprintf("%d", slot.DurationMinutes),
			fmt.Sprintf("%d", slot.AttendeeCount),
			fmt.Sprintf("%.2f", slot.FeasibilityScore),
		})
	}
	return export.Table{
		Title:   fmt.Sprintf("Training Schedule %s", teamID),
		Headers: []string{"Date", "Start", "Duration (min)", "Attendees", "Score"},
		Rows:    rows,
	}
}

func buildExportFilename(teamID string, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	safeTeam := strings.NewReplacer(" ", "_", "/", "-", "\\", "-").Replace(teamID)
	return fmt.Sprintf("schedule_%s_%s.%s", safeTeam, timestamp, format)
}
