package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
	"github.com/examdesk/complaints-api/pkg/export"
)

// ExportService renders a caller's scoped complaint list as CSV or PDF.
// The export never widens visibility: it reuses the same scoped listing the
// API serves.
type ExportService struct {
	complaints *ComplaintService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(complaints *ComplaintService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		complaints: complaints,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// ExportResult carries rendered bytes and HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

var exportHeaders = []string{"Reference", "Student", "Exam", "Course", "Department", "Faculty", "Status", "Created", "Updated"}

// Export renders all complaints visible to the caller in the given format.
func (s *ExportService) Export(ctx context.Context, identity *models.Identity, format, status string) (*ExportResult, error) {
	complaints, _, err := s.complaints.List(ctx, identity, ListComplaintsRequest{Status: status, Page: 1, PageSize: 200})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(complaints))}
	for _, c := range complaints {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Reference":  c.ReferenceNumber,
			"Student":    c.StudentName,
			"Exam":       c.ExamName,
			"Course":     c.Course,
			"Department": c.Department,
			"Faculty":    c.Faculty,
			"Status":     string(c.Status),
			"Created":    c.CreatedAt.Format(time.RFC3339),
			"Updated":    c.UpdatedAt.Format(time.RFC3339),
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("complaints-%s.csv", stamp),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Exam Complaints")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("complaints-%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
