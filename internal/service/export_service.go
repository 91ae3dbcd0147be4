package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/eduhub-vn/reporting-api/internal/dto"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
	"github.com/eduhub-vn/reporting-api/pkg/export"
)

// Export formats accepted by the export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

type adminDashboardLoader interface {
	Admin(ctx context.Context, req AdminDashboardRequest) (*dto.AdminDashboardResponse, *LoadReport, error)
}

// ExportService renders an admin dashboard snapshot into a downloadable
// document. Exports run the same pipeline as the JSON endpoint, so a degraded
// load exports its documented defaults rather than failing.
type ExportService struct {
	dashboard adminDashboardLoader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(dashboard adminDashboardLoader) *ExportService {
	return &ExportService{
		dashboard: dashboard,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		now:       time.Now,
	}
}

// AdminSnapshot renders the current admin dashboard in the requested format.
func (s *ExportService) AdminSnapshot(ctx context.Context, req AdminDashboardRequest, format string) (*ExportFile, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	view, _, err := s.dashboard.Admin(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset := adminDataset(view)
	stamp := s.now().Format("20060102-150405")

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportFile{
			FileName:    fmt.Sprintf("admin-dashboard-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		content, err := s.pdf.Render(dataset, "Admin Dashboard Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
		}
		return &ExportFile{
			FileName:    fmt.Sprintf("admin-dashboard-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
}

// adminDataset flattens the dashboard view into metric/value rows. Formatted
// strings are exported as rendered, so a spreadsheet shows exactly what the
// dashboard showed.
func adminDataset(view *dto.AdminDashboardResponse) export.Dataset {
	dataset := export.Dataset{Headers: []string{"Section", "Metric", "Value"}}

	row := func(section, metric, value string) {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Section": section,
			"Metric":  metric,
			"Value":   value,
		})
	}

	row("Overview", "Generated At", view.GeneratedAt)
	row("Overview", "Total Students", strconv.Itoa(view.Totals.Students))
	row("Overview", "Total Teachers", strconv.Itoa(view.Totals.Teachers))
	row("Overview", "Active Courses", strconv.Itoa(view.Totals.ActiveCourses))
	row("Overview", "Month Revenue", view.Totals.MonthRevenue)
	row("Overview", "Pending Payments", view.PendingPayments)
	row("Overview", "Attendance Rate", view.AttendanceRate)

	row("Changes", "Students", view.Changes.Students)
	row("Changes", "Teachers", view.Changes.Teachers)
	row("Changes", "Courses", view.Changes.Courses)
	row("Changes", "Revenue", view.Changes.Revenue)

	for i, label := range view.WeekSignups.Labels {
		row("Signups", label, strconv.Itoa(view.WeekSignups.Values[i]))
	}
	for i, label := range view.Revenue.Labels {
		row("Revenue", label, view.Revenue.Formatted[i])
	}
	for _, course := range view.TopCourses {
		row("Top Courses", course.Name, strconv.Itoa(course.Count))
	}

	return dataset
}
