package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhub-vn/reporting-api/internal/dto"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

type fakeAdminLoader struct {
	view *dto.AdminDashboardResponse
	err  error
}

func (f *fakeAdminLoader) Admin(context.Context, AdminDashboardRequest) (*dto.AdminDashboardResponse, *LoadReport, error) {
	return f.view, &LoadReport{}, f.err
}

func testAdminView() *dto.AdminDashboardResponse {
	return &dto.AdminDashboardResponse{
		GeneratedAt: "2026-08-28T12:00:00Z",
		Totals: dto.TotalsCard{
			Students:      120,
			Teachers:      15,
			ActiveCourses: 8,
			MonthRevenue:  "12.500.000 ₫",
		},
		Changes: dto.ChangesCard{Students: "+4.2%", Teachers: "—", Courses: "—", Revenue: "—"},
		WeekSignups: dto.BarChart{
			Labels: []string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri"},
			Values: []int{0, 1, 0, 0, 2, 0, 3},
		},
		Revenue: dto.RevenueChart{
			Labels:    []string{"Jan"},
			Values:    []int64{100},
			Formatted: []string{"100 ₫"},
		},
		TopCourses:      []dto.CourseBar{{Name: "Math", Count: 40, Ratio: 1}},
		AttendanceRate:  "N/A",
		PendingPayments: "300.000 ₫",
	}
}

func TestExportAdminSnapshotCSV(t *testing.T) {
	svc := NewExportService(&fakeAdminLoader{view: testAdminView()})

	file, err := svc.AdminSnapshot(context.Background(), AdminDashboardRequest{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.FileName, "admin-dashboard-"))
	assert.True(t, strings.HasSuffix(file.FileName, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(file.Content))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"Section", "Metric", "Value"}, records[0])

	var foundRevenue, foundAttendance bool
	for _, record := range records[1:] {
		if record[1] == "Month Revenue" {
			foundRevenue = true
			assert.Equal(t, "12.500.000 ₫", record[2], "export shows what the dashboard showed")
		}
		if record[1] == "Attendance Rate" {
			foundAttendance = true
			assert.Equal(t, "N/A", record[2])
		}
	}
	assert.True(t, foundRevenue)
	assert.True(t, foundAttendance)
}

func TestExportAdminSnapshotPDF(t *testing.T) {
	svc := NewExportService(&fakeAdminLoader{view: testAdminView()})

	file, err := svc.AdminSnapshot(context.Background(), AdminDashboardRequest{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportAdminSnapshotUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&fakeAdminLoader{view: testAdminView()})

	_, err := svc.AdminSnapshot(context.Background(), AdminDashboardRequest{}, "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportAdminSnapshotLoadFailure(t *testing.T) {
	svc := NewExportService(&fakeAdminLoader{err: appErrors.Clone(appErrors.ErrUpstream, "down")})

	_, err := svc.AdminSnapshot(context.Background(), AdminDashboardRequest{}, ExportFormatCSV)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}
