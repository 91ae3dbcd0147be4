package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduhub-vn/reporting-api/internal/models"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

func TestFetchAdminIsolatesFailures(t *testing.T) {
	source := &fakeSource{
		overview:      &models.SystemOverviewPayload{TotalStudents: iptr(10)},
		revenueErr:    appErrors.Clone(appErrors.ErrUpstream, "down"),
		enrollments:   &models.RecentEnrollmentsPayload{},
		topCoursesErr: appErrors.Clone(appErrors.ErrUpstream, "down"),
	}
	f := newFetcher(source, NewMetricsService(), zap.NewNop())

	frags := f.fetchAdmin(context.Background(), 2026, 7, 5)

	require.NotNil(t, frags.Overview)
	assert.NoError(t, frags.OverviewErr)
	assert.Nil(t, frags.Revenue)
	assert.Error(t, frags.RevenueErr)
	assert.NotNil(t, frags.Enrollments)
	assert.Error(t, frags.TopCoursesErr)

	assert.False(t, frags.AllFailed())
	assert.ElementsMatch(t, []string{models.FragmentRevenue, models.FragmentTopCourses}, frags.Degraded())
	assert.Equal(t, 4, source.callCount(), "every fragment is attempted exactly once")
}

func TestFetchAdminAllFailed(t *testing.T) {
	failure := appErrors.Clone(appErrors.ErrUpstream, "down")
	source := &fakeSource{
		overviewErr:    failure,
		revenueErr:     failure,
		enrollmentsErr: failure,
		topCoursesErr:  failure,
	}
	f := newFetcher(source, NewMetricsService(), zap.NewNop())

	frags := f.fetchAdmin(context.Background(), 2026, 7, 5)
	assert.True(t, frags.AllFailed())
	assert.Len(t, frags.Degraded(), 4)
}

func TestFetchStudent(t *testing.T) {
	source := &fakeSource{
		report:        &models.StudentReportPayload{},
		attendanceErr: appErrors.Clone(appErrors.ErrUpstream, "down"),
		grade:         &models.AverageGradePayload{},
	}
	f := newFetcher(source, NewMetricsService(), zap.NewNop())

	frags := f.fetchStudent(context.Background(), "st-1")

	assert.NotNil(t, frags.Report)
	assert.Error(t, frags.AttendanceErr)
	assert.NotNil(t, frags.Grade)
	assert.Equal(t, []string{models.FragmentAttendance}, frags.Degraded())
	assert.Equal(t, 3, source.callCount())
}
