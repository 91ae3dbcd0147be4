package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhub-vn/reporting-api/internal/models"
)

func TestBucketWeekSignups(t *testing.T) {
	// Friday 2026-08-28, mid-afternoon.
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

	events := []models.EnrollmentEvent{
		{ID: "today", Date: time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)},
		{ID: "today-too", Date: time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)},
		{ID: "two-days", Date: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)},
		{ID: "six-days", Date: time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)},
		{ID: "outside", Date: time.Date(2026, 8, 21, 23, 0, 0, 0, time.UTC)},
		{ID: "future", Date: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)},
	}

	signups, labels := bucketWeekSignups(events, now)

	require.Len(t, signups, 7)
	require.Len(t, labels, 7)

	assert.Equal(t, []int{1, 0, 0, 0, 1, 0, 2}, signups)
	assert.Equal(t, "Fri", labels[6], "slot 6 is always today")
	assert.Equal(t, "Sat", labels[0])
}

func TestBucketWeekSignupsEmptyWindowKeepsLabels(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	signups, labels := bucketWeekSignups(nil, now)

	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, signups)
	for _, label := range labels {
		assert.NotEmpty(t, label, "labels come from the calendar, not the data")
	}
}

func TestRelativeTimeAgoBrackets(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero delta", now, "just now"},
		{"under a minute", now.Add(-59 * time.Second), "just now"},
		{"exactly one minute", now.Add(-60 * time.Second), "1 minutes ago"},
		{"under an hour", now.Add(-59 * time.Minute), "59 minutes ago"},
		{"exactly one hour", now.Add(-time.Hour), "1 hours ago"},
		{"under a day", now.Add(-23 * time.Hour), "23 hours ago"},
		{"exactly one day", now.Add(-24 * time.Hour), "1 days ago"},
		{"under a week", now.Add(-6*24*time.Hour - time.Hour), "6 days ago"},
		{"a week", now.Add(-7 * 24 * time.Hour), "21/08/2026"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, relativeTimeAgo(tc.t, now))
		})
	}
}

func TestDeriveActivitiesNewestFirst(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []models.EnrollmentEvent{
		{ID: "old", StudentName: "An", CourseName: "Math", Date: now.Add(-48 * time.Hour)},
		{ID: "new", StudentName: "Binh", ClassName: "10A", Date: now.Add(-5 * time.Minute)},
	}

	activities := deriveActivities(events, now)

	require.Len(t, activities, 2)
	assert.Equal(t, "new", activities[0].ID)
	assert.Equal(t, "Binh enrolled in 10A", activities[0].Text, "class name is the fallback target")
	assert.Equal(t, "5 minutes ago", activities[0].RelativeTime)
	assert.Equal(t, models.ActivitySuccess, activities[0].Kind)
	assert.Equal(t, "An enrolled in Math", activities[1].Text)
}

func TestDeriveTopCourseStatsRatios(t *testing.T) {
	stats := deriveTopCourseStats([]models.CourseEnrollment{
		{Name: "Math", EnrollmentCount: 40},
		{Name: "Physics", EnrollmentCount: 10},
		{Name: "Art", EnrollmentCount: 0},
	})

	require.Len(t, stats, 3)
	assert.Equal(t, 1.0, stats[0].Ratio)
	assert.Equal(t, 0.25, stats[1].Ratio)
	assert.Zero(t, stats[2].Ratio)
}

func TestDeriveTopCourseStatsAllZero(t *testing.T) {
	stats := deriveTopCourseStats([]models.CourseEnrollment{
		{Name: "Math"},
		{Name: "Physics"},
	})
	for _, stat := range stats {
		assert.Zero(t, stat.Ratio, "all-zero counts must not divide by zero")
	}
}

func TestDeriveStudentCounts(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	snapshot := deriveStudent(models.StudentFragmentData{
		StudentID:   "st-1",
		StudentName: "Tran Thi B",
		Enrollments: []models.StudentEnrollment{
			{Status: models.EnrollmentActive},
			{Status: models.EnrollmentActive},
			{Status: models.EnrollmentCompleted},
			{Status: models.EnrollmentOther},
		},
		PendingAssignments: []models.PendingAssignment{{Title: "Essay"}},
	}, now)

	assert.Equal(t, 2, snapshot.ActiveCourses)
	assert.Equal(t, 1, snapshot.CompletedCourses)
	assert.Equal(t, 1, snapshot.PendingCount)
	assert.Equal(t, now, snapshot.GeneratedAt)
	assert.Nil(t, snapshot.AttendanceRatePct)
}

func TestDeriveAdminSnapshotShape(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	data := models.AdminFragmentData{
		RevenueSeries: normalizeRevenue(nil, &anomalySink{}),
	}

	snapshot := deriveAdmin(data, nil, now)

	assert.Len(t, snapshot.WeekSignups, 7)
	assert.Len(t, snapshot.WeekLabels, 7)
	assert.Len(t, snapshot.RevenueSeries, 12)
	assert.NotNil(t, snapshot.RecentActivities)
	assert.Nil(t, snapshot.AttendanceRatePct)
}
