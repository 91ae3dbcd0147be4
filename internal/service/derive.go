package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/eduhub-vn/reporting-api/internal/models"
)

const weekWindow = 7

// deriveAdmin computes the statistics the source does not provide and
// assembles the immutable admin snapshot. Always returns a structurally
// complete snapshot: 7 week slots, 12 revenue months, labels present even
// when every count is 0.
func deriveAdmin(data models.AdminFragmentData, attendance *float64, now time.Time) *models.ReportSnapshot {
	signups, labels := bucketWeekSignups(data.Enrollments, now)

	return &models.ReportSnapshot{
		GeneratedAt:       now,
		Totals:            data.Totals,
		Changes:           data.Changes,
		WeekSignups:       signups,
		WeekLabels:        labels,
		RevenueSeries:     data.RevenueSeries,
		RecentActivities:  deriveActivities(data.Enrollments, now),
		TopCourses:        deriveTopCourseStats(data.TopCourses),
		AttendanceRatePct: attendance,
	}
}

// deriveStudent assembles the student snapshot with its derived counts.
func deriveStudent(data models.StudentFragmentData, now time.Time) *models.StudentReportSnapshot {
	snapshot := &models.StudentReportSnapshot{
		GeneratedAt:        now,
		StudentID:          data.StudentID,
		StudentName:        data.StudentName,
		Enrollments:        data.Enrollments,
		PendingAssignments: data.PendingAssignments,
		PendingCount:       len(data.PendingAssignments),
		AttendanceRatePct:  data.AttendanceRate,
		AverageGrade:       data.AverageGrade,
	}
	for _, enrollment := range data.Enrollments {
		switch enrollment.Status {
		case models.EnrollmentActive:
			snapshot.ActiveCourses++
		case models.EnrollmentCompleted:
			snapshot.CompletedCourses++
		}
	}
	return snapshot
}

// bucketWeekSignups counts enrollments per day over the rolling 7-day window
// ending today. Slot 6 is today, slot 0 six days ago. Labels come purely
// from the calendar, so they are present even for empty buckets. Two
// enrollments on the same day both count; there is no per-student
// deduplication.
func bucketWeekSignups(events []models.EnrollmentEvent, now time.Time) ([]int, []string) {
	today := midnight(now)

	signups := make([]int, weekWindow)
	labels := make([]string, weekWindow)
	for i := 0; i < weekWindow; i++ {
		day := today.AddDate(0, 0, i-(weekWindow-1))
		labels[i] = day.Format("Mon")
	}

	for _, event := range events {
		eventDay := midnight(event.Date.In(now.Location()))
		daysDiff := int(today.Sub(eventDay).Hours() / 24)
		if daysDiff < 0 || daysDiff >= weekWindow {
			continue
		}
		signups[weekWindow-1-daysDiff]++
	}
	return signups, labels
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// relativeTimeAgo renders a timestamp relative to now. Brackets are
// inclusive on their lower bound: exactly 60s reads "1 minutes ago", not
// "just now". Anything a week old or older falls back to the absolute date.
func relativeTimeAgo(t, now time.Time) string {
	delta := now.Sub(t)
	switch {
	case delta < time.Minute:
		return "just now"
	case delta < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(delta.Minutes()))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(delta.Hours()))
	case delta < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(delta.Hours()/24))
	default:
		return t.Format("02/01/2006")
	}
}

// deriveActivities turns recent enrollments into the activity feed, newest
// first.
func deriveActivities(events []models.EnrollmentEvent, now time.Time) []models.Activity {
	ordered := make([]models.EnrollmentEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.After(ordered[j].Date)
	})

	activities := make([]models.Activity, 0, len(ordered))
	for _, event := range ordered {
		target := event.CourseName
		if target == "" {
			target = event.ClassName
		}
		activities = append(activities, models.Activity{
			ID:           event.ID,
			Text:         fmt.Sprintf("%s enrolled in %s", event.StudentName, target),
			RelativeTime: relativeTimeAgo(event.Date, now),
			Kind:         models.ActivitySuccess,
		})
	}
	return activities
}

// deriveTopCourseStats computes each bar's height fraction against the
// maximum count. When every count is 0 all ratios are 0, never NaN.
func deriveTopCourseStats(courses []models.CourseEnrollment) []models.TopCourseStat {
	maxCount := 0
	for _, course := range courses {
		if course.EnrollmentCount > maxCount {
			maxCount = course.EnrollmentCount
		}
	}

	stats := make([]models.TopCourseStat, 0, len(courses))
	for _, course := range courses {
		ratio := 0.0
		if maxCount > 0 {
			ratio = float64(course.EnrollmentCount) / float64(maxCount)
		}
		stats = append(stats, models.TopCourseStat{
			Name:            course.Name,
			EnrollmentCount: course.EnrollmentCount,
			Ratio:           ratio,
		})
	}
	return stats
}
