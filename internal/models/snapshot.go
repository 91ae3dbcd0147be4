package models

import "time"

// ActivityKind classifies a recent-activity entry for the dashboard feed.
type ActivityKind string

const (
	ActivityInfo    ActivityKind = "info"
	ActivitySuccess ActivityKind = "success"
	ActivityWarning ActivityKind = "warning"
	ActivityError   ActivityKind = "error"
)

// Activity is one derived recent-activity entry, newest first.
type Activity struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	RelativeTime string       `json:"relativeTime"`
	Kind         ActivityKind `json:"kind"`
}

// TopCourseStat pairs an enrollment count with its bar-chart ratio against
// the maximum count (0 when every count is 0).
type TopCourseStat struct {
	Name            string  `json:"name"`
	EnrollmentCount int     `json:"enrollmentCount"`
	Ratio           float64 `json:"ratio"`
}

// ReportSnapshot is the immutable, fully-derived result of one admin
// dashboard load. It is constructed fresh per load and never mutated.
type ReportSnapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`

	Totals  OverviewTotals `json:"totals"`
	Changes ChangeSet      `json:"changes"`

	// WeekSignups and WeekLabels always hold exactly 7 index-aligned
	// entries; index 6 is today at computation time.
	WeekSignups []int    `json:"weekSignups"`
	WeekLabels  []string `json:"weekLabels"`

	// RevenueSeries always holds exactly 12 entries ordered by month.
	RevenueSeries []MonthRevenue `json:"revenueSeries"`

	RecentActivities []Activity      `json:"recentActivities"`
	TopCourses       []TopCourseStat `json:"topCourses"`

	AttendanceRatePct *float64 `json:"attendanceRatePct"`
}

// StudentReportSnapshot is the immutable result of one student dashboard
// load.
type StudentReportSnapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`

	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`

	Enrollments        []StudentEnrollment `json:"enrollments"`
	PendingAssignments []PendingAssignment `json:"pendingAssignments"`

	ActiveCourses    int `json:"activeCourses"`
	CompletedCourses int `json:"completedCourses"`
	PendingCount     int `json:"pendingCount"`

	AttendanceRatePct *float64 `json:"attendanceRatePct"`
	AverageGrade      *float64 `json:"averageGrade"`
}
