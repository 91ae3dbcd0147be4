package models

import "time"

// Fragment names used for logging, metrics and degraded-fragment reporting.
const (
	FragmentOverview    = "system_overview"
	FragmentRevenue     = "revenue"
	FragmentEnrollments = "recent_enrollments"
	FragmentTopCourses  = "top_courses"
	FragmentReport      = "student_report"
	FragmentAttendance  = "attendance_rate"
	FragmentGrade       = "average_grade"
)

// EnrollmentStatus is the canonical enrollment status.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentOther     EnrollmentStatus = "OTHER"
)

// PaymentStatus is the canonical payment status.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "PAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentUnpaid  PaymentStatus = "UNPAID"
)

// Anomaly codes recorded during normalization and derivation.
const (
	AnomalyNegativeMoney  = "negative_money"
	AnomalyNegativeCount  = "negative_count"
	AnomalyOutOfRange     = "out_of_range"
	AnomalyBadDate        = "bad_date"
	AnomalyBadMonth       = "bad_month"
	AnomalyUnknownStatus  = "unknown_status"
	AnomalyFragmentFailed = "fragment_failed"
)

// Anomaly is a detected but non-fatal data inconsistency. Anomalies are
// accumulated and logged, never thrown up the call stack.
type Anomaly struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// OverviewTotals holds the normalized headline counters. Money is in minor
// currency units (VND has no subunit, so whole dong).
type OverviewTotals struct {
	Students             int   `json:"students"`
	Teachers             int   `json:"teachers"`
	ActiveCourses        int   `json:"activeCourses"`
	MonthRevenueMinor    int64 `json:"monthRevenueMinor"`
	PendingPaymentsMinor int64 `json:"pendingPaymentsMinor"`
}

// ChangeSet carries percentage deltas against a prior period. Nil means no
// baseline exists; it is never conflated with a 0% change.
type ChangeSet struct {
	StudentsPct *float64 `json:"studentsPct"`
	TeachersPct *float64 `json:"teachersPct"`
	CoursesPct  *float64 `json:"coursesPct"`
	RevenuePct  *float64 `json:"revenuePct"`
}

// MonthRevenue is one normalized month of the revenue series.
type MonthRevenue struct {
	Month        int   `json:"month"`
	RevenueMinor int64 `json:"revenueMinor"`
}

// EnrollmentEvent is one normalized recent-enrollment record with a parsed
// date. Records with unparseable dates never reach this type.
type EnrollmentEvent struct {
	ID          string    `json:"id"`
	StudentName string    `json:"studentName"`
	ClassName   string    `json:"className"`
	CourseName  string    `json:"courseName"`
	Date        time.Time `json:"date"`
}

// CourseEnrollment is one normalized top-course entry.
type CourseEnrollment struct {
	Name            string `json:"name"`
	EnrollmentCount int    `json:"enrollmentCount"`
}

// StudentEnrollment is one normalized enrollment of the per-student report.
type StudentEnrollment struct {
	ClassName      string           `json:"className"`
	CourseName     string           `json:"courseName"`
	Status         EnrollmentStatus `json:"status"`
	AttendanceRate *float64         `json:"attendanceRatePct"`
	AverageGrade   *float64         `json:"averageGrade"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus"`
}

// PendingAssignment is one normalized pending assignment.
type PendingAssignment struct {
	Title     string    `json:"title"`
	ClassName string    `json:"className"`
	DueDate   time.Time `json:"dueDate"`
}

// AdminFragmentData is the normalized admin-dashboard input, prior to
// derived-metric computation. RevenueSeries always has 12 entries sorted by
// month ascending with duplicates summed.
type AdminFragmentData struct {
	Totals        OverviewTotals
	Changes       ChangeSet
	RevenueSeries []MonthRevenue
	Enrollments   []EnrollmentEvent
	TopCourses    []CourseEnrollment
}

// StudentFragmentData is the normalized student-dashboard input.
type StudentFragmentData struct {
	StudentID          string
	StudentName        string
	Enrollments        []StudentEnrollment
	PendingAssignments []PendingAssignment
	AttendanceRate     *float64
	AverageGrade       *float64
}
