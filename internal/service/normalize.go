package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/eduhub-vn/reporting-api/internal/models"
)

// anomalySink accumulates non-fatal data inconsistencies detected while
// shaping a load. Anomalies are logged and counted, never thrown.
type anomalySink struct {
	anomalies []models.Anomaly
}

func (s *anomalySink) add(code, format string, args ...interface{}) {
	s.anomalies = append(s.anomalies, models.Anomaly{Code: code, Detail: fmt.Sprintf(format, args...)})
}

// Accepted date layouts, tried in order. The upstream mixes full ISO-8601
// timestamps with bare dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseFlexibleDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// moneyMinor converts a raw currency amount into non-negative minor units.
// Absent and null map to 0; negative amounts clamp to 0 and flag an anomaly.
func moneyMinor(raw *float64, field string, sink *anomalySink) int64 {
	if raw == nil {
		return 0
	}
	if *raw < 0 {
		sink.add(models.AnomalyNegativeMoney, "%s: negative amount %v clamped to 0", field, *raw)
		return 0
	}
	return int64(math.Round(*raw))
}

func nonNegativeCount(raw *int, field string, sink *anomalySink) int {
	if raw == nil {
		return 0
	}
	if *raw < 0 {
		sink.add(models.AnomalyNegativeCount, "%s: negative count %d clamped to 0", field, *raw)
		return 0
	}
	return *raw
}

// normalizeAdmin maps the raw admin fragments onto the canonical shape,
// substituting documented defaults for failed fragments. Pure function of
// its input; calling it twice yields identical output.
func normalizeAdmin(frags *AdminFragments, topLimit int, sink *anomalySink) models.AdminFragmentData {
	data := models.AdminFragmentData{
		RevenueSeries: normalizeRevenue(frags.Revenue, sink),
		Enrollments:   normalizeEnrollments(frags.Enrollments, sink),
		TopCourses:    normalizeTopCourses(frags.TopCourses, topLimit, sink),
	}
	data.Totals, data.Changes = normalizeOverview(frags.Overview, sink)
	return data
}

func normalizeOverview(payload *models.SystemOverviewPayload, sink *anomalySink) (models.OverviewTotals, models.ChangeSet) {
	if payload == nil {
		return models.OverviewTotals{}, models.ChangeSet{}
	}

	totals := models.OverviewTotals{
		Students:             nonNegativeCount(payload.TotalStudents, "total_students", sink),
		Teachers:             nonNegativeCount(payload.TotalTeachers, "total_teachers", sink),
		ActiveCourses:        nonNegativeCount(payload.ActiveClasses, "active_classes", sink),
		PendingPaymentsMinor: moneyMinor(payload.PendingPayments, "pending_payments", sink),
	}

	// Some upstream versions report the month, others the year to date.
	// The month figure wins when both are present.
	switch {
	case payload.RevenueThisMonth != nil:
		totals.MonthRevenueMinor = moneyMinor(payload.RevenueThisMonth, "revenue_this_month", sink)
	case payload.RevenueThisYear != nil:
		totals.MonthRevenueMinor = moneyMinor(payload.RevenueThisYear, "revenue_this_year", sink)
	}

	changes := models.ChangeSet{
		StudentsPct: payload.StudentsChangePct,
		TeachersPct: payload.TeachersChangePct,
		CoursesPct:  payload.CoursesChangePct,
		RevenuePct:  payload.RevenueChangePct,
	}
	return totals, changes
}

// normalizeRevenue always returns exactly 12 entries ordered by month.
// Missing months are synthesized at 0; duplicate months are summed because
// duplicates represent partial updates from different revenue categories.
func normalizeRevenue(payload *models.RevenuePayload, sink *anomalySink) []models.MonthRevenue {
	byMonth := make(map[int]int64, 12)
	if payload != nil {
		for _, entry := range payload.MonthlyRevenue {
			if entry.Month < 1 || entry.Month > 12 {
				sink.add(models.AnomalyBadMonth, "revenue entry with month %d dropped", entry.Month)
				continue
			}
			byMonth[entry.Month] += moneyMinor(entry.Revenue, fmt.Sprintf("monthly_revenue[%d]", entry.Month), sink)
		}
	}

	series := make([]models.MonthRevenue, 0, 12)
	for month := 1; month <= 12; month++ {
		series = append(series, models.MonthRevenue{Month: month, RevenueMinor: byMonth[month]})
	}
	return series
}

// normalizeEnrollments parses event dates and drops records whose date is
// unusable rather than failing the stage.
func normalizeEnrollments(payload *models.RecentEnrollmentsPayload, sink *anomalySink) []models.EnrollmentEvent {
	if payload == nil {
		return nil
	}

	events := make([]models.EnrollmentEvent, 0, len(payload.Data))
	for _, record := range payload.Data {
		raw := record.EnrollmentDate
		if raw == "" {
			raw = record.CreatedAt
		}
		date, ok := parseFlexibleDate(raw)
		if !ok {
			sink.add(models.AnomalyBadDate, "enrollment %s: unparseable date %q dropped", record.ID, raw)
			continue
		}
		events = append(events, models.EnrollmentEvent{
			ID:          record.ID,
			StudentName: record.StudentName,
			ClassName:   record.ClassName,
			CourseName:  record.CourseName,
			Date:        date,
		})
	}
	return events
}

// normalizeTopCourses orders descending by enrollment count and truncates to
// limit. Fewer courses stay fewer; the list is never padded.
func normalizeTopCourses(payload *models.TopCoursesPayload, limit int, sink *anomalySink) []models.CourseEnrollment {
	if payload == nil {
		return nil
	}

	courses := make([]models.CourseEnrollment, 0, len(payload.Data))
	for _, record := range payload.Data {
		name := record.Name
		if name == "" {
			name = record.ClassName
		}
		if name == "" {
			continue
		}
		courses = append(courses, models.CourseEnrollment{
			Name:            name,
			EnrollmentCount: nonNegativeCount(record.CurrentStudents, "current_students", sink),
		})
	}

	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].EnrollmentCount > courses[j].EnrollmentCount
	})
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses
}

// normalizeStudent maps the raw student fragments onto the canonical shape.
// Null attendance/grade metrics are preserved as null; zero is a valid grade
// and must never stand in for "unknown".
func normalizeStudent(studentID string, frags *StudentFragments, sink *anomalySink) models.StudentFragmentData {
	data := models.StudentFragmentData{StudentID: studentID}

	if frags.Report != nil {
		report := frags.Report
		data.StudentName = report.StudentInfo.FullName
		if report.StudentInfo.ID != "" {
			data.StudentID = report.StudentInfo.ID
		}
		data.Enrollments = make([]models.StudentEnrollment, 0, len(report.Enrollments))
		for _, record := range report.Enrollments {
			data.Enrollments = append(data.Enrollments, models.StudentEnrollment{
				ClassName:      record.ClassName,
				CourseName:     record.CourseName,
				Status:         normalizeEnrollmentStatus(record.Status, sink),
				AttendanceRate: clampRate(record.AttendanceRate, "enrollment attendance_rate", sink),
				AverageGrade:   record.AverageGrade,
				PaymentStatus:  normalizePaymentStatus(record.PaymentStatus, sink),
			})
		}
		data.PendingAssignments = normalizeAssignments(report.PendingAssignments, sink)
	}

	if frags.Attendance != nil {
		data.AttendanceRate = clampRate(frags.Attendance.Data.AttendanceRate, "attendance_rate", sink)
	}
	if frags.Grade != nil {
		data.AverageGrade = frags.Grade.Data.AverageGrade
	}
	return data
}

func normalizeAssignments(records []models.PendingAssignmentRecord, sink *anomalySink) []models.PendingAssignment {
	assignments := make([]models.PendingAssignment, 0, len(records))
	for _, record := range records {
		due, ok := parseFlexibleDate(record.DueDate)
		if !ok {
			sink.add(models.AnomalyBadDate, "assignment %q: unparseable due date %q dropped", record.Title, record.DueDate)
			continue
		}
		assignments = append(assignments, models.PendingAssignment{
			Title:     record.Title,
			ClassName: record.ClassName,
			DueDate:   due,
		})
	}
	return assignments
}

func normalizeEnrollmentStatus(raw string, sink *anomalySink) models.EnrollmentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACTIVE":
		return models.EnrollmentActive
	case "COMPLETED":
		return models.EnrollmentCompleted
	default:
		if raw != "" {
			sink.add(models.AnomalyUnknownStatus, "enrollment status %q mapped to OTHER", raw)
		}
		return models.EnrollmentOther
	}
}

func normalizePaymentStatus(raw string, sink *anomalySink) models.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PAID":
		return models.PaymentPaid
	case "PARTIAL":
		return models.PaymentPartial
	case "UNPAID":
		return models.PaymentUnpaid
	default:
		if raw != "" {
			sink.add(models.AnomalyUnknownStatus, "payment status %q mapped to UNPAID", raw)
		}
		return models.PaymentUnpaid
	}
}

// clampRate bounds a percentage into [0,100] while preserving null.
func clampRate(raw *float64, field string, sink *anomalySink) *float64 {
	if raw == nil {
		return nil
	}
	value := *raw
	switch {
	case value < 0:
		sink.add(models.AnomalyOutOfRange, "%s: %v clamped to 0", field, value)
		value = 0
	case value > 100:
		sink.add(models.AnomalyOutOfRange, "%s: %v clamped to 100", field, value)
		value = 100
	}
	return &value
}
