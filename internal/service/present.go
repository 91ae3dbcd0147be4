package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eduhub-vn/reporting-api/internal/dto"
	"github.com/eduhub-vn/reporting-api/internal/models"
)

// notAvailable is the rendered sentinel for metrics with no data. It is
// distinct from "0" on purpose: zero is a valid value.
const notAvailable = "N/A"

// noBaseline is rendered for percentage deltas without a prior period.
const noBaseline = "—"

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// presentAdmin is the pure presentation transform from a derived snapshot to
// the renderer view-model. No I/O; deterministic for a given snapshot.
func presentAdmin(snapshot *models.ReportSnapshot) *dto.AdminDashboardResponse {
	view := &dto.AdminDashboardResponse{
		GeneratedAt: snapshot.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Totals: dto.TotalsCard{
			Students:      snapshot.Totals.Students,
			Teachers:      snapshot.Totals.Teachers,
			ActiveCourses: snapshot.Totals.ActiveCourses,
			MonthRevenue:  formatVND(snapshot.Totals.MonthRevenueMinor),
		},
		Changes: dto.ChangesCard{
			Students: formatChange(snapshot.Changes.StudentsPct),
			Teachers: formatChange(snapshot.Changes.TeachersPct),
			Courses:  formatChange(snapshot.Changes.CoursesPct),
			Revenue:  formatChange(snapshot.Changes.RevenuePct),
		},
		WeekSignups: dto.BarChart{
			Labels: snapshot.WeekLabels,
			Values: snapshot.WeekSignups,
		},
		AttendanceRate:  formatRate(snapshot.AttendanceRatePct),
		PendingPayments: formatVND(snapshot.Totals.PendingPaymentsMinor),
	}

	view.Revenue = dto.RevenueChart{
		Labels:    make([]string, 0, len(snapshot.RevenueSeries)),
		Values:    make([]int64, 0, len(snapshot.RevenueSeries)),
		Formatted: make([]string, 0, len(snapshot.RevenueSeries)),
	}
	for _, month := range snapshot.RevenueSeries {
		view.Revenue.Labels = append(view.Revenue.Labels, monthLabels[month.Month-1])
		view.Revenue.Values = append(view.Revenue.Values, month.RevenueMinor)
		view.Revenue.Formatted = append(view.Revenue.Formatted, formatVND(month.RevenueMinor))
	}

	view.TopCourses = make([]dto.CourseBar, 0, len(snapshot.TopCourses))
	for _, course := range snapshot.TopCourses {
		view.TopCourses = append(view.TopCourses, dto.CourseBar{
			Name:  course.Name,
			Count: course.EnrollmentCount,
			Ratio: course.Ratio,
		})
	}

	view.Activities = make([]dto.ActivityItem, 0, len(snapshot.RecentActivities))
	for _, activity := range snapshot.RecentActivities {
		view.Activities = append(view.Activities, dto.ActivityItem{
			ID:           activity.ID,
			Text:         activity.Text,
			RelativeTime: activity.RelativeTime,
			Kind:         string(activity.Kind),
		})
	}

	return view
}

// presentStudent renders the student snapshot.
func presentStudent(snapshot *models.StudentReportSnapshot) *dto.StudentDashboardResponse {
	view := &dto.StudentDashboardResponse{
		GeneratedAt:      snapshot.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		StudentID:        snapshot.StudentID,
		StudentName:      snapshot.StudentName,
		ActiveCourses:    snapshot.ActiveCourses,
		CompletedCourses: snapshot.CompletedCourses,
		PendingCount:     snapshot.PendingCount,
		AttendanceRate:   formatRate(snapshot.AttendanceRatePct),
		AverageGrade:     formatGrade(snapshot.AverageGrade),
	}

	view.Enrollments = make([]dto.EnrollmentCard, 0, len(snapshot.Enrollments))
	for _, enrollment := range snapshot.Enrollments {
		view.Enrollments = append(view.Enrollments, dto.EnrollmentCard{
			ClassName:      enrollment.ClassName,
			CourseName:     enrollment.CourseName,
			Status:         string(enrollment.Status),
			AttendanceRate: formatRate(enrollment.AttendanceRate),
			AverageGrade:   formatGrade(enrollment.AverageGrade),
			PaymentStatus:  string(enrollment.PaymentStatus),
		})
	}

	view.PendingAssignments = make([]dto.AssignmentCard, 0, len(snapshot.PendingAssignments))
	for _, assignment := range snapshot.PendingAssignments {
		view.PendingAssignments = append(view.PendingAssignments, dto.AssignmentCard{
			Title:     assignment.Title,
			ClassName: assignment.ClassName,
			DueDate:   assignment.DueDate.Format("02/01/2006"),
		})
	}

	return view
}

// formatVND renders whole-dong amounts with dot thousands separators, the
// convention used across the product ("12.500.000 ₫").
func formatVND(minor int64) string {
	digits := strconv.FormatInt(minor, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	formatted := strings.Join(groups, ".")
	if negative {
		formatted = "-" + formatted
	}
	return formatted + " ₫"
}

// formatChange renders a sign-bearing percentage delta, or the no-baseline
// placeholder when the prior period is unknown.
func formatChange(pct *float64) string {
	if pct == nil {
		return noBaseline
	}
	return fmt.Sprintf("%+.1f%%", *pct)
}

// formatRate renders an attendance percentage, or "N/A" when unavailable.
func formatRate(pct *float64) string {
	if pct == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f%%", *pct)
}

// formatGrade renders an average grade, or "N/A" when no grades exist.
func formatGrade(grade *float64) string {
	if grade == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f", *grade)
}
