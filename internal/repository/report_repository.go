package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eduhub-vn/reporting-api/internal/models"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

// ReportRepository implements the fragment source directly against the
// product database. It returns the same raw payload shapes as the upstream
// client so the normalization stage treats both sources uniformly.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository instantiates the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SystemOverview aggregates the headline counters in one query.
func (r *ReportRepository) SystemOverview(ctx context.Context) (*models.SystemOverviewPayload, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE is_active = TRUE) AS total_students,
        (SELECT COUNT(*) FROM teachers WHERE is_active = TRUE) AS total_teachers,
        (SELECT COUNT(*) FROM classes WHERE status = 'ACTIVE') AS active_classes,
        (SELECT COALESCE(SUM(amount), 0) FROM payments
            WHERE status = 'PAID' AND date_trunc('month', paid_at) = date_trunc('month', NOW())) AS revenue_this_month,
        (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'PENDING') AS pending_payments`

	var payload models.SystemOverviewPayload
	if err := r.db.GetContext(ctx, &payload, query); err != nil {
		return nil, fmt.Errorf("query system overview: %w", err)
	}
	return &payload, nil
}

// Revenue returns the per-month revenue of the given year. Months without
// payments are absent from the result; normalization fills the gaps.
func (r *ReportRepository) Revenue(ctx context.Context, year int) (*models.RevenuePayload, error) {
	const query = `SELECT EXTRACT(MONTH FROM paid_at)::INT AS month, SUM(amount) AS revenue
        FROM payments
        WHERE status = 'PAID' AND EXTRACT(YEAR FROM paid_at) = $1
        GROUP BY 1
        ORDER BY 1`

	var entries []models.MonthlyRevenueEntry
	if err := r.db.SelectContext(ctx, &entries, query, year); err != nil {
		return nil, fmt.Errorf("query revenue for %d: %w", year, err)
	}
	return &models.RevenuePayload{MonthlyRevenue: entries}, nil
}

// RecentEnrollments returns enrollments created within the window.
func (r *ReportRepository) RecentEnrollments(ctx context.Context, windowDays int) (*models.RecentEnrollmentsPayload, error) {
	const query = `SELECT e.id, s.full_name AS student_name, cl.name AS class_name, co.name AS course_name,
            to_char(e.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS created_at
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN classes cl ON cl.id = e.class_id
        JOIN courses co ON co.id = cl.course_id
        WHERE e.created_at >= NOW() - ($1 || ' days')::INTERVAL
        ORDER BY e.created_at DESC`

	var records []models.RecentEnrollmentRecord
	if err := r.db.SelectContext(ctx, &records, query, windowDays); err != nil {
		return nil, fmt.Errorf("query recent enrollments: %w", err)
	}
	return &models.RecentEnrollmentsPayload{Data: records}, nil
}

// TopCourses returns the courses with the highest active enrollment counts.
func (r *ReportRepository) TopCourses(ctx context.Context, limit int) (*models.TopCoursesPayload, error) {
	const query = `SELECT co.name, COUNT(e.id)::INT AS current_students
        FROM courses co
        JOIN classes cl ON cl.course_id = co.id
        JOIN enrollments e ON e.class_id = cl.id AND e.status = 'ACTIVE'
        GROUP BY co.name
        ORDER BY current_students DESC, co.name ASC
        LIMIT $1`

	var records []models.TopCourseRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("query top courses: %w", err)
	}
	return &models.TopCoursesPayload{Data: records}, nil
}

// StudentReport assembles the per-student report fragment.
func (r *ReportRepository) StudentReport(ctx context.Context, studentID string) (*models.StudentReportPayload, error) {
	payload := &models.StudentReportPayload{}

	const infoQuery = `SELECT id, full_name FROM students WHERE id = $1`
	if err := r.db.GetContext(ctx, &payload.StudentInfo, infoQuery, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("query student info: %w", err)
	}

	const enrollmentsQuery = `SELECT cl.name AS class_name, co.name AS course_name, e.status,
            e.attendance_rate, e.average_grade, e.payment_status
        FROM enrollments e
        JOIN classes cl ON cl.id = e.class_id
        JOIN courses co ON co.id = cl.course_id
        WHERE e.student_id = $1
        ORDER BY e.created_at DESC`
	if err := r.db.SelectContext(ctx, &payload.Enrollments, enrollmentsQuery, studentID); err != nil {
		return nil, fmt.Errorf("query student enrollments: %w", err)
	}

	const assignmentsQuery = `SELECT a.title, cl.name AS class_name, to_char(a.due_date, 'YYYY-MM-DD') AS due_date
        FROM assignments a
        JOIN classes cl ON cl.id = a.class_id
        JOIN enrollments e ON e.class_id = a.class_id AND e.student_id = $1
        WHERE a.due_date >= NOW() AND NOT EXISTS (
            SELECT 1 FROM submissions sub WHERE sub.assignment_id = a.id AND sub.student_id = $1)
        ORDER BY a.due_date ASC`
	if err := r.db.SelectContext(ctx, &payload.PendingAssignments, assignmentsQuery, studentID); err != nil {
		return nil, fmt.Errorf("query pending assignments: %w", err)
	}

	return payload, nil
}

// AttendanceRate returns the overall attendance rate for a student, or null
// when no sessions have been recorded yet.
func (r *ReportRepository) AttendanceRate(ctx context.Context, studentID string) (*models.AttendanceRatePayload, error) {
	const query = `SELECT CASE WHEN COUNT(*) = 0 THEN NULL
            ELSE (SUM(CASE WHEN att.status = 'PRESENT' THEN 1 ELSE 0 END)::DECIMAL / COUNT(*)) * 100 END AS attendance_rate
        FROM attendances att
        JOIN enrollments e ON e.id = att.enrollment_id
        WHERE e.student_id = $1`

	payload := &models.AttendanceRatePayload{}
	if err := r.db.GetContext(ctx, &payload.Data.AttendanceRate, query, studentID); err != nil {
		return nil, fmt.Errorf("query attendance rate: %w", err)
	}
	return payload, nil
}

// AverageGrade returns the average grade for a student, or null when no
// grades exist. Zero is a valid grade and is never substituted for null.
func (r *ReportRepository) AverageGrade(ctx context.Context, studentID string) (*models.AverageGradePayload, error) {
	const query = `SELECT AVG(g.score) AS average_grade
        FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        WHERE e.student_id = $1`

	payload := &models.AverageGradePayload{}
	if err := r.db.GetContext(ctx, &payload.Data.AverageGrade, query, studentID); err != nil {
		return nil, fmt.Errorf("query average grade: %w", err)
	}
	return payload, nil
}

// ResolveStudentID maps an authenticated user onto its student record.
func (r *ReportRepository) ResolveStudentID(ctx context.Context, userID string) (string, error) {
	const query = `SELECT id FROM students WHERE user_id = $1`

	var studentID string
	if err := r.db.GetContext(ctx, &studentID, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrIdentityUnresolved, "no student record linked to user")
		}
		return "", fmt.Errorf("resolve student id: %w", err)
	}
	return studentID, nil
}
