package models

// Raw payload shapes returned by the reporting source. Field names mirror the
// upstream JSON contract; pointers distinguish absent/null values from zero.
// Any upstream field not modeled here is ignored by the pipeline.

// SystemOverviewPayload is the raw system-overview fragment.
type SystemOverviewPayload struct {
	TotalStudents    *int     `json:"total_students" db:"total_students"`
	TotalTeachers    *int     `json:"total_teachers" db:"total_teachers"`
	ActiveClasses    *int     `json:"active_classes" db:"active_classes"`
	RevenueThisMonth *float64 `json:"revenue_this_month" db:"revenue_this_month"`
	RevenueThisYear  *float64 `json:"revenue_this_year" db:"revenue_this_year"`
	PendingPayments  *float64 `json:"pending_payments" db:"pending_payments"`

	StudentsChangePct *float64 `json:"students_change_pct" db:"students_change_pct"`
	TeachersChangePct *float64 `json:"teachers_change_pct" db:"teachers_change_pct"`
	CoursesChangePct  *float64 `json:"courses_change_pct" db:"courses_change_pct"`
	RevenueChangePct  *float64 `json:"revenue_change_pct" db:"revenue_change_pct"`
}

// MonthlyRevenueEntry is one month of the raw revenue series. Months may be
// missing, duplicated or out of order in the source.
type MonthlyRevenueEntry struct {
	Month   int      `json:"month" db:"month"`
	Revenue *float64 `json:"revenue" db:"revenue"`
}

// RevenuePayload is the raw yearly revenue fragment.
type RevenuePayload struct {
	MonthlyRevenue []MonthlyRevenueEntry `json:"monthly_revenue"`
}

// RecentEnrollmentRecord is one raw enrollment event. The upstream emits
// either enrollment_date or created_at depending on its code path.
type RecentEnrollmentRecord struct {
	ID             string `json:"id" db:"id"`
	StudentName    string `json:"student_name" db:"student_name"`
	ClassName      string `json:"class_name" db:"class_name"`
	CourseName     string `json:"course_name" db:"course_name"`
	EnrollmentDate string `json:"enrollment_date" db:"enrollment_date"`
	CreatedAt      string `json:"created_at" db:"created_at"`
}

// RecentEnrollmentsPayload is the raw recent-enrollments fragment.
type RecentEnrollmentsPayload struct {
	Data []RecentEnrollmentRecord `json:"data"`
}

// TopCourseRecord is one raw top-course entry; the upstream emits either name
// or class_name.
type TopCourseRecord struct {
	Name            string `json:"name" db:"name"`
	ClassName       string `json:"class_name" db:"class_name"`
	CurrentStudents *int   `json:"current_students" db:"current_students"`
}

// TopCoursesPayload is the raw top-courses fragment.
type TopCoursesPayload struct {
	Data []TopCourseRecord `json:"data"`
}

// StudentInfoPayload is the raw student header of the per-student report.
type StudentInfoPayload struct {
	ID       string `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
}

// StudentEnrollmentRecord is one raw enrollment of the per-student report.
type StudentEnrollmentRecord struct {
	ClassName      string   `json:"class_name" db:"class_name"`
	CourseName     string   `json:"course_name" db:"course_name"`
	Status         string   `json:"status" db:"status"`
	AttendanceRate *float64 `json:"attendance_rate" db:"attendance_rate"`
	AverageGrade   *float64 `json:"average_grade" db:"average_grade"`
	PaymentStatus  string   `json:"payment_status" db:"payment_status"`
}

// PendingAssignmentRecord is one raw pending assignment.
type PendingAssignmentRecord struct {
	Title     string `json:"title" db:"title"`
	ClassName string `json:"class_name" db:"class_name"`
	DueDate   string `json:"due_date" db:"due_date"`
}

// StudentReportPayload is the raw per-student report fragment.
type StudentReportPayload struct {
	StudentInfo        StudentInfoPayload        `json:"student_info"`
	Enrollments        []StudentEnrollmentRecord `json:"enrollments"`
	PendingAssignments []PendingAssignmentRecord `json:"pending_assignments"`
}

// AttendanceRatePayload is the raw attendance-rate fragment.
type AttendanceRatePayload struct {
	Data struct {
		AttendanceRate *float64 `json:"attendance_rate"`
	} `json:"data"`
}

// AverageGradePayload is the raw average-grade fragment.
type AverageGradePayload struct {
	Data struct {
		AverageGrade *float64 `json:"average_grade"`
	} `json:"data"`
}
