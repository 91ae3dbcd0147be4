package dto

// AdminDashboardResponse is the chart-ready admin dashboard view-model. All
// display values are pre-formatted strings; raw numbers are kept alongside
// for chart scaling.
type AdminDashboardResponse struct {
	GeneratedAt string `json:"generatedAt"`

	Totals  TotalsCard  `json:"totals"`
	Changes ChangesCard `json:"changes"`

	WeekSignups BarChart       `json:"weekSignups"`
	Revenue     RevenueChart   `json:"revenue"`
	TopCourses  []CourseBar    `json:"topCourses"`
	Activities  []ActivityItem `json:"recentActivities"`

	AttendanceRate  string `json:"attendanceRate"`
	PendingPayments string `json:"pendingPayments"`
}

// TotalsCard carries the headline counters.
type TotalsCard struct {
	Students      int    `json:"students"`
	Teachers      int    `json:"teachers"`
	ActiveCourses int    `json:"activeCourses"`
	MonthRevenue  string `json:"monthRevenue"`
}

// ChangesCard carries formatted percentage deltas; missing baselines render
// as an em-dash placeholder, never as "0%".
type ChangesCard struct {
	Students string `json:"students"`
	Teachers string `json:"teachers"`
	Courses  string `json:"courses"`
	Revenue  string `json:"revenue"`
}

// BarChart pairs labels and values index-for-index.
type BarChart struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// RevenueChart is the 12-month revenue series with formatted tooltips.
type RevenueChart struct {
	Labels    []string `json:"labels"`
	Values    []int64  `json:"values"`
	Formatted []string `json:"formatted"`
}

// CourseBar is one top-course bar with its height fraction.
type CourseBar struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// ActivityItem is one rendered activity-feed row.
type ActivityItem struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	RelativeTime string `json:"relativeTime"`
	Kind         string `json:"kind"`
}

// StudentDashboardResponse is the student dashboard view-model.
type StudentDashboardResponse struct {
	GeneratedAt string `json:"generatedAt"`

	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`

	ActiveCourses    int `json:"activeCourses"`
	CompletedCourses int `json:"completedCourses"`
	PendingCount     int `json:"pendingCount"`

	AttendanceRate string `json:"attendanceRate"`
	AverageGrade   string `json:"averageGrade"`

	Enrollments        []EnrollmentCard `json:"enrollments"`
	PendingAssignments []AssignmentCard `json:"pendingAssignments"`
}

// EnrollmentCard is one rendered enrollment row.
type EnrollmentCard struct {
	ClassName      string `json:"className"`
	CourseName     string `json:"courseName"`
	Status         string `json:"status"`
	AttendanceRate string `json:"attendanceRate"`
	AverageGrade   string `json:"averageGrade"`
	PaymentStatus  string `json:"paymentStatus"`
}

// AssignmentCard is one rendered pending-assignment row.
type AssignmentCard struct {
	Title     string `json:"title"`
	ClassName string `json:"className"`
	DueDate   string `json:"dueDate"`
}
