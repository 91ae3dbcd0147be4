package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eduhub-vn/reporting-api/internal/models"
)

// FragmentSource provides the raw report fragments. Implemented by the
// upstream HTTP client and by the database fallback repository.
type FragmentSource interface {
	SystemOverview(ctx context.Context) (*models.SystemOverviewPayload, error)
	Revenue(ctx context.Context, year int) (*models.RevenuePayload, error)
	RecentEnrollments(ctx context.Context, windowDays int) (*models.RecentEnrollmentsPayload, error)
	TopCourses(ctx context.Context, limit int) (*models.TopCoursesPayload, error)
	StudentReport(ctx context.Context, studentID string) (*models.StudentReportPayload, error)
	AttendanceRate(ctx context.Context, studentID string) (*models.AttendanceRatePayload, error)
	AverageGrade(ctx context.Context, studentID string) (*models.AverageGradePayload, error)
}

// AdminFragments holds one slot per admin fragment: the raw payload or the
// captured fetch error. Slots are positional, so assembly is deterministic
// regardless of which fetch returns first.
type AdminFragments struct {
	Overview    *models.SystemOverviewPayload
	OverviewErr error

	Revenue    *models.RevenuePayload
	RevenueErr error

	Enrollments    *models.RecentEnrollmentsPayload
	EnrollmentsErr error

	TopCourses    *models.TopCoursesPayload
	TopCoursesErr error
}

// AllFailed reports whether every fragment slot captured an error.
func (f *AdminFragments) AllFailed() bool {
	return f.OverviewErr != nil && f.RevenueErr != nil && f.EnrollmentsErr != nil && f.TopCoursesErr != nil
}

// Degraded lists the fragments that failed and will render with defaults.
func (f *AdminFragments) Degraded() []string {
	var degraded []string
	if f.OverviewErr != nil {
		degraded = append(degraded, models.FragmentOverview)
	}
	if f.RevenueErr != nil {
		degraded = append(degraded, models.FragmentRevenue)
	}
	if f.EnrollmentsErr != nil {
		degraded = append(degraded, models.FragmentEnrollments)
	}
	if f.TopCoursesErr != nil {
		degraded = append(degraded, models.FragmentTopCourses)
	}
	return degraded
}

// StudentFragments holds one slot per student fragment.
type StudentFragments struct {
	Report    *models.StudentReportPayload
	ReportErr error

	Attendance    *models.AttendanceRatePayload
	AttendanceErr error

	Grade    *models.AverageGradePayload
	GradeErr error
}

// Degraded lists the student fragments that failed.
func (f *StudentFragments) Degraded() []string {
	var degraded []string
	if f.ReportErr != nil {
		degraded = append(degraded, models.FragmentReport)
	}
	if f.AttendanceErr != nil {
		degraded = append(degraded, models.FragmentAttendance)
	}
	if f.GradeErr != nil {
		degraded = append(degraded, models.FragmentGrade)
	}
	return degraded
}

// fetcher fans fragment requests out over goroutines and joins on all of
// them. A failed fragment never aborts its siblings; each goroutine writes
// only its own slot, so no locking is needed beyond the join barrier.
type fetcher struct {
	source  FragmentSource
	metrics *MetricsService
	logger  *zap.Logger
}

func newFetcher(source FragmentSource, metrics *MetricsService, logger *zap.Logger) *fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fetcher{source: source, metrics: metrics, logger: logger}
}

func (f *fetcher) fetchAdmin(ctx context.Context, year, windowDays, topLimit int) *AdminFragments {
	frags := &AdminFragments{}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		frags.Overview, frags.OverviewErr = timedFetch(f, models.FragmentOverview, func() (*models.SystemOverviewPayload, error) {
			return f.source.SystemOverview(ctx)
		})
	}()
	go func() {
		defer wg.Done()
		frags.Revenue, frags.RevenueErr = timedFetch(f, models.FragmentRevenue, func() (*models.RevenuePayload, error) {
			return f.source.Revenue(ctx, year)
		})
	}()
	go func() {
		defer wg.Done()
		frags.Enrollments, frags.EnrollmentsErr = timedFetch(f, models.FragmentEnrollments, func() (*models.RecentEnrollmentsPayload, error) {
			return f.source.RecentEnrollments(ctx, windowDays)
		})
	}()
	go func() {
		defer wg.Done()
		frags.TopCourses, frags.TopCoursesErr = timedFetch(f, models.FragmentTopCourses, func() (*models.TopCoursesPayload, error) {
			return f.source.TopCourses(ctx, topLimit)
		})
	}()

	wg.Wait()
	return frags
}

// fetchStudent requires an already-resolved student ID; identity resolution
// is the caller's hard prerequisite, not a fragment.
func (f *fetcher) fetchStudent(ctx context.Context, studentID string) *StudentFragments {
	frags := &StudentFragments{}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		frags.Report, frags.ReportErr = timedFetch(f, models.FragmentReport, func() (*models.StudentReportPayload, error) {
			return f.source.StudentReport(ctx, studentID)
		})
	}()
	go func() {
		defer wg.Done()
		frags.Attendance, frags.AttendanceErr = timedFetch(f, models.FragmentAttendance, func() (*models.AttendanceRatePayload, error) {
			return f.source.AttendanceRate(ctx, studentID)
		})
	}()
	go func() {
		defer wg.Done()
		frags.Grade, frags.GradeErr = timedFetch(f, models.FragmentGrade, func() (*models.AverageGradePayload, error) {
			return f.source.AverageGrade(ctx, studentID)
		})
	}()

	wg.Wait()
	return frags
}

func timedFetch[T any](f *fetcher, fragment string, fn func() (T, error)) (T, error) {
	start := time.Now()
	payload, err := fn()
	f.metrics.ObserveFragmentFetch(fragment, err != nil, time.Since(start))
	if err != nil {
		f.logger.Warn("fragment fetch failed, substituting defaults",
			zap.String("fragment", fragment),
			zap.Error(err),
		)
	}
	return payload, err
}
