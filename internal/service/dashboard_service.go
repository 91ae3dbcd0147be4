package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduhub-vn/reporting-api/internal/dto"
	"github.com/eduhub-vn/reporting-api/internal/models"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

type identityResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (string, error)
}

// AdminDashboardRequest carries the tunable parameters of an admin load.
// Zero values fall back to the configured defaults. When Consumer is set,
// the load participates in that consumer's last-request-wins supersession.
type AdminDashboardRequest struct {
	Year       int `validate:"omitempty,gte=2000,lte=2100"`
	WindowDays int `validate:"omitempty,gte=1,lte=31"`
	TopLimit   int `validate:"omitempty,gte=1,lte=20"`

	Consumer string `validate:"-"`
}

// LoadReport describes the health of one dashboard load: accumulated
// anomalies and fragments that fell back to defaults.
type LoadReport struct {
	Anomalies         []models.Anomaly
	DegradedFragments []string
}

// DashboardServiceConfig tunes pipeline defaults.
type DashboardServiceConfig struct {
	WindowDays      int
	TopCoursesLimit int
	Location        *time.Location
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Source   FragmentSource
	Identity identityResolver
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// DashboardService runs the four-stage aggregation pipeline: fetch the raw
// fragments, normalize them, compute derived statistics, and shape the
// renderer view-model. Each load builds a fresh snapshot; nothing is shared
// between concurrent loads.
type DashboardService struct {
	fetcher   *fetcher
	identity  identityResolver
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig

	adminLoads   *LoaderRegistry[adminLoad]
	studentLoads *LoaderRegistry[studentLoad]
}

type adminLoad struct {
	view   *dto.AdminDashboardResponse
	report *LoadReport
}

type studentLoad struct {
	view   *dto.StudentDashboardResponse
	report *LoadReport
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if cfg.TopCoursesLimit <= 0 {
		cfg.TopCoursesLimit = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		fetcher:      newFetcher(params.Source, params.Metrics, logger),
		identity:     params.Identity,
		metrics:      params.Metrics,
		validator:    validator.New(),
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
		adminLoads:   NewLoaderRegistry[adminLoad](),
		studentLoads: NewLoaderRegistry[studentLoad](),
	}
}

// Admin runs one admin dashboard load. Individual fragment failures degrade
// to documented defaults; the load only fails as a whole when every fragment
// is unavailable. With a Consumer set, a newer load by the same consumer
// supersedes this one and its result is discarded.
func (s *DashboardService) Admin(ctx context.Context, req AdminDashboardRequest) (*dto.AdminDashboardResponse, *LoadReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dashboard parameters")
	}
	if req.Consumer == "" {
		return s.runAdmin(ctx, req)
	}

	result, err := s.adminLoads.For(req.Consumer).Load(ctx, func(loadCtx context.Context) (adminLoad, error) {
		view, report, err := s.runAdmin(loadCtx, req)
		return adminLoad{view: view, report: report}, err
	})
	return result.view, result.report, err
}

func (s *DashboardService) runAdmin(ctx context.Context, req AdminDashboardRequest) (*dto.AdminDashboardResponse, *LoadReport, error) {
	now := s.now().In(s.cfg.Location)
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.WindowDays == 0 {
		req.WindowDays = s.cfg.WindowDays
	}
	if req.TopLimit == 0 {
		req.TopLimit = s.cfg.TopCoursesLimit
	}

	frags := s.fetcher.fetchAdmin(ctx, req.Year, req.WindowDays, req.TopLimit)
	if frags.AllFailed() {
		return nil, nil, appErrors.Clone(appErrors.ErrUpstream, "all report fragments unavailable")
	}

	sink := &anomalySink{}
	for _, fragment := range frags.Degraded() {
		sink.add(models.AnomalyFragmentFailed, "fragment %s unavailable, defaults substituted", fragment)
	}

	data := normalizeAdmin(frags, req.TopLimit, sink)

	// The admin overview carries no attendance metric; the slot stays null
	// and renders as "N/A" rather than a fabricated 0%.
	snapshot := deriveAdmin(data, nil, now)
	view := presentAdmin(snapshot)

	report := &LoadReport{Anomalies: sink.anomalies, DegradedFragments: frags.Degraded()}
	s.finishLoad("admin", report)
	return view, report, nil
}

// Student runs one student dashboard load. Resolving the caller's student
// identity is a hard prerequisite: when it fails nothing downstream is
// computable and the whole load fails.
func (s *DashboardService) Student(ctx context.Context, claims *models.JWTClaims) (*dto.StudentDashboardResponse, *LoadReport, error) {
	if claims == nil || claims.UserID == "" {
		return s.runStudent(ctx, claims)
	}

	result, err := s.studentLoads.For(claims.UserID).Load(ctx, func(loadCtx context.Context) (studentLoad, error) {
		view, report, err := s.runStudent(loadCtx, claims)
		return studentLoad{view: view, report: report}, err
	})
	return result.view, result.report, err
}

func (s *DashboardService) runStudent(ctx context.Context, claims *models.JWTClaims) (*dto.StudentDashboardResponse, *LoadReport, error) {
	if s.identity == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInternal, "identity resolver unavailable")
	}
	studentID, err := s.identity.Resolve(ctx, claims)
	if err != nil {
		return nil, nil, err
	}

	frags := s.fetcher.fetchStudent(ctx, studentID)
	if frags.ReportErr != nil && frags.AttendanceErr != nil && frags.GradeErr != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUpstream, "all report fragments unavailable")
	}

	sink := &anomalySink{}
	for _, fragment := range frags.Degraded() {
		sink.add(models.AnomalyFragmentFailed, "fragment %s unavailable, defaults substituted", fragment)
	}

	data := normalizeStudent(studentID, frags, sink)
	snapshot := deriveStudent(data, s.now().In(s.cfg.Location))
	view := presentStudent(snapshot)

	report := &LoadReport{Anomalies: sink.anomalies, DegradedFragments: frags.Degraded()}
	s.finishLoad("student", report)
	return view, report, nil
}

func (s *DashboardService) finishLoad(kind string, report *LoadReport) {
	for _, anomaly := range report.Anomalies {
		s.metrics.RecordAnomaly(anomaly.Code)
		s.logger.Warn("pipeline anomaly",
			zap.String("dashboard", kind),
			zap.String("code", anomaly.Code),
			zap.String("detail", anomaly.Detail),
		)
	}
	if len(report.DegradedFragments) > 0 {
		s.logger.Warn("dashboard load degraded",
			zap.String("dashboard", kind),
			zap.Strings("fragments", report.DegradedFragments),
		)
	}
}
