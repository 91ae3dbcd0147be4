package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhub-vn/reporting-api/internal/dto"
	"github.com/eduhub-vn/reporting-api/internal/middleware"
	"github.com/eduhub-vn/reporting-api/internal/models"
	"github.com/eduhub-vn/reporting-api/internal/service"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

type fakeDashboardService struct {
	adminView   *dto.AdminDashboardResponse
	adminReport *service.LoadReport
	adminErr    error
	adminReq    service.AdminDashboardRequest

	studentView   *dto.StudentDashboardResponse
	studentReport *service.LoadReport
	studentErr    error
}

func (f *fakeDashboardService) Admin(_ context.Context, req service.AdminDashboardRequest) (*dto.AdminDashboardResponse, *service.LoadReport, error) {
	f.adminReq = req
	return f.adminView, f.adminReport, f.adminErr
}

func (f *fakeDashboardService) Student(context.Context, *models.JWTClaims) (*dto.StudentDashboardResponse, *service.LoadReport, error) {
	return f.studentView, f.studentReport, f.studentErr
}

type fakeExportService struct {
	file *service.ExportFile
	err  error
}

func (f *fakeExportService) AdminSnapshot(context.Context, service.AdminDashboardRequest, string) (*service.ExportFile, error) {
	return f.file, f.err
}

func newTestContext(t *testing.T, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func TestAdminHandler(t *testing.T) {
	svc := &fakeDashboardService{
		adminView: &dto.AdminDashboardResponse{AttendanceRate: "N/A"},
		adminReport: &service.LoadReport{
			Anomalies:         []models.Anomaly{{Code: models.AnomalyNegativeMoney}},
			DegradedFragments: []string{models.FragmentTopCourses},
		},
	}
	h := NewDashboardHandler(svc, nil)

	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}
	c, recorder := newTestContext(t, "/api/v1/dashboard/admin?year=2026&windowDays=7", claims)
	h.Admin(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 2026, svc.adminReq.Year)
	assert.Equal(t, 7, svc.adminReq.WindowDays)
	assert.Equal(t, "u-1", svc.adminReq.Consumer, "load is keyed to the caller")

	envelope := decodeEnvelope(t, recorder)
	meta, ok := envelope["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), meta["anomaly_count"])
	assert.Contains(t, meta, "degraded_fragments")
	assert.Contains(t, meta, "processing_time_ms")
}

func TestAdminHandlerRejectsNonIntegerParams(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardService{}, nil)

	c, recorder := newTestContext(t, "/api/v1/dashboard/admin?year=abc", nil)
	h.Admin(c)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	errBody, ok := envelope["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, errBody["code"])
}

func TestAdminHandlerUpstreamFailure(t *testing.T) {
	svc := &fakeDashboardService{adminErr: appErrors.Clone(appErrors.ErrUpstream, "all report fragments unavailable")}
	h := NewDashboardHandler(svc, nil)

	c, recorder := newTestContext(t, "/api/v1/dashboard/admin", nil)
	h.Admin(c)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestStudentHandler(t *testing.T) {
	svc := &fakeDashboardService{
		studentView:   &dto.StudentDashboardResponse{StudentID: "st-1"},
		studentReport: &service.LoadReport{},
	}
	h := NewDashboardHandler(svc, nil)

	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	c, recorder := newTestContext(t, "/api/v1/dashboard/student", claims)
	h.Student(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "st-1", data["studentId"])
}

func TestStudentHandlerRequiresClaims(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardService{}, nil)

	c, recorder := newTestContext(t, "/api/v1/dashboard/student", nil)
	h.Student(c)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestStudentHandlerIdentityUnresolved(t *testing.T) {
	svc := &fakeDashboardService{studentErr: appErrors.Clone(appErrors.ErrIdentityUnresolved, "no student record")}
	h := NewDashboardHandler(svc, nil)

	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	c, recorder := newTestContext(t, "/api/v1/dashboard/student", claims)
	h.Student(c)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	errBody, ok := envelope["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrIdentityUnresolved.Code, errBody["code"])
}

func TestExportHandler(t *testing.T) {
	exports := &fakeExportService{file: &service.ExportFile{
		FileName:    "admin-dashboard-20260828-120000.csv",
		ContentType: "text/csv",
		Content:     []byte("Section,Metric,Value\n"),
	}}
	h := NewDashboardHandler(&fakeDashboardService{}, exports)

	c, recorder := newTestContext(t, "/api/v1/dashboard/admin/export?format=csv", nil)
	h.Export(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "admin-dashboard-")
}

func TestExportHandlerDisabled(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardService{}, nil)

	c, recorder := newTestContext(t, "/api/v1/dashboard/admin/export?format=csv", nil)
	h.Export(c)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
