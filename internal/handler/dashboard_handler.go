package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduhub-vn/reporting-api/internal/dto"
	"github.com/eduhub-vn/reporting-api/internal/middleware"
	"github.com/eduhub-vn/reporting-api/internal/models"
	"github.com/eduhub-vn/reporting-api/internal/service"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
	"github.com/eduhub-vn/reporting-api/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context, req service.AdminDashboardRequest) (*dto.AdminDashboardResponse, *service.LoadReport, error)
	Student(ctx context.Context, claims *models.JWTClaims) (*dto.StudentDashboardResponse, *service.LoadReport, error)
}

type exportService interface {
	AdminSnapshot(ctx context.Context, req service.AdminDashboardRequest, format string) (*service.ExportFile, error)
}

// DashboardHandler wires the dashboard pipeline to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	exports exportService
}

// NewDashboardHandler constructs the handler. The export service is optional.
func NewDashboardHandler(service dashboardService, exports exportService) *DashboardHandler {
	return &DashboardHandler{service: service, exports: exports}
}

// Admin godoc
// @Summary Admin dashboard report
// @Tags Dashboard
// @Produce json
// @Param year query int false "Revenue year. Defaults to the current year"
// @Param windowDays query int false "Signup window in days. Defaults to 7"
// @Param topLimit query int false "Top courses limit. Defaults to 5"
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := parseAdminRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.Consumer = claims.UserID
	}

	start := time.Now()
	view, report, err := h.service.Admin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, loadMeta(c, report, start))
}

// Student godoc
// @Summary Student dashboard report
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	start := time.Now()
	view, report, err := h.service.Student(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, loadMeta(c, report, start))
}

// Export godoc
// @Summary Export the admin dashboard report
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format: csv or pdf"
// @Success 200 {file} file
// @Router /dashboard/admin/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	req, err := parseAdminRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))

	file, err := h.exports.AdminSnapshot(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func parseAdminRequest(c *gin.Context) (service.AdminDashboardRequest, error) {
	req := service.AdminDashboardRequest{}

	for _, field := range []struct {
		name string
		dest *int
	}{
		{"year", &req.Year},
		{"windowDays", &req.WindowDays},
		{"topLimit", &req.TopLimit},
	} {
		raw := strings.TrimSpace(c.Query(field.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, field.name+" must be an integer")
		}
		*field.dest = value
	}
	return req, nil
}

func loadMeta(c *gin.Context, report *service.LoadReport, start time.Time) map[string]interface{} {
	middleware.SetMeta(c, "processing_time_ms", time.Since(start).Milliseconds())
	if report != nil {
		middleware.SetMeta(c, "anomaly_count", len(report.Anomalies))
		if len(report.DegradedFragments) > 0 {
			middleware.SetMeta(c, "degraded_fragments", report.DegradedFragments)
		}
	}
	return middleware.ExtractMeta(c)
}
