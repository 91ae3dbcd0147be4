package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/eduhub-vn/reporting-api/internal/models"
	"github.com/eduhub-vn/reporting-api/pkg/config"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

// Client talks to the legacy reporting API. One method per fragment; methods
// return raw payloads untouched so the normalization stage owns all shaping.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a reporting API client.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// SystemOverview fetches the system-overview fragment.
func (c *Client) SystemOverview(ctx context.Context) (*models.SystemOverviewPayload, error) {
	var payload models.SystemOverviewPayload
	if err := c.get(ctx, "/reports/overview", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Revenue fetches the monthly revenue series for the given year.
func (c *Client) Revenue(ctx context.Context, year int) (*models.RevenuePayload, error) {
	query := url.Values{"year": []string{strconv.Itoa(year)}}
	var payload models.RevenuePayload
	if err := c.get(ctx, "/reports/revenue", query, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// RecentEnrollments fetches enrollments created within the last windowDays.
func (c *Client) RecentEnrollments(ctx context.Context, windowDays int) (*models.RecentEnrollmentsPayload, error) {
	query := url.Values{"days": []string{strconv.Itoa(windowDays)}}
	var payload models.RecentEnrollmentsPayload
	if err := c.get(ctx, "/reports/enrollments/recent", query, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TopCourses fetches the courses with the highest current enrollment.
func (c *Client) TopCourses(ctx context.Context, limit int) (*models.TopCoursesPayload, error) {
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}
	var payload models.TopCoursesPayload
	if err := c.get(ctx, "/reports/courses/top", query, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// StudentReport fetches the per-student report fragment.
func (c *Client) StudentReport(ctx context.Context, studentID string) (*models.StudentReportPayload, error) {
	var payload models.StudentReportPayload
	if err := c.get(ctx, "/reports/students/"+url.PathEscape(studentID), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AttendanceRate fetches the per-student attendance rate fragment.
func (c *Client) AttendanceRate(ctx context.Context, studentID string) (*models.AttendanceRatePayload, error) {
	var payload models.AttendanceRatePayload
	if err := c.get(ctx, "/reports/students/"+url.PathEscape(studentID)+"/attendance", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AverageGrade fetches the per-student average grade fragment.
func (c *Client) AverageGrade(ctx context.Context, studentID string) (*models.AverageGradePayload, error) {
	var payload models.AverageGradePayload
	if err := c.get(ctx, "/reports/students/"+url.PathEscape(studentID)+"/grade", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ResolveStudentID maps an authenticated user ID onto its student record ID.
func (c *Client) ResolveStudentID(ctx context.Context, userID string) (string, error) {
	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/students/by-user/"+url.PathEscape(userID), nil, &payload); err != nil {
		return "", err
	}
	if payload.Data.ID == "" {
		return "", appErrors.Clone(appErrors.ErrIdentityUnresolved, "no student record linked to user")
	}
	return payload.Data.ID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "upstream request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode upstream response")
	}
	return nil
}

// statusError maps upstream HTTP failures onto the service error taxonomy:
// 401/403 surface as authorization failures, 400 as invalid request, and
// everything else as a retryable upstream error.
func (c *Client) statusError(resp *http.Response, path string) error {
	message := upstreamMessage(resp.Body)
	c.logger.Warn("upstream request rejected",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("upstream_error", message),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrUnauthorized, "not authorized for reporting data")
	case http.StatusBadRequest:
		if message == "" {
			message = "invalid request"
		}
		return appErrors.Clone(appErrors.ErrValidation, message)
	default:
		return appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("upstream returned %d", resp.StatusCode))
	}
}

func upstreamMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
