package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduhub-vn/reporting-api/pkg/config"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.UpstreamConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		APIKey:  "test-key",
	}, zap.NewNop())
}

func TestSystemOverview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/overview", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_students": 120,
			"total_teachers": null,
			"revenue_this_month": 12500000,
			"students_change_pct": 4.2
		}`))
	})

	payload, err := client.SystemOverview(context.Background())
	require.NoError(t, err)
	require.NotNil(t, payload.TotalStudents)
	assert.Equal(t, 120, *payload.TotalStudents)
	assert.Nil(t, payload.TotalTeachers, "explicit null stays null")
	require.NotNil(t, payload.RevenueThisMonth)
	assert.Equal(t, 12500000.0, *payload.RevenueThisMonth)
}

func TestRevenuePassesYear(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/revenue", r.URL.Path)
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		_, _ = w.Write([]byte(`{"monthly_revenue": [{"month": 3, "revenue": 100}]}`))
	})

	payload, err := client.Revenue(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, payload.MonthlyRevenue, 1)
	assert.Equal(t, 3, payload.MonthlyRevenue[0].Month)
}

func TestStudentReportEscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/students/st%2F1", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"student_info": {"id": "st/1", "full_name": "Tran Thi B"}}`))
	})

	payload, err := client.StudentReport(context.Background(), "st/1")
	require.NoError(t, err)
	assert.Equal(t, "Tran Thi B", payload.StudentInfo.FullName)
}

func TestResolveStudentID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students/by-user/u-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": {"id": "st-1"}}`))
	})

	studentID, err := client.ResolveStudentID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "st-1", studentID)
}

func TestResolveStudentIDEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	_, err := client.ResolveStudentID(context.Background(), "u-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIdentityUnresolved))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		target *appErrors.Error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, appErrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, appErrors.ErrUnauthorized},
		{"bad request", http.StatusBadRequest, `{"error": "year out of range"}`, appErrors.ErrValidation},
		{"server error", http.StatusInternalServerError, `{}`, appErrors.ErrUpstream},
		{"bad gateway", http.StatusBadGateway, `{}`, appErrors.ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.SystemOverview(context.Background())
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.target), "status %d maps to %s", tc.status, tc.target.Code)
		})
	}
}

func TestBadRequestCarriesUpstreamMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "year out of range"}`))
	})

	_, err := client.SystemOverview(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year out of range")
}

func TestMalformedBodyIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"monthly_revenue": "not-a-list"`))
	})

	_, err := client.Revenue(context.Background(), 2026)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}

func TestConnectionFailureIsUpstreamError(t *testing.T) {
	client := NewClient(config.UpstreamConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 500 * time.Millisecond,
	}, zap.NewNop())

	_, err := client.SystemOverview(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}
