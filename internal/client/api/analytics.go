package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/wastewise/wastewise-go/internal/client/httpclient"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// Report download formats.
const (
	ReportPDF   = "pdf"
	ReportExcel = "excel"
)

// AnalyticsService covers KPIs, predictions, reports, dashboards and exports.
type AnalyticsService struct {
	d Doer
}

func (s *AnalyticsService) KPIs(ctx context.Context, query url.Values) (*domain.Page[domain.KPI], error) {
	var out domain.Page[domain.KPI]
	if err := get(ctx, s.d, "/v1/analytics/kpis/", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) Predictions(ctx context.Context, query url.Values) (*domain.Page[domain.Prediction], error) {
	var out domain.Page[domain.Prediction]
	if err := get(ctx, s.d, "/v1/analytics/predictions/", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) Reports(ctx context.Context, query url.Values) (*domain.Page[domain.Report], error) {
	var out domain.Page[domain.Report]
	if err := get(ctx, s.d, "/v1/analytics/reports/", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) GenerateReport(ctx context.Context, body any) (*domain.Report, error) {
	var out domain.Report
	if err := send(ctx, s.d, http.MethodPost, "/v1/analytics/reports/generate/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadReport streams a generated report in format (ReportPDF or ReportExcel) to w.
func (s *AnalyticsService) DownloadReport(ctx context.Context, id int64, format string, w io.Writer) (int64, error) {
	if format != ReportPDF && format != ReportExcel {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("report format %q", format))
	}
	q := url.Values{}
	q.Set("format", format)
	return s.d.Download(ctx, &httpclient.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/v1/analytics/reports/%d/download/", id),
		Query:  q,
	}, w)
}

func (s *AnalyticsService) dashboardPath(id int64) string {
	return fmt.Sprintf("/v1/analytics/dashboards/%d/", id)
}

func (s *AnalyticsService) Dashboards(ctx context.Context) (*domain.Page[domain.Dashboard], error) {
	var out domain.Page[domain.Dashboard]
	if err := get(ctx, s.d, "/v1/analytics/dashboards/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) GetDashboard(ctx context.Context, id int64) (*domain.Dashboard, error) {
	var out domain.Dashboard
	if err := get(ctx, s.d, s.dashboardPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) CreateDashboard(ctx context.Context, body any) (*domain.Dashboard, error) {
	var out domain.Dashboard
	if err := send(ctx, s.d, http.MethodPost, "/v1/analytics/dashboards/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) UpdateDashboard(ctx context.Context, id int64, body any) (*domain.Dashboard, error) {
	var out domain.Dashboard
	if err := send(ctx, s.d, http.MethodPatch, s.dashboardPath(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) DeleteDashboard(ctx context.Context, id int64) error {
	return send(ctx, s.d, http.MethodDelete, s.dashboardPath(id), nil, nil)
}

// Export starts an asynchronous export job.
func (s *AnalyticsService) Export(ctx context.Context, body any) (*domain.ExportJob, error) {
	var out domain.ExportJob
	if err := send(ctx, s.d, http.MethodPost, "/v1/analytics/export/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) GetExport(ctx context.Context, id string) (*domain.ExportJob, error) {
	var out domain.ExportJob
	if err := get(ctx, s.d, "/v1/analytics/export/"+url.PathEscape(id)+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadExport streams a finished export to w.
func (s *AnalyticsService) DownloadExport(ctx context.Context, id string, w io.Writer) (int64, error) {
	return s.d.Download(ctx, &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/v1/analytics/export/" + url.PathEscape(id) + "/download/",
	}, w)
}
