package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// DefaultNearbyRadius is the search radius in meters used when none is given.
const DefaultNearbyRadius = 1000

// ZoneService manages collection zones.
type ZoneService struct {
	resource[domain.Zone]
}

// Stats returns the zone's aggregate figures as sent by the server.
func (s *ZoneService) Stats(ctx context.Context, id int64) (map[string]any, error) {
	var out map[string]any
	if err := get(ctx, s.d, s.item(id, "stats"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BinService manages waste bins.
type BinService struct {
	resource[domain.WasteBin]
}

// ListFiltered is List with typed filters.
func (s *BinService) ListFiltered(ctx context.Context, f domain.BinFilters) (*domain.Page[domain.WasteBin], error) {
	return s.List(ctx, f.Query())
}

// Nearby returns bins within radius meters of (lat, lng). A radius <= 0
// uses DefaultNearbyRadius.
func (s *BinService) Nearby(ctx context.Context, lat, lng float64, radius int) ([]domain.WasteBin, error) {
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radius))

	var out []domain.WasteBin
	if err := get(ctx, s.d, s.base+"nearby/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Maintenance lists a bin's maintenance history.
func (s *BinService) Maintenance(ctx context.Context, id int64) ([]domain.MaintenanceRecord, error) {
	var out []domain.MaintenanceRecord
	if err := get(ctx, s.d, s.item(id, "maintenance"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMaintenance records a maintenance entry for a bin.
func (s *BinService) CreateMaintenance(ctx context.Context, id int64, body any) (*domain.MaintenanceRecord, error) {
	var out domain.MaintenanceRecord
	if err := send(ctx, s.d, http.MethodPost, s.item(id, "maintenance"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SensorService reads sensor data.
type SensorService struct {
	d Doer
}

func binQuery(binID int64, extra url.Values) url.Values {
	q := url.Values{}
	q.Set("bin", strconv.FormatInt(binID, 10))
	return merge(q, extra)
}

// Readings lists a bin's readings. extra may carry date or page filters.
func (s *SensorService) Readings(ctx context.Context, binID int64, extra url.Values) (*domain.Page[domain.SensorReading], error) {
	var out domain.Page[domain.SensorReading]
	if err := get(ctx, s.d, "/v1/sensors/readings/", binQuery(binID, extra), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestReading returns a bin's most recent reading.
func (s *SensorService) LatestReading(ctx context.Context, binID int64) (*domain.SensorReading, error) {
	var out domain.SensorReading
	if err := get(ctx, s.d, "/v1/sensors/readings/latest/", binQuery(binID, nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Aggregated returns readings bucketed by period (hour, day, week, ...).
func (s *SensorService) Aggregated(ctx context.Context, binID int64, period string, extra url.Values) ([]map[string]any, error) {
	q := binQuery(binID, extra)
	q.Set("period", period)

	var out []map[string]any
	if err := get(ctx, s.d, "/v1/sensors/aggregated/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts lists sensor-raised alerts.
func (s *SensorService) Alerts(ctx context.Context, query url.Values) (*domain.Page[domain.Alert], error) {
	var out domain.Page[domain.Alert]
	if err := get(ctx, s.d, "/v1/sensors/alerts/", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Calibrate sends calibration values for a bin's sensor.
func (s *SensorService) Calibrate(ctx context.Context, binID int64, data map[string]any) (map[string]any, error) {
	body := make(map[string]any, len(data)+1)
	for k, v := range data {
		body[k] = v
	}
	body["bin"] = binID

	var out map[string]any
	if err := send(ctx, s.d, http.MethodPost, "/v1/sensors/calibrate/", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
