package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// VehicleService manages collection vehicles.
type VehicleService struct {
	resource[domain.Vehicle]
}

// UpdateLocation reports a vehicle's position.
func (s *VehicleService) UpdateLocation(ctx context.Context, id int64, loc domain.Coordinates) (*domain.Vehicle, error) {
	var out domain.Vehicle
	if err := send(ctx, s.d, http.MethodPost, s.item(id, "update-location"), loc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VehicleService) Maintenance(ctx context.Context, id int64) ([]domain.MaintenanceRecord, error) {
	var out []domain.MaintenanceRecord
	if err := get(ctx, s.d, s.item(id, "maintenance"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RouteService manages collection routes and their stops.
type RouteService struct {
	resource[domain.CollectionRoute]
}

// ListFiltered is List with typed filters.
func (s *RouteService) ListFiltered(ctx context.Context, f domain.RouteFilters) (*domain.Page[domain.CollectionRoute], error) {
	return s.List(ctx, f.Query())
}

func (s *RouteService) stopPath(routeID, stopID int64) string {
	return fmt.Sprintf("%s%d/stops/%d/", s.base, routeID, stopID)
}

func (s *RouteService) Stops(ctx context.Context, id int64) ([]domain.RouteStop, error) {
	var out []domain.RouteStop
	if err := get(ctx, s.d, s.item(id, "stops"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RouteService) AddStop(ctx context.Context, id int64, body any) (*domain.RouteStop, error) {
	var out domain.RouteStop
	if err := send(ctx, s.d, http.MethodPost, s.item(id, "stops"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RouteService) UpdateStop(ctx context.Context, routeID, stopID int64, body any) (*domain.RouteStop, error) {
	var out domain.RouteStop
	if err := send(ctx, s.d, http.MethodPatch, s.stopPath(routeID, stopID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RouteService) RemoveStop(ctx context.Context, routeID, stopID int64) error {
	return send(ctx, s.d, http.MethodDelete, s.stopPath(routeID, stopID), nil, nil)
}

func (s *RouteService) action(ctx context.Context, id int64, action string, body any) (*domain.CollectionRoute, error) {
	var out domain.CollectionRoute
	if err := send(ctx, s.d, http.MethodPost, s.item(id, action), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Optimize asks the server to reorder the route's stops. params may be nil.
func (s *RouteService) Optimize(ctx context.Context, id int64, params any) (*domain.CollectionRoute, error) {
	return s.action(ctx, id, "optimize", params)
}

func (s *RouteService) Start(ctx context.Context, id int64) (*domain.CollectionRoute, error) {
	return s.action(ctx, id, "start", nil)
}

// Complete finishes a route. data may carry actual distance and fuel figures.
func (s *RouteService) Complete(ctx context.Context, id int64, data any) (*domain.CollectionRoute, error) {
	return s.action(ctx, id, "complete", data)
}

func (s *RouteService) Cancel(ctx context.Context, id int64, reason string) (*domain.CollectionRoute, error) {
	return s.action(ctx, id, "cancel", map[string]string{"reason": reason})
}
