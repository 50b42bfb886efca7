package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// AlertService manages alerts, their comments and alert rules.
type AlertService struct {
	resource[domain.Alert]
}

// ListFiltered is List with typed filters.
func (s *AlertService) ListFiltered(ctx context.Context, f domain.AlertFilters) (*domain.Page[domain.Alert], error) {
	return s.List(ctx, f.Query())
}

func (s *AlertService) transition(ctx context.Context, id int64, action string, body any) (*domain.Alert, error) {
	var out domain.Alert
	if err := send(ctx, s.d, http.MethodPost, s.item(id, action), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AlertService) Acknowledge(ctx context.Context, id int64) (*domain.Alert, error) {
	return s.transition(ctx, id, "acknowledge", nil)
}

// Resolve marks an alert resolved. data may carry resolution notes.
func (s *AlertService) Resolve(ctx context.Context, id int64, data any) (*domain.Alert, error) {
	return s.transition(ctx, id, "resolve", data)
}

func (s *AlertService) Close(ctx context.Context, id int64) (*domain.Alert, error) {
	return s.transition(ctx, id, "close", nil)
}

func (s *AlertService) Comments(ctx context.Context, id int64) ([]domain.AlertComment, error) {
	var out []domain.AlertComment
	if err := get(ctx, s.d, s.item(id, "comments"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AlertService) AddComment(ctx context.Context, id int64, comment string) (*domain.AlertComment, error) {
	var out domain.AlertComment
	body := map[string]string{"comment": comment}
	if err := send(ctx, s.d, http.MethodPost, s.item(id, "comments"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AlertService) rulePath(id int64) string {
	return fmt.Sprintf("%srules/%d/", s.base, id)
}

func (s *AlertService) Rules(ctx context.Context, query url.Values) (*domain.Page[domain.AlertRule], error) {
	var out domain.Page[domain.AlertRule]
	if err := get(ctx, s.d, s.base+"rules/", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AlertService) CreateRule(ctx context.Context, body any) (*domain.AlertRule, error) {
	var out domain.AlertRule
	if err := send(ctx, s.d, http.MethodPost, s.base+"rules/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AlertService) UpdateRule(ctx context.Context, id int64, body any) (*domain.AlertRule, error) {
	var out domain.AlertRule
	if err := send(ctx, s.d, http.MethodPatch, s.rulePath(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AlertService) DeleteRule(ctx context.Context, id int64) error {
	return send(ctx, s.d, http.MethodDelete, s.rulePath(id), nil, nil)
}
