// Package api maps every WasteWise REST endpoint to a typed Go call.
//
// The helpers are thin: each turns its arguments into a method, path,
// query and body, sends them through an httpclient.Client and decodes the
// response. Authentication, refresh and error notification all happen in
// the HTTP client.
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

// Doer sends requests. *httpclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *httpclient.Request, out any) error
	Download(ctx context.Context, req *httpclient.Request, w io.Writer) (int64, error)
}

// Client groups the resource families.
type Client struct {
	Auth      *AuthService
	Users     *UserService
	Zones     *ZoneService
	Bins      *BinService
	Sensors   *SensorService
	Alerts    *AlertService
	Vehicles  *VehicleService
	Routes    *RouteService
	Analytics *AnalyticsService
}

// New builds the resource helpers on top of d.
func New(d Doer) *Client {
	return &Client{
		Auth:      &AuthService{d: d},
		Users:     &UserService{resource[domain.User]{d: d, base: "/v1/users/"}},
		Zones:     &ZoneService{resource[domain.Zone]{d: d, base: "/v1/bins/zones/"}},
		Bins:      &BinService{resource[domain.WasteBin]{d: d, base: "/v1/bins/"}},
		Sensors:   &SensorService{d: d},
		Alerts:    &AlertService{resource[domain.Alert]{d: d, base: "/v1/alerts/"}},
		Vehicles:  &VehicleService{resource[domain.Vehicle]{d: d, base: "/v1/routes/vehicles/"}},
		Routes:    &RouteService{resource[domain.CollectionRoute]{d: d, base: "/v1/routes/"}},
		Analytics: &AnalyticsService{d: d},
	}
}

// resource implements the CRUD endpoints shared by most families.
type resource[T any] struct {
	d    Doer
	base string
}

func (r resource[T]) item(id int64, action ...string) string {
	p := fmt.Sprintf("%s%d/", r.base, id)
	for _, a := range action {
		p += a + "/"
	}
	return p
}

// List returns one page. query may be nil.
func (r resource[T]) List(ctx context.Context, query url.Values) (*domain.Page[T], error) {
	var out domain.Page[T]
	if err := get(ctx, r.d, r.base, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := get(ctx, r.d, r.item(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := send(ctx, r.d, http.MethodPost, r.base, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update (PATCH).
func (r resource[T]) Update(ctx context.Context, id int64, body any) (*T, error) {
	var out T
	if err := send(ctx, r.d, http.MethodPatch, r.item(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) Delete(ctx context.Context, id int64) error {
	return send(ctx, r.d, http.MethodDelete, r.item(id), nil, nil)
}

func get(ctx context.Context, d Doer, path string, query url.Values, out any) error {
	return d.Do(ctx, &httpclient.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func send(ctx context.Context, d Doer, method, path string, body, out any) error {
	return d.Do(ctx, &httpclient.Request{Method: method, Path: path, Body: body}, out)
}

// merge copies extra into base and returns base.
func merge(base url.Values, extra url.Values) url.Values {
	for k, vs := range extra {
		for _, v := range vs {
			base.Add(k, v)
		}
	}
	return base
}
