package domain

import (
	"net/url"
	"strconv"
)

// ListParams are the pagination and ordering knobs every list endpoint accepts.
type ListParams struct {
	Page     int
	PageSize int
	Ordering string
	Search   string
}

func (p ListParams) encode(v url.Values) {
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
}

// Query encodes the list parameters.
func (p ListParams) Query() url.Values {
	v := url.Values{}
	p.encode(v)
	return v
}

// BinFilters narrows GET /v1/bins/.
type BinFilters struct {
	ListParams
	Zone         int64
	BinType      string
	Status       BinStatus
	FillLevelMin *float64
	FillLevelMax *float64
}

// Query encodes the filters as django-filter query parameters.
func (f BinFilters) Query() url.Values {
	v := url.Values{}
	f.encode(v)
	if f.Zone > 0 {
		v.Set("zone", strconv.FormatInt(f.Zone, 10))
	}
	if f.BinType != "" {
		v.Set("bin_type", f.BinType)
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.FillLevelMin != nil {
		v.Set("fill_level_min", strconv.FormatFloat(*f.FillLevelMin, 'f', -1, 64))
	}
	if f.FillLevelMax != nil {
		v.Set("fill_level_max", strconv.FormatFloat(*f.FillLevelMax, 'f', -1, 64))
	}
	return v
}

// DateRange bounds a list by date (YYYY-MM-DD).
type DateRange struct {
	Start string
	End   string
}

// AlertFilters narrows GET /v1/alerts/.
type AlertFilters struct {
	ListParams
	AlertType string
	Severity  Severity
	Status    AlertStatus
	Zone      int64
	Created   DateRange
}

// Query encodes the filters as django-filter query parameters.
func (f AlertFilters) Query() url.Values {
	v := url.Values{}
	f.encode(v)
	if f.AlertType != "" {
		v.Set("alert_type", f.AlertType)
	}
	if f.Severity != "" {
		v.Set("severity", string(f.Severity))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Zone > 0 {
		v.Set("zone", strconv.FormatInt(f.Zone, 10))
	}
	if f.Created.Start != "" {
		v.Set("created_after", f.Created.Start)
	}
	if f.Created.End != "" {
		v.Set("created_before", f.Created.End)
	}
	return v
}

// RouteFilters narrows GET /v1/routes/.
type RouteFilters struct {
	ListParams
	Zone      int64
	Status    RouteStatus
	Scheduled DateRange
	Vehicle   int64
	Driver    int64
}

// Query encodes the filters as django-filter query parameters.
func (f RouteFilters) Query() url.Values {
	v := url.Values{}
	f.encode(v)
	if f.Zone > 0 {
		v.Set("zone", strconv.FormatInt(f.Zone, 10))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Scheduled.Start != "" {
		v.Set("scheduled_date_after", f.Scheduled.Start)
	}
	if f.Scheduled.End != "" {
		v.Set("scheduled_date_before", f.Scheduled.End)
	}
	if f.Vehicle > 0 {
		v.Set("vehicle", strconv.FormatInt(f.Vehicle, 10))
	}
	if f.Driver > 0 {
		v.Set("driver", strconv.FormatInt(f.Driver, 10))
	}
	return v
}
