package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionSource is sampled on every scrape.
type SessionSource interface {
	// Authenticated reports whether a session is active.
	Authenticated() bool
	// AccessExpiry returns the access token's expiry, or the zero time
	// when unknown.
	AccessExpiry() time.Time
}

// Collector reports session state at scrape time.
type Collector struct {
	source SessionSource
	now    func() time.Time

	authenticated *prometheus.Desc
	accessTTL     *prometheus.Desc
}

// NewCollector creates a collector reading from source.
func NewCollector(source SessionSource) *Collector {
	return &Collector{
		source: source,
		now:    time.Now,
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 when a session is active",
			nil, nil,
		),
		accessTTL: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "access_token_ttl_seconds"),
			"Seconds until the access token expires (negative once expired)",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
	ch <- c.accessTTL
}

// Collect implements prometheus.Collector. The TTL series is omitted when
// the expiry is unknown.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	auth := 0.0
	if c.source.Authenticated() {
		auth = 1
	}
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, auth)

	if exp := c.source.AccessExpiry(); !exp.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.accessTTL, prometheus.GaugeValue, exp.Sub(c.now()).Seconds())
	}
}

// RegisterSession registers a Collector for source.
func (r *Registry) RegisterSession(source SessionSource) error {
	return r.registry.Register(NewCollector(source))
}
