// Package metrics collects and exposes Prometheus metrics for the comment service.
package metrics

import (
	"net/http"
	"time"

	"github.com/njchilds90/allowhtml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the comment service reports to.
type Recorder interface {
	RecordSanitized(report allowhtml.Report, duration time.Duration)
	RecordAccepted()
	RecordRejected(reason string)
}

// Collector records metrics in a Prometheus registry.
type Collector struct {
	accepted     prometheus.Counter
	rejected     *prometheus.CounterVec
	strippedTags prometheus.Counter
	strippedAttr prometheus.Counter
	suppressed   prometheus.Counter
	comments     prometheus.Counter
	malformed    prometheus.Counter
	duration     prometheus.Histogram
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commentbox_comments_accepted_total",
			Help: "Comments sanitized and stored.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commentbox_comments_rejected_total",
			Help: "Comments rejected by validation or left empty by sanitization, by reason.",
		}, []string{"reason"}),
		strippedTags: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commentbox_sanitizer_stripped_tags_total",
			Help: "Tags removed by the sanitizer.",
		}),
		strippedAttr: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commentbox_sanitizer_stripped_attributes_total",
			Help: "Attributes removed by the sanitizer.",
		}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commentbox_sanitizer_suppressed_elements_total",
			Help: "Raw-text elements removed together with their body.",
		}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commentbox_sanitizer_html_comments_total",
			Help: "HTML comments and declarations removed.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commentbox_sanitizer_malformed_total",
			Help: "Malformed markup fragments escaped as text.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "commentbox_sanitize_duration_seconds",
			Help:    "Time spent sanitizing one input.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
	}

	reg.MustRegister(
		c.accepted,
		c.rejected,
		c.strippedTags,
		c.strippedAttr,
		c.suppressed,
		c.comments,
		c.malformed,
		c.duration,
	)

	return c
}

// RecordSanitized adds one sanitization pass.
func (c *Collector) RecordSanitized(report allowhtml.Report, duration time.Duration) {
	c.strippedTags.Add(float64(report.StrippedTags))
	c.strippedAttr.Add(float64(report.StrippedAttributes))
	c.suppressed.Add(float64(report.SuppressedElements))
	c.comments.Add(float64(report.Comments))
	c.malformed.Add(float64(report.Malformed))
	c.duration.Observe(duration.Seconds())
}

// RecordAccepted counts a stored comment.
func (c *Collector) RecordAccepted() {
	c.accepted.Inc()
}

// RecordRejected counts a rejected comment.
func (c *Collector) RecordRejected(reason string) {
	c.rejected.WithLabelValues(reason).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSanitized(allowhtml.Report, time.Duration) {}
func (Nop) RecordAccepted()                                 {}
func (Nop) RecordRejected(string)                           {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
