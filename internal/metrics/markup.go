// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the vortex parser and structurate packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// ParseTotal counts markup parse calls by result.
	ParseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vortex_parser_parse_total",
		Help: "Total number of markup parse calls, by result.",
	}, []string{"result"})

	// UnknownTagsTotal counts unknown tags seen while parsing, by disposition (stripped/kept).
	UnknownTagsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vortex_parser_unknown_tags_total",
		Help: "Total number of unknown markup tags, by disposition.",
	}, []string{"disposition"})
)

// RecordParse increments the parse counter.
func RecordParse(err error) {
	ParseTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordUnknownTag increments the unknown tag counter.
func RecordUnknownTag(stripped bool) {
	disposition := "kept"
	if stripped {
		disposition = "stripped"
	}
	UnknownTagsTotal.WithLabelValues(disposition).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
