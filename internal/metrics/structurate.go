// SPDX-License-Identifier: MIT

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConfigOpsTotal counts structured config file operations by op (load/save/reload) and result.
	ConfigOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vortex_structurate_ops_total",
		Help: "Total number of structured config operations, by op and result.",
	}, []string{"op", "result"})

	// MigrationsTotal counts applied config migrations by target version.
	MigrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vortex_structurate_migrations_total",
		Help: "Total number of applied config migrations, by target version.",
	}, []string{"to_version"})

	// FieldErrorsTotal counts fields that could not be decoded and kept their default.
	FieldErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vortex_structurate_field_errors_total",
		Help: "Total number of config fields that failed to decode.",
	})
)

// RecordConfigOp increments the config operation counter.
func RecordConfigOp(op string, err error) {
	ConfigOpsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}

// RecordMigration increments the migration counter for the given target version.
func RecordMigration(toVersion int) {
	MigrationsTotal.WithLabelValues(strconv.Itoa(toVersion)).Inc()
}

// RecordFieldErrors adds n decode failures.
func RecordFieldErrors(n int) {
	if n <= 0 {
		return
	}
	FieldErrorsTotal.Add(float64(n))
}
