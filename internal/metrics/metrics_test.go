// SPDX-License-Identifier: MIT

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	return getCounterValue(t, counterVec.WithLabelValues(labels...))
}

func TestRecordParse(t *testing.T) {
	okBefore := getCounterVecValue(t, ParseTotal, ResultOK)
	errBefore := getCounterVecValue(t, ParseTotal, ResultError)

	RecordParse(nil)
	RecordParse(errors.New("boom"))
	RecordParse(nil)

	assert.Equal(t, okBefore+2, getCounterVecValue(t, ParseTotal, ResultOK))
	assert.Equal(t, errBefore+1, getCounterVecValue(t, ParseTotal, ResultError))
}

func TestRecordUnknownTag(t *testing.T) {
	stripped := getCounterVecValue(t, UnknownTagsTotal, "stripped")
	kept := getCounterVecValue(t, UnknownTagsTotal, "kept")

	RecordUnknownTag(true)
	RecordUnknownTag(false)

	assert.Equal(t, stripped+1, getCounterVecValue(t, UnknownTagsTotal, "stripped"))
	assert.Equal(t, kept+1, getCounterVecValue(t, UnknownTagsTotal, "kept"))
}

func TestRecordConfigOp(t *testing.T) {
	before := getCounterVecValue(t, ConfigOpsTotal, "load", ResultOK)
	RecordConfigOp("load", nil)
	assert.Equal(t, before+1, getCounterVecValue(t, ConfigOpsTotal, "load", ResultOK))
}

func TestRecordMigration(t *testing.T) {
	before := getCounterVecValue(t, MigrationsTotal, "3")
	RecordMigration(3)
	assert.Equal(t, before+1, getCounterVecValue(t, MigrationsTotal, "3"))
}

func TestRecordFieldErrors(t *testing.T) {
	before := getCounterValue(t, FieldErrorsTotal)

	RecordFieldErrors(0)
	RecordFieldErrors(-2)
	assert.Equal(t, before, getCounterValue(t, FieldErrorsTotal))

	RecordFieldErrors(3)
	assert.Equal(t, before+3, getCounterValue(t, FieldErrorsTotal))
}
