// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestRecordSelectionNormalizesUnknownLabels(t *testing.T) {
	before := counterValue(t, SelectionTotal.WithLabelValues("unknown", "unknown"))
	RecordSelection("weird", "theora")
	after := counterValue(t, SelectionTotal.WithLabelValues("unknown", "unknown"))
	assert.Equal(t, before+1, after)
}

func TestRecordDriftCorrectionCountsTier(t *testing.T) {
	before := counterValue(t, DriftCorrectionsTotal.WithLabelValues("aggressive"))
	RecordDriftCorrection("Aggressive", -1.8)
	after := counterValue(t, DriftCorrectionsTotal.WithLabelValues("aggressive"))
	assert.Equal(t, before+1, after)
}

func TestSetNativeActive(t *testing.T) {
	SetNativeActive(true)
	m := &dto.Metric{}
	require.NoError(t, NativeActive.Write(m))
	assert.Equal(t, 1.0, m.GetGauge().GetValue())

	SetNativeActive(false)
	m = &dto.Metric{}
	require.NoError(t, NativeActive.Write(m))
	assert.Equal(t, 0.0, m.GetGauge().GetValue())
}
