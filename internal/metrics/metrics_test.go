package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	require.NotPanics(t, Register)
	require.NotPanics(t, Register)

	err := prometheus.Register(IngestTotal)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func TestAnalysisTotal_Labels(t *testing.T) {
	before := testutil.ToFloat64(AnalysisTotal.WithLabelValues("ok"))
	AnalysisTotal.WithLabelValues("ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AnalysisTotal.WithLabelValues("ok")))
}
