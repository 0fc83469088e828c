package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestObserveLLM(t *testing.T) {
	m := Default()
	before := testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("metrics-test", "error"))

	m.ObserveLLM("metrics-test", time.Second, errors.New("boom"))
	m.ObserveLLM("metrics-test", time.Second, nil)

	assert.Equal(t, before+1, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("metrics-test", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("metrics-test", "ok")))
}

func TestIncFallback(t *testing.T) {
	m := Default()
	m.IncFallback("metrics-test")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMFallbacksTotal.WithLabelValues("metrics-test")))
}
