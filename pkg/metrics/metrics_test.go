package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	r := prometheus.NewRegistry()
	Register(r)
	assert.Equal(t, r, GetRegisterer())

	CodecErrors.WithLabelValues("int", SerializeLabel).Inc()
	SerializedBytes.WithLabelValues("int", SerializeLabel).Observe(3)
	CompressedPayloads.WithLabelValues(CompressLabel).Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(CodecErrors.WithLabelValues("int", SerializeLabel)))
	assert.Equal(t, 1, testutil.CollectAndCount(SerializedBytes))

	assert.Panics(t, func() { Register(r) })
}
