package readability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {

	t.Run("should register the collectors", func(t *testing.T) {
		var reg = prometheus.NewRegistry()
		var m = NewMetrics(reg)
		m.observeParse(&Article{Completed: true, IsReadable: true}, time.Millisecond)

		count, err := testutil.GatherAndCount(reg)
		require.NoError(t, err)
		assert.Positive(t, count)
		assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
	})

	t.Run("should count outcomes", func(t *testing.T) {
		var m = NewMetrics(nil)
		m.observeParse(&Article{Completed: true, IsReadable: true}, time.Millisecond)
		m.observeParse(&Article{Completed: true}, time.Millisecond)
		m.observeParse(&Article{Completed: false}, 0)
		m.observeParse(&Article{Completed: true, IsReadable: true}, time.Millisecond)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.parses.WithLabelValues("readable")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.parses.WithLabelValues("unreadable")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.parses.WithLabelValues("failed")))
	})

	t.Run("should be safe when nil", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.observeParse(&Article{}, time.Second)
			m.observeAttempt()
			m.observeImageFailure()
		})
	})
}
