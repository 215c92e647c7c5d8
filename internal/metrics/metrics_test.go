package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"sealchat/internal/metrics"
)

func TestRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	tm := metrics.NewTransport(reg)
	rm := metrics.NewRelay(reg)

	tm.Connects.Inc()
	tm.FramesDropped.WithLabelValues("decode").Inc()
	rm.Routed.WithLabelValues("dm").Add(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	require.Equal(t, 1.0, values["sealchat_transport_connects_total"])
	require.Equal(t, 1.0, values["sealchat_transport_frames_dropped_total"])
	require.Equal(t, 2.0, values["sealchat_relay_routed_total"])

	// Unregistered collectors still work.
	require.NotPanics(t, func() { metrics.NewTransport(nil).SendsDropped.Inc() })
}
