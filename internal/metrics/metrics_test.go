package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequests.WithLabelValues("osrm", "success"))
	ProviderRequests.WithLabelValues("osrm", "success").Inc()
	after := testutil.ToFloat64(ProviderRequests.WithLabelValues("osrm", "success"))
	if after != before+1 {
		t.Errorf("ProviderRequests = %v, want %v", after, before+1)
	}

	CacheRequests.WithLabelValues("geocode", "hit").Inc()
	if got := testutil.ToFloat64(CacheRequests.WithLabelValues("geocode", "hit")); got < 1 {
		t.Errorf("CacheRequests hit = %v, want >= 1", got)
	}
}
