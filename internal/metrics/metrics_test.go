package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialid/internal/metrics"
)

func TestObserveVerification(t *testing.T) {
	m := metrics.New()

	m.ObserveVerification("google", metrics.OutcomeVerified)
	m.ObserveVerification("google", metrics.OutcomeVerified)
	m.ObserveVerification("facebook", metrics.OutcomeTimeout)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokenVerifications.WithLabelValues("google", "verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenVerifications.WithLabelValues("facebook", "timeout")))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.ObserveVerification("google", metrics.OutcomeRejected)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `token_verifications_total{outcome="rejected",provider="google"} 1`)
}
