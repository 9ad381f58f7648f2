package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	m := New()

	m.RecordGateRejection(ReasonInvalidToken)
	m.RecordGateRejection(ReasonInvalidToken)
	m.RecordLogin(LoginSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateRejections.WithLabelValues(ReasonInvalidToken)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GateRejections.WithLabelValues(ReasonMissingToken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginSuccess)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordLogin(LoginBadCredentials)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `todo_login_attempts_total{outcome="bad_credentials"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
