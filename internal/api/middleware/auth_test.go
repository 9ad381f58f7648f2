package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_server/internal/common"
	"todo_server/internal/common/security"
	"todo_server/internal/platform/metrics"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRouter(gate *Gate, seen *security.Identity) http.Handler {
	r := chi.NewRouter()
	r.Get("/user/{user_id}/ping", gate.Guard(func(w http.ResponseWriter, _ *http.Request, id security.Identity) {
		*seen = id
		w.WriteHeader(http.StatusNoContent)
	}))
	return r
}

func TestGate_Guard(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	tokens := security.NewTokenService(security.TokenConfig{Secret: testSecret, TTL: security.TokenTTL},
		security.WithClock(func() time.Time { return now }))
	tokenFor7, err := tokens.Issue(7)
	require.NoError(t, err)

	other := security.NewTokenService(security.TokenConfig{Secret: []byte("another-secret-another-secret!!")})
	forged, err := other.Issue(7)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		at         time.Time
		wantStatus int
		wantReason string
	}{
		{name: "owner", path: "/user/7/ping", header: "Bearer " + tokenFor7, at: issuedAt, wantStatus: http.StatusNoContent},
		{name: "owner just before expiry", path: "/user/7/ping", header: "Bearer " + tokenFor7, at: issuedAt.Add(14*time.Minute + 59*time.Second), wantStatus: http.StatusNoContent},
		{name: "missing header", path: "/user/7/ping", at: issuedAt, wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonMissingToken},
		{name: "wrong scheme", path: "/user/7/ping", header: "Basic " + tokenFor7, at: issuedAt, wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonMissingToken},
		{name: "garbage token", path: "/user/7/ping", header: "Bearer not.a.token", at: issuedAt, wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonInvalidToken},
		{name: "other secret", path: "/user/7/ping", header: "Bearer " + forged, at: issuedAt, wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonInvalidToken},
		{name: "expired", path: "/user/7/ping", header: "Bearer " + tokenFor7, at: issuedAt.Add(15 * time.Minute), wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonInvalidToken},
		{name: "someone else's path", path: "/user/8/ping", header: "Bearer " + tokenFor7, at: issuedAt, wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonIdentityMismatch},
		{name: "non-canonical path id", path: "/user/07/ping", header: "Bearer " + tokenFor7, at: issuedAt, wantStatus: http.StatusUnauthorized, wantReason: metrics.ReasonIdentityMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			m := metrics.New()
			var seen security.Identity
			router := newTestRouter(NewGate(tokens, nil, m), &seen)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusUnauthorized {
				assert.Equal(t, int64(7), seen.UserID)
				assert.Equal(t, "7", seen.Subject)
				return
			}

			assert.Zero(t, seen)
			var body common.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, common.NewAuthError(common.AuthUnauthorized).Error(), body.Msg)
			assert.Empty(t, body.Detail)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.GateRejections.WithLabelValues(tt.wantReason)))
		})
	}
}

func TestGate_Authenticate(t *testing.T) {
	tokens := security.NewTokenService(security.TokenConfig{Secret: testSecret})
	token, err := tokens.Issue(3)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(UserIDParam, "3")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	id, err := NewGate(tokens, nil, nil).Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.UserID)
}

func TestGate_AuthenticateHidesReason(t *testing.T) {
	tokens := security.NewTokenService(security.TokenConfig{Secret: testSecret})
	token, err := tokens.Issue(3)
	require.NoError(t, err)

	headers := map[string]string{
		"missing":  "",
		"invalid":  "Bearer not.a.token",
		"mismatch": "Bearer " + token,
	}
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add(UserIDParam, "4")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			_, err := NewGate(tokens, nil, nil).Authenticate(req)
			assert.True(t, common.IsAuthKind(err, common.AuthUnauthorized))
		})
	}
}
