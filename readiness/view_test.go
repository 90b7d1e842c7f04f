package readiness_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/readiness"
)

func TestLivenessAlwaysUp(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	view := readiness.NewView(ctrl)

	report := view.Liveness()
	assert.Equal(t, readiness.StatusUp, report.Status)
	assert.Equal(t, shutdown.StateRunning, report.LifecycleState)
}

func TestReadinessReflectsAcceptingState(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	view := readiness.NewView(ctrl)

	before := view.Readiness()
	assert.Equal(t, readiness.StatusReady, before.Status)
	assert.Empty(t, before.Message)

	ctrl.InitiateDrain(nil)

	after := view.Readiness()
	assert.Equal(t, readiness.StatusNotReady, after.Status)
	assert.NotEmpty(t, after.Message)
}

func TestHandlerReturnsServiceUnavailableWhenNotReady(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	ctrl.InitiateDrain(nil)
	handler := readiness.NewHandler(readiness.NewView(ctrl))

	mux := http.NewServeMux()
	handler.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_READY")
	assert.Contains(t, rec.Body.String(), `"lifecycleState":"DRAINING"`, "LifecycleState must serialize as its readable name, not a bare integer")
}

func TestHandlerReturnsOKForLiveness(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	handler := readiness.NewHandler(readiness.NewView(ctrl))

	mux := http.NewServeMux()
	handler.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "UP")
	assert.Contains(t, rec.Body.String(), `"lifecycleState":"RUNNING"`)
}
