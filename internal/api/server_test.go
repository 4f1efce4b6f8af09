package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banyan-robotics/banyan/internal/telemetry"
)

type fakeStatus struct {
	status RobotStatus
}

func (f *fakeStatus) Status() RobotStatus { return f.status }

type fakeController struct {
	cancels int
}

func (f *fakeController) Cancel() { f.cancels++ }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "banyan" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestStatusHandler(t *testing.T) {
	prev := statusSource
	defer SetStatusSource(prev)

	SetStatusSource(nil)
	rec := httptest.NewRecorder()
	statusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status with no source = %d, want 503", rec.Code)
	}

	SetStatusSource(&fakeStatus{status: RobotStatus{
		Mode: "auto", State: "APPROACHING", TaskIndex: 1, TaskCount: 3,
	}})
	rec = httptest.NewRecorder()
	statusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got RobotStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if got.State != "APPROACHING" || got.TaskIndex != 1 {
		t.Errorf("unexpected status: %+v", got)
	}
}

func TestEventsHandlerServesBuffer(t *testing.T) {
	telemetry.Clear()
	telemetry.Emit("info", "system.startup", "test", nil)

	rec := httptest.NewRecorder()
	eventsHandler(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	var events []telemetry.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decoding events: %v", err)
	}
	if len(events) != 1 || events[0].Name != "system.startup" {
		t.Errorf("unexpected events payload: %+v", events)
	}
}

func TestRoutineCancelHandler(t *testing.T) {
	prev := routineController
	defer SetRoutineController(prev)

	ctrl := &fakeController{}
	SetRoutineController(ctrl)

	rec := httptest.NewRecorder()
	routineCancelHandler(rec, httptest.NewRequest(http.MethodGet, "/routine/cancel", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET cancel = %d, want 405", rec.Code)
	}
	if ctrl.cancels != 0 {
		t.Fatal("cancel ran on GET")
	}

	rec = httptest.NewRecorder()
	routineCancelHandler(rec, httptest.NewRequest(http.MethodPost, "/routine/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST cancel = %d, want 200", rec.Code)
	}
	if ctrl.cancels != 1 {
		t.Fatalf("cancels = %d, want 1", ctrl.cancels)
	}

	SetRoutineController(nil)
	rec = httptest.NewRecorder()
	routineCancelHandler(rec, httptest.NewRequest(http.MethodPost, "/routine/cancel", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("cancel with no controller = %d, want 503", rec.Code)
	}
}
