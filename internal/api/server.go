// Package api exposes the robot's diagnostic HTTP surface: health,
// live status, the telemetry event buffer, and a WebSocket stream of
// events as they happen.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/banyan-robotics/banyan/internal/telemetry"
	"github.com/banyan-robotics/banyan/internal/version"
)

// RobotStatus is the live state snapshot served by /status.
type RobotStatus struct {
	Mode           string  `json:"mode"`
	State          string  `json:"state"`
	TaskIndex      int     `json:"task_index"`
	TaskCount      int     `json:"task_count"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	HeadingDegrees float64 `json:"heading_deg"`
}

// StatusSource supplies the live status snapshot.
type StatusSource interface {
	Status() RobotStatus
}

var statusSource StatusSource

// SetStatusSource sets the source backing the /status endpoint.
func SetStatusSource(s StatusSource) {
	statusSource = s
}

// RoutineController lets operator endpoints cancel the active routine.
type RoutineController interface {
	Cancel()
}

var routineController RoutineController

// SetRoutineController sets the controller backing /routine/cancel.
func SetRoutineController(c RoutineController) {
	routineController = c
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "banyan",
		Version:   version.Version,
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if statusSource == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "status source not configured"})
		return
	}
	_ = json.NewEncoder(w).Encode(statusSource.Status())
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(telemetry.Snapshot())
}

type OperatorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func routineCancelHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(OperatorResponse{OK: false, Error: "method not allowed"})
		return
	}

	if routineController == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(OperatorResponse{OK: false, Error: "no routine controller"})
		return
	}

	routineController.Cancel()
	_ = json.NewEncoder(w).Encode(OperatorResponse{OK: true})
}

// ListenAndServe starts the API server on the given port.
// It blocks until the server exits.
func ListenAndServe(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/status", statusHandler)
	mux.HandleFunc("/events", eventsHandler)
	mux.HandleFunc("/routine/cancel", routineCancelHandler)
	mux.HandleFunc("/ws/events", wsEventsHandler)

	addr := fmt.Sprintf(":%d", port)
	log.Printf("API listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}
