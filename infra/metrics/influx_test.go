package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/bmsim/core/metrics"
)

func TestInfluxSink_RecordPackState(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	ev := coremetrics.PackStateEvent{
		RunID:       "run1",
		Step:        2,
		SimTime:     30 * time.Second,
		PackVoltage: 14.8,
		AverageSOC:  99.5,
		AverageSOH:  100,
		AverageTemp: 25.2,
		Cycles:      0,
		Timestamp:   time.Now(),
	}
	if err := sink.RecordPackState(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	if !strings.HasPrefix(body, "pack_state,run_id=run1 ") {
		t.Errorf("unexpected measurement or tags: %s", body)
	}
	for _, field := range []string{"pack_voltage_v=14.8", "avg_soc_pct=99.5", "cycles=0i", "sim_time_s=30"} {
		if !strings.Contains(body, field) {
			t.Errorf("missing field %q in body: %s", field, body)
		}
	}
}

func TestInfluxSink_RecordCycle(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	ev := coremetrics.CycleEvent{RunID: "run1", SimTime: 30 * time.Minute, Cycles: 1, Timestamp: time.Now()}
	if err := sink.RecordCycle(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.HasPrefix(body, "pack_cycle,") {
		t.Errorf("unexpected measurement: %s", body)
	}
	if !strings.Contains(body, "cycle=1") {
		t.Errorf("missing cycle tag: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "pass"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer healthy.Close()

	cfg := coremetrics.Config{InfluxURL: healthy.URL, InfluxToken: "t", InfluxOrg: "o", InfluxBucket: "b"}
	if _, ok := NewInfluxSinkWithFallback(cfg).(*InfluxSink); !ok {
		t.Errorf("expected InfluxSink for healthy instance")
	}

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer unhealthy.Close()

	cfg.InfluxURL = unhealthy.URL
	if _, ok := NewInfluxSinkWithFallback(cfg).(coremetrics.NopSink); !ok {
		t.Errorf("expected NopSink fallback for failing health check")
	}
}
