package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cyberguard/config"
	"cyberguard/models"
)

func newTestClient(endpoint string) *ClassifierClient {
	return NewClassifierClient(&config.ClassifierConfig{
		Endpoint: endpoint,
		Timeout:  1,
	})
}

func TestRiskMagnitude(t *testing.T) {
	cases := []struct {
		severity models.ThreatSeverity
		want     int
	}{
		{models.SeverityCritical, 500},
		{models.SeverityHigh, 300},
		{models.SeverityMedium, 50},
		{models.SeverityLow, 20},
		{models.SeverityInfo, 10},
		{models.ThreatSeverity("bogus"), 10},
	}

	for _, tc := range cases {
		if got := RiskMagnitude(tc.severity); got != tc.want {
			t.Errorf("RiskMagnitude(%q) = %d, want %d", tc.severity, got, tc.want)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Run("anomaly verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var in map[string]int
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if in["risk_score"] != 50 {
				t.Errorf("expected risk_score 50, got %d", in["risk_score"])
			}
			json.NewEncoder(w).Encode(map[string]string{"result": "anomaly"})
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultAnomaly || d.Confidence != 95 {
			t.Errorf("expected anomaly/95, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("normal verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"result": "normal"})
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultNormal || d.Confidence != 60 {
			t.Errorf("expected normal/60, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("classifier outage falls back to normal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultNormal || d.Confidence != 60 {
			t.Errorf("expected normal/60 on outage, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("timeout falls back to normal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultNormal || d.Confidence != 60 {
			t.Errorf("expected normal/60 on timeout, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("non-2xx falls back to normal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultNormal || d.Confidence != 60 {
			t.Errorf("expected normal/60 on 500, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("malformed body falls back to normal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultNormal || d.Confidence != 60 {
			t.Errorf("expected normal/60 on bad body, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("unexpected verdict falls back to normal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"result": "maybe"})
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.Result != models.ResultNormal || d.Confidence != 60 {
			t.Errorf("expected normal/60 on unknown verdict, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("override beats normal verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"result": "normal"})
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 500)
		if d.Result != models.ResultAnomaly || d.Confidence != 99 {
			t.Errorf("expected anomaly/99 on override, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("override beats classifier outage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 300)
		if d.Result != models.ResultAnomaly || d.Confidence != 99 {
			t.Errorf("expected anomaly/99 on override, got %s/%d", d.Result, d.Confidence)
		}
	})

	t.Run("detection block always complete", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"result": "anomaly"})
		}))
		defer srv.Close()

		d := newTestClient(srv.URL).Detect(context.Background(), 50)
		if d.DetectedBy != models.DetectedByMLModel {
			t.Errorf("expected detected_by %q, got %q", models.DetectedByMLModel, d.DetectedBy)
		}
		if d.DetectionTime.IsZero() {
			t.Error("detection time not set")
		}
		if len(d.Indicators) == 0 {
			t.Error("indicators must never be empty")
		}
		if d.Indicators[0] != "network_traffic" {
			t.Errorf("expected default indicator, got %v", d.Indicators)
		}
	})
}
