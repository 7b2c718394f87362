package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"cyberguard/config"
	"cyberguard/models"
)

// Severity to risk magnitude table. This magnitude is a separate scale from
// the asset risk score; it is the single input fed to the external
// classifier. Critical and high land above the override threshold on
// purpose.
var magnitudeTable = map[models.ThreatSeverity]int{
	models.SeverityCritical: 500,
	models.SeverityHigh:     300,
	models.SeverityMedium:   50,
	models.SeverityLow:      20,
	models.SeverityInfo:     10,
}

// Magnitudes at or above this are always flagged as anomalies, no matter
// what the classifier said (or whether it answered at all).
const overrideThreshold = 100

const defaultIndicator = "network_traffic"

// RiskMagnitude maps a declared severity to its classifier input magnitude.
// Unknown severities map to the info magnitude.
func RiskMagnitude(severity models.ThreatSeverity) int {
	if m, ok := magnitudeTable[severity]; ok {
		return m
	}
	return magnitudeTable[models.SeverityInfo]
}

// ClassifierClient calls the external anomaly classification service
type ClassifierClient struct {
	endpoint string
	client   *http.Client
}

// NewClassifierClient builds a client from injected configuration
func NewClassifierClient(cfg *config.ClassifierConfig) *ClassifierClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ClassifierClient{
		endpoint: cfg.Endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Detect classifies a risk magnitude and always returns a complete detection
// block. It never returns an error: a classifier failure or timeout degrades
// to {normal, 60} and is logged so operators can spot an outage, then the
// high-magnitude override is applied on top regardless of which path was
// taken.
func (c *ClassifierClient) Detect(ctx context.Context, magnitude int) models.AIDetection {
	detection := models.AIDetection{
		DetectedBy:    models.DetectedByMLModel,
		Confidence:    60,
		Result:        models.ResultNormal,
		DetectionTime: time.Now(),
		Indicators:    []string{defaultIndicator},
	}

	result, err := c.predict(ctx, magnitude)
	if err != nil {
		log.Printf("Classifier unavailable (magnitude=%d), falling back to normal/60: %v", magnitude, err)
	} else if result == models.ResultAnomaly {
		detection.Result = models.ResultAnomaly
		detection.Confidence = 95
	}

	// Critical and high severities are always flagged. This business rule
	// takes precedence over the classifier verdict.
	if magnitude >= overrideThreshold {
		detection.Result = models.ResultAnomaly
		detection.Confidence = 99
	}

	if len(detection.Indicators) == 0 {
		detection.Indicators = []string{defaultIndicator}
	}

	return detection
}

// predict performs the actual HTTP round trip. Timeouts, non-2xx statuses
// and malformed bodies are all reported identically as errors.
func (c *ClassifierClient) predict(ctx context.Context, magnitude int) (string, error) {
	payload, err := json.Marshal(map[string]int{"risk_score": magnitude})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse classifier response: %v", err)
	}

	if out.Result != models.ResultAnomaly && out.Result != models.ResultNormal {
		return "", fmt.Errorf("unexpected classifier verdict %q", out.Result)
	}

	return out.Result, nil
}
