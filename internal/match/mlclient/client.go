// internal/match/mlclient/client.go

// Package mlclient calls the external success-probability service. The model
// itself is a black box; we send a feature vector and read back a float in
// [0,1]. Calls are best-effort with a short timeout, and every failure
// degrades to a zero contribution upstream.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bamaai-connect/internal/common/httpclient"
)

// FeatureCount is the feature vector length the model expects.
const FeatureCount = 10

// Predictor is the external success-probability capability.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// HTTPPredictor implements Predictor against the remote scoring endpoint.
type HTTPPredictor struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

func New(baseURL, apiKey string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPPredictor{
		client:  httpclient.NewClientWithBearer(timeout, apiKey),
		baseURL: baseURL,
		timeout: timeout,
	}
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, features []float64) (float64, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("expected %d features, got %d", FeatureCount, len(features))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, err
	}

	resp, err := p.client.PostJSON(ctx, p.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("ml predict call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ml predict status: %s", resp.Status)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("ml predict decode: %w", err)
	}

	if out.Probability < 0 || out.Probability > 1 {
		return 0, fmt.Errorf("ml probability out of range: %f", out.Probability)
	}
	return out.Probability, nil
}
