// internal/match/mlclient/client_test.go
package mlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func features() []float64 {
	return make([]float64, FeatureCount)
}

func TestPredict_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var in struct {
			Features []float64 `json:"features"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Len(t, in.Features, FeatureCount)

		json.NewEncoder(w).Encode(map[string]float64{"probability": 0.73})
	}))
	defer srv.Close()

	p := New(srv.URL, "test-key", time.Second)
	prob, err := p.Predict(context.Background(), features())

	require.NoError(t, err)
	assert.Equal(t, 0.73, prob)
}

func TestPredict_RejectsWrongFeatureCount(t *testing.T) {
	p := New("http://unused", "", time.Second)

	_, err := p.Predict(context.Background(), make([]float64, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 10 features")
}

func TestPredict_RejectsOutOfRangeProbability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"probability": 1.4})
	}))
	defer srv.Close()

	p := New(srv.URL, "", time.Second)
	_, err := p.Predict(context.Background(), features())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestPredict_Non200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(srv.URL, "", time.Second)
	_, err := p.Predict(context.Background(), features())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ml predict status")
}

func TestPredict_TimeoutSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]float64{"probability": 0.5})
	}))
	defer srv.Close()

	p := New(srv.URL, "", 20*time.Millisecond)
	_, err := p.Predict(context.Background(), features())

	assert.Error(t, err)
}

func TestPredict_NoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]float64{"probability": 0})
	}))
	defer srv.Close()

	p := New(srv.URL, "", time.Second)
	prob, err := p.Predict(context.Background(), features())

	require.NoError(t, err)
	assert.Zero(t, prob)
}
