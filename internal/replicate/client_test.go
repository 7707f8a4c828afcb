package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

func newTestClient(t *testing.T, baseURL string, maxPolls int) Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:      baseURL,
		Model:        "black-forest-labs/flux-schnell",
		APIToken:     "test-token",
		PollInterval: time.Millisecond,
		MaxPolls:     maxPolls,
	}, zap.NewNop())
}

func TestSubmitAndAwaitImage_Success(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/models/black-forest-labs/flux-schnell/predictions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body predictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a brave fox, 3D art style", body.Input.Prompt)
		assert.Equal(t, "blurry, low quality", body.Input.NegativePrompt)
		assert.Equal(t, "png", body.Input.OutputFormat)
		assert.Equal(t, 80, body.Input.OutputQuality)
		assert.Equal(t, "1:1", body.Input.AspectRatio)

		json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "processing"})
	})
	mux.HandleFunc("/predictions/pred-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "processing"})
			return
		}
		json.NewEncoder(w).Encode(prediction{
			ID:     "pred-1",
			Status: "succeeded",
			Output: json.RawMessage(`["https://replicate.delivery/out-1.png","https://replicate.delivery/out-2.png"]`),
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, 10)
	url, err := client.SubmitAndAwaitImage(context.Background(), "a brave fox, 3D art style", "blurry, low quality")

	require.NoError(t, err)
	assert.Equal(t, "https://replicate.delivery/out-1.png", url)
	assert.EqualValues(t, 3, polls.Load())
}

func TestSubmitAndAwaitImage_Failed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/black-forest-labs/flux-schnell/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "pred-2", Status: "starting"})
	})
	mux.HandleFunc("/predictions/pred-2", func(w http.ResponseWriter, r *http.Request) {
		msg := "NSFW content detected"
		json.NewEncoder(w).Encode(prediction{ID: "pred-2", Status: "failed", Error: &msg})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, 10)
	_, err := client.SubmitAndAwaitImage(context.Background(), "prompt", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrImageGeneration)
	assert.Contains(t, err.Error(), "NSFW content detected")
}

func TestSubmitAndAwaitImage_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/black-forest-labs/flux-schnell/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "pred-3", Status: "starting"})
	})
	mux.HandleFunc("/predictions/pred-3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "pred-3", Status: "processing"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	_, err := client.SubmitAndAwaitImage(context.Background(), "prompt", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationTimeout)
	assert.NotErrorIs(t, err, models.ErrImageGeneration)
}

func TestSubmitAndAwaitImage_EmptyOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/black-forest-labs/flux-schnell/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{
			ID:     "pred-4",
			Status: "succeeded",
			Output: json.RawMessage(`[]`),
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	_, err := client.SubmitAndAwaitImage(context.Background(), "prompt", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrImageGeneration)
}

func TestSubmitAndAwaitImage_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	_, err := client.SubmitAndAwaitImage(context.Background(), "prompt", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrImageGeneration)
	assert.Contains(t, err.Error(), "401")
}

func TestSubmitAndAwaitImage_ContextCanceled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/black-forest-labs/flux-schnell/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "pred-5", Status: "processing"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL, 10)
	_, err := client.SubmitAndAwaitImage(ctx, "prompt", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
