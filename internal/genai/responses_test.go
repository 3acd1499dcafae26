package genai

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
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{
		Endpoint:       srv.URL + "/v1/",
		APIKey:         "sk-test",
		Model:          "test-model",
		HTTPClient:     srv.Client(),
		InitialBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestClient_GenerateText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.Equal(t, "Summarize this", body["input"])
		assert.NotContains(t, body, "text")

		_, _ = w.Write([]byte(`{"output_text":"  A short summary. "}`))
	})

	res, err := c.Generate(context.Background(), " Summarize this ", Options{})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", res.Text)
	assert.Nil(t, res.JSON)
}

func TestClient_GenerateFallsBackToOutputContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"content":[{"type":"output_text","text":""}]},{"content":[{"type":"output_text","text":"from content"}]}]}`))
	})

	res, err := c.Generate(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "from content", res.Text)
}

func TestClient_GenerateStructured(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text struct {
				Format struct {
					Type string `json:"type"`
				} `json:"format"`
			} `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "json_object", body.Text.Format.Type)
		_, _ = w.Write([]byte(`{"output_text":"` + "```json\\n{\\\"topics\\\":[\\\"a\\\"]}\\n```" + `"}`))
	})

	res, err := c.Generate(context.Background(), "suggest", Options{StructuredOutput: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topics":["a"]}`, string(res.JSON))
}

func TestClient_GenerateStructuredRejectsProse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output_text":"not json at all"}`))
	})

	_, err := c.Generate(context.Background(), "suggest", Options{StructuredOutput: true})
	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"output_text":"ok"}`))
	})

	res, err := c.Generate(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	})

	_, err := c.Generate(context.Background(), "hi", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Generate(context.Background(), "hi", Options{})
	require.Error(t, err)
	assert.Equal(t, int32(defaultMaxTries), calls.Load())
}

func TestClient_MissingOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	})

	_, err := c.Generate(context.Background(), "hi", Options{})
	assert.Error(t, err)
}

func TestClient_EmptyPrompt(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Generate(context.Background(), "   ", Options{})
	assert.Error(t, err)
}

func TestClient_HonorsContextTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Generate(ctx, "hi", Options{})
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	g, err := New(Config{})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "hi", Options{})
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, err = New(Config{APIKey: "k", Model: "m"})
	assert.Error(t, err)

	_, err = NewClient(Config{Endpoint: "http://x", APIKey: "k"})
	assert.Error(t, err)

	g, err = New(Config{Endpoint: "http://x", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &Client{}, g)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}
