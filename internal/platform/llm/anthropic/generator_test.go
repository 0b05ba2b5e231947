package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func messagesServer(t *testing.T, content string, got *messagesRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",` +
			`"content":` + content + `,"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":3}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateJoinsTextBlocks(t *testing.T) {
	var req messagesRequest
	srv := messagesServer(t, `[{"type":"text","text":"- Revenue grew "},{"type":"text","text":"**10%**"}]`, &req)

	g, err := New("sk-ant-test", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "What happened in Q1?")
	require.NoError(t, err)
	assert.Equal(t, "- Revenue grew **10%**", out)

	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, defaultMaxTokens, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 1)
	assert.Equal(t, "What happened in Q1?", req.Messages[0].Content[0].Text)
}

func TestGenerateEmptyContentIsNotAnError(t *testing.T) {
	srv := messagesServer(t, `[]`, nil)

	g, err := New("sk-ant-test", "claude-3-5-haiku-latest", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	g, err := New("sk-ant-test", "nope", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "q")
	assert.ErrorContains(t, err, "anthropic generate")
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("  ", "")
	assert.Error(t, err)
}
