package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContent_ErrorsAndEmptyCandidates(t *testing.T) {
	status := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	svc := NewGeminiServiceWithBaseURL("k", func() string { return srv.URL + "/" })

	_, err := svc.GenerateContent(context.Background(), "m", []Turn{{Role: "user", Text: "x"}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	status = http.StatusOK
	_, err = svc.GenerateContent(context.Background(), "m", []Turn{{Role: "user", Text: "x"}}, false)
	assert.EqualError(t, err, "no content returned")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash" || r.URL.Query().Get("key") != "good" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `{"name":"models/gemini-2.5-flash"}`)
	}))
	defer srv.Close()

	base := func() string { return srv.URL }
	assert.NoError(t, NewGeminiServiceWithBaseURL("good", base).Ping(context.Background(), "gemini-2.5-flash"))
	assert.Error(t, NewGeminiServiceWithBaseURL("bad", base).Ping(context.Background(), "gemini-2.5-flash"))
}

func TestBaseURLDefaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewGeminiService("k").baseURL())
	assert.Equal(t, DefaultBaseURL, NewGeminiServiceWithBaseURL("k", func() string { return "" }).baseURL())
}
