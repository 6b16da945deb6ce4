package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/pkg/config"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, url, scheme string, retries uint64, token string) *Client {
	t.Helper()
	c, err := NewClient(config.APIConfig{BaseURL: url + "/api/", AuthScheme: scheme, ReadRetries: retries}, staticToken(token), nil)
	require.NoError(t, err)
	return c
}

func lookup(t *testing.T, name string) api.Descriptor {
	t.Helper()
	d, ok := api.DefaultRegistry().Lookup(name)
	require.True(t, ok)
	return d
}

func TestExecute_SendsMethodPathBodyAndBearer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/meetings/m1/complete", r.URL.Path)
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "completed", body["isScheduled"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Meeting completed"}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, AuthBearer, 0, "T1")
	resp, err := c.Execute(context.Background(), lookup(t, api.CompleteMeeting), api.Request{
		Params: map[string]string{"id": "m1"},
		Body:   map[string]string{"isScheduled": "completed", "message": "done"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"message":"Meeting completed"}`, string(resp.Body))
}

func TestExecute_CookieSchemeAndJar(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		tok, err := r.Cookie(TokenCookieName)
		require.NoError(t, err)
		assert.Equal(t, "T1", tok.Value)
		assert.Empty(t, r.Header.Get("Authorization"))
		if n == 1 {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		} else {
			sid, err := r.Cookie("sid")
			require.NoError(t, err)
			assert.Equal(t, "abc", sid.Value)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, AuthCookie, 0, "T1")
	for i := 0; i < 2; i++ {
		_, err := c.Execute(context.Background(), lookup(t, api.GetMeetings), api.Request{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestExecute_AnonymousSendsNoCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, AuthBearer, 0, "")
	_, err := c.Execute(context.Background(), lookup(t, api.Logout), api.Request{})
	require.NoError(t, err)
}

func TestExecute_TransportErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Invalid id"}`, "Invalid id"},
		{"error field", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, "Invalid credentials"},
		{"non-string message", http.StatusBadRequest, `{"message":{"code":1}}`, apperrors.FallbackMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, apperrors.FallbackMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			c := newTestClient(t, ts.URL, AuthBearer, 0, "")
			_, err := c.Execute(context.Background(), lookup(t, api.UpdateMeeting), api.Request{
				Params: map[string]string{"id": "m1"},
				Body:   map[string]string{},
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsTransport(err))
			assert.Equal(t, tc.status, apperrors.Status(err))
			assert.Equal(t, tc.message, apperrors.UserMessage(err))
		})
	}
}

func TestExecute_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := newTestClient(t, url, AuthBearer, 0, "")
	_, err := c.Execute(context.Background(), lookup(t, api.Logout), api.Request{})
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
}

func TestExecute_ReadRetriesOnlyNetworkErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"db down"}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, AuthBearer, 3, "")
	_, err := c.Execute(context.Background(), lookup(t, api.GetMeetings), api.Request{})
	require.Error(t, err)
	assert.Equal(t, "db down", apperrors.UserMessage(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "transport errors are not retried")
}

func TestExecute_MissingParamNeverDials(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, AuthBearer, 0, "")
	_, err := c.Execute(context.Background(), lookup(t, api.UpdateMeeting), api.Request{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
