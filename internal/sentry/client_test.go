package sentry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueBody = `{
	"id": "4512",
	"title": "TypeError: boom",
	"status": "unresolved",
	"level": "error",
	"firstSeen": "2024-03-01T10:00:00Z",
	"lastSeen": "2024-03-02T11:30:00Z",
	"count": "17",
	"latestEvent": {"entries": []}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/api/0/", WithHTTPClient(server.Client()), WithTimeout(2*time.Second))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	testCases := []struct {
		name        string
		baseURL     string
		expectedURL string
		wantErr     bool
	}{
		{name: "Default Sentry API", baseURL: "https://sentry.io/api/0/", expectedURL: "https://sentry.io/api/0/"},
		{name: "Missing trailing slash", baseURL: "https://sentry.example.com/api/0", expectedURL: "https://sentry.example.com/api/0/"},
		{name: "Host only", baseURL: "https://sentry.example.com", expectedURL: "https://sentry.example.com/"},
		{name: "Relative URL", baseURL: "api/0/", wantErr: true},
		{name: "Unparseable URL", baseURL: "https://[::1", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.baseURL)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedURL, client.BaseURL())
		})
	}
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/0/issues/4512/", r.URL.Path)
		assert.Equal(t, "Bearer sntrys_secret", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("User-Agent"), "sentry-relay/")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(issueBody))
	})

	issue, err := client.GetIssue(context.Background(), "4512", "sntrys_secret")
	require.NoError(t, err)

	assert.Equal(t, "4512", issue.ID)
	assert.Equal(t, "TypeError: boom", issue.Title)
	assert.Equal(t, "unresolved", issue.Status)
	assert.Equal(t, "error", issue.Level)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), issue.FirstSeen.UTC())
	assert.Equal(t, time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC), issue.LastSeen.UTC())
	assert.EqualValues(t, 17, issue.Count)
	assert.NotNil(t, issue.LatestEvent)
}

func TestGetIssueErrors(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		token      string
		wantErr    error
		notWantErr error
	}{
		{name: "Unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Invalid token"}`, token: "bad", wantErr: ErrUnauthorized, notWantErr: ErrUpstream},
		{name: "Forbidden", status: http.StatusForbidden, body: `{}`, token: "t", wantErr: ErrUpstream, notWantErr: ErrUnauthorized},
		{name: "Not found", status: http.StatusNotFound, body: `{"detail":"The requested resource does not exist"}`, token: "t", wantErr: ErrUpstream},
		{name: "Server error", status: http.StatusInternalServerError, body: `oops`, token: "t", wantErr: ErrUpstream},
		{name: "Malformed body", status: http.StatusOK, body: `{"id": `, token: "t", wantErr: ErrUpstream},
		{name: "Non-numeric count", status: http.StatusOK, body: `{"id":"1","count":"lots"}`, token: "t", wantErr: ErrUpstream},
		{name: "Missing id", status: http.StatusOK, body: `{"title":"x"}`, token: "t", wantErr: ErrUpstream},
		{name: "Empty token", status: http.StatusOK, body: issueBody, token: "", wantErr: ErrUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			issue, err := client.GetIssue(context.Background(), "1", tc.token)
			require.Error(t, err)
			assert.Nil(t, issue)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.notWantErr != nil {
				assert.NotErrorIs(t, err, tc.notWantErr)
			}
		})
	}
}

func TestGetIssueTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client, err := NewClient(server.URL, WithHTTPClient(server.Client()), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.GetIssue(context.Background(), "1", "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGetIssueUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.GetIssue(context.Background(), "1", "token")
	assert.ErrorIs(t, err, ErrUpstream)
}
