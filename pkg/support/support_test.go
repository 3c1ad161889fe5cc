package support

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/boardclient/pkg/notify"
)

func TestGetCookie(t *testing.T) {
	tests := []struct {
		name    string
		cookies string
		key     string
		want    string
		wantErr error
	}{
		{name: "middle", cookies: "a=1; sid=99; b=2", key: "sid", want: "99"},
		{name: "first", cookies: "a=1; sid=99; b=2", key: "a", want: "1"},
		{name: "missing", cookies: "a=1; sid=99; b=2", key: "zzz", wantErr: ErrCookieNotFound},
		{name: "empty string", cookies: "", key: "a", wantErr: ErrCookieNotFound},
		{name: "escaped", cookies: "name=J%C3%BCrgen%20K", key: "name", want: "Jürgen K"},
		{name: "bad escape", cookies: "v=100%", key: "v", want: "100%"},
		{name: "value with equals", cookies: "t=a=b", key: "t", want: "a=b"},
		{name: "prefix is not a match", cookies: "sidx=1", key: "sid", wantErr: ErrCookieNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetCookie(tt.cookies, tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_FetchJSON(t *testing.T) {
	var gotMethod, gotBody, gotType string

	r := chi.NewRouter()
	r.HandleFunc("/echo", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		gotMethod = req.Method
		gotBody = string(body)
		gotType = req.Header.Get("Content-Type")
		w.WriteHeader(http.StatusTeapot)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := &Client{HTTP: srv.Client()}

	t.Run("post sends payload", func(t *testing.T) {
		out, err := c.FetchJSON(context.Background(), http.MethodPost, srv.URL+"/echo", map[string]any{"x": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"ok": true}, out)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.JSONEq(t, `{"x":1}`, gotBody)
		assert.Equal(t, "application/json", gotType)
	})

	t.Run("get omits payload", func(t *testing.T) {
		_, err := c.FetchJSON(context.Background(), http.MethodGet, srv.URL+"/echo", map[string]any{"x": 1})
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, gotMethod)
		assert.Empty(t, gotBody)
	})
}

func TestClient_FetchJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client()}
	_, err := c.FetchJSON(context.Background(), http.MethodGet, srv.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestClient_Logout(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantNavTo  string
		wantStatus int
	}{
		{name: "ok replaces view", status: http.StatusOK, wantNavTo: LogoutRedirect, wantStatus: http.StatusOK},
		{name: "rejected stays", status: http.StatusForbidden, wantNavTo: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod string
			r := chi.NewRouter()
			r.Delete(LogoutPath, func(w http.ResponseWriter, req *http.Request) {
				gotMethod = req.Method
				w.WriteHeader(tt.status)
			})
			srv := httptest.NewServer(r)
			defer srv.Close()

			nav := notify.NewLogNavigator(nil)
			c := &Client{HTTP: srv.Client(), BaseURL: srv.URL + "/", Navigator: nav}

			status, err := c.Logout(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, http.MethodDelete, gotMethod)
			assert.Equal(t, tt.wantNavTo, nav.Current())
		})
	}
}
