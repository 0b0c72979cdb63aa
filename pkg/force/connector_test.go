package force

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTokenServer serves the token endpoint with handler and returns a
// connector pointed at it.
func newTokenServer(t *testing.T, handler http.HandlerFunc) (*Connector, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /services/oauth2/token", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := &Connector{
		LoginURL:     srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		HTTPClient:   srv.Client(),
	}
	return c, srv
}

func TestHostURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://login.salesforce.com", HostURL("login.salesforce.com"))
	require.Equal(t, "https://test.salesforce.com", HostURL(" test.salesforce.com/ "))
	require.Equal(t, "http://127.0.0.1:8080", HostURL("http://127.0.0.1:8080/"))
}

func TestConnector_Login(t *testing.T) {
	t.Parallel()

	var instance string
	c, srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "password", r.PostForm.Get("grant_type"))
		require.Equal(t, "alice@example.com", r.PostForm.Get("username"))
		require.Equal(t, "hunter2TOKEN", r.PostForm.Get("password"))
		require.Equal(t, "client-id", r.PostForm.Get("client_id"))
		require.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "00Dxx!session",
			"instance_url": instance,
			"token_type":   "Bearer",
			"issued_at":    "1700000000000",
		})
	})
	instance = srv.URL

	conn, err := c.Login(context.Background(), "alice@example.com", "hunter2TOKEN")
	require.NoError(t, err)
	require.Equal(t, srv.URL, conn.InstanceURL())
	require.Equal(t, "00Dxx!session", conn.AccessToken())
	require.Equal(t, DefaultAPIVersion, conn.APIVersion())
	require.Equal(t, srv.URL+"/services/data/"+DefaultAPIVersion, conn.ServiceURL())
}

func TestConnector_Login_InvalidGrant(t *testing.T) {
	t.Parallel()

	c, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "authentication failure",
		})
	})

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)

	var oauthErr *OAuth2Error
	require.True(t, errors.As(err, &oauthErr))
	require.Equal(t, http.StatusBadRequest, oauthErr.StatusCode)
	require.Equal(t, ErrorCodeInvalidGrant, oauthErr.Code)
	require.Equal(t, "unable to authenticate: invalid_grant (authentication failure)", err.Error())
}

func TestConnector_Login_MissingInstanceURL(t *testing.T) {
	t.Parallel()

	c, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok",
			"token_type":   "Bearer",
		})
	})

	_, err := c.Login(context.Background(), "alice@example.com", "pw")
	var oauthErr *OAuth2Error
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, ErrorCodeMissingInstanceURL, oauthErr.Code)
}

func TestConnector_ExchangeAssertion(t *testing.T) {
	t.Parallel()

	var instance string
	c, srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, GrantTypeJWTBearer, r.PostForm.Get("grant_type"))
		require.Equal(t, "signed.jwt.assertion", r.PostForm.Get("assertion"))

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "bearer-session",
			"instance_url": instance,
			"token_type":   "Bearer",
		})
	})
	instance = srv.URL
	c.APIVersion = "v60.0"

	conn, err := c.ExchangeAssertion(context.Background(), "signed.jwt.assertion")
	require.NoError(t, err)
	require.Equal(t, "bearer-session", conn.AccessToken())
	require.Equal(t, "v60.0", conn.APIVersion())
}

func TestConnector_ExchangeAssertion_Errors(t *testing.T) {
	t.Parallel()

	t.Run("oauth error", func(t *testing.T) {
		c, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "user hasn't approved this consumer",
			})
		})

		_, err := c.ExchangeAssertion(context.Background(), "x")
		var oauthErr *OAuth2Error
		require.ErrorAs(t, err, &oauthErr)
		require.Equal(t, "unable to authenticate: invalid_grant (user hasn't approved this consumer)", err.Error())
	})

	t.Run("non-json failure", func(t *testing.T) {
		c, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})

		_, err := c.ExchangeAssertion(context.Background(), "x")
		require.ErrorIs(t, err, ErrNoResponse)
	})

	t.Run("non-json success", func(t *testing.T) {
		c, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		_, err := c.ExchangeAssertion(context.Background(), "x")
		require.ErrorIs(t, err, ErrNoResponse)
	})
}
