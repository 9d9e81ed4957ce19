package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	h := Headers(DefaultHeadersConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "script-src 'self' "+ChartCDN)
	assert.Empty(t, rr.Header().Get("Cross-Origin-Embedder-Policy"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))
}

func TestStaticCache(t *testing.T) {
	h := StaticCache(3600)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}

func TestClientIP(t *testing.T) {
	res, err := NewIPResolver()
	require.NoError(t, err)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "direct public peer", remote: "203.0.113.9:5000", want: "203.0.113.9"},
		{name: "public peer cannot spoof", remote: "203.0.113.9:5000",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, want: "203.0.113.9"},
		{name: "trusted proxy forwards", remote: "10.0.0.2:80",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, want: "198.51.100.7"},
		{name: "trusted proxy real ip", remote: "127.0.0.1:80",
			headers: map[string]string{"X-Real-IP": "198.51.100.8"}, want: "198.51.100.8"},
		{name: "garbage forwarded header", remote: "127.0.0.1:80",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, want: "127.0.0.1"},
		{name: "remote without port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, res.ClientIP(req))
		})
	}

	_, err = NewIPResolver("not-a-cidr")
	assert.Error(t, err)
}
