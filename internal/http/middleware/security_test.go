package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveWith(t *testing.T, pre gin.HandlerFunc, mw gin.HandlerFunc, req *http.Request) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(mw)
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveWith(t, nil, SecurityHeaders(SecurityOptions{}), httptest.NewRequest(http.MethodGet, "/ok", nil))

	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, X-Cache, ETag" {
		t.Fatalf("expose headers = %q", got)
	}
}

func TestSecurityHeaders_ExposeAppendsWithoutDuplicates(t *testing.T) {
	pre := func(c *gin.Context) {
		c.Header("Access-Control-Expose-Headers", "Foo, X-Cache")
		c.Next()
	}
	h := serveWith(t, pre, SecurityHeaders(SecurityOptions{}), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if got := h.Get("Access-Control-Expose-Headers"); got != "Foo, X-Cache, X-Request-ID, ETag" {
		t.Fatalf("expose headers = %q", got)
	}
}

func TestSecurityHeaders_PolicyAndNoStore(t *testing.T) {
	h := serveWith(t, nil, SecurityHeaders(SecurityOptions{EnablePolicy: true, NoStore: true}),
		httptest.NewRequest(http.MethodGet, "/ok", nil))
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("no-store headers missing: %#v", h)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}

	plain := serveWith(t, nil, SecurityHeaders(opt), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if plain.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}

	tlsReq := httptest.NewRequest(http.MethodGet, "/ok", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	want := "max-age=" + strconv.Itoa(int((24 * time.Hour).Seconds())) + "; includeSubDomains; preload"
	if got := serveWith(t, nil, SecurityHeaders(opt), tlsReq).Get("Strict-Transport-Security"); got != want {
		t.Fatalf("HSTS over TLS = %q, want %q", got, want)
	}

	proxied := httptest.NewRequest(http.MethodGet, "/ok", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	got := serveWith(t, nil, SecurityHeaders(SecurityOptions{EnableHSTS: true}), proxied).Get("Strict-Transport-Security")
	if got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("HSTS via proxy with default age = %q", got)
	}
}

func TestNoStore(t *testing.T) {
	h := serveWith(t, nil, NoStore(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if h.Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control = %q", h.Get("Cache-Control"))
	}
}
