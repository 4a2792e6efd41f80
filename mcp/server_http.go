package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/mark3labs/mcp-go/server"
)

// Handler returns the streamable HTTP transport, protected by a bearer token
// when apiKey is set. The API router mounts it at /mcp.
func Handler(svc *catalog.Service, apiKey string) http.Handler {
	var h http.Handler = server.NewStreamableHTTPServer(NewServer(svc), server.WithStateLess(true))
	if apiKey != "" {
		h = bearerAuth(apiKey, h)
	}
	return h
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"detail":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
