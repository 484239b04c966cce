package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	cat "github.com/Hessin20292929/Cat"
	"github.com/Hessin20292929/Cat/auth"
	"github.com/Hessin20292929/Cat/relayhttp"
	"github.com/gin-gonic/gin"
)

func main() {
	var (
		listen      = flag.String("listen", "127.0.0.1:8080", "listen address")
		path        = flag.String("path", "/chat", "relay route path")
		upstreamURL = flag.String("upstream-url", "", "generateContent endpoint (default: Gemini API with -model)")
		model       = flag.String("model", cat.DefaultModel, "model id, ignored when -upstream-url is set")
		origins     = flag.String("allowed-origins", "", "comma-separated origin allow-list (default: null + localhost dev origins)")
		keySource   = flag.String("key-source", "env", "api key source: env|file|auto")
	)
	flag.Parse()

	provider, err := auth.NewProvider(*keySource)
	if err != nil {
		log.Fatalf("invalid key-source: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	err = relayhttp.RegisterGinRoutes(r, relayhttp.Config{
		Path:           *path,
		UpstreamURL:    *upstreamURL,
		Model:          *model,
		AllowedOrigins: cat.ParseAllowedOrigins(*origins),
		KeyProvider: func(ctx context.Context) (string, error) {
			return provider.Key(ctx)
		},
	})
	if err != nil {
		log.Fatalf("register routes failed: %v", err)
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("cat relay listening on http://%s%s", addrForLocalClient(*listen), *path)
	log.Printf("try: curl http://%s%s -H 'Content-Type: application/json' -d '{\"message\":\"hi\"}'", addrForLocalClient(*listen), *path)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
	}
}

// addrForLocalClient rewrites wildcard listen addresses to a loopback form a
// local curl can actually reach.
func addrForLocalClient(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
