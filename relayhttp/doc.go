// Package relayhttp provides the HTTP handler that relays a single chat
// message to the Gemini generateContent endpoint.
//
// The package only exposes:
// - a net/http handler (Handler)
// - a Gin route registration method (RegisterGinRoutes)
//
// The API key is injected through a callback (KeyProvider); the package never
// reads the environment itself and never writes the key to a log or response.
//
// Usage:
//
//	// net/http
//	h, _ := relayhttp.Handler(relayhttp.Config{
//		KeyProvider: func(ctx context.Context) (string, error) {
//			return apiKey, nil
//		},
//	})
//	mux.HandleFunc("/chat", h)
//
//	// gin
//	_ = relayhttp.RegisterGinRoutes(r, relayhttp.Config{
//		Path:        "/chat",
//		KeyProvider: func(ctx context.Context) (string, error) { return apiKey, nil },
//	})
package relayhttp
