package relayhttp

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func RegisterGinRoutes(r gin.IRouter, cfg Config) error {
	if r == nil {
		return fmt.Errorf("router is nil")
	}
	h, err := Handler(cfg)
	if err != nil {
		return err
	}

	// Any, not POST+OPTIONS: the handler owns method dispatch so unexpected
	// methods get its 405 with CORS headers instead of gin's bare 404.
	r.Any(normalizePath(cfg.Path), gin.WrapF(h))
	return nil
}
