package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wa-bulk-sender/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the read-only sources the status server exposes. Contacts may be
// nil when no contact database is in use.
type Deps struct {
	Status   StatusSource
	Contacts ContactLister
	Hub      *ws.Hub
}

func NewRouter(d Deps, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", NewStatusHandler(d.Status).GetStatus)
		if d.Contacts != nil {
			apiGroup.GET("/contacts", NewContactHandler(d.Contacts).GetContacts)
		}
	}

	if d.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			d.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	}
}

// Serve runs the status server until ctx ends.
func Serve(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
