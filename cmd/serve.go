package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/hmans/shelf/internal/config"
	"github.com/hmans/shelf/internal/graph"
	"github.com/hmans/shelf/internal/librarycore"
	"github.com/hmans/shelf/internal/log"
)

var (
	servePort         int
	serveWatch        bool
	serveNoPlayground bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the GraphQL server",
	Long: heredoc.Doc(`
		Start an HTTP server that serves the GraphQL API.

		The server exposes:
		  - GraphQL endpoint at /graphql (POST)
		  - GraphQL Playground at /graphql (GET) for interactive queries
		  - Health check at /healthz

		With --watch, the store is reloaded whenever the seed file changes.

		Examples:
		  # Start server on the default port 4000
		  shelf serve

		  # Start server on a custom port, reloading edits to a seed file
		  shelf serve --port 3000 --seed library.yml --watch
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		return runServer(port, cfg.Data.Watch || serveWatch, cfg.Server.Playground && !serveNoPlayground)
	},
}

func runServer(port int, watch, withPlayground bool) error {
	if watch {
		if cfg.Data.Seed == "" {
			return errors.New("--watch requires a seed file (use --seed or data.seed in the config)")
		}
		err := core.Watch(cfg.Data.Seed, func() {
			logger.Info("seed file reloaded", "path", cfg.Data.Seed, "books", core.BookCount(), "authors", core.AuthorCount())
		})
		if err != nil {
			return fmt.Errorf("watching seed file: %w", err)
		}
	}

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      newRouter(core, logger, withPlayground),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)

	go func() {
		fmt.Printf("Starting server at http://localhost:%d/graphql\n", port)
		if withPlayground {
			fmt.Printf("GraphQL Playground: http://localhost:%d/graphql\n", port)
		}
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		fmt.Printf("\nShutting down...\n")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		fmt.Println("Server stopped")
	}

	return nil
}

// newRouter builds the HTTP handler serving the GraphQL API for c.
func newRouter(c *librarycore.Core, logger logr.Logger, withPlayground bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	es := graph.NewExecutableSchema(graph.Config{
		Resolvers: &graph.Resolver{Core: c},
	})
	srv := handler.NewDefaultServer(es)
	play := playground.Handler("Shelf GraphQL", "/graphql")

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.POST("/graphql", gin.WrapH(srv))
	r.GET("/graphql", func(ctx *gin.Context) {
		// GET with a query is a GraphQL request, not a browser visit
		if !withPlayground || ctx.Query("query") != "" {
			srv.ServeHTTP(ctx.Writer, ctx.Request)
			return
		}
		play.ServeHTTP(ctx.Writer, ctx.Request)
	})
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// requestLogger puts logger into each request's context and logs the request
// once it has been handled.
func requestLogger(logger logr.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Request = ctx.Request.WithContext(log.WithLogger(ctx.Request.Context(), logger))

		ctx.Next()

		logger.Info("request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Reload the store when the seed file changes")
	serveCmd.Flags().BoolVar(&serveNoPlayground, "no-playground", false, "Disable the GraphQL Playground")
	rootCmd.AddCommand(serveCmd)
}
