package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"instafeed/internal/di"
	"instafeed/internal/monitoring"
)

func main() {
	app, cleanup, err := di.InitializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize feed service: %v", err)
	}
	defer cleanup()

	setupLogging(app.Config.Logging.Level, app.Config.Logging.Format)
	monitoring.Register()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.Mongo.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancel()

	router := mux.NewRouter()
	router.Use(requestLogger)
	app.FeedHandler.Register(router)
	app.CommentHandler.Register(router)
	app.UserHandler.Register(router)
	app.MediaHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         app.Config.ServerAddr(),
		Handler:      router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Feed service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down feed service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
	log.Info("Feed service stopped")
}

func setupLogging(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("request completed")
	})
}
