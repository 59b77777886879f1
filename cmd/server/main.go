package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/fitsync/fitsync/internal/auth"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/db"
	"github.com/fitsync/fitsync/internal/export"
	"github.com/fitsync/fitsync/internal/importer"
	"github.com/fitsync/fitsync/internal/middleware"
	"github.com/fitsync/fitsync/internal/repository"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn.Pool, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	recordRepo := repository.NewRecordRepository(conn.Pool)
	transferLogs := repository.NewTransferLogRepository(conn.Pool)

	exportService := export.NewService(recordRepo)
	importService := importer.NewService(recordRepo, transferLogs)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	wrap := func(h http.Handler) http.Handler {
		return corsHandler.Handler(middleware.LoggingMiddleware(auth.Middleware(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("/export", wrap(export.NewHTTPHandler(exportService)))
	mux.Handle("/import", wrap(importer.NewHTTPHandler(importService)))
	mux.Handle("/import/logs", wrap(importer.NewLogsHandler(transferLogs)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Write timeout is generous because streamed downloads can run long.
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting fitsync server on %s", cfg.ServerAddr)
		log.Printf("Export endpoint available at http://localhost%s/export", cfg.ServerAddr)
		log.Printf("Import endpoint available at http://localhost%s/import", cfg.ServerAddr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
