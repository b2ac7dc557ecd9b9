/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load .env (optional) and configuration (ENV > YAML > defaults)
  2. Set up the slog logger
  3. Open the SQLite store (":memory:" works for throwaway runs)
  4. Configure the chi router
  5. Serve with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.

CONFIGURATION:
  POCKETBOOK_ADDR        listen address (default :8080)
  POCKETBOOK_DB          SQLite database path (default pocketbook.db)
  POCKETBOOK_LOG_LEVEL   debug|info|warn|error
  POCKETBOOK_LOG_FORMAT  text|json
  CONFIG_PATH            optional YAML config file
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quillfin/pocketbook/api"
	"github.com/quillfin/pocketbook/config"
	"github.com/quillfin/pocketbook/store/sqlite"
)

func main() {
	// A missing .env is fine; real env always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log)

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	handler := api.NewHandler(st, nil, log)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server stopped")
}
