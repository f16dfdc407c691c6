// Entry point for the boardwatch monitor — one-shot runs, cron daemon, status HTTP server, MCP stdio.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/boardwatch/boardwatch/monitor"
	"github.com/boardwatch/boardwatch/report"
	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"
)

func main() {
	configPath := flag.String("config", "boardwatch.yaml", "path to the YAML config file")
	daemon := flag.Bool("daemon", false, "run on a cron schedule instead of once")
	schedule := flag.String("schedule", "0 18 28-31 * *", "cron schedule for -daemon (fires only on the last day of the month)")
	serveAddr := flag.String("serve", "", "also serve the status HTTP API on this address (e.g. :8086)")
	flag.Parse()

	logLevel := env("LOG_LEVEL", "info")
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := monitor.LoadConfig(*configPath)
	if err != nil {
		slog.Error("load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	cfg.Logger = logger

	svc, err := monitor.New(*cfg)
	if err != nil {
		slog.Error("init monitor", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// MCP stdio mode takes over the process: stdout belongs to the protocol.
	if env("MCP_TRANSPORT", "") == "stdio" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "boardwatch",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("mcp server", "error", err)
			os.Exit(1)
		}
		return
	}

	if *serveAddr != "" {
		go serveStatus(ctx, *serveAddr, svc)
	}

	if *daemon {
		runDaemon(ctx, svc, *schedule)
		return
	}

	result, err := svc.Run(ctx)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("run complete",
		"run_id", result.RunID,
		"docs_total", result.DocsTotal,
		"docs_matched", result.DocsMatched,
		"mentions_new", result.NewMentions,
		"delivered", result.Delivered)
}

// runDaemon fires the monitor on the cron schedule. The 28-31 day-of-month
// expression matches every candidate day, so each firing re-checks whether
// today is actually the last day of the month before running.
func runDaemon(ctx context.Context, svc *monitor.Service, schedule string) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if !isLastDayOfMonth(time.Now()) {
			slog.Debug("cron fired on a non-final day, skipping")
			return
		}
		result, err := svc.Run(ctx)
		if err != nil {
			slog.Error("scheduled run failed", "error", err)
			return
		}
		slog.Info("scheduled run complete",
			"run_id", result.RunID,
			"docs_total", result.DocsTotal,
			"mentions_new", result.NewMentions,
			"delivered", result.Delivered)
	})
	if err != nil {
		slog.Error("invalid cron schedule", "schedule", schedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	slog.Info("daemon started", "schedule", schedule)
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	slog.Info("daemon stopped")
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}

// serveStatus exposes read-only observability endpoints next to the monitor.
func serveStatus(ctx context.Context, addr string, svc *monitor.Service) {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/report", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(svc.OutputDir(), report.HTMLFileName)
		if _, err := os.Stat(path); err != nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("no report generated yet"))
			return
		}
		http.ServeFile(w, req, path)
	})

	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.StateSummary())
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		limit := queryInt(req, "limit", 20)
		runs, err := svc.Runs(req.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	server := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	slog.Info("status server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("status server", "error", err)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
