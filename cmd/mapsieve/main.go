// Entry point for the mapsieve service: chi HTTP API plus MCP tools
// under /mcp in serve mode, one-shot collection and dump-analysis
// modes on the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hazyhaar/mapsieve/collector"
	"github.com/hazyhaar/mapsieve/device"
	"github.com/hazyhaar/mapsieve/snapshot"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"
)

func main() {
	_ = godotenv.Load() // .env is optional

	var (
		cfgPath      = flag.String("config", env("MAPSIEVE_CONFIG", ""), "YAML configuration file")
		dbPath       = flag.String("db", env("MAPSIEVE_DB", ""), "SQLite database path (overrides config)")
		addr         = flag.String("addr", env("MAPSIEVE_ADDR", ""), "HTTP listen address (overrides config)")
		adbPath      = flag.String("adb", env("MAPSIEVE_ADB", ""), "adb binary (overrides config)")
		serial       = flag.String("serial", env("ANDROID_SERIAL", ""), "device serial passed to adb -s")
		logLevel     = flag.String("log-level", env("LOG_LEVEL", ""), "debug, info, warn or error")
		mode         = flag.String("mode", "serve", "serve, collect, classify, locate or detail")
		in           = flag.String("in", "", "saved uiautomator dump for the one-shot modes")
		maxMerchants = flag.Int("max", 0, "stop a collect run after this many merchants (overrides config)")
	)
	flag.Parse()

	cfg := collector.DefaultConfig()
	if *cfgPath != "" {
		c, err := collector.LoadConfigFile(*cfgPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = c
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *adbPath != "" {
		cfg.Device.Path = *adbPath
	}
	if *serial != "" {
		cfg.Device.Serial = *serial
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *maxMerchants > 0 {
		cfg.Collect.MaxMerchants = *maxMerchants
	}

	// Logging. Logs go to stderr; the one-shot modes print their JSON
	// result on stdout.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *mode, *in, cfg); err != nil {
		slog.Error("mapsieve", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, mode, in string, cfg *collector.Config) error {
	switch mode {
	case "serve":
		return serve(ctx, cfg)
	case "collect":
		return collect(ctx, cfg)
	case "classify", "locate", "detail":
		return analyze(mode, in, cfg)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// --- Serve mode ---

func serve(ctx context.Context, cfg *collector.Config) error {
	st, err := collector.OpenStore(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := collector.New(st, device.NewADB(cfg.Device), cfg, slog.Default())
	defer svc.Close()

	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "mapsieve",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(mcpSrv)

	r := newRouter(svc)
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func newRouter(svc *collector.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Read side.
		r.Get("/merchants", func(w http.ResponseWriter, r *http.Request) {
			limit := queryInt(r, "limit", 100)
			offset := queryInt(r, "offset", 0)
			list, err := svc.ListMerchants(r.Context(), limit, offset)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if list == nil {
				list = []*collector.Merchant{}
			}
			total, err := svc.CountMerchants(r.Context())
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]any{"total": total, "merchants": list})
		})

		r.Get("/merchants/{id}", func(w http.ResponseWriter, r *http.Request) {
			m, err := svc.GetMerchant(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if m == nil {
				writeError(w, 404, fmt.Errorf("merchant not found"))
				return
			}
			writeJSON(w, 200, m)
		})

		r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
			runs, err := svc.ListRuns(r.Context(), queryInt(r, "limit", 50))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if runs == nil {
				runs = []*collector.Run{}
			}
			writeJSON(w, 200, runs)
		})

		// Analysis over a posted uiautomator dump.
		r.Post("/analyze/classify", func(w http.ResponseWriter, r *http.Request) {
			dump, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, 400, err)
				return
			}
			verdict, err := svc.ClassifyPage(dump)
			if err != nil {
				switch {
				case errors.Is(err, snapshot.ErrMalformed):
					writeError(w, 400, err)
				default:
					writeError(w, 500, err)
				}
				return
			}
			writeJSON(w, 200, verdict)
		})

		r.Post("/analyze/locate", func(w http.ResponseWriter, r *http.Request) {
			dump, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, 400, err)
				return
			}
			cands, err := svc.LocateCards(dump)
			if err != nil {
				switch {
				case errors.Is(err, snapshot.ErrMalformed):
					writeError(w, 400, err)
				default:
					writeError(w, 500, err)
				}
				return
			}
			writeJSON(w, 200, map[string]any{"count": len(cands), "cards": cands})
		})

		r.Post("/analyze/detail", func(w http.ResponseWriter, r *http.Request) {
			dump, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, 400, err)
				return
			}
			res, err := svc.ExtractDetail(dump, r.URL.Query().Get("name"))
			if err != nil {
				switch {
				case errors.Is(err, snapshot.ErrMalformed):
					writeError(w, 400, err)
				default:
					writeError(w, 500, err)
				}
				return
			}
			writeJSON(w, 200, res)
		})
	})

	return r
}

// --- One-shot modes ---

func collect(ctx context.Context, cfg *collector.Config) error {
	st, err := collector.OpenStore(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := collector.New(st, device.NewADB(cfg.Device), cfg, slog.Default())
	defer svc.Close()

	res, err := svc.Collect(ctx, "")
	if res != nil {
		printJSON(res)
	}
	return err
}

func analyze(mode, in string, cfg *collector.Config) error {
	if in == "" {
		return fmt.Errorf("mode %s needs -in with a saved dump file", mode)
	}
	dump, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	svc := collector.New(nil, nil, cfg, slog.Default())

	var out any
	switch mode {
	case "classify":
		out, err = svc.ClassifyPage(dump)
	case "locate":
		out, err = svc.LocateCards(dump)
	case "detail":
		out, err = svc.ExtractDetail(dump, "")
	}
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("encode result", "error", err)
		return
	}
	fmt.Println(string(b))
}

// --- Helpers ---

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
