package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/photoedit-mcp/internal/auth"
	"github.com/ironsheep/photoedit-mcp/internal/config"
	"github.com/ironsheep/photoedit-mcp/internal/imaging"
	"github.com/ironsheep/photoedit-mcp/internal/metrics"
	"github.com/ironsheep/photoedit-mcp/internal/project"
	"github.com/ironsheep/photoedit-mcp/internal/server"
	"github.com/ironsheep/photoedit-mcp/internal/session"
	"github.com/ironsheep/photoedit-mcp/internal/snapshot"
	"github.com/ironsheep/photoedit-mcp/internal/upload"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "photoedit-mcp",
		Short: "MCP server for photo edit sessions",
		Long: `photoedit-mcp serves a photo edit session over the MCP protocol on
stdin/stdout: crop, flip, filter, effect and text stages with undo/redo,
export, and saving to an image host.

Environment variables override the config file:
  PHOTOEDIT_LOG_LEVEL=debug    Enable debug logging
  PHOTOEDIT_DATA_DIR, PHOTOEDIT_DB_PATH, PHOTOEDIT_EXPORT_DIR,
  PHOTOEDIT_UPLOAD_ENDPOINT, PHOTOEDIT_UPLOAD_API_KEY, PHOTOEDIT_METRICS_LISTEN`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "photoedit-mcp %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Build time: %s\n", BuildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", GitCommit)
		},
	})
	return root
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Logging goes to stderr; stdout is for the MCP protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Debug("starting photoedit-mcp", "version", Version, "built", BuildTime, "commit", GitCommit)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := project.OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	a := auth.NewSession()
	a.Subscribe(func(u auth.User, signedIn bool) {
		logger.Info("auth changed", "user_id", u.ID, "signed_in", signedIn)
	})
	store := project.NewSQLiteStore(db, a, project.WithLogger(logger))

	sess := session.New(session.Deps{
		Auth: a,
		Renderer: imaging.NewRenderer(nil,
			imaging.WithCanvas(cfg.Export.Width, cfg.Export.Height),
			imaging.WithJPEGQuality(cfg.Export.JPEGQuality),
			imaging.WithLogger(logger)),
		Versions: snapshot.NewExporter(snapshot.DiskStore{}, cfg.VersionsDir(),
			snapshot.WithLogicalSize(cfg.Export.Width, cfg.Export.Height),
			snapshot.WithExportDir(cfg.Export.Dir),
			snapshot.WithLogger(logger)),
		Uploader: upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.APIKey, upload.WithLogger(logger)),
		Projects: store,
		Logger:   logger,
	})

	if cfg.Metrics.Listen != "" {
		ms := startMetrics(cfg.Metrics.Listen, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			ms.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(sess, a, store, server.WithLogger(logger), server.WithVersion(Version))
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func startMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	ms := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return ms
}
