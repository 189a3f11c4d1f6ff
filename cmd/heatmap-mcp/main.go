package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/attention-heatmap-mcp/internal/config"
	"github.com/ironsheep/attention-heatmap-mcp/internal/heatmap"
	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/ocr"
	"github.com/ironsheep/attention-heatmap-mcp/internal/render"
	"github.com/ironsheep/attention-heatmap-mcp/internal/screenshot"
	"github.com/ironsheep/attention-heatmap-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	cfgFile  string
	logLevel string
)

func main() {
	if Version != "dev" {
		server.Version = Version
	}
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "heatmap-mcp",
		Short: "MCP server that renders attention heatmaps over web page screenshots",
		Long: `heatmap-mcp renders attention heatmaps for web pages, either from recorded
interaction points or from predicted focal regions.

Without a subcommand it serves MCP over stdin/stdout. Configure it in your
MCP client, or use the render subcommand for one-off images.

Configuration comes from an optional YAML file (--config) and HEATMAP_*
environment variables, e.g. HEATMAP_LOG_LEVEL=debug.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: runServe,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level override: debug, info, warn, error")

	root.AddCommand(newServeCmd(), newRenderCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (default)",
		RunE:  runServe,
	}
}

// loadConfig reads the configuration and builds the stderr logger.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := buildApp(cfg, logger)
	defer a.Close()

	if cfg.Metrics.Addr != "" {
		srv := startMetrics(cfg.Metrics.Addr, a, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("heatmap MCP server starting",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.Bool("renderer", cfg.Screenshot.RendererEnabled),
		logging.Int("hosted_providers", len(cfg.Screenshot.Hosted)),
		logging.Bool("model", cfg.Model.Enabled))

	err = server.New(a.engine, a.cache, logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func startMetrics(addr string, a *app, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.rec.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", logging.String("addr", addr), logging.Err(err))
		}
	}()
	logger.Info("metrics listening", logging.String("addr", addr))
	return srv
}

type renderFlags struct {
	url          string
	device       string
	mode         string
	pointsFile   string
	knobs        string
	screenshot   string
	out          string
	parity       bool
	fullPage     bool
	showHotspots bool
	timeout      time.Duration
}

func newRenderCmd() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one heatmap to a file and print its metadata",
		Example: `  heatmap-mcp render --url https://example.com --mode ai --out heat.png
  heatmap-mcp render --url https://example.com --points clicks.json --out heat.png
  heatmap-mcp render --url https://example.com --screenshot saved.png --points clicks.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.url, "url", "", "page URL (required)")
	flags.StringVar(&f.device, "device", "desktop", "device: desktop, tablet or mobile")
	flags.StringVar(&f.mode, "mode", "", "data or ai (default: data with --points, ai otherwise)")
	flags.StringVar(&f.pointsFile, "points", "", "JSON file with an array of {x, y, scrollY?, kind?} points")
	flags.StringVar(&f.knobs, "knobs", "", `render knobs as JSON, e.g. '{"alpha":0.5,"ramp":"soft"}'`)
	flags.StringVar(&f.screenshot, "screenshot", "", "use this saved image instead of capturing the page")
	flags.StringVarP(&f.out, "out", "o", "heatmap.png", "output image path")
	flags.BoolVar(&f.parity, "parity", false, "drop hotspots with confidence below 0.25")
	flags.BoolVar(&f.fullPage, "full-page", false, "capture the whole scrollable page")
	flags.BoolVar(&f.showHotspots, "show-hotspots", false, "outline detected hotspots")
	flags.DurationVar(&f.timeout, "timeout", 2*time.Minute, "overall render timeout")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runRender(cmd *cobra.Command, f renderFlags) error {
	req := render.Request{
		URL:          f.url,
		Device:       f.device,
		Mode:         f.mode,
		Parity:       f.parity,
		FullPage:     f.fullPage,
		ShowHotspots: f.showHotspots,
	}

	if f.pointsFile != "" {
		points, err := readPoints(f.pointsFile)
		if err != nil {
			return err
		}
		req.Points = points
	}
	if f.knobs != "" {
		if err := json.Unmarshal([]byte(f.knobs), &req.Knobs); err != nil {
			return fmt.Errorf("invalid --knobs: %w", err)
		}
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	var pinned []screenshot.Provider
	if f.screenshot != "" {
		pinned = append(pinned, screenshot.NewFile(f.screenshot))
	}
	a := buildApp(cfg, logger, pinned...)
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	res, err := a.engine.Render(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.out, res.Image.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.out, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Metadata)
}

// readPoints loads a JSON array of normalized points.
func readPoints(path string) ([]heatmap.NormalizedPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}
	var points []heatmap.NormalizedPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to parse points in %s: %w", path, err)
	}
	return points, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "heatmap-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Tesseract:  %s\n", ocr.Version())
		},
	}
}
