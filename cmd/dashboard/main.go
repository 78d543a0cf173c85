package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockDashboard/internal/api"
	"StockDashboard/internal/calculator"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/config"
	"StockDashboard/internal/currency"
	"StockDashboard/internal/export"
	"StockDashboard/internal/model"
	"StockDashboard/internal/portfolio"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/report"
	"StockDashboard/internal/scheduler"
)

// Set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var cfg *config.Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Stock dashboard refresh service",
	Long: `Fetches daily OHLCV bars for a symbol list, derives moving averages,
RSI and Bollinger bands, converts to the display currency and values the
held positions. Results are served over HTTP and WebSocket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		path, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		return nil
	},
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().String("config", defaultPath, "config file path")

	onceCmd.Flags().String("csv", "", "also write the pass as CSV to this file")
	onceCmd.Flags().String("symbols", "", "comma-separated symbols overriding the config")
	onceCmd.Flags().String("currency", "", "display currency overriding the config")

	rootCmd.AddCommand(runCmd, onceCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dashboard %s (%s)\n", version, commit)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the refresh loop and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("[INFO] dashboard starting...")

		passCfg, err := cfg.PassConfig(time.Now())
		if err != nil {
			return err
		}
		conv, pm, err := initShared()
		if err != nil {
			return err
		}

		var rec recorder.Recorder
		if cfg.Database.SQLitePath != "" {
			sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
			if err != nil {
				log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
				rec = recorder.NewNoopRecorder()
			} else {
				rec = sr
			}
		} else {
			rec = recorder.NewNoopRecorder()
		}
		defer rec.Close()

		ctrl := scheduler.NewController(newPipeline(conv, pm), passCfg, cfg.Refresh.Cron)
		ctrl.OnPublish(func(s *model.RefreshState) {
			if err := rec.RecordPass(s); err != nil {
				log.Printf("[ERROR] record pass %d: %v", s.Seq, err)
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		srv := api.NewServer(ctrl, pm, conv, rec, cfg.API.CORSOrigins)
		if err := ctrl.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer ctrl.Stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe(ctx, cfg.API.Addr) }()

		log.Println("[INFO] dashboard is running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
			log.Println("[INFO] shutdown signal received, stopping...")
			cancel()
			if err := <-errCh; err != nil {
				log.Printf("[ERROR] api shutdown: %v", err)
			}
		case err := <-errCh:
			if err != nil {
				log.Printf("[ERROR] api server: %v", err)
			}
		}
		log.Println("[INFO] dashboard stopped")
		return nil
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single refresh pass and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		passCfg, err := cfg.PassConfig(time.Now())
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("symbols"); v != "" {
			passCfg.Symbols = model.ParseSymbols(v)
		}
		if v, _ := cmd.Flags().GetString("currency"); v != "" {
			passCfg.Currency = v
		}
		conv, pm, err := initShared()
		if err != nil {
			return err
		}

		ctrl := scheduler.NewController(newPipeline(conv, pm), passCfg, "")
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		state := ctrl.RunOnce(ctx)
		if state == nil {
			return fmt.Errorf("refresh pass cancelled")
		}
		fmt.Print(report.FormatPassReport(state))

		if path, _ := cmd.Flags().GetString("csv"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create csv: %w", err)
			}
			defer f.Close()
			if err := export.WriteCSV(f, state); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			log.Printf("[INFO] wrote %s", path)
		}
		if state.Status == model.StatusConfigError || state.Status == model.StatusFailed {
			return fmt.Errorf("pass finished with status %s: %v", state.Status, state.Err)
		}
		return nil
	},
}

func initShared() (*currency.Converter, *portfolio.Manager, error) {
	conv, err := currency.NewConverter(cfg.Currencies)
	if err != nil {
		return nil, nil, fmt.Errorf("init converter: %w", err)
	}
	pm, err := portfolio.NewManager(cfg.Portfolio.StateFile)
	if err != nil {
		return nil, nil, fmt.Errorf("init portfolio manager: %w", err)
	}
	return conv, pm, nil
}

func newPipeline(conv *currency.Converter, pm *portfolio.Manager) *scheduler.Pipeline {
	fetcher := newFetcher()
	log.Printf("[INFO] data source: %s", fetcher.Name())
	return &scheduler.Pipeline{
		Fetcher:      fetcher,
		Engine:       calculator.NewEngine(cfg.EngineParams()),
		Converter:    conv,
		Positions:    pm,
		Concurrency:  cfg.Refresh.Concurrency,
		FetchTimeout: cfg.Refresh.FetchTimeout,
	}
}

func newFetcher() collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		return &collector.MockFetcher{BasePrice: cfg.DataSource.MockBasePrice}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}
