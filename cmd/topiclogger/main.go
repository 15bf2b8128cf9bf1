package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dalnet/topiclogger/internal/config"
	"github.com/dalnet/topiclogger/internal/irc"
	applog "github.com/dalnet/topiclogger/internal/log"
	"github.com/dalnet/topiclogger/internal/metrics"
	"github.com/dalnet/topiclogger/internal/storage"
	"github.com/dalnet/topiclogger/internal/tracker"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

const daemonEnv = "TOPICLOGGER_DAEMON"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		foreground  bool
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:           "topiclogger",
		Short:         "IRC channel presence tracker and activity logger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(cmd)
				return nil
			}

			// Set version info in irc package
			irc.Version = version
			irc.BuildDate = buildDate
			irc.GitCommit = gitCommit

			// Daemonize unless -x flag is set
			if !foreground {
				return daemonize()
			}

			if err := writePIDFile(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write PID file: %v\n", err)
			}

			return run(configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to configuration file")
	cmd.Flags().BoolVarP(&foreground, "foreground", "x", false, "Run in foreground (don't daemonize)")
	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information and exit")

	cmd.AddCommand(newTailCmd(&configPath))

	return cmd
}

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "topiclogger version %s\n", version)
	fmt.Fprintf(out, "Built: %s\n", buildDate)
	fmt.Fprintf(out, "Commit: %s\n", gitCommit)
}

// daemonize re-executes the binary detached, in foreground mode
func daemonize() error {
	if os.Getenv(daemonEnv) == "1" {
		return errors.New("already running as daemon child without -x")
	}

	args := append(append([]string(nil), os.Args[1:]...), "-x")
	cmd := exec.Command(os.Args[0], args...)
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to fork: %w", err)
	}

	fmt.Printf("Now becoming a daemon\nMy pid is %d, this has been written to pid.txt\n", cmd.Process.Pid)
	return nil
}

func writePIDFile() error {
	pid := os.Getpid()
	return os.WriteFile("pid.txt", []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

// loadConfig reads .env (if present) and then the YAML file at configPath
func loadConfig(configPath string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Make config path absolute
	if !filepath.IsAbs(configPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(wd, configPath)
	}

	return config.Load(configPath)
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return err
	}

	logger := applog.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open log store")
		return err
	}
	defer store.Close()

	var sink storage.LogStore = store
	if policy, _ := tracker.ParsePolicy(cfg.StoreErrorPolicy); policy == tracker.PolicyContinue {
		sink = storage.NewBreaker(store, storage.DefaultBreakerConfig(), logger)
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client, err := irc.NewClient(cfg, sink, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create IRC client")
		return err
	}

	if err := client.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("bot stopped")
		return err
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

// openStore opens the log store selected by db_driver
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if strings.EqualFold(cfg.DBDriver, "file") {
		store, err := storage.OpenFile(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := storage.OpenSQL(ctx, storage.SQLConfig{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		Host:     cfg.DBHostname,
		Port:     cfg.DBPort,
		User:     cfg.DBUsername,
		Password: cfg.DBPassword,
		Database: cfg.DBDatabase,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func serveMetrics(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return srv
}
