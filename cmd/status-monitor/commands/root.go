package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/miradorstack/status-monitor/internal/config"
	"github.com/miradorstack/status-monitor/internal/engine"
	"github.com/miradorstack/status-monitor/internal/metrics"
	"github.com/miradorstack/status-monitor/internal/repo"
	"github.com/miradorstack/status-monitor/internal/services"
	"github.com/miradorstack/status-monitor/internal/utils"
)

var configPath string

// RootCmd is the status-monitor entry point.
var RootCmd = &cobra.Command{
	Use:   "status-monitor",
	Short: "Probe an HTTP endpoint and mirror its health on a Statuspage page",
	Long: `status-monitor issues a configured health-check request, classifies the answer
into a Statuspage component status and forwards it to the status-update function,
which writes it to every configured component.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: $STATUS_MONITOR_CONFIG)")

	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(setCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)
}

// runtimeEnv bundles what every command needs after start-up.
type runtimeEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func (r *runtimeEnv) Close() {
	if r.closer != nil {
		_ = r.closer.Close()
	}
}

func loadRuntime() (*runtimeEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer := utils.NewLoggerFromConfig(cfg.Logging)
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return &runtimeEnv{cfg: cfg, logger: logger, closer: closer}, nil
}

func newStatusPageClient(env *runtimeEnv) *repo.StatusPageClient {
	sp := env.cfg.StatusPage
	return repo.NewStatusPageClient(env.logger, sp.BaseURL, sp.APIKey, sp.PageID, sp.Timeout)
}

func newMonitor(ctx context.Context, env *runtimeEnv) (*engine.Monitor, error) {
	probe, err := env.cfg.ProbeRequest()
	if err != nil {
		return nil, err
	}
	invoker, err := repo.NewLambdaInvoker(ctx, env.cfg.Invoker)
	if err != nil {
		return nil, err
	}
	env.logger.Debug("status update target", slog.String("function", invoker.FunctionName()), slog.String("region", env.cfg.Invoker.Region))

	prober := repo.NewHTTPProber(env.cfg.Probe.Timeout, env.cfg.Probe.MaxBodyBytes)
	return engine.NewMonitor(env.logger, engine.MonitorConfig{
		Probe:        probe,
		ComponentIDs: env.cfg.StatusPage.ComponentIDs,
	}, prober, invoker), nil
}

func newStatusService(ctx context.Context, env *runtimeEnv) (*services.StatusService, error) {
	monitor, err := newMonitor(ctx, env)
	if err != nil {
		return nil, err
	}
	return services.NewStatusService(env.logger, monitor, newStatusPageClient(env)), nil
}
