package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mreynaud/schedcore/config"
	"github.com/mreynaud/schedcore/core/compression"
	"github.com/mreynaud/schedcore/core/conflict"
	coremetrics "github.com/mreynaud/schedcore/core/metrics"
	"github.com/mreynaud/schedcore/core/model"
	"github.com/mreynaud/schedcore/core/scheduling"
	"github.com/mreynaud/schedcore/infra/logger"
	inframetrics "github.com/mreynaud/schedcore/infra/metrics"
	"github.com/mreynaud/schedcore/infra/store"
	"github.com/mreynaud/schedcore/internal/eventbus"
	"github.com/mreynaud/schedcore/pkg/export"
)

var (
	projectFile string
	reportKind  string
	asOfFlag    string
	targetDays  float64
	maxCost     float64
	maxRisk     float64
	useEAC      bool
	csvOut      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-id>",
	Short: "Run one analysis over a project definition file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&projectFile, "project-file", "p", "project.yaml", "project definition file")
	analyzeCmd.Flags().StringVarP(&reportKind, "report", "r", "critical-path",
		"report to compute: critical-path, evm, variance, tcpi, conflicts, leveling, compression")
	analyzeCmd.Flags().StringVar(&asOfFlag, "as-of", "", "as-of instant for EVM reports (RFC 3339)")
	analyzeCmd.Flags().Float64Var(&targetDays, "target-days", 0, "duration reduction target for compression")
	analyzeCmd.Flags().Float64Var(&maxCost, "max-cost", 0, "aggregate crash cost cap (0 = uncapped)")
	analyzeCmd.Flags().Float64Var(&maxRisk, "max-risk", 0, "fast-track risk score cap (0 = uncapped)")
	analyzeCmd.Flags().BoolVar(&useEAC, "eac", false, "use the EAC-based TCPI variant")
	analyzeCmd.Flags().BoolVar(&csvOut, "csv", false, "emit CSV instead of JSON where supported")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	projectID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Load(projectFile)
	if err != nil {
		return fmt.Errorf("load project file: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New()
	defer bus.Close()
	inframetrics.StartEventCollector(ctx, bus, sink)

	log := logger.NewWithConfig("analyze", cfg.Logging.Level, cfg.Logging.Format)
	svc, err := scheduling.NewService(st, st, st, cfg.Analysis.Leveling, log, bus)
	if err != nil {
		return err
	}

	var asOf *time.Time
	if asOfFlag != "" {
		t, err := time.Parse(time.RFC3339, asOfFlag)
		if err != nil {
			return fmt.Errorf("parse --as-of: %w", err)
		}
		asOf = &t
	}

	switch reportKind {
	case "critical-path":
		rep, err := svc.CriticalPath(ctx, projectID)
		if err != nil {
			return err
		}
		if csvOut {
			return export.WriteCriticalPathCSV(os.Stdout, rep)
		}
		return export.WriteJSON(os.Stdout, rep)
	case "evm":
		rep, err := svc.EarnedValueSnapshot(ctx, projectID, asOf)
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, rep)
	case "variance":
		rep, err := svc.VarianceAnalysis(ctx, projectID, asOf)
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, rep)
	case "tcpi":
		rep, err := svc.ToCompletePerformance(ctx, projectID, useEAC)
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, rep)
	case "conflicts":
		rep, err := svc.DetectResourceConflicts(ctx, projectID, conflict.Unbounded())
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, rep)
	case "leveling":
		rep, err := svc.LevelResources(ctx, projectID)
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, rep)
	case "compression":
		req := compression.Request{TargetReductionDays: targetDays}
		if maxCost > 0 {
			req.MaxCostIncrease = &model.Money{Amount: maxCost}
		}
		if maxRisk > 0 {
			req.MaxRiskScore = &maxRisk
		}
		rep, err := svc.CompressSchedule(ctx, projectID, req)
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, rep)
	default:
		return fmt.Errorf("unknown report %q", reportKind)
	}
}

// loadConfig reads the config file; a missing file falls back to defaults
// so the CLI works out of the box.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := &config.Config{}
		cfg.Logging.SetDefaults()
		cfg.Analysis.SetDefaults()
		return cfg, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
