// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nos-assess CLI: Newcastle-Ottawa
// Scale quality assessment of observational studies.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nos-assess/internal/logger"
	"github.com/pdiddy/nos-assess/internal/registry"
	"github.com/pdiddy/nos-assess/internal/scoring"
	"github.com/pdiddy/nos-assess/internal/store"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the nos-assess CLI.
var rootCmd = &cobra.Command{
	Use:   "nos-assess",
	Short: "Newcastle-Ottawa Scale quality assessment for observational studies",
	Long: `nos-assess scores cohort, case-control and cross-sectional studies against
the Newcastle-Ottawa Scale and classifies them as Good, Fair or Poor quality.

Assessments are read from YAML or JSON study files, scored, and kept in a local
SQLite database. Reports, exports and charts are computed from the stored
answers every time they are produced.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nos-assess.yaml or ~/.config/nos-assess/nos-assess.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the study database (overrides config)")
	rootCmd.PersistentFlags().String("weighting", "", "comparability weighting: standard or flat (overrides config)")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("weighting", rootCmd.PersistentFlags().Lookup("weighting"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nos-assess")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nos-assess"))
		}
	}

	def := types.DefaultConfig()
	viper.SetDefault("data_dir", def.Store.DataDir)
	viper.SetDefault("weighting", def.Scoring.Weighting)
	viper.SetDefault("log.mode", def.Log.Mode)
	viper.SetDefault("report.output_dir", def.Report.OutputDir)
	viper.SetDefault("report.chart_width", def.Report.ChartWidth)
	viper.SetDefault("report.font_path", def.Report.FontPath)

	viper.SetEnvPrefix("NOS_ASSESS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged viper settings.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// app bundles the components a command needs.
type app struct {
	cfg    types.Config
	log    *logger.Logger
	engine *scoring.Engine
	store  *store.Store
}

// newApp builds the logger, registry and engine, and opens the study store
// when withStore is set.
func newApp(withStore bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	w, err := registry.ParseWeighting(cfg.Scoring.Weighting)
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(w)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, engine: scoring.NewEngine(reg)}
	if withStore {
		st, err := store.NewStore(cfg.Store, a.engine, log)
		if err != nil {
			return nil, err
		}
		a.store = st
	}
	log.Debug("nos-assess ready", "data_dir", cfg.Store.DataDir, "weighting", string(w))
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing store", "error", err)
		}
	}
	a.log.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
