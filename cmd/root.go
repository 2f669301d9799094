// Package cmd wires the hiresight CLI.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hiresight/hiresight/internal/logger"
	"github.com/hiresight/hiresight/internal/recommend"
	"github.com/hiresight/hiresight/internal/session"
	"github.com/hiresight/hiresight/internal/store"
)

const app = "hiresight"

// Config mirrors the optional hiresight.yaml config file. Flags
// override file values through viper.
type Config struct {
	ScenarioDir         string  `mapstructure:"scenario-dir"`
	QuestionCount       int     `mapstructure:"question-count"`
	ClarificationBudget int     `mapstructure:"clarification-budget"`
	Hints               bool    `mapstructure:"hints"`
	Adaptive            bool    `mapstructure:"adaptive"`
	Profile             string  `mapstructure:"profile"`
	HireAt              float64 `mapstructure:"hire-at"`
	ReviewAt            float64 `mapstructure:"review-at"`
}

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiresight runs scenario-based technical interviews with AI evaluation",
		Long: "Hiresight automates scenario-based technical interviews: it sequences\n" +
			"questions, asks for clarification when an answer is ambiguous, times every\n" +
			"answer, scores answers with an AI evaluator, and produces a cheating-risk\n" +
			"assessment and a final hire/no-hire recommendation.",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is hiresight.yaml in the current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (overrides HIRESIGHT_DB)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindEnv("db", "HIRESIGHT_DB")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; only a malformed or explicitly
	// requested missing one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
}

func getConfig() (*Config, error) {
	config := &Config{
		ScenarioDir:         "scenarios",
		QuestionCount:       5,
		ClarificationBudget: 1,
		Profile:             "balanced",
	}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func getLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

// openStore resolves the database path from --db, HIRESIGHT_DB, or the
// default location.
func openStore() (*store.Store, error) {
	path := viper.GetString("db")
	if path == "" {
		path = store.DefaultPath()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return store.Open(path)
}

func sessionConfig(cfg *Config, candidate session.Candidate, scenarioID, scenarioTitle string) session.Config {
	sc := session.DefaultConfig()
	sc.Candidate = candidate
	sc.ScenarioID = scenarioID
	sc.ScenarioTitle = scenarioTitle
	sc.QuestionCount = cfg.QuestionCount
	sc.ClarificationBudget = cfg.ClarificationBudget
	sc.HintEnabled = cfg.Hints
	sc.RiskProfile = cfg.Profile
	if cfg.HireAt != 0 || cfg.ReviewAt != 0 {
		sc.Thresholds = recommend.Thresholds{HireAt: cfg.HireAt, ReviewAt: cfg.ReviewAt}
	}
	return sc
}
