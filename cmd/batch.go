package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hiresight/hiresight/internal/batch"
	"github.com/hiresight/hiresight/internal/evaluate"
	"github.com/hiresight/hiresight/internal/llm"
	"github.com/hiresight/hiresight/internal/scenario"
	"github.com/hiresight/hiresight/internal/session"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run scripted interviews for multiple candidates in parallel",
	Long: "Batch reads a YAML file of candidates and their scripted answers and runs\n" +
		"one interview session per candidate, bounded by a concurrency limit.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("scenario", "s", "", "scenario id (required)")
	batchCmd.Flags().IntP("concurrency", "c", batch.DefaultConcurrency, "max interviews running at once")
	batchCmd.MarkFlagRequired("scenario")
}

// batchFile is the on-disk shape of a batch run.
type batchFile struct {
	Candidates []struct {
		Name     string   `yaml:"name"`
		Email    string   `yaml:"email"`
		Position string   `yaml:"position"`
		Answers  []string `yaml:"answers"`
	} `yaml:"candidates"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := getConfig()
	if err != nil {
		return err
	}
	log, err := getLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	var bf batchFile
	if err := yaml.Unmarshal(raw, &bf); err != nil {
		return fmt.Errorf("parse batch file: %w", err)
	}
	if len(bf.Candidates) == 0 {
		return fmt.Errorf("batch file %s has no candidates", args[0])
	}

	provider, err := llm.NewProviderFromEnv(ctx, log)
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}

	library, err := scenario.LoadDir(cfg.ScenarioDir)
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}
	scenarioID, _ := cmd.Flags().GetString("scenario")
	scn := library.ByID(scenarioID)
	if scn == nil {
		return fmt.Errorf("scenario %q not found in %s", scenarioID, cfg.ScenarioDir)
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	runner := &batch.Runner{
		Concurrency: concurrency,
		Logger:      log,
		NewEngine: func(c session.Candidate) (*session.Engine, error) {
			return session.New(sessionConfig(cfg, c, scn.ID, scn.Title), session.Deps{
				Source:    scenario.NewOrderedSource(scn),
				Evaluator: evaluate.New(provider, evaluate.DefaultConfig()),
				Reporter:  evaluate.NewReporter(provider, evaluate.DefaultConfig()),
				Store:     st,
				Logger:    log,
			})
		},
	}

	interviews := make([]batch.Interview, len(bf.Candidates))
	for i, c := range bf.Candidates {
		interviews[i] = batch.Interview{
			Candidate: session.Candidate{Name: c.Name, Email: c.Email, Position: c.Position},
			Answers:   c.Answers,
		}
	}

	results, err := runner.Run(ctx, interviews)
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %-36s %-16s\n", "CANDIDATE", "SESSION", "OUTCOME")
	failed := 0
	for _, res := range results {
		outcome := "error: " + fmt.Sprint(res.Err)
		if res.Err == nil && res.Recommendation != nil {
			outcome = string(res.Recommendation.Outcome)
		} else {
			failed++
		}
		fmt.Printf("%-24s %-36s %-16s\n", res.Candidate.Name, res.SessionID, outcome)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d interviews failed", failed, len(results))
	}
	return nil
}
