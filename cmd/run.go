package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hiresight/hiresight/internal/evaluate"
	"github.com/hiresight/hiresight/internal/llm"
	"github.com/hiresight/hiresight/internal/scenario"
	"github.com/hiresight/hiresight/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive interview session",
	RunE:  runInterview,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("scenario", "s", "", "scenario id (random scenario when unset)")
	runCmd.Flags().String("candidate", "", "candidate name")
	runCmd.Flags().String("email", "", "candidate email")
	runCmd.Flags().String("position", "", "position interviewed for")
	runCmd.Flags().IntP("questions", "n", 0, "number of questions (overrides config)")
	runCmd.Flags().Int("budget", -1, "clarification rounds per question (overrides config)")
	runCmd.Flags().Bool("hints", false, "allow the candidate to request hints")
	runCmd.Flags().Bool("adaptive", false, "let the model pick the next question")
	runCmd.Flags().String("profile", "", "risk weighting profile: balanced, strict, or lenient")

	viper.BindPFlag("hints", runCmd.Flags().Lookup("hints"))
	viper.BindPFlag("adaptive", runCmd.Flags().Lookup("adaptive"))
}

func runInterview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := getConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("questions"); n > 0 {
		cfg.QuestionCount = n
	}
	if b, _ := cmd.Flags().GetInt("budget"); b >= 0 {
		cfg.ClarificationBudget = b
	}
	if p, _ := cmd.Flags().GetString("profile"); p != "" {
		cfg.Profile = p
	}
	cfg.Hints = viper.GetBool("hints")
	cfg.Adaptive = viper.GetBool("adaptive")

	log, err := getLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	provider, err := llm.NewProviderFromEnv(ctx, log)
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}

	library, err := scenario.LoadDir(cfg.ScenarioDir)
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}
	var scn *scenario.Scenario
	if id, _ := cmd.Flags().GetString("scenario"); id != "" {
		if scn = library.ByID(id); scn == nil {
			return fmt.Errorf("scenario %q not found in %s", id, cfg.ScenarioDir)
		}
	} else if scn = library.Random(); scn == nil {
		return fmt.Errorf("no scenarios in %s", cfg.ScenarioDir)
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	candidate := session.Candidate{}
	candidate.Name, _ = cmd.Flags().GetString("candidate")
	candidate.Email, _ = cmd.Flags().GetString("email")
	candidate.Position, _ = cmd.Flags().GetString("position")

	var src scenario.Source
	if cfg.Adaptive {
		src = scenario.NewAdaptiveSource(scn, provider)
	} else {
		src = scenario.NewOrderedSource(scn)
	}

	eng, err := session.New(sessionConfig(cfg, candidate, scn.ID, scn.Title), session.Deps{
		Source:    src,
		Evaluator: evaluate.New(provider, evaluate.DefaultConfig()),
		Reporter:  evaluate.NewReporter(provider, evaluate.DefaultConfig()),
		Store:     st,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Interview: %s\n%s\n\n", scn.Title, scn.Description)

	turn, err := eng.Start(ctx)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for turn.State != session.StateComplete {
		printPrompt(turn, cfg.Hints)

		if !in.Scan() {
			fmt.Println("\nInput closed; session left incomplete.")
			return in.Err()
		}
		text := strings.TrimSpace(in.Text())

		switch {
		case cfg.Hints && text == "/hint":
			hint, err := eng.RevealHint()
			if err != nil {
				fmt.Println("No hint available here.")
			} else if hint == "" {
				fmt.Println("This question has no hint.")
			} else {
				fmt.Println("Hint:", hint)
			}
			continue
		case text == "/skip" && turn.State == session.StateAwaitingClarification:
			turn, err = eng.AbandonClarification(ctx)
		default:
			turn, err = eng.SubmitAnswer(ctx, text)
		}

		if err != nil {
			turn, err = recoverTurn(ctx, eng, err, log)
			if err != nil {
				return err
			}
		}
	}

	printVerdict(eng.Session())
	return nil
}

func printPrompt(turn *session.Turn, hints bool) {
	switch turn.State {
	case session.StateAwaitingClarification:
		fmt.Printf("\nClarification requested: %s\n> ", turn.Prompt)
	default:
		fmt.Printf("\n[%s] %s\n", turn.QuestionID, turn.Prompt)
		if hints {
			fmt.Print("(type /hint for a hint)\n")
		}
		fmt.Print("> ")
	}
}

// recoverTurn handles recoverable mid-session errors: invalid input is
// re-prompted, an evaluator outage is resumed once, a storage failure
// at completion is reported without discarding the verdict.
func recoverTurn(ctx context.Context, eng *session.Engine, err error, log *zap.Logger) (*session.Turn, error) {
	var unavailable *session.EvaluationUnavailableError
	var storage *session.StorageError

	switch {
	case errors.Is(err, session.ErrInvalidInput):
		fmt.Println("Please provide an answer.")
	case errors.As(err, &unavailable):
		fmt.Println("The evaluator is temporarily unavailable; resuming...")
		return eng.Resume(ctx)
	case errors.As(err, &storage):
		log.Error("saving session failed", zap.Error(err))
		fmt.Println("Warning: the session could not be saved.")
	default:
		return nil, err
	}

	// Re-present the standing prompt.
	sess := eng.Session()
	rec := sess.Records[len(sess.Records)-1]
	turn := &session.Turn{State: sess.State, QuestionID: rec.QuestionID, Prompt: rec.QuestionText}
	if sess.State == session.StateAwaitingClarification {
		turn.Prompt = rec.ClarificationPrompt
	}
	if sess.State == session.StateComplete {
		turn.State = session.StateComplete
	}
	return turn, nil
}

func printVerdict(sess *session.Session) {
	fmt.Println("\n--- Interview complete ---")
	for i, rec := range sess.Records {
		score := "unscored"
		if rec.Evaluation != nil {
			score = fmt.Sprintf("%.1f/10", rec.Evaluation.Score)
		}
		clar := ""
		if rec.ClarificationRequested {
			clar = " (clarified)"
		}
		fmt.Printf("%d. %s  %s%s\n", i+1, rec.QuestionID, score, clar)
	}

	if sess.Risk != nil {
		fmt.Printf("\nCheating risk: %.2f\n", sess.Risk.Score)
		for _, a := range sess.Risk.Anomalies {
			fmt.Printf("  - %s: %s\n", a.Tag, a.Detail)
		}
	}
	if sess.Report != nil {
		fmt.Printf("\nOverall assessment: %d/10\n%s\n", sess.Report.OverallScore, sess.Report.Reasoning)
	}
	if sess.Recommendation != nil {
		fmt.Printf("\nRecommendation: %s\n%s\n", strings.ToUpper(string(sess.Recommendation.Outcome)), sess.Recommendation.Rationale)
	}
	fmt.Printf("\nSession %s saved.\n", sess.ID)
}
