package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List persisted interview sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		list, err := st.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}

		fmt.Printf("%-36s %-20s %-16s %-22s %-16s %s\n",
			"ID", "CANDIDATE", "SCENARIO", "STATE", "OUTCOME", "CREATED")
		for _, s := range list {
			outcome := s.Outcome
			if outcome == "" {
				outcome = "-"
			}
			fmt.Printf("%-36s %-20s %-16s %-22s %-16s %s\n",
				s.ID, s.Candidate, s.ScenarioID, s.State, outcome,
				s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
