package cli

import (
	"github.com/spf13/cobra"
)

func newMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Completed match history",
	}

	cmd.AddCommand(newMatchesListCmd())
	cmd.AddCommand(newMatchesShowCmd())

	return cmd
}

func newMatchesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List completed matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchList
			if err := client.Get("/api/v1/matches", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newMatchesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a completed match by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchRecord
			if err := client.Get("/api/v1/matches/"+args[0], &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
