package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game operations",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameShowCmd())
	cmd.AddCommand(newGameCounterCmd())
	cmd.AddCommand(newGameAdvanceCmd())
	cmd.AddCommand(newGameSurrenderCmd())
	cmd.AddCommand(newGameDisconnectCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var deckLabel string

	cmd := &cobra.Command{
		Use:   "create <display-name>",
		Short: "Create a new game as host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CreateResult
			body := map[string]string{
				"display_name": args[0],
				"deck_label":   deckLabel,
			}
			if err := client.Post("/api/v1/games", body, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayerID(result.Game.Code, result.PlayerID); err != nil {
				return fmt.Errorf("failed to save player id: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&deckLabel, "deck", "", "Deck label shown to the opponent")

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	var deckLabel string

	cmd := &cobra.Command{
		Use:   "join <code> <display-name>",
		Short: "Join a game by code, or reconnect to one you are in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])

			body := map[string]string{
				"display_name": args[1],
				"deck_label":   deckLabel,
			}
			// A remembered id makes this a reconnect rather than a join
			if playerID := cfg.LoadPlayerID(code); playerID != "" {
				body["player_id"] = playerID
			}

			var result CreateResult
			if err := client.Post("/api/v1/games/"+code+"/join", body, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayerID(result.Game.Code, result.PlayerID); err != nil {
				return fmt.Errorf("failed to save player id: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&deckLabel, "deck", "", "Deck label shown to the opponent")

	return cmd
}

func newGameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState
			if err := client.Get("/api/v1/games/"+strings.ToUpper(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameCounterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counter <code> <morale|energy> <delta>",
		Short: "Adjust one of your counters",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			delta, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("delta must be an integer: %q", args[2])
			}

			playerID, err := requirePlayerID(code)
			if err != nil {
				return err
			}

			var result GameState
			body := map[string]any{
				"player_id": playerID,
				"counter":   args[1],
				"delta":     delta,
			}
			if err := client.Post("/api/v1/games/"+code+"/counter", body, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <code>",
		Short: "Advance the turn, resolving round-end conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState
			if err := client.Post("/api/v1/games/"+strings.ToUpper(args[0])+"/advance", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameSurrenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "surrender <code>",
		Short: "Concede the match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			playerID, err := requirePlayerID(code)
			if err != nil {
				return err
			}

			var result GameState
			if err := client.Post("/api/v1/games/"+code+"/surrender", map[string]string{"player_id": playerID}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <code>",
		Short: "Flag yourself as disconnected from the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			playerID, err := requirePlayerID(code)
			if err != nil {
				return err
			}

			var result GameState
			if err := client.Post("/api/v1/games/"+code+"/disconnect", map[string]string{"player_id": playerID}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

// requirePlayerID resolves the remembered identity for a game
func requirePlayerID(code string) (string, error) {
	playerID := cfg.LoadPlayerID(code)
	if playerID == "" {
		return "", fmt.Errorf("no player id remembered for game %s; create or join it first", code)
	}
	return playerID, nil
}
