package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// SSEEvent is a single server-sent event from the stream
type SSEEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream live game state updates (SSE)",
		Long: `Connects to the server's event stream for a game and prints each
state update as it arrives. The stream ends when the game is deleted
or the command is interrupted with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			return streamEvents(cfg.ServerURL, code, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

func streamEvents(serverURL, code string, jsonOutput bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop streaming on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	url := strings.TrimSuffix(serverURL, "/") + "/api/v1/games/" + code + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// No timeout: the stream stays open until cancelled
	httpClient := &http.Client{}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d from event stream", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Streaming events for game %s (Ctrl+C to stop)...\n", code)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var event SSEEvent
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			event.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			event.Data = strings.TrimPrefix(line, "data: ")
		case line == "":
			// Blank line dispatches the accumulated event
			if event.Event != "" || event.Data != "" {
				printEvent(event, jsonOutput)
				if event.Event == "deleted" {
					return nil
				}
				event = SSEEvent{}
			}
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	return nil
}

func printEvent(event SSEEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(event)
		fmt.Println(string(data))
		return
	}

	ts := time.Now().Format("15:04:05")
	if event.Event == "deleted" {
		fmt.Printf("[%s] game deleted\n", ts)
		return
	}

	var state GameState
	if err := json.Unmarshal([]byte(event.Data), &state); err != nil {
		fmt.Printf("[%s] %s: %s\n", ts, event.Event, event.Data)
		return
	}

	fmt.Printf("[%s] %s\n", ts, event.Event)
	NewOutput("text").Print(state)
}
