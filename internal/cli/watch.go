package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream lobby broadcasts in real time",
		Long: `Connect to the server and print every broadcast the connection
receives: room list updates as rooms are created, filled, started
and destroyed.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd.Context(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// watchEvent is one observed broadcast
type watchEvent struct {
	Time time.Time       `json:"time"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func watch(ctx context.Context, jsonOutput bool) error {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return err
	}

	client, err := Dial(ctx, wsURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	// Handle interrupt
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		_ = client.Close()
	}()

	if !jsonOutput {
		fmt.Printf("Watching %s\n", wsURL)
	}

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			// Context cancellation is expected
			if ctx.Err() != nil {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return err
		}
		printFrame(frame, jsonOutput)
	}
}

func printFrame(frame *Frame, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := watchEvent{Time: now, Type: string(frame.Type), Data: frame.Raw}
		data, _ := json.Marshal(evt)
		fmt.Println(string(data))
		return
	}

	display := string(frame.Raw)
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	display = strings.ReplaceAll(display, "\n", " ")
	fmt.Printf("[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), frame.Type, display)
}
