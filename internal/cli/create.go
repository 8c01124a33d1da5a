package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tankarena/lobby-server/internal/protocol"
)

func newCreateCmd() *cobra.Command {
	var (
		password     string
		maxPlayers   int
		stage        string
		playerName   string
		friendlyFire bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a room",
		Long: `Create a room on the server. The CLI connection becomes the
room host, so the room is destroyed as soon as the command exits.
Mainly useful for smoke-testing a deployment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := cfg.WebsocketURL()
			if err != nil {
				return err
			}

			client, err := Dial(cmd.Context(), wsURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Send(map[string]any{
				"type":          string(protocol.TypeCreateRoom),
				"name":          args[0],
				"password":      password,
				"max_players":   maxPlayers,
				"stage":         stage,
				"player_name":   playerName,
				"friendly_fire": friendlyFire,
			}); err != nil {
				return err
			}

			frame, err := client.WaitFor(responseWait, protocol.TypeRoomCreated, protocol.TypeError)
			if err != nil {
				return err
			}

			if frame.Type == protocol.TypeError {
				var errMsg protocol.ErrorMessage
				if err := json.Unmarshal(frame.Raw, &errMsg); err != nil {
					return err
				}
				return fmt.Errorf("create failed: %s", errMsg.Message)
			}

			var created protocol.RoomCreated
			if err := json.Unmarshal(frame.Raw, &created); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(RoomCreatedResult{RoomID: created.RoomID})
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Room password (empty for open room)")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 4, "Room capacity")
	cmd.Flags().StringVar(&stage, "stage", "default", "Stage identifier")
	cmd.Flags().StringVar(&playerName, "player-name", "arenactl", "Display name for the host slot")
	cmd.Flags().BoolVar(&friendlyFire, "friendly-fire", false, "Enable friendly fire")

	return cmd
}
