package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/tankarena/lobby-server/internal/protocol"
)

const responseWait = 10 * time.Second

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List joinable rooms",
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

			if err := client.Send(map[string]string{"type": string(protocol.TypeGetRoomList)}); err != nil {
				return err
			}

			frame, err := client.WaitFor(responseWait, protocol.TypeRoomList)
			if err != nil {
				return err
			}

			var list protocol.RoomList
			if err := json.Unmarshal(frame.Raw, &list); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(list.Rooms)
			return nil
		},
	}
}
