package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tankarena/lobby-server/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []model.RoomSummary:
		o.printRoomList(v)
	case RoomCreatedResult:
		o.printRoomCreated(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomCreatedResult response type
type RoomCreatedResult struct {
	RoomID model.RoomID `json:"room_id"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoomList(rooms []model.RoomSummary) {
	if len(rooms) == 0 {
		fmt.Println("No joinable rooms")
		return
	}

	fmt.Printf("Rooms (%d):\n", len(rooms))
	for _, r := range rooms {
		lockStr := ""
		if r.PasswordRequired {
			lockStr = " [locked]"
		}
		fmt.Printf("  %s  %s  %d/%d  %s%s\n",
			r.ID, r.Name, r.CurrentPlayers, r.MaxPlayers, r.Stage, lockStr)
	}
}

func (o *Output) printRoomCreated(r RoomCreatedResult) {
	fmt.Printf("Room created: %s\n", r.RoomID)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
