package exportcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

const exportLongDesc string = `Export a stored session as pretty-printed JSON.

Writes to stdout by default; use --output to write to a file.

Examples:
  mindtrail export session_1712345678901_a1b2c3d4e
  mindtrail export session_1712345678901_a1b2c3d4e --output session.json`

const exportShortDesc string = "Export a session as JSON"

type exportCommander struct {
	serverURL  string
	outputPath string
}

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:8080", "Base URL of the mindtrail server")
	cmd.Flags().StringVarP(&cmder.outputPath, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func (c *exportCommander) run(cmd *cobra.Command, id string) error {
	url := strings.TrimRight(c.serverURL, "/") + "/api/sessions/" + id

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var session chat.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}
	data = append(data, '\n')

	if c.outputPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(c.outputPath, data, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", c.outputPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", id, c.outputPath)
	return nil
}
