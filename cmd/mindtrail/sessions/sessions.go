package sessionscmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

const sessionsLongDesc string = `Inspect and manage conversation sessions on a mindtrail server.

Examples:
  mindtrail sessions list
  mindtrail sessions show session_1712345678901_a1b2c3d4e
  mindtrail sessions delete session_1712345678901_a1b2c3d4e --server http://192.168.1.42:8080`

const sessionsShortDesc string = "Manage conversation sessions"

type sessionsCommander struct {
	serverURL string
}

type listResponse struct {
	Count          int             `json:"count"`
	CurrentSession string          `json:"currentSession"`
	Sessions       []*chat.Session `json:"sessions"`
}

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:8080", "Base URL of the mindtrail server")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.list(cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the turns of a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.show(cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.delete(cmd, args[0])
		},
	})

	return cmd
}

func (c *sessionsCommander) list(cmd *cobra.Command) error {
	var resp listResponse
	if err := c.getJSON("/api/sessions", &resp); err != nil {
		return err
	}

	if resp.Count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored sessions.")
		return nil
	}

	for _, session := range resp.Sessions {
		marker := " "
		if session.ID == resp.CurrentSession {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %-50s  %d messages  updated %s\n",
			marker, session.ID, session.Title, len(session.Messages),
			time.UnixMilli(session.UpdatedAt).Format(time.RFC3339))
	}

	return nil
}

func (c *sessionsCommander) show(cmd *cobra.Command, id string) error {
	var session chat.Session
	if err := c.getJSON("/api/sessions/"+id, &session); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", session.Title, session.ID)

	for _, turn := range session.Messages {
		fmt.Fprintf(cmd.OutOrStdout(), "\n[%s] %s\n", turn.Status, turn.Query)
		switch turn.Status {
		case chat.StatusComplete:
			fmt.Fprintln(cmd.OutOrStdout(), turn.Response)
		case chat.StatusError:
			fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", turn.Error)
		}
	}

	return nil
}

func (c *sessionsCommander) delete(cmd *cobra.Command, id string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL()+"/api/sessions/"+id, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

func (c *sessionsCommander) baseURL() string {
	return strings.TrimRight(c.serverURL, "/")
}

func (c *sessionsCommander) getJSON(path string, out any) error {
	resp, err := http.Get(c.baseURL() + path)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}

	return nil
}
