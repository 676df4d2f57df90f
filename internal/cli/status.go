package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// userInfo is the part of the user document shown by whoami
type userInfo struct {
	Handle                string `json:"handle"`
	AuthenticationEnabled bool   `json:"authentication_enabled"`
}

// newStatusCmd reports whether a session is stored. It does not contact the server.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are logged in",
		Long: `Show the server and whether a session is stored. This command does not contact
the server; use "archive touch" to check that the session is still alive.

Examples:
  archive status
  archive status -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			server := s.Config().BaseURL()
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]any{
					"server":    server,
					"connected": s.Connected(),
					"handle":    cfg.Handle,
				})
				return nil
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Server: %s\n", server)
			if s.Connected() {
				okLabel.Fprintf(w, "Connected as %s\n", cfg.Handle)
			} else {
				errorLabel.Fprintln(w, "Not connected")
			}
			return nil
		},
	}
}

// newWhoamiCmd prints the user owning the current session
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			user, err := s.User(ctx)
			if err != nil {
				return fmt.Errorf("unable to fetch user: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), user)
				return nil
			}
			var info userInfo
			if err := user.Decode(&info); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Handle: %s\n", info.Handle)
			if info.AuthenticationEnabled {
				fmt.Fprintln(w, "Two-factor authentication: enabled")
			} else {
				fmt.Fprintln(w, "Two-factor authentication: disabled")
			}
			return nil
		},
	}
}
