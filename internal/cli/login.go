package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypticarchive/archive/pkg/archive"
)

// newSignupCmd creates and returns a new signup command
func newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup HANDLE",
		Short: "Create an account on the archive",
		Long: `Create an account for HANDLE. The server sends the account details
out of band; log in afterwards with "archive login".

Example:
  archive signup me`,
		Args: cobra.ExactArgs(1),
		RunE: runSignup,
	}
}

func runSignup(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	body, err := archive.Signup(commandContext(cmd), cfg.ArchiveConfig(), args[0], sessionOptions...)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), body)
	} else {
		okLabel.Fprintf(cmd.OutOrStdout(), "✓ Account %s created\n", args[0])
	}
	return nil
}

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the archive",
		Long: `Log in to the archive and store the session in your configuration file.
The password is prompted for when --password is not given. A session already
stored is replaced.

Example:
  archive login --handle me`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().String("handle", "", "Handle to log in as")
	cmd.Flags().String("password", "", "Password for authentication")
	cmd.MarkFlagRequired("handle")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	handle, _ := cmd.Flags().GetString("handle")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		pw, err := GetPassword(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("unable to read password: %w", err)
		}
		password = string(pw)
	}

	ctx, cfg, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	body, err := s.Connect(ctx, handle, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := saveSession(cfg, s.SessionID(), handle); err != nil {
		return err
	}

	needsCode, _ := body["authentication_required"].(bool)
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), body)
		return nil
	}
	okLabel.Fprintln(cmd.OutOrStdout(), "✓ Login successful")
	if needsCode {
		hintLabel.Fprintln(cmd.OutOrStdout(), `Two-factor authentication is enabled. Run "archive auth verify CODE" to complete the login.`)
	}
	return nil
}

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Terminate the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if !s.Connected() {
				return archive.ErrNotConnected
			}
			_, err = s.Terminate(ctx)
			// A session the server no longer knows is as good as terminated.
			if err != nil && !errors.Is(err, archive.ErrAuthorization) {
				return fmt.Errorf("logout failed: %w", err)
			}
			if err := saveSession(cfg, "", ""); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
			} else {
				okLabel.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			}
			return nil
		},
	}
}

// newTouchCmd creates and returns a new touch command
func newTouchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch",
		Short: "Extend the lifespan of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			body, err := s.Touch(ctx)
			if err != nil {
				return fmt.Errorf("touch failed: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), body)
			} else {
				okLabel.Fprintln(cmd.OutOrStdout(), "✓ Session extended")
			}
			return nil
		},
	}
}
