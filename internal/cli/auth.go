package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAuthCmd groups the second-factor authentication commands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage two-factor authentication",
		Long: `Manage two-factor authentication for your account.

Examples:
  # Complete a login for an account with two-factor authentication
  archive auth verify 123456

  # Turn two-factor authentication on or off
  archive auth activate
  archive auth deactivate`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newAuthVerifyCmd())
	cmd.AddCommand(newAuthToggleCmd("activate", "Turn on two-factor authentication", true))
	cmd.AddCommand(newAuthToggleCmd("deactivate", "Turn off two-factor authentication", false))
	return cmd
}

func newAuthVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify CODE",
		Short: "Complete the login with a two-factor code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			body, err := s.Authenticate(ctx, args[0])
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), body)
			} else {
				okLabel.Fprintln(cmd.OutOrStdout(), "✓ Authenticated")
			}
			return nil
		},
	}
}

func newAuthToggleCmd(use, short string, enable bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `. Your password is required and is prompted for
when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				pw, err := GetPassword(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("unable to read password: %w", err)
				}
				password = string(pw)
			}

			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			toggle := s.DeactivateAuthentication
			if enable {
				toggle = s.ActivateAuthentication
			}
			body, err := toggle(ctx, password)
			if err != nil {
				return fmt.Errorf("unable to %s two-factor authentication: %w", use, err)
			}

			if jsonOutput {
				printJSON(cmd.OutOrStdout(), body)
				return nil
			}
			w := cmd.OutOrStdout()
			if enable {
				okLabel.Fprintln(w, "✓ Two-factor authentication activated")
				if code := body.String("code"); code != "" {
					fmt.Fprintf(w, "Authenticator code: %s\n", code)
				}
			} else {
				okLabel.Fprintln(w, "✓ Two-factor authentication deactivated")
			}
			return nil
		},
	}
	cmd.Flags().String("password", "", "Account password")
	return cmd
}
