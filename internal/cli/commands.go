package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/crypticarchive/archive/internal/common/logtrace"
	"github.com/crypticarchive/archive/pkg/archive"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var hintLabel = color.New(color.FgYellow)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newRootCmd builds the command tree. A fresh tree is built for every run so
// flag values never leak between executions.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "archive [command] [flags]",
		Short: "Cryptic Archive CLI - A command line interface for the Cryptic Archive",
		Long: `Cryptic Archive CLI is a command line interface for the Cryptic Archive service.
It keeps the current session in a configuration file so that successive commands
share one login.

Examples:
  # Point the CLI at a server
  archive config --scheme https --host www.crypticarchive.com

  # Log in and list your records
  archive login --handle me
  archive record list

  # Log out
  archive logout`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true, // Prevent Cobra from printing the error
		SilenceUsage:      true, // Prevent Cobra from printing usage on error
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "disabled", "Log level (debug, info, warn, error, disabled)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newTouchCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newRecordCmd())
	return rootCmd
}

// Execute runs the CLI with the process arguments and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes args and reports any error to errOut. The error is returned
// after it has been printed.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, ErrAlreadyHandled) {
		return err
	}
	if jsonOutput {
		kv := map[string]string{
			"error": err.Error(),
		}
		if ae, ok := archive.AsError(err); ok && ae.Code() != "" {
			kv["code"] = ae.Code()
		}
		printJSON(out, kv)
	} else {
		errorLabel.Fprintf(errOut, "Error: %v\n", err)
		if errors.Is(err, archive.ErrAuthentication) {
			hintLabel.Fprintln(errOut, `Two-factor authentication is required. Run "archive auth verify CODE" first.`)
		}
		if errors.Is(err, archive.ErrAuthorization) || errors.Is(err, archive.ErrNotConnected) {
			hintLabel.Fprintln(errOut, `Log in with "archive login --handle HANDLE".`)
		}
	}
	return err
}

// preRunHandlePersistents handles persistent flags before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	if err := logtrace.SetLevel(logLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}
	return nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the archive CLI",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configFile,
				}
				printJSON(cmd.OutOrStdout(), kv)
			} else {
				cmd.Printf("archive CLI %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configFile)
			}
		},
	}
}

// printJSON writes data to w as indented JSON
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
