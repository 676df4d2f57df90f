package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypticarchive/archive/internal/common/logtrace"
	"github.com/crypticarchive/archive/internal/common/uuid"
	"github.com/crypticarchive/archive/pkg/archive"
)

// sessionOptions are appended to the options of every session the CLI opens.
// Tests use it to route requests to a fake server.
var sessionOptions []archive.Option

// commandContext tags the command context with a fresh request id so the
// requests of one invocation can be correlated in the server logs.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logtrace.ContextWithRequestID(ctx, uuid.NewRequestID())
}

// openSession loads the configuration and resumes the stored session, if any.
func openSession(cmd *cobra.Command) (context.Context, *Config, *archive.Session, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx := commandContext(cmd)
	opts := append([]archive.Option{archive.WithSessionID(cfg.SessionID)}, sessionOptions...)
	s, err := archive.New(ctx, cfg.ArchiveConfig(), opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	l := logtrace.Logger(ctx)
	l.Debug().
		Str("server", cfg.ArchiveConfig().BaseURL()).
		Bool("connected", s.Connected()).
		Msg("session opened")
	return ctx, cfg, s, nil
}

// saveSession stores the session id and its handle. An empty id clears both.
func saveSession(cfg *Config, sessionID, handle string) error {
	cfg.SessionID = sessionID
	cfg.Handle = handle
	if sessionID == "" {
		cfg.Handle = ""
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// printResult prints a server response, as JSON or as sorted key/value lines.
func printResult(cmd *cobra.Command, r archive.Result) {
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), r)
		return
	}
	printFields(cmd.OutOrStdout(), r)
}
