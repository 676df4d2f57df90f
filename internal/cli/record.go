package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/crypticarchive/archive/pkg/archive"
)

// recordSummary is one entry of a record listing
type recordSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// newRecordCmd groups the record commands
func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage the records stored in the archive",
		Long: `Create, read, update, and delete the records stored in the archive.

Examples:
  # Store an account
  archive record create "My Bank" account --field url=https://bank.example --field user=me

  # List and read records
  archive record list
  archive record get me-1

  # Change a field, nested fields use dots
  archive record update me-1 --set user=you --set notes.pin=1234

  # Remove a record
  archive record delete me-1`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newRecordCreateCmd())
	cmd.AddCommand(newRecordGetCmd())
	cmd.AddCommand(newRecordListCmd())
	cmd.AddCommand(newRecordUpdateCmd())
	cmd.AddCommand(newRecordDeleteCmd())
	return cmd
}

func newRecordCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create TITLE TYPE",
		Short: "Create a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _ := cmd.Flags().GetStringArray("field")
			extra, err := parseFields(fields)
			if err != nil {
				return err
			}

			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			body, err := s.CreateRecord(ctx, args[0], args[1], extra)
			if err != nil {
				return fmt.Errorf("unable to create record: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), body)
			} else {
				okLabel.Fprintf(cmd.OutOrStdout(), "✓ Record %s created\n", body.String("record_id"))
			}
			return nil
		},
	}
	cmd.Flags().StringArray("field", nil, "Additional field as key=value, may be repeated")
	return cmd
}

func newRecordGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			record, err := s.GetRecord(ctx, args[0])
			if err != nil {
				return fmt.Errorf("unable to get record: %w", err)
			}
			printResult(cmd, record)
			return nil
		},
	}
}

func newRecordListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			records, err := s.ListRecords(ctx)
			if err != nil {
				return fmt.Errorf("unable to list records: %w", err)
			}

			summaries := make([]recordSummary, 0, len(records))
			for _, r := range records {
				var summary recordSummary
				if err := r.Decode(&summary); err != nil {
					return err
				}
				summaries = append(summaries, summary)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), summaries)
				return nil
			}

			w := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(w, "No records found")
				return nil
			}
			fmt.Fprintln(w, "Records:")
			for _, summary := range summaries {
				fmt.Fprintf(w, "- %s: %s (%s)\n", summary.ID, summary.Title, summary.Type)
			}
			return nil
		},
	}
}

func newRecordUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a record",
		Long: `Change fields of a record. Each --set takes path=value, where path may name
a nested field with dots (notes.pin). Values are stored as strings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, _ := cmd.Flags().GetStringArray("set")
			if len(sets) == 0 {
				return fmt.Errorf("at least one --set path=value is required")
			}

			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			record, err := s.GetRecord(ctx, args[0])
			if err != nil {
				return fmt.Errorf("unable to get record: %w", err)
			}
			content, err := applySets(record, sets)
			if err != nil {
				return err
			}
			body, err := s.UpdateRecord(ctx, args[0], content)
			if err != nil {
				return fmt.Errorf("unable to update record: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), body)
			} else {
				okLabel.Fprintf(cmd.OutOrStdout(), "✓ Record %s updated\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringArray("set", nil, "Field to change as path=value, may be repeated")
	return cmd
}

func newRecordDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, s, err := openSession(cmd)
			if err != nil {
				return err
			}
			body, err := s.DeleteRecord(ctx, args[0])
			if err != nil {
				return fmt.Errorf("unable to delete record: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), body)
			} else {
				okLabel.Fprintf(cmd.OutOrStdout(), "✓ Record %s deleted\n", args[0])
			}
			return nil
		},
	}
}

// splitAssignment splits key=value. The key must not be empty.
func splitAssignment(s string) (string, string, error) {
	key, value, found := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q, expected key=value", s)
	}
	return key, value, nil
}

// parseFields turns key=value pairs into a map. Later keys win.
func parseFields(fields []string) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		k, v, err := splitAssignment(f)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// applySets applies path=value assignments to the JSON form of record and
// returns the resulting content. The record id is not part of the content.
func applySets(record archive.Result, sets []string) (map[string]any, error) {
	if record == nil {
		record = archive.Result{}
	}
	doc, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("unable to encode record: %w", err)
	}
	for _, set := range sets {
		path, value, err := splitAssignment(set)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, path, value)
		if err != nil {
			return nil, fmt.Errorf("unable to set %s: %w", path, err)
		}
	}
	doc, err = sjson.DeleteBytes(doc, "id")
	if err != nil {
		return nil, fmt.Errorf("unable to encode record: %w", err)
	}

	var content map[string]any
	if err := json.Unmarshal(doc, &content); err != nil {
		return nil, fmt.Errorf("unable to decode record: %w", err)
	}
	return content, nil
}

// printFields writes r as key: value lines in key order
func printFields(w io.Writer, r archive.Result) {
	if len(r) == 0 {
		fmt.Fprintln(w, "No data")
		return
	}
	for _, k := range slices.Sorted(maps.Keys(r)) {
		switch v := r[k].(type) {
		case map[string]any, []any:
			b, _ := json.Marshal(v)
			fmt.Fprintf(w, "%s: %s\n", k, b)
		default:
			fmt.Fprintf(w, "%s: %s\n", k, r.String(k))
		}
	}
}
