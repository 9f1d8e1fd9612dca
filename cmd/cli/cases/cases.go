package cases

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/EnesGoktekin/detective-ai/internal/repositories"
	"github.com/EnesGoktekin/detective-ai/internal/sqlite"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case authoring",
}

func init() {
	Ingest.Flags().String("sqlite-url", "", "SQLite URL, defaults to $DETECTIVE_AI_SQLITE_URL")
}

var Validate = &cobra.Command{
	Use:     "validate bundle.yaml...",
	GroupID: "cases",
	Short:   "Validate case bundles",
	Long:    "Parses YAML case bundles and checks their referential integrity without touching the database",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false
		for _, path := range args {
			if !checkBundle(cmd.OutOrStdout(), path) {
				failed = true
			}
		}
		if failed {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

var Ingest = &cobra.Command{
	Use:     "ingest bundle.yaml...",
	GroupID: "cases",
	Short:   "Ingest case bundles into the database",
	Long:    "Validates YAML case bundles and upserts them into the SQLite database the server reads from",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// Validate everything before writing anything, so a bad bundle in the
		// middle of the list cannot leave a partial ingest behind.
		bundles := make([]*Bundle, 0, len(args))
		for _, path := range args {
			if !checkBundle(out, path) {
				return fmt.Errorf("validation failed")
			}
			bundle, err := LoadBundle(path)
			if err != nil {
				return err
			}
			bundles = append(bundles, bundle)
		}

		url, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			return err
		}
		if url == "" {
			url = os.Getenv("DETECTIVE_AI_SQLITE_URL")
		}
		if url == "" {
			return fmt.Errorf("no SQLite URL: pass --sqlite-url or set DETECTIVE_AI_SQLITE_URL")
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		dbs, err := sqlite.NewDatabase(cmd.Context(), url, logger)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		writer := repositories.NewCaseWriter(dbs, logger)
		for _, bundle := range bundles {
			if err = writer.Upsert(cmd.Context(), bundle.ToCase()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "ingested %s\n", bundle.ID)
		}
		return nil
	},
}

// checkBundle loads and validates one bundle, printing every problem found.
func checkBundle(out io.Writer, path string) bool {
	bundle, err := LoadBundle(path)
	if err != nil {
		_, _ = fmt.Fprintf(out, "%s: %v\n", path, err)
		return false
	}
	problems := bundle.Validate()
	for _, problem := range problems {
		_, _ = fmt.Fprintf(out, "%s: %v\n", path, problem)
	}
	if len(problems) > 0 {
		return false
	}
	_, _ = fmt.Fprintf(out, "%s: ok\n", path)
	return true
}
