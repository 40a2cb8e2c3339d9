package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents",
	Long: `Read, chunk and embed the given files and store them in the vector store.

Supported formats: .docx, .xlsx, .html, .md, .txt and .eml. The whole batch is
rejected when any file has an unsupported format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	files := make([]domain.FileUpload, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, domain.FileUpload{Filename: filepath.Base(path), Content: content})
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	result, err := app.Retrieval.Ingest(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d file(s): %d pages, %d chunks\n", len(files), result.Pages, result.Chunks)
	return nil
}
