package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage ingested documents",
	Long:  `List, remove, or clear ingested documents.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsRemoveCmd = &cobra.Command{
	Use:   "remove [filename]",
	Short: "Remove every chunk of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsRemove,
}

var documentsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored chunk",
	Long:  `Deletes the whole vector collection. Only allowed when server.dev_mode is enabled.`,
	Args:  cobra.NoArgs,
	RunE:  runDocumentsClear,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsRemoveCmd)
	documentsCmd.AddCommand(documentsClearCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	docs, err := app.Retrieval.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	cmd.Printf("Documents (%d):\n", len(docs))
	for _, d := range docs {
		cmd.Printf("  %-40s %s\n", d.Filename, d.UploadDate)
	}
	return nil
}

func runDocumentsRemove(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	if err := app.Retrieval.RemoveDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	cmd.Printf("Removed: %s\n", args[0])
	return nil
}

func runDocumentsClear(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	if err := app.Retrieval.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	cmd.Println("All documents cleared.")
	return nil
}
