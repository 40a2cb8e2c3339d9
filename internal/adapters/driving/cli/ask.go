package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askPassages bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested documents",
	Long: `Retrieves candidate passages by vector search, reranks them with a
cross-encoder and asks the language model to answer from the best ones.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askPassages, "passages", "p", false, "print the passages the answer was built from")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	answer, err := app.Retrieval.Answer(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(strings.TrimSpace(answer.Text))
	if askPassages {
		cmd.Println()
		cmd.Println("Passages:")
		for i, p := range answer.Passages {
			cmd.Printf("  [%d] (%.2f) %s\n", i+1, p.Score, snippet(p.Text, 160))
		}
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// snippet collapses whitespace and truncates text to max runes.
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
