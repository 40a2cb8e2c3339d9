package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the AI providers, vector store and retrieval options.

Values are stored in config.toml; DOCQA_* environment variables override them.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used for documents and questions.

Changing the model resizes the vector collection; re-ingest documents afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the language model that writes answers.`,
	RunE:  runSettingsLLM,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and ping the providers",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

// field is one "  Label: value" line of settings show.
type field struct {
	label string
	value any
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settingsService, err := openSettings()
	if err != nil {
		return err
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printSection(cmd, "Server",
		field{"Address", s.Server.Addr},
		field{"Dev mode", s.Server.DevMode},
		field{"Allowed origins", strings.Join(s.Server.AllowedOrigins, ", ")},
		field{"Request timeout", s.Server.RequestTimeout},
	)

	embedding := []field{
		{"Provider", s.Embedding.Provider.Description()},
		{"Model", s.Embedding.Model},
	}
	if s.Embedding.Provider.IsLocal() {
		embedding = append(embedding, field{"Base URL", s.Embedding.BaseURL})
	}
	embedding = append(embedding, apiKeyFields(s.Embedding.Provider, s.Embedding.APIKey)...)
	printSection(cmd, "Embedding", append(embedding, field{"Status", configuredStatus(s.Embedding.IsConfigured())})...)

	llm := []field{
		{"Provider", s.LLM.Provider.Description()},
		{"Model", s.LLM.Model},
	}
	if s.LLM.Provider == domain.AIProviderOllama {
		llm = append(llm, field{"Base URL", s.LLM.BaseURL}, field{"Context window", s.LLM.ContextWindow})
	}
	llm = append(llm, apiKeyFields(s.LLM.Provider, s.LLM.APIKey)...)
	printSection(cmd, "LLM", append(llm, field{"Status", configuredStatus(s.LLM.IsConfigured())})...)

	reranker := []field{{"Provider", s.Reranker.Provider}}
	if s.Reranker.Provider == domain.RerankerTEI {
		reranker = append(reranker, field{"Base URL", s.Reranker.BaseURL}, field{"Model", s.Reranker.Model})
	}
	printSection(cmd, "Reranker", reranker...)

	store := []field{
		{"Provider", s.VectorStore.Provider},
		{"Collection", s.VectorStore.Collection},
		{"Dimensions", s.VectorStore.Dimensions},
	}
	if s.VectorStore.URL != "" {
		store = append(store, field{"URL", s.VectorStore.URL})
	}
	printSection(cmd, "Vector Store", store...)

	printSection(cmd, "Retrieval",
		field{"Chunk size", s.Retrieval.ChunkSize},
		field{"Candidates", s.Retrieval.CandidateK},
		field{"Context passages", s.Retrieval.ContextK},
	)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docqa settings embedding' or 'docqa settings llm' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func printSection(cmd *cobra.Command, title string, fields ...field) {
	cmd.Printf("[%s]\n", title)
	for _, f := range fields {
		cmd.Printf("  %s: %v\n", f.label, f.value)
	}
	cmd.Println()
}

func apiKeyFields(provider domain.AIProvider, key string) []field {
	switch {
	case !provider.RequiresAPIKey():
		return nil
	case key == "":
		return []field{{"API Key", "(not set)"}}
	default:
		return []field{{"API Key", maskAPIKey(key)}}
	}
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	settingsService, err := openSettings()
	if err != nil {
		return err
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), providerPrompt{
		title:    "Select Embedding Provider",
		options:  domain.AllEmbeddingProviders(),
		defaults: domain.DefaultEmbeddingModels(),
		apply:    settingsService.SetEmbeddingProvider,
		validate: settingsService.Validate,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	settingsService, err := openSettings()
	if err != nil {
		return err
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), providerPrompt{
		title:    "Select LLM Provider",
		options:  domain.AllLLMProviders(),
		defaults: domain.DefaultLLMModels(),
		apply:    settingsService.SetLLMProvider,
		validate: settingsService.Validate,
	})
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	settingsService, err := openSettings()
	if err != nil {
		return err
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.Validate(); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

// providerPrompt describes one interactive provider selection.
type providerPrompt struct {
	title    string
	options  []domain.AIProvider
	defaults map[domain.AIProvider]string
	apply    func(provider domain.AIProvider, model, apiKey string) error
	validate func() error
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Println(p.title)
	for i, opt := range p.options {
		cmd.Printf("  %d. %s\n", i+1, opt.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.options), 1)
	selected := p.options[idx-1]

	defaultModel := p.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		key, err := readPassword(cmd, reader)
		if err != nil {
			return fmt.Errorf("read API key: %w", err)
		}
		if key == "" {
			return errors.New("API key is required for this provider")
		}
		apiKey = key
	}

	if err := p.apply(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
