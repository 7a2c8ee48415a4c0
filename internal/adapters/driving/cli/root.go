// Package cli is the driving adapter that exposes the pipeline as a
// command line interface. Commands translate arguments and flags into
// core service calls; all domain logic stays in the services.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	blobsqlite "github.com/custodia-labs/ragstack/internal/adapters/driven/blobstore/sqlite"
	cachemem "github.com/custodia-labs/ragstack/internal/adapters/driven/cache/memory"
	cacheredis "github.com/custodia-labs/ragstack/internal/adapters/driven/cache/redis"
	configfile "github.com/custodia-labs/ragstack/internal/adapters/driven/config/file"
	embollama "github.com/custodia-labs/ragstack/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/ragstack/internal/adapters/driven/embedding/openai"
	llmollama "github.com/custodia-labs/ragstack/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/ragstack/internal/adapters/driven/llm/openai"
	indexmem "github.com/custodia-labs/ragstack/internal/adapters/driven/vectorindex/memory"
	indexpinecone "github.com/custodia-labs/ragstack/internal/adapters/driven/vectorindex/pinecone"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
	"github.com/custodia-labs/ragstack/internal/core/ports/driving"
	"github.com/custodia-labs/ragstack/internal/core/services"
	"github.com/custodia-labs/ragstack/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by setup and consumed by the commands. Tests inject
// their own.
var (
	documentService  driving.DocumentService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	chatService      driving.ChatService
)

var (
	configPath  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "ragstack",
	Short: "Retrieval-augmented question answering over your documents",
	Long: `ragstack ingests tabular documents into a vector index and answers
questions grounded strictly in the retrieved content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// The version command works without any backing services.
		if cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ragstack/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the configuration, constructs the driven adapters it
// selects and wires the core services. Called once per invocation.
func setup() error {
	if documentService != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := configfile.Load(path)
	if err != nil {
		return err
	}

	logger.SetVerbose(verboseFlag || cfg.Verbose)
	logger.Debug("Loaded configuration from %s", path)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	index, err := buildIndex(cfg)
	if err != nil {
		return err
	}
	cache := buildCache(cfg)
	blobs, err := blobsqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	loader := services.NewLoader(index, blobs)
	retrieval := services.NewRetrievalService(embedder, index, services.RetrievalConfig{
		TopK:           cfg.Retrieval.TopK,
		MinScore:       cfg.Retrieval.MinScore,
		ElbowThreshold: cfg.Retrieval.ElbowThreshold,
	})

	documentService = services.NewDocumentService(blobs, loader)
	ingestService = services.NewIngestService(
		services.NewExtractor(blobs),
		services.NewTransformer(embedder),
		loader,
	)
	retrievalService = retrieval
	chatService = services.NewChatService(retrieval, generator, embedder, cache, services.ChatConfig{
		AnswerTTL: time.Duration(cfg.Chat.AnswerTTLSeconds) * time.Second,
	})

	return nil
}

func buildEmbedder(cfg configfile.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case configfile.ProviderOpenAI:
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	case configfile.ProviderOllama:
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func buildGenerator(cfg configfile.Config) (driven.GenerativeService, error) {
	switch cfg.LLM.Provider {
	case configfile.ProviderOpenAI:
		return llmopenai.NewGenerativeService(llmopenai.Config{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.Chat.MaxTokens,
		})
	case configfile.ProviderOllama:
		return llmollama.NewGenerativeService(llmollama.Config{
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.Chat.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func buildIndex(cfg configfile.Config) (driven.VectorIndex, error) {
	switch cfg.Index.Provider {
	case configfile.ProviderPinecone:
		return indexpinecone.NewIndex(indexpinecone.Config{
			Host:      cfg.Index.Host,
			APIKey:    cfg.Index.APIKey,
			Namespace: cfg.Index.Namespace,
		})
	case configfile.ProviderMemory:
		return indexmem.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unknown index provider %q", cfg.Index.Provider)
	}
}

func buildCache(cfg configfile.Config) driven.Cache {
	if cfg.Cache.Provider == configfile.ProviderRedis {
		return cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
	}
	return cachemem.NewCache()
}
