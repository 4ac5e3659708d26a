package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/pagecontext-mcp/internal/config"
)

// globalFlags override values loaded from the config file and environment
type globalFlags struct {
	configPath   string
	logLevel     string
	backend      string
	dbPath       string
	provider     string
	model        string
	dimension    int
	maxTokens    int
	allowPrivate bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "pagecontext",
		Short: "Index web pages and search them semantically",
		Long: `pagecontext fetches web pages, splits them into structural chunks,
embeds the chunks and stores them in a vector index. The index can be
searched from the command line or through the MCP tools exposed by "serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.SetVersionTemplate("pagecontext {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (default ~/.pagecontext/config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.backend, "store", "", "Vector store backend: sqlite or qdrant")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path")
	pf.StringVar(&flags.provider, "provider", "", "Embedding provider: jina, openai, ollama, local")
	pf.StringVar(&flags.model, "model", "", "Embedding model")
	pf.IntVar(&flags.dimension, "dimension", 0, "Embedding dimension")
	pf.IntVar(&flags.maxTokens, "max-tokens", 0, "Maximum tokens per chunk")
	pf.BoolVar(&flags.allowPrivate, "allow-private", false, "Allow fetching loopback and private network URLs")

	root.AddCommand(
		newServeCmd(flags),
		newIndexCmd(flags),
		newSearchCmd(flags),
		newClearCmd(flags),
		newStatusCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the configuration and applies flags the user set
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("store") {
		cfg.Store.Backend = flags.backend
	}
	if changed("db") {
		cfg.Store.Path = flags.dbPath
	}
	if changed("provider") {
		cfg.Embedding.Provider = flags.provider
	}
	if changed("model") {
		cfg.Embedding.Model = flags.model
	}
	if changed("dimension") {
		cfg.Embedding.Dimension = flags.dimension
	}
	if changed("max-tokens") {
		cfg.Chunking.MaxTokens = flags.maxTokens
	}
	if changed("allow-private") {
		cfg.Fetch.AllowPrivate = flags.allowPrivate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
