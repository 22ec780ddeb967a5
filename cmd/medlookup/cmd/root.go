package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mBrond/chat-medicamentos/internal/app"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	"github.com/mBrond/chat-medicamentos/pkg/config"
)

var (
	datasetFlag   string
	directoryFlag string
	logLevelFlag  string
	jsonFlag      bool
)

var rootCmd = &cobra.Command{
	Use:           "medlookup",
	Short:         "Medication lookup operator tool",
	Long:          "Query the medication dataset the way the chat does, validate datasets and evaluate resolution quality.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&datasetFlag, "dataset", "", "dataset URI (overrides DATASET_URI)")
	rootCmd.PersistentFlags().StringVar(&directoryFlag, "directory", "", "facility directory path (overrides DIRECTORY_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "error", "log level")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(evalCmd)
}

// loadConfig reads the environment and applies the persistent flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if datasetFlag != "" {
		cfg.Dataset.URI = datasetFlag
	}
	if directoryFlag != "" {
		cfg.Directory.Path = directoryFlag
	}
	// one-shot commands never reload
	cfg.Dataset.Watch = false
	cfg.Dataset.ReloadInterval = 0

	observability.InitLogger("medlookup", cfg.Logging.Environment, logLevelFlag)
	return cfg, cfg.Validate()
}

func openApp(opts app.Options) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, nil, opts)
}
