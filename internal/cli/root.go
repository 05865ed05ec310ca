package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/findings/internal/buildinfo"
	"github.com/ppiankov/findings/internal/logging"
	"github.com/ppiankov/findings/internal/model"
	"github.com/ppiankov/findings/internal/session"
	"github.com/ppiankov/findings/internal/storage"
)

var (
	cfgFile      string
	verbose      bool
	storageFlag  string
	stateDirFlag string
	logLevelFlag string

	logger = logging.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "findings",
	Short: "Findings - field client for geotagged litter findings",
	Long: `findings is the command-line client for the findings data-entry service.

It keeps your session (token and username) across invocations, and converts
finding records between the legacy flat layout, the entries layout and the
hybrid layout consumed by simple display surfaces.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("findings %s\n", buildinfo.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.findings/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "session storage backend (file, sqlite, memory, none)")
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "directory holding session state")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage"))
	_ = viper.BindPFlag("storage.dir", rootCmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".findings"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FINDINGS_* (FINDINGS_STORAGE_BACKEND, ...)
	viper.SetEnvPrefix("FINDINGS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and Unmarshal see them
func setDefaults(cfg *model.Config) {
	viper.SetDefault("storage.backend", cfg.Storage.Backend)
	viper.SetDefault("storage.dir", cfg.Storage.Dir)
	viper.SetDefault("storage.cache", cfg.Storage.Cache)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
	viper.SetDefault("build.asset", cfg.Build.Asset)
	viper.SetDefault("build.placeholder", cfg.Build.Placeholder)
	viper.SetDefault("build.version_env", cfg.Build.VersionEnv)
}

// loadConfig merges defaults, config file, env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openSession builds the session for this invocation; callers must Close it
func openSession() (*session.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := session.Open(cfg.Storage, storage.DetectEnvironment(os.Getenv), logger)
	if verbose && !s.Persistent() {
		fmt.Fprintf(os.Stderr, "⚠️  Session storage unavailable; state will not be kept\n")
	}
	return s, nil
}
