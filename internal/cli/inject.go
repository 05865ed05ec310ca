package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findings/internal/buildinfo"
)

var (
	placeholder  string
	versionValue string
)

// injectCmd stamps the build version into a static asset
var injectCmd = &cobra.Command{
	Use:   "inject-version [asset]",
	Short: "Replace the version placeholder in a static asset",
	Long: `Replace the first occurrence of the version placeholder in a text asset
with the build version, taken from --value, then the configured environment
variable (PUBLIC_GIT_HASH by default), then "development".

Example:
  PUBLIC_GIT_HASH=$(git rev-parse --short HEAD) findings inject-version src/app.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		asset := cfg.Build.Asset
		if len(args) == 1 {
			asset = args[0]
		}
		token := cfg.Build.Placeholder
		if placeholder != "" {
			token = placeholder
		}
		version := versionValue
		if version == "" {
			version = buildinfo.ResolveVersion(os.Getenv, cfg.Build.VersionEnv)
		}

		if err := buildinfo.Inject(asset, token, version); err != nil {
			return fmt.Errorf("inject version: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Injected git hash: %s\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(injectCmd)

	injectCmd.Flags().StringVar(&placeholder, "placeholder", "", "placeholder token (default from config: GIT_HASH_PLACEHOLDER)")
	injectCmd.Flags().StringVar(&versionValue, "value", "", "version to inject (overrides the environment)")
}
