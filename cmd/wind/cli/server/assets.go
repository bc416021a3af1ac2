package server

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mwantia/wind/internal/agent"
	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/assets"
	"github.com/mwantia/wind/pkg/log"
)

func NewAssetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Static asset pipeline",
	}

	cmd.AddCommand(newAssetsBuildCommand())

	return cmd
}

func newAssetsBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle, minify and upload CSS and JS referenced by the base template",
		Long: `Bundle, minify and upload CSS and JS referenced by the base template.

Elements with class "minify-css" / "minify-js" are concatenated in document
order, minified, stored as <ext>/<md5>.min.<ext> and the element with class
"minified-css" / "minified-js" is pointed at the new bundle. Without flags
both types are built.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			css, _ := cmd.Flags().GetBool("css")
			js, _ := cmd.Flags().GetBool("js")

			var exts []string
			if css || !js {
				exts = append(exts, "css")
			}
			if js || !css {
				exts = append(exts, "js")
			}

			ctx := cmd.Context()
			store, err := agent.OpenBlobStore(ctx, cfg.Blob)
			if err != nil {
				return err
			}

			logger := log.NewLoggerService("wind", cfg.Log)
			bundler := assets.NewBundler(cfg.Assets, afero.NewOsFs(), store, logger)

			bundles, err := bundler.Build(ctx, exts...)
			if err != nil {
				return err
			}

			for _, b := range bundles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d files, %d bytes)\n", b.Ext, b.URL, len(b.Files), b.Size)
			}
			return nil
		},
	}

	cmd.Flags().Bool("css", false, "only build the CSS bundle")
	cmd.Flags().Bool("js", false, "only build the JS bundle")

	return cmd
}
