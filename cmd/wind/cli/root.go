package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCommand(info VersionInfo) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:           "wind",
		Short:         "Wind personal blog",
		Long:          "A personal blog serving posts and photo galleries. Galleries are filled from uploaded zip archives and stored in a local directory or an S3 bucket.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(path)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&path, "config", "", "config file (default is ./config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to a rotated file")
	flags.Bool("log-json", false, "emit logs as JSON lines")
	flags.Bool("no-color", false, "Disables colored command output")

	for key, name := range map[string]string{
		"log.level":    "log-level",
		"log.file":     "log-file",
		"log.json":     "log-json",
		"log.no_color": "no-color",
	} {
		viper.BindPFlag(key, flags.Lookup(name))
	}

	cmd.Version = fmt.Sprintf("%s (%s)", info.Version, info.Commit)

	return cmd
}
