package cmd

import (
	logpkg "github.com/bnema/artsel/internal/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "artsel",
		Short:         "artsel: browse the Art Institute of Chicago catalog and select artworks across pages",
		Long:          "artsel pages through the Art Institute of Chicago artworks API one server page at a time and keeps a selection of artworks that survives page changes.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $HOME/.config/artsel/config.toml)")
	logpkg.RegisterLoggingFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newPageCmd(opts),
		newReplayCmd(opts),
		newBrowseCmd(opts),
	)

	return rootCmd
}
