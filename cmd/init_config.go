package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/scribe/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write the default configuration, including the built-in languages and the
resolved theme colors, to path (default: ./scribe.toml).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.FileName
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
