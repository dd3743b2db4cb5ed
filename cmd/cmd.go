package cmd

import (
	"github.com/gaokaodata/crawler/cmd/extract"
	"github.com/gaokaodata/crawler/cmd/scrape"
	"github.com/gaokaodata/crawler/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer()
	},
}

func Execute() {
	var rootCmd = &cobra.Command{Use: "crawler"}
	rootCmd.AddCommand(scrape.ScrapeCmd, extract.ExtractCmd, versionCmd)
	rootCmd.Execute()
}
