package cmd

import (
	"os"

	"github.com/nhsdigital/cgp-client/cmd/download"
	"github.com/nhsdigital/cgp-client/cmd/resolve"
	"github.com/nhsdigital/cgp-client/cmd/upload"
	"github.com/nhsdigital/cgp-client/cmd/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:           "cgp-client",
	Short:         "Client for the NHS Genomic Data Access platform",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.AddCommand(download.Cmd)
	RootCmd.AddCommand(resolve.Cmd)
	RootCmd.AddCommand(upload.Cmd)
	RootCmd.AddCommand(version.Cmd)
	RootCmd.AddCommand(genBashCompletionCmd)
}

var genBashCompletionCmd = &cobra.Command{
	Use:   "bash",
	Short: "Generate bash completions file",
	Run: func(cmd *cobra.Command, args []string) {
		RootCmd.GenBashCompletion(os.Stdout)
	},
}
