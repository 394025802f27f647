package download

import (
	"fmt"
	"os"

	"github.com/nhsdigital/cgp-client/cmd/cliopts"
	"github.com/nhsdigital/cgp-client/drs"
	"github.com/spf13/cobra"
)

var (
	opts           cliopts.Options
	output         string
	forceOverwrite bool
	expectedHash   string
)

// Cmd line declaration
var Cmd = &cobra.Command{
	Use:   "download <drs-url>",
	Short: "Download the data for a DRS object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cgp, _, err := opts.NewClient()
		if err != nil {
			return err
		}

		result, err := cgp.DownloadFile(args[0], drs.DownloadOptions{
			Output:         output,
			ForceOverwrite: forceOverwrite,
			ExpectedHash:   expectedHash,
			Progress:       true,
		})
		if err != nil {
			return err
		}
		if result.Skipped {
			fmt.Fprintf(os.Stderr, "skipped %s\n", result.Path)
			return nil
		}
		fmt.Fprintf(os.Stderr, "downloaded %s\n", result.Path)
		return nil
	},
}

func init() {
	opts.AddFlags(Cmd)
	Cmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to the DRS object name)")
	Cmd.Flags().BoolVarP(&forceOverwrite, "force", "f", false, "overwrite existing files without prompting")
	Cmd.Flags().StringVar(&expectedHash, "hash", "", "expected md5 checksum of the object")
}
