package upload

import (
	"fmt"
	"os"

	"github.com/nhsdigital/cgp-client/cmd/cliopts"
	"github.com/spf13/cobra"
)

var (
	opts     cliopts.Options
	mimeType string
)

// Cmd line declaration
var Cmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files using the DRS upload protocol",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cgp, _, err := opts.NewClient()
		if err != nil {
			return err
		}

		objects, err := cgp.UploadFiles(cmd.Context(), args, mimeType)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			fmt.Fprintf(os.Stderr, "uploaded %s as %s\n", obj.Name, obj.SelfURI)
		}
		return nil
	},
}

func init() {
	opts.AddFlags(Cmd)
	Cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type for all files (default: guess from extension)")
}
