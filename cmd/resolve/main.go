package resolve

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/nhsdigital/cgp-client/cmd/cliopts"
	"github.com/nhsdigital/cgp-client/drs"
	"github.com/spf13/cobra"
)

var (
	opts         cliopts.Options
	expectedHash string
	accessType   string
)

// Cmd line declaration
var Cmd = &cobra.Command{
	Use:   "resolve <drs-url | object-id>",
	Short: "Fetch a DRS object and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cgp, _, err := opts.NewClient()
		if err != nil {
			return err
		}

		obj, err := cgp.ResolveObject(args[0], expectedHash)
		if err != nil {
			return err
		}

		if accessType != "" {
			accessURL, err := cgp.DRS.SelectAccessURL(obj, drs.AccessMethodType(accessType))
			if err != nil {
				return err
			}
			fmt.Println(accessURL.URL)
			return nil
		}

		out, err := sonic.ConfigDefault.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", out)
		return nil
	},
}

func init() {
	opts.AddFlags(Cmd)
	Cmd.Flags().StringVar(&expectedHash, "hash", "", "expected md5 checksum of the object")
	Cmd.Flags().StringVar(&accessType, "access", "", "print a fetchable URL for this access method type (e.g. s3, htsget)")
}
