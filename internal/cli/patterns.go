package cli

import (
	"github.com/spf13/cobra"

	"github.com/saeedalam/stacksignal/pkg/types"
)

var patternsOut outputFlags

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the detection and intent patterns",
	Long: `List the technology file patterns, framework keywords, action,
technology and focus-area patterns, constraint extractors and related
technology groups used by analyze and process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return writeResult(cmd, patternsOut, types.Success(a.registry.Catalog(), nil))
	},
}

func init() {
	patternsOut.register(patternsCmd, false)
}
