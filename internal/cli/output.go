package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/saeedalam/stacksignal/internal/report"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// outputFlags are shared by commands that print a Result
type outputFlags struct {
	format string
	file   string
}

func (o *outputFlags) register(cmd *cobra.Command, withFile bool) {
	cmd.Flags().StringVarP(&o.format, "format", "f", string(report.Text),
		"output format: "+strings.Join(report.Formats(), ", "))
	if withFile {
		cmd.Flags().StringVarP(&o.file, "output", "o", "", "save results to a file")
	}
}

// writeResult renders res and turns a failed Result into the command error.
// Text output of a failure is left to the error printer; JSON and YAML carry
// the failure envelope on stdout as well.
func writeResult[T any](cmd *cobra.Command, o outputFlags, res types.Result[T]) error {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}

	if res.OK() || format != report.Text {
		if err := render(cmd, o, format, res); err != nil {
			return err
		}
	}

	if !res.OK() {
		return res.Err()
	}
	return nil
}

func render[T any](cmd *cobra.Command, o outputFlags, format report.Format, res types.Result[T]) error {
	if o.file == "" {
		return report.Render(cmd.OutOrStdout(), format, res)
	}

	f, err := os.Create(o.file)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", o.file, err)
	}
	defer f.Close()

	// files never carry escape codes; restore the terminal setting afterwards
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	if err := report.Render(f, format, res); err != nil {
		return err
	}
	if res.OK() {
		fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", o.file)
	}
	return nil
}
