// renderer is the command-line front end for harpoon.  It renders built-in or
// JSON scenes into a resumable sample accumulator and publishes PNGs.
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var cmdRoot = &cobra.Command{
	Use:          "renderer",
	Short:        "Offline path tracer",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// glog's flags were already parsed by cobra; this only marks the
		// standard flag set as parsed.
		flag.CommandLine.Parse([]string{})
	},
}

func init() {
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	cmdRoot.AddCommand(cmdRender, cmdScenes, cmdInspect, cmdConvert)

	if err := cmdRoot.Execute(); err != nil {
		glog.Exitf("Error: %v", err)
	}
}
