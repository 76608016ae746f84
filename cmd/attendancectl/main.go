// Command attendancectl manages attendance datasets and sends interaction
// commands to a running service.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"attendance/internal/env"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "attendancectl",
		Short:        "Manage attendance map datasets and commands",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			env.LoadEnv()
		},
	}
	root.AddCommand(newValidateCmd(), newUploadCmd(), newCommandCmd("checkin"), newCommandCmd("select"))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
