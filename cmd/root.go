package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/judgecore/judgecore/internal/sandbox"
)

// Execute runs the command using program args and exits on failure. It takes
// a shortcut before cobra parsing proper: a process re-exec'd by
// sandbox.Spawn never reaches cobra at all.
func Execute() {
	if len(os.Args) > 2 && os.Args[1] == sandbox.BootstrapArg {
		sandbox.RunBootstrap(os.Args[2])
		os.Exit(sandbox.ChildFailedPreExecStatus) // unreachable unless RunBootstrap's exec somehow returns
	}
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judgecore",
		Short: "Sandboxed execution core for an online judge",
	}
	cmd.AddCommand(runCmd(), interactCmd(), serveCmd(), genCertCmd(), diagCmd())
	return cmd
}
