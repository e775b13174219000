package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/judgecore/judgecore/internal/judge"
)

func interactCmd() *cobra.Command {
	var program, interactor, checker, input, answer, workDir string
	var limits limitFlags
	cmd := &cobra.Command{
		Use:          "interact -- PROGRAM [ARGS...]",
		Short:        "Judge a single interactive submission directly, without the gRPC or HTTP surfaces",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if program == "" {
				return fmt.Errorf("--program required")
			} else if interactor == "" {
				return fmt.Errorf("--interactor required")
			} else if checker == "" {
				return fmt.Errorf("--checker required")
			} else if input == "" {
				return fmt.Errorf("--input required")
			} else if answer == "" {
				return fmt.Errorf("--answer required")
			} else if workDir == "" {
				return fmt.Errorf("--transcript required")
			}
			task := judge.InteractiveTask{
				ContestantProgram: program,
				ContestantArgs:    append([]string{program}, args...),
				ContestantLimits:  limits.toConfig(),
				InteractorProgram: interactor,
				InputPath:         input,
				AnswerPath:        answer,
				CheckerProgram:    checker,
				WorkDir:           workDir,
			}
			result, err := judge.RunInteractive(task)
			if err != nil {
				return fmt.Errorf("running interactive judge: %w", err)
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&program, "program", "", "Required contestant program path")
	cmd.Flags().StringVar(&interactor, "interactor", "", "Required interactor program path")
	cmd.Flags().StringVar(&checker, "checker", "", "Required checker program path")
	cmd.Flags().StringVar(&input, "input", "", "Required path to the test input")
	cmd.Flags().StringVar(&answer, "answer", "", "Required path to the reference answer")
	cmd.Flags().StringVar(&workDir, "transcript", "", "Required working directory for transcript/output/diagnostics files")
	limits.applyFlags(cmd)
	return cmd
}
