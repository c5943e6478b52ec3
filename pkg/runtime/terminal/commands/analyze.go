package commands

import (
	"errors"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fraud-atlas/pkg/services/workflow"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	runtime  *Runtime
	reporter *export.Reporter
}

func NewAnalyzeCmd(runtime *Runtime, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{runtime: runtime, reporter: reporter}
	return &cobra.Command{
		Use:   "analyze <transaction-id>",
		Short: "Score a transaction for fraud",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.run,
	}
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, _, err := ac.runtime.Connect(ctx)
	if err != nil {
		return err
	}

	analysis := workflow.NewAnalysis(svc)
	defer analysis.Close()

	result, err := analysis.Analyze(ctx, args[0])
	if err != nil {
		if msg := analysis.Status().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	return ac.reporter.Handle(adapters.MapAnalysisToReport(result))
}
