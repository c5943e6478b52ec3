package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fraud-atlas/pkg/services/workflow"
	"github.com/spf13/cobra"
)

type TrainCmd struct {
	runtime  *Runtime
	reporter *export.Reporter
}

func NewTrainCmd(runtime *Runtime, reporter *export.Reporter) *cobra.Command {
	tc := &TrainCmd{runtime: runtime, reporter: reporter}
	return &cobra.Command{
		Use:   "train",
		Short: "Train the fraud model and wait for the result",
		Args:  cobra.NoArgs,
		RunE:  tc.run,
	}
}

func (tc *TrainCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, _, err := tc.runtime.Connect(ctx)
	if err != nil {
		return err
	}

	training := workflow.NewTraining(svc, tc.runtime.Settings.Training.ProgressInterval)
	defer training.Close()

	out := cmd.OutOrStdout()
	unsubscribe := training.Subscribe(func(progress int) {
		fmt.Fprintf(out, "Training progress: %d%%\n", progress)
	})
	defer unsubscribe()

	fmt.Fprintln(out, "Training model...")
	if err := training.Start(ctx); err != nil {
		if msg := training.Status().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	status := training.Status()
	if status.Result == nil {
		return errors.New("training finished without a result")
	}
	return tc.reporter.Handle(adapters.MapTrainingToReport(*status.Result))
}
