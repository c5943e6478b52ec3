package commands

import (
	"fmt"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fraud-atlas/pkg/services/table"
	"github.com/spf13/cobra"
)

type ListCmd struct {
	page     int
	pageSize int
	runtime  *Runtime
	reporter *export.PageReporter
}

func NewTransactionsCmd(runtime *Runtime, reporter *export.PageReporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Work with the transaction table",
	}
	cmd.AddCommand(newListCmd(runtime, reporter))
	return cmd
}

func newListCmd(runtime *Runtime, reporter *export.PageReporter) *cobra.Command {
	lc := &ListCmd{runtime: runtime, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of transactions",
		Args:  cobra.NoArgs,
		RunE:  lc.run,
	}

	cmd.Flags().IntVar(&lc.page, "page", 1, "Page to show, starting at 1")
	cmd.Flags().IntVar(&lc.pageSize, "page-size", 0,
		fmt.Sprintf("Rows per page, one of %v (default is table.page_size)", table.PageSizeOptions))

	return cmd
}

func (lc *ListCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, endpoint, err := lc.runtime.Connect(ctx)
	if err != nil {
		return err
	}
	repo, release, err := lc.runtime.Repository(svc, endpoint)
	if err != nil {
		return err
	}
	defer release()

	if err := repo.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	state := table.NewState(lc.runtime.Settings.Table.PageSize)
	if cmd.Flags().Changed("page-size") {
		if err := state.SetPageSize(lc.pageSize); err != nil {
			return err
		}
	}
	detach := state.Attach(repo)
	defer detach()

	state.SetPage(lc.page - 1)

	return lc.reporter.Handle(adapters.MapPageViewToApi(state.View(), lc.runtime.Location))
}
