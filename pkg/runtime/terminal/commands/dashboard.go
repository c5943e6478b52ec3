package commands

import (
	"fmt"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fraud-atlas/pkg/services/aggregate"
	"github.com/spf13/cobra"
)

type DashboardCmd struct {
	offline  bool
	runtime  *Runtime
	reporter *export.Reporter
}

func NewDashboardCmd(runtime *Runtime, reporter *export.Reporter) *cobra.Command {
	dc := &DashboardCmd{runtime: runtime, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show transaction totals, fraud rate and daily volume",
		Args:  cobra.NoArgs,
		RunE:  dc.run,
	}

	cmd.Flags().BoolVar(&dc.offline, "offline", false, "Render the last cached snapshot instead of fetching")

	return cmd
}

func (dc *DashboardCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, endpoint, err := dc.runtime.Connect(ctx)
	if err != nil {
		return err
	}
	repo, release, err := dc.runtime.Repository(svc, endpoint)
	if err != nil {
		return err
	}
	defer release()

	if dc.offline {
		found, err := repo.LoadCached(ctx)
		if err != nil {
			return fmt.Errorf("failed to load cached snapshot: %w", err)
		}
		if !found {
			return fmt.Errorf("no cached snapshot for profile %q", endpoint.Name)
		}
	} else if err := repo.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	snap, _ := repo.Snapshot()
	engine := aggregate.NewEngine(dc.runtime.Location, dc.runtime.Settings.Dashboard.SortChronological)
	agg := engine.Aggregate(snap.Transactions)

	return dc.reporter.Handle(adapters.MapAggregateToReport(endpoint.String(), snap, agg))
}
