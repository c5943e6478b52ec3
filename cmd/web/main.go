package main

import (
	"fmt"
	"os"

	"github.com/de-tools/fraud-atlas/pkg/server"
	"github.com/de-tools/fraud-atlas/pkg/services/aggregate"
	"github.com/de-tools/fraud-atlas/pkg/services/config"
	"github.com/de-tools/fraud-atlas/pkg/services/snapshot"
	"github.com/de-tools/fraud-atlas/pkg/services/table"
	"github.com/de-tools/fraud-atlas/pkg/services/workflow"
	"github.com/de-tools/fraud-atlas/pkg/store/client"
	"github.com/de-tools/fraud-atlas/pkg/store/sqlite"
	snapshotstore "github.com/de-tools/fraud-atlas/pkg/store/sqlite/snapshot"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web API for Fraud Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a settings file (yaml, json or toml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.Load(config.NewViper(), cfgPath)
	if err != nil {
		return err
	}
	loc, err := settings.Location()
	if err != nil {
		return err
	}
	logger, err := settings.Log.Logger(os.Stdout)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	endpoint, err := settings.Endpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve service endpoint: %w", err)
	}
	svc, err := client.NewClient(client.Config{
		BaseURL:         endpoint.BaseURL,
		Timeout:         settings.Service.Timeout,
		TrainingTimeout: settings.Service.TrainingTimeout,
		Location:        loc,
	})
	if err != nil {
		return fmt.Errorf("failed to create service client: %w", err)
	}
	logger.Info().Msgf("Using analytics service `%s` at %s", endpoint.Name, endpoint.BaseURL)

	var opts []snapshot.Option
	if settings.Cache.Path != "" {
		db, err := sqlite.NewDB(sqlite.Settings{
			DbPath: settings.Cache.Path,
		})
		if err != nil {
			return fmt.Errorf("failed to create sqlite instance: %w", err)
		}
		defer db.Close()

		store, err := snapshotstore.NewStore(db, endpoint.Name)
		if err != nil {
			return fmt.Errorf("failed to create snapshot store: %w", err)
		}
		opts = append(opts, snapshot.WithStore(store, settings.Cache.Keep))
		logger.Info().Msgf("Snapshot cache enabled at `%s`.", settings.Cache.Path)
	}
	repository := snapshot.NewRepository(svc, opts...)

	projection := aggregate.NewProjection(aggregate.NewEngine(loc, settings.Dashboard.SortChronological))
	projection.Attach(repository)
	defer projection.Detach()

	tableState := table.NewState(settings.Table.PageSize)
	detach := tableState.Attach(repository)
	defer detach()

	controller := workflow.NewController(ctx, svc, repository, workflow.ControllerConfig{
		ProgressInterval: settings.Training.ProgressInterval,
	})
	defer controller.Close()

	if err := controller.Init(ctx); err != nil {
		// the dashboard still serves the cached snapshot and the error
		logger.Warn().Err(err).Msg("initial transaction fetch failed")
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            settings.ServerAddr(),
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Controller: controller,
			Projection: projection,
			Table:      tableState,
			Location:   loc,
		},
	})

	return api.Start(ctx)
}
