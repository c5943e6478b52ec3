package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fraud-atlas/pkg/services/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI represents the command-line interface
type CLI struct {
	viper     *viper.Viper
	runtime   *commands.Runtime
	output    io.Writer
	logOutput io.Writer
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Viper defaults to config.NewViper().
	Viper *viper.Viper
	// NewService defaults to the HTTP client.
	NewService commands.ServiceFactory
	Output     io.Writer
	LogOutput  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Viper == nil {
		opts.Viper = config.NewViper()
	}
	if opts.NewService == nil {
		opts.NewService = commands.NewClientService
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cli := &CLI{
		viper:     opts.Viper,
		runtime:   &commands.Runtime{NewService: opts.NewService},
		output:    opts.Output,
		logOutput: opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context, args []string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "fraud-atlas",
		Short:         "Fraud monitoring dashboard for the transaction analytics service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.setup(cmd, cfgFile)
		},
	}
	cmd.SetOut(cli.output)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a settings file (yaml, json or toml)")
	flags.String("base-url", "", "Analytics service base URL")
	flags.String("profile", "", "Endpoint profile to use instead of the base URL")
	flags.String("profiles-path", "", "Path to the endpoint profiles file")
	flags.String("timezone", "", "Time zone for day buckets and timestamps, e.g. UTC")
	flags.String("cache", "", "Path of the sqlite snapshot cache")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	bindings := map[string]string{
		"service.base_url":      "base-url",
		"service.profile":       "profile",
		"service.profiles_path": "profiles-path",
		"dashboard.timezone":    "timezone",
		"cache.path":            "cache",
		"log.level":             "log-level",
	}
	for key, name := range bindings {
		_ = cli.viper.BindPFlag(key, flags.Lookup(name))
	}

	reporter := export.NewReporter(cli.output)
	pages := export.NewPageReporter(cli.output)

	cmd.AddCommand(commands.NewDashboardCmd(cli.runtime, reporter))
	cmd.AddCommand(commands.NewTransactionsCmd(cli.runtime, pages))
	cmd.AddCommand(commands.NewCreateCmd(cli.runtime, pages))
	cmd.AddCommand(commands.NewAnalyzeCmd(cli.runtime, reporter))
	cmd.AddCommand(commands.NewTrainCmd(cli.runtime, reporter))
	cmd.AddCommand(commands.NewProfilesCmd(cli.runtime))

	return cmd
}

// setup loads settings once the flags are parsed and puts the logger on the command context.
func (cli *CLI) setup(cmd *cobra.Command, cfgFile string) error {
	settings, err := config.Load(cli.viper, cfgFile)
	if err != nil {
		return err
	}
	loc, err := settings.Location()
	if err != nil {
		return err
	}
	logger, err := settings.Log.Logger(cli.logOutput)
	if err != nil {
		return err
	}

	cli.runtime.Settings = settings
	cli.runtime.Location = loc
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
