package commands

import (
	"fmt"

	"github.com/de-tools/fraud-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	runtime *Runtime
}

func NewProfilesCmd(runtime *Runtime) *cobra.Command {
	pc := &ProfilesCmd{runtime: runtime}
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the configured service endpoints",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	path := pc.runtime.Settings.Service.ProfilesPath

	registry, err := config.NewRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles, err := registry.GetProfiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No profiles found in %s\n", path)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profiles in %s:\n", path)
	for _, p := range profiles {
		marker := " "
		if p.Name == pc.runtime.Settings.Service.Profile {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", marker, p.Name, p.BaseURL)
	}
	return nil
}
