package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Registry lists the analytics service deployments an operator can point at.
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.EndpointProfile, error)
	GetProfile(ctx context.Context, name string) (domain.EndpointProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry reads an ini file with one section per deployment:
//
//	[staging]
//	host = https://fraud-api.staging.example.com
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.EndpointProfile, error) {
	var profiles []domain.EndpointProfile
	for _, section := range cr.cfg.Sections() {
		if !section.HasKey("host") {
			continue
		}
		profiles = append(profiles, domain.EndpointProfile{
			Name:    section.Name(),
			BaseURL: strings.TrimSpace(section.Key("host").String()),
		})
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (domain.EndpointProfile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return domain.EndpointProfile{}, fmt.Errorf("profile %s not found", name)
	}

	host := strings.TrimSpace(section.Key("host").String())
	if host == "" {
		return domain.EndpointProfile{}, fmt.Errorf("profile %s has no host", name)
	}

	return domain.EndpointProfile{
		Name:    name,
		BaseURL: host,
	}, nil
}
