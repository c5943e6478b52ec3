package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/services/config"
	"github.com/de-tools/fraud-atlas/pkg/services/snapshot"
	"github.com/de-tools/fraud-atlas/pkg/store/client"
	"github.com/de-tools/fraud-atlas/pkg/store/sqlite"
	snapshotstore "github.com/de-tools/fraud-atlas/pkg/store/sqlite/snapshot"
	"github.com/rs/zerolog"
)

type ServiceFactory func(cfg client.Config) (client.Service, error)

func NewClientService(cfg client.Config) (client.Service, error) {
	return client.NewClient(cfg)
}

// Runtime is filled in by the root command before any subcommand runs.
type Runtime struct {
	Settings   *config.Settings
	Location   *time.Location
	NewService ServiceFactory
}

// Connect resolves the endpoint and builds a service for it. No request is made.
func (rt *Runtime) Connect(ctx context.Context) (client.Service, domain.EndpointProfile, error) {
	endpoint, err := rt.Settings.Endpoint(ctx)
	if err != nil {
		return nil, endpoint, fmt.Errorf("failed to resolve endpoint: %w", err)
	}

	factory := rt.NewService
	if factory == nil {
		factory = NewClientService
	}
	svc, err := factory(client.Config{
		BaseURL:         endpoint.BaseURL,
		Timeout:         rt.Settings.Service.Timeout,
		TrainingTimeout: rt.Settings.Service.TrainingTimeout,
		Location:        rt.Location,
	})
	if err != nil {
		return nil, endpoint, fmt.Errorf("failed to create service client: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("profile", endpoint.Name).
		Str("base_url", endpoint.BaseURL).
		Msg("service endpoint resolved")
	return svc, endpoint, nil
}

// Repository builds a snapshot repository, backed by the sqlite cache when cache.path is set.
// The returned func releases the cache.
func (rt *Runtime) Repository(lister snapshot.Lister, endpoint domain.EndpointProfile) (*snapshot.Repository, func(), error) {
	if rt.Settings.Cache.Path == "" {
		return snapshot.NewRepository(lister), func() {}, nil
	}

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: rt.Settings.Cache.Path})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	store, err := snapshotstore.NewStore(db, endpoint.Name)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	repo := snapshot.NewRepository(lister, snapshot.WithStore(store, rt.Settings.Cache.Keep))
	return repo, func() {
		repo.Close()
		_ = db.Close()
	}, nil
}
