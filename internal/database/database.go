// Package database opens the configured store and exposes its repositories.
package database

import (
	"context"
	"fmt"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/domain"
	domainAdmin "rigor-logistics/internal/domain/admin"
	domainLocation "rigor-logistics/internal/domain/location"
	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/infrastructure/database/memory"
	"rigor-logistics/internal/infrastructure/database/postgres"
	"rigor-logistics/internal/logger"

	"go.uber.org/zap"
)

// Repositories is one store's set of repositories sharing a TxManager.
type Repositories struct {
	Tx             domain.TxManager
	Admins         domainAdmin.Repository
	Truckers       domainTrucker.Repository
	Trucks         domainTruck.Repository
	Trips          domainTrip.Repository
	Locations      domainLocation.Repository
	Reimbursements domainReimbursement.Repository

	health func() error
	close  func() error
}

func (r *Repositories) Health() error {
	if r.health == nil {
		return nil
	}
	return r.health()
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

func NewDatabase(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory store, data is lost on restart")
		return NewMemory(memory.NewStore()), nil
	case "postgres", "":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func NewPostgres(db *postgres.DB) *Repositories {
	logger.Debug("Postgres repositories ready", zap.String("driver", "postgres"))
	return &Repositories{
		Tx:             postgres.NewTxManager(db),
		Admins:         postgres.NewAdminRepository(db),
		Truckers:       postgres.NewTruckerRepository(db),
		Trucks:         postgres.NewTruckRepository(db),
		Trips:          postgres.NewTripRepository(db),
		Locations:      postgres.NewLocationRepository(db),
		Reimbursements: postgres.NewReimbursementRepository(db),
		health:         db.Health,
		close:          db.Close,
	}
}

func NewMemory(store *memory.Store) *Repositories {
	return &Repositories{
		Tx:             store,
		Admins:         memory.NewAdminRepository(store),
		Truckers:       memory.NewTruckerRepository(store),
		Trucks:         memory.NewTruckRepository(store),
		Trips:          memory.NewTripRepository(store),
		Locations:      memory.NewLocationRepository(store),
		Reimbursements: memory.NewReimbursementRepository(store),
		health:         store.Health,
		close:          store.Close,
	}
}
