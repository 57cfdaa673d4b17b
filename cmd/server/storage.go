package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/config"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/repository"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/repository/memory"
)

// storage bundles the repositories of the selected driver.
type storage struct {
	hotels    hotel.Repository
	customers hotel.CustomerRepository
	bookings  bookingDomain.BookingRepository
	ping      health.Check
	close     func()
}

func openStorage(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		db := memory.New()
		memory.Seed(db)
		log.Warn("using in-memory storage with demo inventory; bookings are lost on restart")
		return &storage{
			hotels:    db,
			customers: db,
			bookings:  db,
			ping:      db.Ping,
			close:     func() {},
		}, nil
	}

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Run database migrations
	if cfg.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(
			&repository.HotelModel{},
			&repository.RoomModel{},
			&repository.AmenityModel{},
			&repository.CustomerModel{},
			&repository.BookingModel{},
		); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		if err := database.EnsureBookingConstraints(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		log.Info("database migration completed (auto-migrate)")
	} else if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &storage{
		hotels:    repository.NewGormHotelRepository(db),
		customers: repository.NewGormCustomerRepository(db),
		bookings:  repository.NewGormBookingRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func() {
			if err := database.Close(db); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		},
	}, nil
}
