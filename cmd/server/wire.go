// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/ShIIIrochka/SecondStagePROD/internal/app"
	"github.com/ShIIIrochka/SecondStagePROD/internal/auth"
	"github.com/ShIIIrochka/SecondStagePROD/internal/company"
	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
	"github.com/ShIIIrochka/SecondStagePROD/internal/feed"
	"github.com/ShIIIrochka/SecondStagePROD/internal/jobs"
	"github.com/ShIIIrochka/SecondStagePROD/internal/platform/database"
	"github.com/ShIIIrochka/SecondStagePROD/internal/platform/logger"
	"github.com/ShIIIrochka/SecondStagePROD/internal/promo"
	"github.com/ShIIIrochka/SecondStagePROD/internal/user"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		provideDatabase,

		// Auth
		auth.NewJWTService,
		wire.Bind(new(auth.TokenService), new(*auth.JWTService)),
		auth.NewSessionStore,

		// Accounts
		user.NewGORMRepository,
		user.NewService,
		user.NewHandler,
		company.NewGORMRepository,
		company.NewService,
		company.NewHandler,

		// Promocodes
		promo.NewGORMRepository,
		promo.NewService,
		promo.NewHandler,
		feed.NewService,
		feed.NewHandler,
		jobs.NewPromoDigestJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	appLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		// Sync can fail on stderr sinks; nothing useful to do with the error.
		_ = appLogger.Sync()
	}
	return appLogger, cleanup, nil
}

func provideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		database.CloseGORMDB(db)
	}
	return db, cleanup, nil
}
