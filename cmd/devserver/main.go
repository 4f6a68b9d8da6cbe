package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/api"
	"github.com/rryowa/foodsafer/internal/controller"
	"github.com/rryowa/foodsafer/internal/migrations"
	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/service"
	"github.com/rryowa/foodsafer/internal/storage"
	"github.com/rryowa/foodsafer/internal/storage/memory"
	"github.com/rryowa/foodsafer/internal/storage/postgres"
	"github.com/rryowa/foodsafer/internal/storage/redis"
	"github.com/rryowa/foodsafer/internal/util"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger(util.GetLogLevel())
	defer logger.Sync() //nolint:errcheck // stderr sync errors are noise

	devUser := util.NewDevUserConfig()
	passwordHash, err := service.HashPassword(devUser.Password)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	var (
		cleanupFuncs []func()
		users        storage.UserRepository
		sessions     storage.SessionRepository
		tokenStorage storage.TokenStorage
	)

	if dbCfg := util.NewDBConfig(); dbCfg != nil {
		db, dbCleanup, err := util.NewDBConnection(logger, dbCfg)
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, dbCleanup)

		if err := migrations.RunMigrations(db, logger); err != nil {
			logger.Fatal(zap.Error(err))
		}

		pg := postgres.NewStorage(db)
		if err := pg.EnsureUser(ctx, devUser.Email, passwordHash); err != nil {
			logger.Fatal(zap.Error(err))
		}
		users, sessions = pg, pg
	} else {
		logger.Info("DATABASE_URL not set, keeping users and sessions in memory")
		users = memory.NewUserRepository(models.User{ID: 1, Email: devUser.Email, PasswordHash: passwordHash})
		sessions = memory.NewSessionRepository(logger)
	}

	if redisCfg := util.NewRedisConfig(); redisCfg != nil {
		redisClient, redisCleanup, err := util.NewRedisClient(ctx, logger, redisCfg)
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, redisCleanup)
		tokenStorage = redis.NewTokenStorage(redisClient)
	} else {
		tokenStorage = memory.NewTokenStorage()
	}

	tokenService := service.NewTokenService(util.NewTokenConfig(), tokenStorage)
	authService := service.NewAuthService(tokenService, users, sessions, logger)

	ctrl := controller.NewController(logger, authService)

	apiServer, err := api.NewAPI(ctrl, authService, logger, util.NewServerConfig(), cleanupFuncs)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	apiServer.Run(ctx)
}
