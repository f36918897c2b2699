package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	httpadp "geofence-attendance/internal/adapter/http"
	"geofence-attendance/internal/adapter/middleware"
	"geofence-attendance/internal/adapter/repository/mysql"
	redisrepo "geofence-attendance/internal/adapter/repository/redis"
	"geofence-attendance/internal/config"
	"geofence-attendance/internal/domain/geofence"
	"geofence-attendance/internal/infrastructure/cache"
	"geofence-attendance/internal/infrastructure/db"
	"geofence-attendance/internal/infrastructure/logging"
	ucGeofence "geofence-attendance/internal/usecase/geofence"
	ucPolicy "geofence-attendance/internal/usecase/policy"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database unavailable")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}
	defer sqlDB.Close()

	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(gdb, cfg.DBDriver == config.DriverSQLite); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable")
	}
	defer rdb.Close()

	// repositories
	events := mysql.NewEventRepository(gdb)
	policies := redisrepo.NewPolicyCache(mysql.NewPolicyRepository(gdb), rdb, cfg.PolicyCacheTTL())
	employees := mysql.NewEmployeeRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	// usecases
	geofenceUC := ucGeofence.NewUsecase(events, policies, employees, tx, geofence.NewEvaluator(cfg.Location()))
	policyUC := ucPolicy.NewUsecase(policies)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}),
		middleware.RequestLogger(),
		echomw.Recover(),
	)

	httpadp.Router{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "db", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: cache.Ping(rdb)},
		),
		Geofence:    httpadp.NewGeofenceHandler(geofenceUC),
		Policy:      httpadp.NewPolicyHandler(policyUC),
		JWTSecret:   cfg.JWTSecret,
		Idempotency: middleware.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL()),
	}.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		log.Info().Str("addr", addr).Str("timezone", cfg.Location().String()).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
