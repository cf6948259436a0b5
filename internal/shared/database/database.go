package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobpilot-admin/internal/shared/config"
	"jobpilot-admin/pkg/cache"
	"jobpilot-admin/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 5 * time.Second

// DB holds the optional backing stores. Either field is nil when no
// configured component needs it.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

// InitDB connects only the stores the configuration asks for. Postgres is
// migrated before it is handed out.
func InitDB(cfg *config.Config) (*DB, error) {
	db := &DB{}

	if cfg.NeedsPostgres() {
		pg, err := openPostgres(cfg.Database, cfg.IsDevelopment())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		db.PostgreSQL = pg
		if err := Migrate(pg); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.GetDefault().Info("PostgreSQL connected",
			"host", cfg.Database.Host,
			"database", cfg.Database.Name,
			"max_open_conns", cfg.Database.MaxOpenConns,
		)
	}

	if cfg.NeedsRedis() {
		rdb, err := cache.Connect(context.Background(), cache.NewConfigFromRedisConfig(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Addr:     cfg.Redis.Addr,
		}))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		db.Redis = rdb
		logger.GetDefault().Info("Redis connected", "address", cfg.Redis.Addr)
	}

	return db, nil
}

func openPostgres(dbCfg config.DatabaseConfig, verbose bool) (*gorm.DB, error) {
	level := gormlogger.Silent
	if verbose {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.Open(dbCfg.DSN), &gorm.Config{
		Logger:      gormlogger.Default.LogMode(level),
		NowFunc:     func() time.Time { return time.Now().UTC() },
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", dbCfg.Host, dbCfg.Name, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", dbCfg.Host, err)
	}
	return gdb, nil
}

// Close releases every open connection and reports all failures together
func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close postgres: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

// HealthCheck pings every connected store
func (db *DB) HealthCheck(ctx context.Context) error {
	var errs []error

	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
