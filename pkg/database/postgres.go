package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gilanghuda/crewhub-backend/pkg/logger"
)

type txContextKey string

const txKey txContextKey = "trx"

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

// DB wraps gorm so repositories pick up an open transaction from the context.
type DB struct {
	gorm *gorm.DB
}

func InitDB(cfg Config, debug bool) (*DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	g, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error opening connection")
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "error pinging database")
	}

	logger.Info("connected to the database", "host", cfg.Host, "db", cfg.Database)
	return &DB{gorm: g}, nil
}

// New wraps an already opened gorm handle.
func New(g *gorm.DB) *DB {
	return &DB{gorm: g}
}

// Conn returns the transaction bound to ctx, or a fresh session.
func (d *DB) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return d.gorm.WithContext(ctx)
}

// WithinTransaction runs fn in one database transaction. Nested calls join the outer one.
func (d *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "error closing database connection")
	}
	logger.Info("database connection closed")
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
