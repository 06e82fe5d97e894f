// Package gormstorage persists garage vehicles and run results through
// gorm, backed by sqlite or postgres.
package gormstorage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/apexsim/apexsim/internal/config"
	"github.com/apexsim/apexsim/internal/model"
)

// sqlitePragmas tune the embedded database for bulk insert throughput.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
}

// OpenSQLite opens a file-backed database, or a shared in-memory one
// when path is empty.
func OpenSQLite(path string, batchSize int) (*gorm.DB, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        batchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

// OpenPostgres connects to the configured server using the simple
// protocol, which keeps the driver compatible with connection poolers.
func OpenPostgres(cfg config.PostgresConfig, batchSize int) (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=%s`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        batchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// Ping verifies the connection behind a gorm handle.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Ping()
}

// Backend persists results through an open gorm handle.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New wraps an open gorm handle.
func New(db *gorm.DB, log zerolog.Logger) *Backend {
	return &Backend{db: db, log: log}
}

// Name reports the underlying dialect, sqlite or postgres.
func (b *Backend) Name() string {
	return b.db.Dialector.Name()
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.log.Info().Str("dialect", b.Name()).Msg("Database setup complete")
	return nil
}

// Close releases the underlying connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveVehicle upserts a vehicle definition keyed by name.
func (b *Backend) SaveVehicle(v *model.GarageVehicle) error {
	created, err := v.Upsert(b.db)
	if err != nil {
		return fmt.Errorf("failed to save vehicle %s: %w", v.Name, err)
	}
	if created {
		b.log.Debug().Str("vehicle", v.Name).Msg("Vehicle added to garage")
	}
	return nil
}

// GetVehicle loads a vehicle definition by name.
func (b *Backend) GetVehicle(name string) (*model.GarageVehicle, bool, error) {
	var v model.GarageVehicle
	err := b.db.Where("name = ?", name).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

// ListVehicles returns stored vehicle names, sorted.
func (b *Backend) ListVehicles() ([]string, error) {
	var names []string
	err := b.db.Model(&model.GarageVehicle{}).Order("name").Pluck("name", &names).Error
	return names, err
}

// SaveValidationRun records a validator result.
func (b *Backend) SaveValidationRun(run *model.ValidationRun) error {
	return b.db.Create(run).Error
}

// SaveSweepRun records a sweep and its points in one batched insert.
func (b *Backend) SaveSweepRun(run *model.SweepRun) error {
	return b.db.Create(run).Error
}

// RecentValidationRuns returns up to limit results, newest first.
// A non-positive limit returns everything.
func (b *Backend) RecentValidationRuns(limit int) ([]model.ValidationRun, error) {
	var runs []model.ValidationRun
	q := b.db.Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}

// RecentSweepRuns returns up to limit sweeps with their points, newest
// first. A non-positive limit returns everything.
func (b *Backend) RecentSweepRuns(limit int) ([]model.SweepRun, error) {
	var runs []model.SweepRun
	q := b.db.Preload("Points").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}

// DumpTo vacuums the database into a standalone sqlite file, typically
// to snapshot an in-memory run before exit.
func (b *Backend) DumpTo(path string) error {
	if path == "" {
		return fmt.Errorf("sqlite file path not set")
	}
	if b.Name() != "sqlite" {
		return fmt.Errorf("dump requires a sqlite backend, have %s", b.Name())
	}

	// remove existing file if it exists
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("error removing existing DB file: %w", err)
		}
	}

	start := time.Now()
	if err := b.db.Exec("VACUUM INTO 'file:" + path + "';").Error; err != nil {
		return fmt.Errorf("error dumping DB to disk: %w", err)
	}
	b.log.Debug().Dur("duration", time.Since(start)).Msg("Dumped DB to disk")
	return nil
}
