// Package app wires configuration to the geography directory and the
// reference data loader shared by the server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"aldo-territoires/carbon-backend/internal/config"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// Sources is what a calculation needs to resolve and load a territory
type Sources struct {
	Directory location.Directory
	Loader    reference.Loader
	closers   []func() error
}

// Close releases the database connection, if any
func (s *Sources) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenDatabase connects to postgres through lib/pq and hands the pool to gorm
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return db, sqlDB, nil
}

// OpenSources builds the directory and loader for the configured reference source
func OpenSources(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Sources, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Reference.Source {
	case config.SourcePostgres:
		db, sqlDB, err := OpenDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		directory := location.NewRepository(db)
		loader := reference.NewRepository(db, logger)
		if cfg.Database.AutoMigrate {
			if err := directory.Migrate(ctx); err != nil {
				sqlDB.Close()
				return nil, err
			}
			if err := loader.Migrate(ctx); err != nil {
				sqlDB.Close()
				return nil, err
			}
		}
		logger.Info("Reference data served from postgres",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.DBName),
		)
		return &Sources{Directory: directory, Loader: loader, closers: []func() error{sqlDB.Close}}, nil

	case config.SourceWorkbook:
		wb, err := ReadWorkbookFile(cfg.Reference.WorkbookPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Reference data served from workbook",
			zap.String("path", cfg.Reference.WorkbookPath),
			zap.Int("communes", len(wb.Communes)),
		)
		return workbookSources(wb), nil

	case config.SourceS3:
		s3cfg := cfg.Reference.S3
		store, err := reference.NewS3Store(ctx, reference.S3Options{
			Bucket:          s3cfg.Bucket,
			Key:             s3cfg.Key,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		wb, err := reference.FetchWorkbook(ctx, store, s3cfg.Bucket, s3cfg.Key)
		if err != nil {
			return nil, err
		}
		logger.Info("Reference data served from s3",
			zap.String("bucket", s3cfg.Bucket),
			zap.String("key", s3cfg.Key),
			zap.Int("communes", len(wb.Communes)),
		)
		return workbookSources(wb), nil
	}
	return nil, fmt.Errorf("unknown reference source %q", cfg.Reference.Source)
}

// ReadWorkbookFile parses a reference workbook from disk
func ReadWorkbookFile(path string) (*reference.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return reference.ReadWorkbook(f)
}

func workbookSources(wb *reference.Workbook) *Sources {
	return &Sources{
		Directory: wb.Directory(),
		Loader:    reference.StaticLoader{Source: wb.Tables},
	}
}
