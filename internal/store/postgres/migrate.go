package postgres

import (
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// Migrate brings the schema up to the latest embedded migration.
func (s *Store) Migrate() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(&gooseLogger{log: s.log.Named("migrate").Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("error migrating sql schema: %w", err)
	}
	return nil
}

type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l *gooseLogger) Fatal(v ...interface{})                 { l.log.Fatal(v...) }
func (l *gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }
func (l *gooseLogger) Print(v ...interface{})                 { l.log.Info(v...) }
func (l *gooseLogger) Println(v ...interface{})               { l.log.Info(v...) }
func (l *gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
