package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/maestranza/inventory-backend/pkg/config"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

const defaultMigrationsPath = "migrations"

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New("migrate", config.GetEnvironment())

	cfg, err := config.Load("inventory-service")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve migrations path")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create postgres driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", absPath),
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrate instance")
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migration up failed")
		}
		logVersion(m, log)

	case "down":
		if err := m.Steps(-1); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migration down failed")
		}
		logVersion(m, log)

	case "step":
		if len(args) < 2 {
			log.Fatal().Msg("step count required: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Str("value", args[1]).Msg("invalid step count")
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migration step failed")
		}
		logVersion(m, log)

	case "version":
		logVersion(m, log)

	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("version required: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Str("value", args[1]).Msg("invalid version number")
		}
		log.Warn().Int("version", version).Msg("forcing migration version")
		if err := m.Force(version); err != nil {
			log.Fatal().Err(err).Msg("force version failed")
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func logVersion(m *migrate.Migrate, log *logger.Logger) {
	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Info().Msg("no migrations applied")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get migration version")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration version")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [-path <dir>] <command>

Commands:
  up              Apply all pending migrations
  down            Roll back the last migration
  step <n>        Apply n migrations (negative rolls back)
  version         Show current migration version
  force <version> Force the migration version (recovery only)`)
}
