// Command migrate applies or rolls back the schema in migrations/ against
// DATABASE_DSN, using golang-migrate's CLI-equivalent library API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/nbaqa/hro/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	direction := flag.String("direction", "up", "up | down | drop")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(fmt.Errorf("load config: %w", err))
	}

	m, err := migrate.New("file://migrations", cfg.DatabaseDSN)
	if err != nil {
		fail(fmt.Errorf("init migrator: %w", err))
	}

	switch *direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "drop":
		err = m.Drop()
	default:
		fail(fmt.Errorf("unknown direction: %s", *direction))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fail(fmt.Errorf("migrate %s: %w", *direction, err))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
