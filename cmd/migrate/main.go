package main

import (
	"errors"
	"flag"
	"os"

	config "github.com/avvvet/draftboard-services/configs"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "migrate"

func main() {
	down := flag.Bool("down", false, "roll back every migration")
	source := flag.String("source", "file://db/migrations", "migration source url")
	flag.Parse()

	config.LoadEnv(SERVICE_NAME)

	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		log.Fatal("POSTGRES_URL is not set")
	}

	m, err := migrate.New(*source, dsn)
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("database migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("reading migration version failed: %v", err)
	}
	log.Infof("database migrations applied (version %d, dirty %t)", version, dirty)
}
