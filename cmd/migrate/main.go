package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/journeyverse/backend/config"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath = flag.String("config", "config.yaml", "path to the yaml config")
		dir     = flag.String("dir", "migrations", "path to the migration files")
		down    = flag.Bool("down", false, "roll back one migration instead of migrating up")
	)
	flag.Parse()

	if env := os.Getenv("CONFIG_PATH"); env != "" && *cfgPath == "config.yaml" {
		*cfgPath = env
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	m, err := migrate.New("file://"+*dir, cfg.Database.MigrationURL())
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no schema changes to apply")
			return
		}
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
