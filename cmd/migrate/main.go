// Command migrate applies or rolls back the job database schema.
//
//	migrate up
//	migrate down
//	migrate goto 1
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/database"
	"github.com/lewismosage/acna-gateway/pkg/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|goto VERSION")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	path := cfg.Import.MigrationsPath
	switch os.Args[1] {
	case "up":
		err = db.RunMigrations(path)
	case "down":
		err = db.MigrateDown(path)
	case "goto":
		if len(os.Args) < 3 {
			log.Fatal().Msg("goto requires a version")
		}
		var version uint64
		version, err = strconv.ParseUint(os.Args[2], 10, 32)
		if err == nil {
			err = db.MigrateToVersion(path, uint(version))
		}
	default:
		log.Fatal().Str("command", os.Args[1]).Msg("Unknown command")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Migration failed")
	}
	log.Info().Str("command", os.Args[1]).Msg("Migration finished")
}
