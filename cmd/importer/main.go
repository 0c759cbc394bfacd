package main

import (
	"os"

	"github.com/booknest/booknest/pkg/config"
	"github.com/booknest/booknest/pkg/database"
	"github.com/booknest/booknest/pkg/importer"
	"github.com/booknest/booknest/pkg/migrations"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:        "importer",
		Usage:       "load the spreadsheet exports into the database",
		Description: "Reads the eight xlsx exports from the import directory and loads them in dependency order. Safe to rerun.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory containing the xlsx files (defaults to the configured import directory)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			dir := c.String("dir")
			if dir == "" {
				dir = cfg.ImportDir
			}

			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := migrations.BringUpToDate(c.Context, db); err != nil {
				return err
			}

			report, err := importer.New(db, dir, log).Run(c.Context)
			if err != nil {
				return err
			}

			if report.ReservationErrors > 0 {
				log.Warn("import completed with row errors", logger.Data{"reservation_errors": report.ReservationErrors})
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("import failed")
	}
}
