package main

import (
	"os"

	"mimo-api/config"
	"mimo-api/database"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "mimo-api"
	app.Usage = "Creator packages, gifts and rewards API"
	app.Before = func(c *cli.Context) error {
		config.LoadEnv()
		return nil
	}
	app.Commands = []cli.Command{makeServeCMD(), makeMigrateCMD()}
	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("failed to run app")
	}
}

func makeMigrateCMD() cli.Command {
	return cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrates database",
		Action: func(c *cli.Context) error {
			db, err := database.Open(config.C.DBURL)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}
