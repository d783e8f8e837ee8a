package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "crickstats"
	s.app.Usage = ""
	s.app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Start the main api service, including the reward wheel endpoints.`,
		},
		{
			Action:      server.migrate,
			Name:        "migrate",
			Usage:       "Run database migration",
			Flags:       []cli.Flag{},
			Category:    "Database",
			Description: `Create or update the database schema, then exit.`,
		},
	}
}
