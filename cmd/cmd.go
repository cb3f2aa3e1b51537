// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a starter config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles account linking.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthSpotify,
			},
		},
	}
}

// servicesCommand lists configured services.
func servicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "services",
		Usage: "List configured services and their capabilities",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		},
		Action: r.Services,
	}
}

// playlistsCommand lists playlists for one service.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List playlists from a service",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "service"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of playlists to return", Value: 50},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
		},
		Action: r.Playlists,
	}
}

// exportCommand exports playlists to local files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export playlists to local files",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "service"},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "id",
				Usage:    "Playlist ID to export (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent export workers",
				Value: 5,
			},
		},
		Action: r.Export,
	}
}

// syncCommand handles playlist sync operations.
func syncCommand(r *Runner) *cli.Command {
	pairFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Source service (spotify or applemusic)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "destination",
			Aliases:  []string{"d"},
			Usage:    "Destination service (spotify or applemusic)",
			Required: true,
		},
	}
	playlistFlag := &cli.StringFlag{
		Name:     "playlist",
		Aliases:  []string{"p"},
		Usage:    "Source playlist ID",
		Required: true,
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Sync playlists between services",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Sync one playlist from source to destination",
				Flags: append(pairFlags, playlistFlag,
					&cli.StringFlag{Name: "name", Usage: "Destination playlist name override"},
					&cli.StringFlag{Name: "description", Usage: "Destination playlist description override"},
					&cli.BoolFlag{Name: "update", Usage: "Add to an existing destination playlist if one matches by name"},
				),
				Action: r.SyncRun,
			},
			{
				Name:   "validate",
				Usage:  "Check that a sync can run without starting it",
				Flags:  append(pairFlags, playlistFlag),
				Action: r.SyncValidate,
			},
			{
				Name:  "capabilities",
				Usage: "Show the merged capabilities of a service pair",
				Flags: append(pairFlags,
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				),
				Action: r.SyncCapabilities,
			},
		},
	}
}

// jobsCommand runs the syncs configured under [[jobs]].
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Configured sync jobs",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run every sync job from the config file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.JobsRun,
			},
			{
				Name:   "list",
				Usage:  "List configured sync jobs",
				Action: r.JobsList,
			},
		},
	}
}

// historyCommand lists past sync runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs to show", Value: 20},
			&cli.StringFlag{Name: "source", Usage: "Filter by source service name"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.History,
	}
}

// serveCommand starts the HTTP sync API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP sync API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Bind address (overrides config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (overrides config)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist sync.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source service (spotify or applemusic)",
				Value:   "spotify",
			},
			&cli.StringFlag{
				Name:    "destination",
				Aliases: []string{"d"},
				Usage:   "Destination service (spotify or applemusic)",
				Value:   "applemusic",
			},
			&cli.BoolFlag{Name: "update", Usage: "Add to an existing destination playlist if one matches by name"},
		},
		Action: r.TUI,
	}
}
