// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// setupCommand writes the config file and prepares storage
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml, the profile directory and the run history database",
		Action: r.Setup,
	}
}

// profileCommand manages profiles
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "Create, inspect and maintain profiles",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a profile",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Free-form description",
					},
					&cli.StringFlag{
						Name:    "folder",
						Aliases: []string{"f"},
						Usage:   "Mod folder (default: inside the profile directory)",
					},
					&cli.StringFlag{
						Name:    "url",
						Aliases: []string{"u"},
						Usage:   "Server catalog URL",
					},
				},
				Action: r.ProfileCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List profiles",
				Flags:   []cli.Flag{jsonFlag()},
				Action:  r.ProfileList,
			},
			{
				Name:  "show",
				Usage: "Show a profile and its mods",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "profile"},
				},
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ProfileShow,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a profile (a mod folder inside the profile directory goes with it)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "profile"},
				},
				Action: r.ProfileDelete,
			},
			{
				Name:  "set-url",
				Usage: "Set or clear the server catalog URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "profile"},
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove the URL",
					},
				},
				Action: r.ProfileSetURL,
			},
			{
				Name:  "scan",
				Usage: "Track archives found in the mod folder",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "profile"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Drop records whose archive is gone",
					},
				},
				Action: r.ProfileScan,
			},
			{
				Name:  "export",
				Usage: "Export the mod list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "profile"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "csv, markdown, text or json",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ProfileExport,
			},
			{
				Name:  "open",
				Usage: "Open the mod folder in the file manager",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "profile"},
				},
				Action: r.ProfileOpen,
			},
		},
	}
}

// syncCommand runs a synchronization in the foreground
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Download new and updated mods from the profile's server (Ctrl+C cancels)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "profile"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Sync,
	}
}

// catalogCommand inspects a server catalog without touching any profile
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Fetch and print a server catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Catalog,
	}
}

// historyCommand lists recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past synchronization runs of a profile, or clear all of them with --reset",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "profile"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Delete the recorded runs of every profile",
			},
			jsonFlag(),
		},
		Action: r.History,
	}
}

// serveCommand starts the local control API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local HTTP control API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive profile sync",
		Action: r.TUI,
	}
}
