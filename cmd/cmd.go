// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// searchCommand runs the interactive search workflow from the terminal.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for a product and follow the discovery workflow",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "url",
				Usage: "Treat the query as a product URL instead of a keyword",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output final results as raw JSON",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Skip recording the search in local history",
			},
		},
		Action: r.Search,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with a phone number (E.164 format)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "phone"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Invalidate the current session and remove the stored token",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the authenticated user's profile",
				Action: r.AuthWhoami,
			},
			{
				Name:   "status",
				Usage:  "Check backend health and current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "limit",
				Usage:  "Check whether another search session is allowed",
				Action: r.AuthLimit,
			},
		},
	}
}

// historyCommand handles local search history operations
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse locally recorded searches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent searches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of searches to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a recorded search and its cached results",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "session"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Export a recorded search's results to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "session"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, or text",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults derive from the session id)",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:  "delete",
				Usage: "Remove a search from local history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "session"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// resultsCommand fetches final results for a session from the backend.
func resultsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "Fetch the final results of a completed session",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "session"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Results,
	}
}

// apiCommand handles direct API calls for debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the discovery backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive searches.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive search TUI",
		Action:  r.TUI,
	}
}
