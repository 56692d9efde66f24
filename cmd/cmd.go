// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// buildCommand resolves every song and packs the results into a new playlist
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "build",
		Aliases:   []string{"run"},
		Usage:     "Search each song and fill a new playlist up to the target length",
		ArgsUsage: "[song...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Playlist title (defaults to playlist.title)",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description",
			},
			&cli.StringFlag{
				Name:  "privacy",
				Usage: "Playlist visibility: private, public or unlisted",
			},
			&cli.IntFlag{
				Name:  "target",
				Usage: "Target length in minutes",
			},
			&cli.IntFlag{
				Name:  "overrun",
				Usage: "Minutes allowed past the target",
			},
			&cli.StringSliceFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Song to search for (repeatable)",
			},
			&cli.StringFlag{
				Name:    "songs-file",
				Aliases: []string{"f"},
				Usage:   "File with one song per line; blank lines and # comments are skipped",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and simulate packing without creating a playlist",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a build report to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: csv, md, txt or json (inferred from --report when empty)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the build report as JSON instead of a summary",
			},
		},
		Action: r.Build,
	}
}

// resolveCommand shows how a single song would be resolved
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Show the ranked candidates for one song",
		ArgsUsage: "<song>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Resolve,
	}
}

// authCommand handles the Google OAuth2 token lifecycle
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Google in the browser and store the token",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a token is stored and when it expires",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// setupCommand handles initial configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initial setup and configuration",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
