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

// setupCommand writes a starter configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a starter config.toml",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authURLCommand prints the Spotify consent URL for the configured client
func authURLCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth-url",
		Usage: "Print the Spotify authorization URL",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the URL in the default browser",
			},
		},
		Action: r.AuthURL,
	}
}

// serveCommand starts the relay HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the relay HTTP server",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}
