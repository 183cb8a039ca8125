package main

import (
	"context"
	"os"

	"geostories.app/core/commands"
	"geostories.app/core/log"
	"geostories.app/core/server"
	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "geostories",
		Usage:   "geotagged stories on pubky homeservers",
		Version: versioninfo.Short(),
		Commands: []*cli.Command{
			server.Command(),
			commands.MarkersCommand(),
			commands.FriendsCommand(),
		},
	}

	ctx := context.Background()
	logger := log.New("geostories")
	ctx = log.IntoContext(ctx, logger)

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(-1)
	}
}
