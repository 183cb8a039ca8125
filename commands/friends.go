package commands

import (
	"context"

	"geostories.app/core/app"
	"geostories.app/core/models"
	"github.com/urfave/cli/v3"
)

func FriendsCommand() *cli.Command {
	return &cli.Command{
		Name:   "friends",
		Usage:  "list the identities the session follows",
		Action: runFriends,
		Flags: []cli.Flag{
			outputFlag(),
		},
	}
}

func runFriends(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		res, err := a.Dispatch(ctx, app.Command{Name: app.CmdLoadFriends})
		if err != nil {
			return err
		}
		friends := res.([]models.Friend)
		return render(writer(cmd), cmd.String("output"), friends, friendsTable(friends))
	})
}
