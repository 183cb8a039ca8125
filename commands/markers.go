package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"geostories.app/core/app"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func MarkersCommand() *cli.Command {
	return &cli.Command{
		Name:  "markers",
		Usage: "list and manage map markers",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list an identity's markers, newest first",
				Action: runMarkersList,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "author",
						Usage: "pubky whose markers to list (defaults to the session identity)",
					},
					outputFlag(),
				},
			},
			{
				Name:   "add",
				Usage:  "create a marker",
				Action: runMarkersAdd,
				Flags:  append(markerFlags(true), outputFlag()),
			},
			{
				Name:      "update",
				Usage:     "update one of your markers",
				ArgsUsage: "ID",
				Action:    runMarkersUpdate,
				Flags:     append(markerFlags(false), outputFlag()),
			},
			{
				Name:      "rm",
				Usage:     "delete one of your markers and its photos",
				ArgsUsage: "ID",
				Action:    runMarkersRemove,
			},
		},
	}
}

func markerFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "marker title", Required: required},
		&cli.StringFlag{Name: "description", Usage: "marker description"},
		&cli.FloatFlag{Name: "lat", Usage: "latitude in degrees", Required: required},
		&cli.FloatFlag{Name: "lon", Usage: "longitude in degrees", Required: required},
		&cli.StringFlag{Name: "photo", Usage: "path to a photo to attach"},
	}
}

func runMarkersList(ctx context.Context, cmd *cli.Command) error {
	var author pubky.Key
	if s := cmd.String("author"); s != "" {
		k, err := pubky.ParseKey(s)
		if err != nil {
			return err
		}
		author = k
	}

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if _, err := a.Dispatch(ctx, app.Command{Name: app.CmdLoadMarkers, Author: author}); err != nil {
			return err
		}
		markers := a.Markers()
		return render(writer(cmd), cmd.String("output"), markers, markersTable(markers))
	})
}

func runMarkersAdd(ctx context.Context, cmd *cli.Command) error {
	photo, err := readPhoto(cmd.String("photo"))
	if err != nil {
		return err
	}
	loc := &models.Location{Lat: cmd.Float("lat"), Lon: cmd.Float("lon")}

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if _, err := a.Dispatch(ctx, app.Command{Name: app.CmdSelectLocation, Location: loc}); err != nil {
			return err
		}
		res, err := a.Dispatch(ctx, app.Command{
			Name:        app.CmdCreateMarker,
			Title:       cmd.String("title"),
			Description: cmd.String("description"),
			Photo:       photo,
		})
		m, _ := res.(*models.Marker)
		if m == nil {
			return err
		}
		if rerr := render(writer(cmd), cmd.String("output"), m, markersTable([]*models.Marker{m})); rerr != nil {
			return rerr
		}
		return err
	})
}

func runMarkersUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("marker id is required")
	}
	photo, err := readPhoto(cmd.String("photo"))
	if err != nil {
		return err
	}

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if err := a.Connect(ctx); err != nil {
			return err
		}
		m, err := a.Marker(id)
		if err != nil {
			return err
		}

		// unset flags keep the stored values
		title, desc := m.Title, m.Description
		if cmd.IsSet("title") {
			title = cmd.String("title")
		}
		if cmd.IsSet("description") {
			desc = cmd.String("description")
		}
		loc := m.Location()
		if cmd.IsSet("lat") {
			loc.Lat = cmd.Float("lat")
		}
		if cmd.IsSet("lon") {
			loc.Lon = cmd.Float("lon")
		}

		res, err := a.Dispatch(ctx, app.Command{
			Name:        app.CmdUpdateMarker,
			MarkerID:    id,
			Location:    &loc,
			Title:       title,
			Description: desc,
			Photo:       photo,
		})
		if err != nil {
			return err
		}
		updated := res.(*models.Marker)
		return render(writer(cmd), cmd.String("output"), updated, markersTable([]*models.Marker{updated}))
	})
}

func runMarkersRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("marker id is required")
	}

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if err := a.Connect(ctx); err != nil {
			return err
		}
		if _, err := a.Dispatch(ctx, app.Command{Name: app.CmdDeleteMarker, MarkerID: id}); err != nil {
			return err
		}
		fmt.Fprintf(writer(cmd), "deleted %s\n", id)
		return nil
	})
}

const maxPhotoSize = 10 << 20

func readPhoto(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if fi.Size() > maxPhotoSize {
		return nil, fmt.Errorf("photo is %s, the limit is %s",
			humanize.IBytes(uint64(fi.Size())), humanize.IBytes(maxPhotoSize))
	}
	return os.ReadFile(path)
}
