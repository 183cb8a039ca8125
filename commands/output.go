package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"geostories.app/core/models"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format (table, json, yaml)",
		Value:   "table",
	}
}

func writer(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// render writes v as json or yaml, or hands a tabwriter to table.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func markersTable(markers []*models.Marker) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tTITLE\tLAT\tLON\tPHOTOS\tCREATED")
		for _, m := range markers {
			fmt.Fprintf(tw, "%s\t%s\t%.5f\t%.5f\t%d\t%s\n",
				m.Id, truncate(m.Title, 40), m.Latitude, m.Longitude, len(m.Photos), created(m))
		}
	}
}

func friendsTable(friends []models.Friend) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "PUBKY\tNAME\tMARKERS\tCOLOR")
		for _, f := range friends {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				f.Key.Short(), truncate(f.DisplayName(), 30), humanize.Comma(int64(f.MarkerCount)), f.Color)
		}
	}
}

func created(m *models.Marker) string {
	if m.Timestamp == 0 {
		return "-"
	}
	return humanize.RelTime(m.Created(), time.Now(), "ago", "from now")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
