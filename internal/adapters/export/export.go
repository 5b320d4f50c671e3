// Package export renders the match for download: the event log as CSV and
// a plain-text summary table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/domain/model"
)

const dateLayout = "2006-01-02"

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"time", "team", "event", "xg"}

// WriteCSV writes one row per event in log order. Teams are rendered with
// their display names and xG with three decimals.
func WriteCSV(w io.Writer, events []model.Event, info model.MatchInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range events {
		row := []string{
			strconv.Itoa(e.Minute),
			info.NameOf(e.Team),
			e.Kind.Label(),
			strconv.FormatFloat(e.XG, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName builds a download name like "casa-vs-visitante-2025-05-01.csv".
// The match date is used when set, otherwise now.
func FileName(info model.MatchInfo, now time.Time) string {
	date := strings.TrimSpace(info.Date)
	if date == "" {
		date = now.Format(dateLayout)
	}
	parts := []string{info.HomeName, "vs", info.AwayName, date}
	if info.Label != "" {
		parts = append([]string{info.Label}, parts...)
	}
	name := slug.Make(strings.Join(parts, " "))
	if name == "" {
		name = "match"
	}
	return name + ".csv"
}

// WriteSummary renders the match header, a per-team stats table and the
// active alerts.
func WriteSummary(w io.Writer, snap service.Snapshot) error {
	info := snap.Info
	title := fmt.Sprintf("%s vs %s  |  %s", info.HomeName, info.AwayName, snap.Clock.String())
	if info.Championship != "" {
		title += "  |  " + info.Championship
	}
	if info.Date != "" {
		title += "  |  " + info.Date
	}
	if _, err := fmt.Fprintf(w, "\n%s\n\n", title); err != nil {
		return err
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("STAT", info.HomeName, info.AwayName)

	for _, k := range model.Kinds {
		if err := table.Append(
			strings.ToUpper(k.Label()),
			strconv.Itoa(snap.Home.Count(k)),
			strconv.Itoa(snap.Away.Count(k)),
		); err != nil {
			return fmt.Errorf("append %s row: %w", k, err)
		}
	}
	if err := table.Append("XG", fmt.Sprintf("%.2f", snap.Home.TotalXG), fmt.Sprintf("%.2f", snap.Away.TotalXG)); err != nil {
		return fmt.Errorf("append xg row: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	if _, err := fmt.Fprintf(w, "\nTotal xG %.2f  |  Shots %d  |  Minute %d'\n",
		snap.Summary.TotalXG, snap.Summary.TotalShots, snap.Summary.Minute); err != nil {
		return err
	}
	if len(snap.Alerts) == 0 {
		_, err := fmt.Fprintln(w, "No alerts")
		return err
	}
	for _, a := range snap.Alerts {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", a.Kind, a.Message); err != nil {
			return err
		}
	}
	return nil
}
