package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/marketplace-monitor/internal/engine"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// checkRow is the JSON form of one dry run result.
type checkRow struct {
	Ref     string            `json:"ref"`
	ID      string            `json:"id,omitempty"`
	Title   string            `json:"title,omitempty"`
	Price   string            `json:"price,omitempty"`
	Filter  string            `json:"filter,omitempty"`
	Rating  int               `json:"rating,omitempty"`
	Comment string            `json:"comment,omitempty"`
	Notify  bool              `json:"notify"`
	Users   map[string]string `json:"users,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func toCheckRows(results []engine.CheckResult) []checkRow {
	rows := make([]checkRow, 0, len(results))
	for i := range results {
		r := &results[i]
		row := checkRow{Ref: r.Ref, Notify: r.Err == nil && r.Confirmed}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		if r.Listing != nil {
			row.ID = r.Listing.ID
			row.Title = r.Listing.Title
			row.Price = r.Listing.Price
			row.Filter = r.Filter.String()
		}
		if r.Rated {
			row.Rating = r.Rating.Score
			row.Comment = r.Rating.Comment
		}
		if len(r.Users) > 0 {
			row.Users = make(map[string]string, len(r.Users))
			for _, u := range r.Users {
				row.Users[u.User] = u.Status.String()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func printCheckTable(w io.Writer, results []engine.CheckResult) error {
	rows := toCheckRows(results)

	var users []string
	for _, row := range rows {
		for u := range row.Users {
			if !slices.Contains(users, u) {
				users = append(users, u)
			}
		}
	}
	slices.Sort(users)

	tw := newTabWriter(w)
	tw.writef("REF\tID\tTITLE\tPRICE\tFILTER\tRATING\tNOTIFY")
	for _, u := range users {
		tw.writef("\t%s", strings.ToUpper(u))
	}
	tw.writef("\n")

	for _, row := range rows {
		rating := "-"
		if row.Rating > 0 {
			rating = fmt.Sprintf("%d/5", row.Rating)
		}
		filterText := row.Filter
		if row.Error != "" {
			filterText = "error: " + row.Error
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s",
			truncate(row.Ref, 40),
			orDash(row.ID),
			truncate(orDash(row.Title), 40),
			orDash(row.Price),
			truncate(orDash(filterText), 50),
			rating,
			yesNo(row.Notify),
		)
		for _, u := range users {
			tw.writef("\t%s", orDash(row.Users[u]))
		}
		tw.writef("\n")
	}
	return tw.finish()
}

func printStatsTable(w io.Writer, backend string, stats map[store.Category]int) error {
	tw := newTabWriter(w)
	tw.writef("TYPE\tENTRIES\n")
	total := 0
	for _, c := range store.Categories {
		tw.writef("%s\t%d\n", c, stats[c])
		total += stats[c]
	}
	tw.writef("total (%s)\t%d\n", backend, total)
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
