package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/church-agenda/agenda-client/internal/api"
	"github.com/church-agenda/agenda-client/internal/domain/agenda"
	"golang.org/x/sync/errgroup"
)

type dashboard struct {
	Church        string                `json:"church"`
	Events        []agenda.Event        `json:"events"`
	Announcements []agenda.Announcement `json:"announcements"`
	Plans         []agenda.Plan         `json:"plans"`
}

// runDashboard fetches the three home-screen lists concurrently. The first
// failure cancels the remaining requests.
func runDashboard(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "dashboard")
	rng := addRangeFlags(fs)
	limit := fs.Int("limit", 5, "Announcements to show")
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}

	var board dashboard
	if sel, ok := cmdCtx.App.Tenant.Current(); ok {
		board.Church = sel.DisplayName
	}

	app := cmdCtx.App
	g, ctx := errgroup.WithContext(cmdCtx.Ctx)
	g.Go(func() error {
		env := app.API.ListEvents(ctx, rng.From, rng.To)
		board.Events = env.Value().Results
		return env.Err()
	})
	g.Go(func() error {
		env := app.API.Feed(ctx, api.Page{Limit: *limit})
		board.Announcements = env.Value().Results
		return env.Err()
	})
	g.Go(func() error {
		env := app.API.ListPlans(ctx, rng.From, rng.To)
		board.Plans = env.Value().Results
		return env.Err()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return render(cmdCtx.Out, out, board, func(tw *tabwriter.Writer) error {
		if board.Church != "" {
			if _, err := fmt.Fprintf(tw, "%s\n\n", board.Church); err != nil {
				return err
			}
		}
		sections := []struct {
			title string
			rows  func() error
		}{
			{"Events", func() error { return eventRows(tw, board.Events) }},
			{"Announcements", func() error { return announcementRows(tw, board.Announcements) }},
			{"Plans", func() error { return planRows(tw, board.Plans) }},
		}
		for i, s := range sections {
			if i > 0 {
				if _, err := fmt.Fprintln(tw); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(tw, "== %s ==\n", s.title); err != nil {
				return err
			}
			if err := s.rows(); err != nil {
				return err
			}
		}
		return nil
	})
}
