package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/church-agenda/agenda-client/internal/api"
	"github.com/church-agenda/agenda-client/internal/domain/agenda"
	"github.com/spf13/pflag"
)

type pageOptions struct {
	Limit  int
	Offset int
}

func addPageFlags(fs *pflag.FlagSet) *pageOptions {
	opts := &pageOptions{}
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum number of results")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of results to skip")
	return opts
}

func (p *pageOptions) page() (api.Page, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return api.Page{}, errors.New("--limit and --offset must not be negative")
	}
	return api.Page{Limit: p.Limit, Offset: p.Offset}, nil
}

type rangeOptions struct {
	From string
	To   string
}

func addRangeFlags(fs *pflag.FlagSet) *rangeOptions {
	opts := &rangeOptions{}
	fs.StringVar(&opts.From, "from", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&opts.To, "to", "", "End date (YYYY-MM-DD)")
	return opts
}

func parseWithOutput(fs *pflag.FlagSet, args []string) (*outputOptions, error) {
	out := addOutputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func runEvents(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "events")
	rng := addRangeFlags(fs)
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}

	env := cmdCtx.App.API.ListEvents(cmdCtx.Ctx, rng.From, rng.To)
	if err := env.Err(); err != nil {
		return err
	}
	list := env.Value()
	return render(cmdCtx.Out, out, list, func(tw *tabwriter.Writer) error {
		return eventRows(tw, list.Results)
	})
}

func eventRows(tw *tabwriter.Writer, events []agenda.Event) error {
	if err := row(tw, "ID", "START", "TITLE", "LOCATION"); err != nil {
		return err
	}
	for _, e := range events {
		if err := row(tw, e.ID, e.StartAt, e.Title, e.Location); err != nil {
			return err
		}
	}
	return nil
}

func runRSVP(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "rsvp")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: agenda rsvp <event-id> <%s>", strings.Join(agenda.RSVPStatuses(), "|"))
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	status := strings.ToLower(fs.Arg(1))
	if !slices.Contains(agenda.RSVPStatuses(), status) {
		return fmt.Errorf("unknown rsvp status %q", status)
	}

	env := cmdCtx.App.API.RSVP(cmdCtx.Ctx, id, status)
	if err := env.Err(); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "%s\n", env.Value().Message)
}

func runAnnouncements(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "announcements")
	pg := addPageFlags(fs)
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}
	page, err := pg.page()
	if err != nil {
		return err
	}

	env := cmdCtx.App.API.Feed(cmdCtx.Ctx, page)
	if err := env.Err(); err != nil {
		return err
	}
	feed := env.Value()
	return render(cmdCtx.Out, out, feed, func(tw *tabwriter.Writer) error {
		return announcementRows(tw, feed.Results)
	})
}

func announcementRows(tw *tabwriter.Writer, items []agenda.Announcement) error {
	if err := row(tw, "ID", "PINNED", "TITLE", "CREATED"); err != nil {
		return err
	}
	for _, a := range items {
		pinned := ""
		if a.IsPinned {
			pinned = "yes"
		}
		if err := row(tw, a.ID, pinned, a.Title, a.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func runDirectory(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "directory")
	search := fs.String("search", "", "Filter by name or email")
	pg := addPageFlags(fs)
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}
	page, err := pg.page()
	if err != nil {
		return err
	}

	env := cmdCtx.App.API.Directory(cmdCtx.Ctx, *search, page)
	if err := env.Err(); err != nil {
		return err
	}
	members := env.Value()
	return render(cmdCtx.Out, out, members, func(tw *tabwriter.Writer) error {
		if err := row(tw, "ID", "NAME", "EMAIL", "PHONE"); err != nil {
			return err
		}
		for _, m := range members.Results {
			if err := row(tw, m.ID, m.FullName, m.Email, m.Phone); err != nil {
				return err
			}
		}
		return nil
	})
}

func runSongs(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "songs")
	search := fs.String("search", "", "Filter by title or artist")
	pg := addPageFlags(fs)
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}
	page, err := pg.page()
	if err != nil {
		return err
	}

	env := cmdCtx.App.API.ListSongs(cmdCtx.Ctx, *search, page)
	if err := env.Err(); err != nil {
		return err
	}
	songs := env.Value()
	return render(cmdCtx.Out, out, songs, func(tw *tabwriter.Writer) error {
		if err := row(tw, "ID", "TITLE", "ARTIST", "KEY", "BPM"); err != nil {
			return err
		}
		for _, s := range songs.Results {
			if err := row(tw, s.ID, s.Title, s.Artist, s.DefaultKey, s.BPM); err != nil {
				return err
			}
		}
		return nil
	})
}

func runPlans(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "plans")
	rng := addRangeFlags(fs)
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}

	env := cmdCtx.App.API.ListPlans(cmdCtx.Ctx, rng.From, rng.To)
	if err := env.Err(); err != nil {
		return err
	}
	plans := env.Value()
	return render(cmdCtx.Out, out, plans, func(tw *tabwriter.Writer) error {
		return planRows(tw, plans.Results)
	})
}

func planRows(tw *tabwriter.Writer, plans []agenda.Plan) error {
	if err := row(tw, "ID", "DATE", "EVENT", "NOTES"); err != nil {
		return err
	}
	for _, p := range plans {
		event := "-"
		if p.EventID != nil {
			event = strconv.FormatInt(*p.EventID, 10)
		}
		if err := row(tw, p.ID, p.Date, event, p.Notes); err != nil {
			return err
		}
	}
	return nil
}

func runPassage(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "passage")
	translation := fs.String("translation", "", "Bible translation code")
	out, err := parseWithOutput(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: agenda passage <reference>")
	}

	env := cmdCtx.App.API.Passage(cmdCtx.Ctx, strings.Join(fs.Args(), " "), *translation)
	if err := env.Err(); err != nil {
		return err
	}
	// The payload shape belongs to the upstream service, so there is no table layout.
	return render(cmdCtx.Out, out, json.RawMessage(env.Value()), nil)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
