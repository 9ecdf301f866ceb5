package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/church-agenda/agenda-client/internal/domain/tenant"
)

func runChurches(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "churches")
	out := addOutputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	env := cmdCtx.App.API.PublicOrganizations(cmdCtx.Ctx)
	if err := env.Err(); err != nil {
		return err
	}
	list := env.Value()
	selected, _ := cmdCtx.App.Tenant.Slug()

	return render(cmdCtx.Out, out, list, func(tw *tabwriter.Writer) error {
		if err := row(tw, "", "ID", "SLUG", "NAME", "CITY"); err != nil {
			return err
		}
		for _, o := range list.Results {
			mark := ""
			if o.Slug == selected {
				mark = "*"
			}
			if err := row(tw, mark, o.ID, o.Slug, o.Name, o.City); err != nil {
				return err
			}
		}
		return nil
	})
}

// runSelectChurch resolves the slug against the public list so the persisted
// id, slug and name always describe a real organization.
func runSelectChurch(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "select-church")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: agenda select-church <slug>")
	}
	slug := fs.Arg(0)

	env := cmdCtx.App.API.PublicOrganizations(cmdCtx.Ctx)
	if err := env.Err(); err != nil {
		return err
	}
	org, ok := tenant.Find(env.Value().Results, slug)
	if !ok {
		return fmt.Errorf("church %q not found", slug)
	}

	if err := cmdCtx.App.Tenant.Select(cmdCtx.Ctx, org); err != nil {
		return err
	}
	sel, _ := cmdCtx.App.Tenant.Current()
	return writef(cmdCtx.Out, "selected %s [%s]\n", sel.DisplayName, sel.Slug)
}
