package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/church-agenda/agenda-client/internal/service"
)

type loginOptions struct {
	Email    string
	Password string
	Church   string
}

func parseLoginFlags(cmdCtx *commandContext, args []string) (loginOptions, error) {
	fs := newFlagSet(cmdCtx, "login")

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", "", "Password; read from stdin when omitted")
	fs.StringVar(&opts.Church, "church", "", "Church slug to sign in to; defaults to the selected church")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return loginOptions{}, errors.New("--email is required")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	if opts.Password == "" {
		if opts.Password, err = readSecret(cmdCtx, "Password: "); err != nil {
			return err
		}
	}
	if opts.Church == "" {
		opts.Church, _ = cmdCtx.App.Tenant.Slug()
	}

	if err := cmdCtx.App.Session.Login(cmdCtx.Ctx, opts.Email, opts.Password, opts.Church); err != nil {
		return err
	}
	sess, _ := cmdCtx.App.Session.Current()
	return writef(cmdCtx.Out, "signed in as user %d (%s)\n", sess.User.ID, sess.User.Role)
}

// readSecret reads one line from the command input.
func readSecret(cmdCtx *commandContext, prompt string) (string, error) {
	if cmdCtx.In == nil {
		return "", errors.New("no input available")
	}
	if err := writef(cmdCtx.Err, "%s", prompt); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	if err := cmdCtx.App.Session.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "signed out\n")
}

type whoamiChurch struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type whoamiResult struct {
	Authenticated bool          `json:"authenticated"`
	UserID        int64         `json:"user_id,omitempty"`
	Role          string        `json:"role,omitempty"`
	Admin         bool          `json:"admin"`
	Church        *whoamiChurch `json:"church,omitempty"`
	Locale        string        `json:"locale"`
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "whoami")
	out := addOutputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	app := cmdCtx.App
	sess, ok := app.Session.Current()
	res := whoamiResult{
		Authenticated: ok,
		Admin:         app.Session.IsAdmin(),
		Locale:        string(app.Locale.Current()),
	}
	if ok {
		res.UserID = sess.User.ID
		res.Role = string(sess.User.Role)
	}
	if sel, selected := app.Tenant.Current(); selected {
		res.Church = &whoamiChurch{ID: sel.OrganizationID, Slug: sel.Slug, Name: sel.DisplayName}
	}

	return render(cmdCtx.Out, out, res, func(tw *tabwriter.Writer) error {
		status := "signed out"
		if res.Authenticated {
			status = fmt.Sprintf("user %d (%s)", res.UserID, res.Role)
		}
		church := "-"
		if res.Church != nil {
			church = fmt.Sprintf("%s [%s]", res.Church.Name, res.Church.Slug)
		}
		for _, r := range [][2]string{{"session", status}, {"church", church}, {"locale", res.Locale}} {
			if err := row(tw, r[0], r[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

func runRegister(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "register")

	var in service.RegisterInput
	fs.StringVar(&in.Email, "email", "", "Account email")
	fs.StringVar(&in.FullName, "full-name", "", "First and last name")
	fs.StringVar(&in.Password, "password", "", "Password")
	fs.StringVar(&in.ConfirmPassword, "confirm-password", "", "Password again")
	fs.StringVar(&in.OrganizationSlug, "church", "", "Church slug to join; defaults to the selected church")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.OrganizationSlug == "" {
		in.OrganizationSlug, _ = cmdCtx.App.Tenant.Slug()
	}

	res, err := cmdCtx.App.Accounts.Register(cmdCtx.Ctx, in)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "registered user %d: %s\n", res.UserID, res.Message)
}

func runApprove(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "approve")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: agenda approve <email>")
	}

	msg, err := cmdCtx.App.Accounts.Approve(cmdCtx.Ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "%s\n", msg)
}

func runLocale(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "locale")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch fs.NArg() {
	case 0:
		return writef(cmdCtx.Out, "%s\n", cmdCtx.App.Locale.Current())
	case 1:
		l, err := cmdCtx.App.Locale.Set(cmdCtx.Ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "%s\n", l)
	default:
		return errors.New("usage: agenda locale [tag]")
	}
}
