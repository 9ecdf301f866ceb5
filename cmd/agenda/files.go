package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

func runUpload(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "upload")
	name := fs.String("name", "", "File name sent to the server; defaults to the base name of the path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: agenda upload <path>")
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	filename := strings.TrimSpace(*name)
	if filename == "" {
		filename = filepath.Base(path)
	}

	env := cmdCtx.App.API.UploadFile(cmdCtx.Ctx, filename, f)
	if err := env.Err(); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "uploaded %s as asset %d\n", filename, env.Value().AssetID)
}

func runDownload(cmdCtx *commandContext, args []string) (err error) {
	fs := newFlagSet(cmdCtx, "download")
	dest := fs.StringP("out", "O", "", "Destination path; defaults to the server file name in the current directory, - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: agenda download <asset-id>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	resp, err := cmdCtx.App.API.DownloadFile(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close response: %w", closeErr))
		}
	}()

	target := *dest
	if target == "" {
		target = attachmentName(resp.Header.Get("Content-Disposition"), fmt.Sprintf("asset-%d", id))
	}
	if target == "-" {
		_, err = io.Copy(cmdCtx.Out, resp.Body)
		return err
	}

	n, err := writeFile(target, resp.Body)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Err, "saved %s (%d bytes)\n", target, n)
}

// attachmentName returns the base file name from a Content-Disposition header.
func attachmentName(header, fallback string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == string(filepath.Separator) || name == "" {
		return fallback
	}
	return name
}

func writeFile(path string, r io.Reader) (n int64, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", path, closeErr))
		}
	}()

	n, err = io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}
