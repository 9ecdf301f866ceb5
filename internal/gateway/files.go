package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/google/uuid"
)

// Upload posts r as a multipart form file under field. The JSON content type is
// not sent; the bearer token still is.
func (c *Client) Upload(
	ctx context.Context,
	path, field, filename string,
	r io.Reader,
) envelope.Envelope[json.RawMessage] {
	if field == "" {
		field = "file"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(field, filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	headers := http.Header{}
	headers.Set("Content-Type", mw.FormDataContentType())
	env := c.roundTrip(ctx, http.MethodPost, path, nil, pr, headers, nil)
	// Unblocks the writer goroutine when the request ended before consuming the body.
	_ = pr.CloseWithError(io.ErrClosedPipe)
	return env
}

// Download fetches a raw file. The caller must close the response body; closing it
// also releases the per-request timeout, which covers reading the body.
// A non-2xx answer is returned as an error carrying the envelope key when the
// body is an envelope, or internal_error otherwise.
func (c *Client) Download(ctx context.Context, path string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	start := time.Now()
	reqID := uuid.NewString()
	log := c.logger.With("method", http.MethodGet, "path", path, "request_id", reqID)

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		cancel()
		log.ErrorContext(ctx, "build request", "error", err)
		c.record(http.MethodGet, OutcomeTransport, time.Since(start))
		return nil, apperrors.Transport(err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set(headerRequestID, reqID)
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		log.WarnContext(ctx, "download failed", "error", err)
		c.record(http.MethodGet, OutcomeTransport, time.Since(start))
		return nil, apperrors.Transport(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.DebugContext(ctx, "download started", "status", resp.StatusCode, "duration", time.Since(start))
		c.record(http.MethodGet, OutcomeOK, time.Since(start))
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	defer cancel()
	body, readErr := readBody(resp)
	c.record(http.MethodGet, OutcomeError, time.Since(start))
	if readErr == nil {
		if env, perr := envelope.Parse(body); perr == nil && !env.Ok {
			log.DebugContext(ctx, "download rejected", "status", resp.StatusCode, "error_key", env.ErrorKey)
			return nil, env.Err()
		}
	}
	log.WarnContext(ctx, "download failed", "status", resp.StatusCode, "error", readErr)
	return nil, apperrors.Transport(errors.Join(
		fmt.Errorf("download %s: unexpected status %d", path, resp.StatusCode),
		readErr,
	))
}

// cancelOnClose releases the request context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
