package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/five82/alfalfa/internal/sim"
)

// UploadFile posts the file at path as multipart form data to target, with
// fields written ahead of the file part. The upload target answers 204 on
// success. target may be absolute or relative to the server host.
func (t *Transport) UploadFile(ctx context.Context, target string, fields map[string]string, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return &sim.ClientError{Kind: sim.KindInvalidArgument, Message: fmt.Sprintf("open model %q", path), Err: err}
	}
	defer file.Close()

	ctx, cancel := t.requestContext(ctx)
	defer cancel()

	targetURL, err := t.resolveTarget(target)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(form, fields, filepath.Base(path), file))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL.String(), pr)
	if err != nil {
		_ = pr.Close()
		return &sim.ClientError{Kind: sim.KindInvalidArgument, Message: "create upload request", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.http.Do(req)
	if err != nil {
		_ = pr.Close()
		return classifyNetworkError(ctx, http.MethodPost, targetURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		apiErr := decodeAPIError(resp)
		if e, ok := apiErr.(*sim.APIError); ok && e.Message == "" {
			e.Message = "could not upload model"
		}
		return apiErr
	}
	t.logger.Debug("model uploaded", "path", path, "target", targetURL.Redacted())
	return nil
}

func writeForm(form *multipart.Writer, fields map[string]string, filename string, file io.Reader) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := form.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy model: %w", err)
	}
	return form.Close()
}

func (t *Transport) resolveTarget(target string) (*url.URL, error) {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return nil, sim.NewClientError(sim.KindDecode, "server returned an empty upload target")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &sim.ClientError{Kind: sim.KindDecode, Message: fmt.Sprintf("parse upload target %q", target), Err: err}
	}
	if u.IsAbs() {
		return u, nil
	}
	root := *t.baseURL
	root.Path = "/"
	return root.ResolveReference(u), nil
}
