package publish

import (
	"context"
	"crypto/sha1" //nolint:gosec // git object ids are SHA-1
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v71/github"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
)

// ErrReadDir is returned when the avatar directory cannot be listed.
var ErrReadDir = errors.New("failed to read avatar directory")

const uploadExt = ".png"

// Uploader pushes avatar files through the contents API, one commit per file.
type Uploader struct {
	client Client
	logger *logger.Logger
	cfg    config.PublishConfig
}

// UploadResult contains the results of an upload operation.
type UploadResult struct {
	Errors  []error
	Created int
	Updated int
	Skipped int
}

// NewUploader creates an uploader authenticated with cfg.Token.
func NewUploader(ctx context.Context, cfg config.PublishConfig, log *logger.Logger) (*Uploader, error) {
	client, err := NewGitHubClient(ctx, cfg.Token)
	if err != nil {
		return nil, err
	}

	return NewUploaderWithClient(client, cfg, log), nil
}

// NewUploaderWithClient creates a new uploader with a custom client (useful for testing).
func NewUploaderWithClient(client Client, cfg config.PublishConfig, log *logger.Logger) *Uploader {
	return &Uploader{
		client: client,
		logger: log,
		cfg:    cfg,
	}
}

// UploadDir uploads every PNG in dir. Per-file failures are collected in the
// result; only an unreadable directory is returned as an error.
func (u *Uploader) UploadDir(ctx context.Context, dir string) (*UploadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDir, err)
	}

	result := &UploadResult{}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), uploadExt) {
			files = append(files, e.Name())
		}
	}

	u.logger.Info("Starting avatar upload", "files", len(files), "repo", u.cfg.Owner+"/"+u.cfg.Repo, "branch", u.cfg.Branch)

	for i, name := range files {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			u.logger.Error("Failed to read avatar", "file", name, "error", err)
			result.Errors = append(result.Errors, err)

			continue
		}

		status, err := u.uploadFile(ctx, name, content)
		if err != nil {
			u.logger.Error("Failed to upload avatar", "file", name, "error", err)
			result.Errors = append(result.Errors, err)

			continue
		}

		switch status {
		case outcomeCreated:
			result.Created++
		case outcomeUpdated:
			result.Updated++
		default:
			result.Skipped++
		}

		if (i+1)%10 == 0 || i == len(files)-1 {
			u.logger.Info("Upload progress", "done", i+1, "total", len(files))
		}
	}

	return result, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

func (u *Uploader) uploadFile(ctx context.Context, name string, content []byte) (outcome, error) {
	remote := path.Join(u.cfg.Path, name)

	existing, _, resp, err := u.client.GetContents(ctx, u.cfg.Owner, u.cfg.Repo, remote,
		&github.RepositoryContentGetOptions{Ref: u.cfg.Branch})

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(fmt.Sprintf("%s: %s", u.cfg.Message, name)),
		Content: content,
		Branch:  github.Ptr(u.cfg.Branch),
	}

	switch {
	case err != nil && resp != nil && resp.StatusCode == http.StatusNotFound:
		if _, _, err := u.client.CreateFile(ctx, u.cfg.Owner, u.cfg.Repo, remote, opts); err != nil {
			return outcomeSkipped, fmt.Errorf("create %s: %w", remote, err)
		}

		return outcomeCreated, nil
	case err != nil:
		return outcomeSkipped, fmt.Errorf("get %s: %w", remote, err)
	}

	if existing.GetSHA() == BlobSHA(content) {
		u.logger.Debug("Avatar unchanged", "file", name)
		return outcomeSkipped, nil
	}

	opts.SHA = existing.SHA
	if _, _, err := u.client.UpdateFile(ctx, u.cfg.Owner, u.cfg.Repo, remote, opts); err != nil {
		return outcomeSkipped, fmt.Errorf("update %s: %w", remote, err)
	}

	return outcomeUpdated, nil
}

// BlobSHA returns the git blob object id of content.
func BlobSHA(content []byte) string {
	h := sha1.New() //nolint:gosec // git object ids are SHA-1
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)

	return hex.EncodeToString(h.Sum(nil))
}
