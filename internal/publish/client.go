// Package publish uploads generated avatars to a GitHub repository.
package publish

import (
	"context"
	"errors"

	"github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no GitHub token is configured.
var ErrNoToken = errors.New("github token not provided")

// Client is the subset of the GitHub contents API used for uploads.
type Client interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
}

// Ensure GitHubClient implements Client.
var _ Client = (*GitHubClient)(nil)

// GitHubClient wraps the go-github repositories service.
type GitHubClient struct {
	client *github.Client
}

// NewGitHubClient creates a client authenticated with a personal access token.
func NewGitHubClient(ctx context.Context, token string) (*GitHubClient, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	return &GitHubClient{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
	}, nil
}

func (g *GitHubClient) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	return g.client.Repositories.GetContents(ctx, owner, repo, path, opts)
}

func (g *GitHubClient) CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error) {
	return g.client.Repositories.CreateFile(ctx, owner, repo, path, opts)
}

func (g *GitHubClient) UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error) {
	return g.client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
}
