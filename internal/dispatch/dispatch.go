// Package dispatch fires the GitHub repository_dispatch event that makes
// the summarizer workflow run against another repository.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
)

// EventType is the repository_dispatch event the workflow listens for.
const EventType = "summarize_repo"

var (
	ErrInvalidRepo  = errors.New("invalid repository format, use 'owner/repo'")
	ErrMissingToken = errors.New("GitHub token not provided, set PERSONAL_ACCESS_TOKEN or GITHUB_TOKEN")
)

// Client posts dispatch events to the workflow repository, which lives
// under the same owner as the repository being summarized.
type Client struct {
	apiURL       string
	token        string
	workflowRepo string
}

func NewClient(apiURL, token, workflowRepo string) *Client {
	return &Client{
		apiURL:       strings.TrimSuffix(apiURL, "/") + "/",
		token:        token,
		workflowRepo: workflowRepo,
	}
}

type clientPayload struct {
	Repository     string `json:"repository"`
	RepositoryName string `json:"repository_name"`
}

// ParseRepo splits "owner/repo".
func ParseRepo(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, fullName)
	}
	return parts[0], parts[1], nil
}

func (c *Client) github() (*github.Client, error) {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing GitHub API url %q: %w", c.apiURL, err)
	}
	gh := github.NewClient(nil).WithAuthToken(c.token)
	gh.BaseURL = base
	return gh, nil
}

// Trigger asks the workflow repository to summarize fullName. Any non-2xx
// response is returned as an error; there is no retry.
func (c *Client) Trigger(ctx context.Context, fullName string) error {
	if c.token == "" {
		return ErrMissingToken
	}
	owner, repo, err := ParseRepo(fullName)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(clientPayload{
		Repository:     fullName,
		RepositoryName: repo,
	})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	payload := json.RawMessage(raw)

	gh, err := c.github()
	if err != nil {
		return err
	}

	if _, _, err := gh.Repositories.Dispatch(ctx, owner, c.workflowRepo, github.DispatchRequestOptions{
		EventType:     EventType,
		ClientPayload: &payload,
	}); err != nil {
		return fmt.Errorf("dispatching %s to %s/%s: %w", EventType, owner, c.workflowRepo, err)
	}
	return nil
}
