package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub REST client used for org discovery. Clones do not
// go through it; they speak git-over-HTTPS directly.
type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

func NewClient(ctx context.Context, token string) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	transport := http.DefaultTransport
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport}

	return &Client{
		Client: github.NewClient(tc),
		HTTP:   tc,
	}, nil
}
