package github

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL     = "https://api.github.com"
	userAgent  = "spigell/gig-ranker"
	apiVersion = "2022-11-28"
	// GitHub search caps a page at 100 results.
	maxPerPage = 100
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client. An empty token issues anonymous requests.
func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// SearchRepositories runs a single repository search request. It never follows pages.
func (c *Client) SearchRepositories(params *SearchParams) (*Repositories, error) {
	return c.search(params)
}
