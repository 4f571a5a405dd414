package github

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath = "/search/repositories"
)

type SearchParams struct {
	// ghparam is custom tag for reflect. Please see below.
	Query   string `mapstructure:"query" ghparam:"q"`
	Sort    string `mapstructure:"sort" ghparam:"sort"`
	Order   string `mapstructure:"order" ghparam:"order"`
	PerPage int    `mapstructure:"per-page" ghparam:"per_page"`
}

type Repositories struct {
	Items []*Repository
}

type Repository struct {
	FullName        string   `json:"full_name"`
	HTMLURL         string   `json:"html_url"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Topics          []string `json:"topics"`
}

func (r *Repositories) Len() int {
	return len(r.Items)
}

func (c *Client) search(params *SearchParams) (*Repositories, error) {
	if params == nil || params.Query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	p := *params
	if p.Sort == "" {
		p.Sort = "stars"
	}
	if p.Order == "" {
		p.Order = "desc"
	}
	if p.PerPage <= 0 || p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}

	items, err := c.GetItems(fmt.Sprintf("%s%s", c.APIURL, SearchPath), buildParams(&p))
	if err != nil {
		return nil, err
	}

	var repositories []*Repository
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &repositories,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode repositories: %w", err)
	}

	return &Repositories{
		Items: repositories,
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()
	for _, field := range reflect.VisibleFields(value.Type()) {
		// Our custom tag is using here.
		key := field.Tag.Get("ghparam")
		if key == "" {
			continue
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case string:
			if v != "" {
				q.Set(key, v)
			}
		case int:
			if v != 0 {
				q.Set(key, strconv.Itoa(v))
			}
		}
	}

	return q
}
