package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/httputil"
)

// REST reads a PostgREST table, as exposed by Supabase:
//
//	GET <base>/rest/v1/<table>?select=*&order=created_at.asc
//
// The API key travels in the apikey header and, unless a separate token is
// configured, as the bearer token.
type REST struct {
	base   string
	table  string
	apiKey string
	token  string
	client *httputil.Client
}

// NewREST returns a repository for the project at base.
func NewREST(base string, opts Options) *REST {
	r := &REST{
		base:   strings.TrimRight(base, "/"),
		table:  opts.table(),
		apiKey: opts.APIKey,
		token:  opts.Token,
		client: opts.HTTP,
	}
	if r.token == "" {
		r.token = r.apiKey
	}
	if r.client == nil {
		r.client = httputil.NewClient()
	}
	return r
}

// URL returns the listing endpoint.
func (r *REST) URL() string {
	base := r.base
	if !strings.Contains(base, "/rest/v1") {
		base += "/rest/v1"
	}
	return base + "/" + url.PathEscape(r.table) + "?select=*&order=created_at.asc"
}

func (r *REST) Name() string { return "rest:" + r.base + "/" + r.table }
func (r *REST) Close() error { return nil }

func (r *REST) List(ctx context.Context) ([]family.Person, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if r.apiKey != "" {
		header.Set("apikey", r.apiKey)
	}
	if r.token != "" {
		header.Set("Authorization", "Bearer "+r.token)
	}

	var people []family.Person
	if err := r.client.GetJSON(ctx, r.URL(), header, &people); err != nil {
		return nil, err
	}
	return people, nil
}
