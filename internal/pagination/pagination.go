// Package pagination wraps listing results in a counted, linked envelope:
// count/limit/page/last/results plus first/previous/current/next/last URLs.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the page size used when the client sends none.
	DefaultLimit = 10
	// MaxLimit caps the client-requested page size.
	MaxLimit = 1000

	pageParam  = "page"
	limitParam = "limit"
)

// Params is the requested page window. Pages are 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseParams reads page/limit from the request query. Invalid or missing
// values fall back to the defaults; limit is capped at MaxLimit.
func ParseParams(r *http.Request) Params {
	q := r.URL.Query()
	p := Params{Page: 1, Limit: DefaultLimit}
	if n, err := strconv.Atoi(q.Get(pageParam)); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get(limitParam)); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Links carries absolute URLs for navigating the listing. Previous and
// Next are null at the respective boundaries.
type Links struct {
	First    string  `json:"first"`
	Previous *string `json:"previous"`
	Current  string  `json:"current"`
	Next     *string `json:"next"`
	Last     string  `json:"last"`
}

// Envelope is the stable response shape for listing endpoints.
type Envelope struct {
	Count   int64 `json:"count"`
	Limit   int   `json:"limit"`
	Page    int   `json:"page"`
	Last    int   `json:"last"`
	Results any   `json:"results"`
	Links   Links `json:"links"`
}

// New builds the envelope for one page of results. Links are derived from
// the incoming request URL by rewriting its page query parameter.
func New(r *http.Request, p Params, count int64, results any) Envelope {
	last := int((count + int64(p.Limit) - 1) / int64(p.Limit))
	if last < 1 {
		last = 1
	}

	env := Envelope{
		Count:   count,
		Limit:   p.Limit,
		Page:    p.Page,
		Last:    last,
		Results: results,
		Links: Links{
			First:   pageURL(r, 1),
			Current: absoluteURL(r, *r.URL),
			Last:    pageURL(r, last),
		},
	}
	if p.Page > 1 {
		prev := pageURL(r, p.Page-1)
		env.Links.Previous = &prev
	}
	if p.Page < last {
		next := pageURL(r, p.Page+1)
		env.Links.Next = &next
	}
	return env
}

func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	q.Set(pageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return absoluteURL(r, u)
}

func absoluteURL(r *http.Request, u url.URL) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u.Scheme = scheme
	u.Host = r.Host
	return u.String()
}
