package types

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// DefaultLimit is the page size used when a filter does not set one.
const DefaultLimit = 10

// Filter drives the list fetch. Empty query/status/assignee fields are
// omitted from the query string; page and limit are always sent.
type Filter struct {
	Query      string
	Status     *Status
	AssigneeID *uuid.UUID
	Page       int
	Limit      int
}

// Normalized returns a copy with page clamped to at least 1 and limit
// defaulted when unset or non-positive.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	return f
}

// Values builds the query string for GET /tickets. Call on the
// Normalized form.
func (f Filter) Values() url.Values {
	params := url.Values{}
	if f.Query != "" {
		params.Set("q", f.Query)
	}
	if f.Status != nil {
		params.Set("status", string(*f.Status))
	}
	if f.AssigneeID != nil {
		params.Set("assignee_id", f.AssigneeID.String())
	}
	params.Set("page", strconv.Itoa(f.Page))
	params.Set("limit", strconv.Itoa(f.Limit))
	return params
}

// ListPage is one page of ticket summaries as returned by the list
// endpoint. Replaced wholesale on every refresh.
type ListPage struct {
	Items []TicketSummary `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

// TotalPages derives the page count: ceil(total/limit), minimum 1.
func (p ListPage) TotalPages() int {
	if p.Limit <= 0 {
		return 1
	}
	pages := (p.Total + p.Limit - 1) / p.Limit
	if pages < 1 {
		return 1
	}
	return pages
}
