package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFilterNormalized(t *testing.T) {
	norm := Filter{Page: 0, Limit: 0}.Normalized()
	assert.Equal(t, 1, norm.Page)
	assert.Equal(t, DefaultLimit, norm.Limit)

	norm = Filter{Page: -3, Limit: -1}.Normalized()
	assert.Equal(t, 1, norm.Page)
	assert.Equal(t, DefaultLimit, norm.Limit)

	norm = Filter{Page: 4, Limit: 25}.Normalized()
	assert.Equal(t, 4, norm.Page)
	assert.Equal(t, 25, norm.Limit)
}

func TestFilterValues(t *testing.T) {
	values := Filter{Page: 2, Limit: 10}.Values()
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "10", values.Get("limit"))
	assert.False(t, values.Has("q"))
	assert.False(t, values.Has("status"))
	assert.False(t, values.Has("assignee_id"))

	status := StatusResolved
	assignee := uuid.New()
	values = Filter{
		Query:      "printer",
		Status:     &status,
		AssigneeID: &assignee,
		Page:       1,
		Limit:      10,
	}.Values()
	assert.Equal(t, "printer", values.Get("q"))
	assert.Equal(t, "resolved", values.Get("status"))
	assert.Equal(t, assignee.String(), values.Get("assignee_id"))
}

func TestListPageTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{"empty list still has one page", 0, 10, 1},
		{"exact multiple", 30, 10, 3},
		{"partial last page", 25, 10, 3},
		{"single item", 1, 10, 1},
		{"zero limit falls back to one page", 25, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := ListPage{Total: tt.total, Limit: tt.limit}
			assert.Equal(t, tt.want, page.TotalPages())
		})
	}
}
