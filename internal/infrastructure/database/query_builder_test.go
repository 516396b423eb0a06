package database

import (
	"reflect"
	"testing"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/stretchr/testify/assert"
)

func TestSafeColumnName(t *testing.T) {
	typ := reflect.TypeOf(domain.SongRequest{})

	col, ok := SafeColumnName("Order", typ)
	assert.True(t, ok)
	assert.Equal(t, "queue_order", col)

	col, ok = SafeColumnName("ParticipantID", typ)
	assert.True(t, ok)
	assert.Equal(t, "participant_id", col)

	col, ok = SafeColumnName("SongURL", typ)
	assert.True(t, ok)
	assert.Equal(t, "song_url", col)

	_, ok = SafeColumnName("id; DROP TABLE song_requests", typ)
	assert.False(t, ok)
}

func TestGenerateDynamicQuery(t *testing.T) {
	f := &filter.DynamicFilter{
		Filter: map[string]filter.Filter{
			"Status":        filter.Equals("pending"),
			"SongTitle":     {Type: filter.FilterContains, From: "queen"},
			"Unknown":       filter.Equals("x"),
			"ParticipantID": filter.Equals("u1"),
		},
	}

	where, args := GenerateDynamicQuery[domain.SongRequest](f, "postgres")
	assert.Equal(t, "participant_id = ? AND song_title ILIKE ? AND status = ?", where)
	assert.Equal(t, []any{"u1", "%queen%", "pending"}, args)

	where, _ = GenerateDynamicQuery[domain.SongRequest](f, "sqlite")
	assert.Contains(t, where, "song_title LIKE ?")

	where, args = GenerateDynamicQuery[domain.SongRequest](nil, "postgres")
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestGenerateDynamicQueryInRangeNeedsBounds(t *testing.T) {
	f := &filter.DynamicFilter{Filter: map[string]filter.Filter{
		"Timestamp": {Type: filter.FilterInRange, From: "2024-01-01"},
	}}
	where, _ := GenerateDynamicQuery[domain.AuditLog](f, "postgres")
	assert.Empty(t, where)

	f.Filter["Timestamp"] = filter.Filter{Type: filter.FilterInRange, From: "2024-01-01", To: "2024-02-01"}
	where, args := GenerateDynamicQuery[domain.AuditLog](f, "postgres")
	assert.Equal(t, "timestamp BETWEEN ? AND ?", where)
	assert.Len(t, args, 2)
}

func TestGenerateDynamicSort(t *testing.T) {
	f := &filter.DynamicFilter{Sort: []filter.Sort{
		{ColID: "Order", Sort: filter.SortAsc},
		{ColID: "SubmittedAt", Sort: "sideways"},
		{ColID: "Nope", Sort: filter.SortDesc},
		{ColID: "SubmittedAt", Sort: filter.SortDesc},
	}}

	assert.Equal(t, "queue_order ASC, submitted_at DESC", GenerateDynamicSort[domain.SongRequest](f))
	assert.Empty(t, GenerateDynamicSort[domain.SongRequest](&filter.DynamicFilter{}))
}
