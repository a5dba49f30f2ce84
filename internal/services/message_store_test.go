package services

import (
	"testing"
	"time"

	"citizens-connect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func message(id, ticketID string, offset time.Duration) models.Message {
	return models.Message{
		ID:        id,
		TicketID:  ticketID,
		Content:   "comment " + id,
		Timestamp: baseTime.Add(offset),
	}
}

func TestMessageStore_EchoDoesNotDuplicate(t *testing.T) {
	store := NewMessageStore()
	require.True(t, store.Append(message("m1", "t1", 0)))

	assert.False(t, store.Ingest(message("m1", "t1", 0)))

	thread := store.Thread("t1")
	require.Len(t, thread, 1)
	assert.False(t, thread[0].Pending)
}

func TestMessageStore_AppendRejectsDuplicatesAndBlankIDs(t *testing.T) {
	store := NewMessageStore()
	require.True(t, store.Append(message("m1", "t1", 0)))
	assert.False(t, store.Append(message("m1", "t1", 0)))
	assert.False(t, store.Append(message("", "t1", 0)))
	assert.False(t, store.Append(message("m2", "", 0)))
}

func TestMessageStore_MergeIsIdempotent(t *testing.T) {
	store := NewMessageStore()
	batch := []models.Message{message("m1", "t1", time.Minute), message("m2", "t1", 0)}

	assert.Equal(t, 2, store.Merge(batch))
	assert.Equal(t, 0, store.Merge(batch))

	thread := store.Thread("t1")
	require.Len(t, thread, 2)
	assert.Equal(t, "m2", thread[0].ID, "thread is ordered oldest first")
}

func TestMessageStore_IngestUsesLegacyIDWhenIDMissing(t *testing.T) {
	store := NewMessageStore()
	m := message("", "t1", 0)
	m.LegacyID = "665f1c"

	require.True(t, store.Ingest(m))
	assert.True(t, store.Has("665f1c"))
}

func TestMessageStore_ToggleLikeResolvesLegacyShapes(t *testing.T) {
	store := NewMessageStore()
	legacy := message("msg_abc_9f2", "t1", 0)
	legacy.LegacyID = "mongo-1"
	store.Merge([]models.Message{legacy, message("msg_other_77", "t1", time.Minute)})

	tests := []struct {
		name   string
		lookup string
		wantID string
	}{
		{"exact id", "msg_abc_9f2", "msg_abc_9f2"},
		{"legacy _id", "mongo-1", "msg_abc_9f2"},
		{"trailing segment", "client_77", "msg_other_77"},
		{"synthesized timestamp and index", "msg_2025-06-01T10:01:00.000Z_1", "msg_other_77"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := store.ToggleLike("t1", tt.lookup, "u1")
			require.True(t, ok)
			assert.Equal(t, tt.wantID, got.ID)
			// toggle back so each case starts unliked
			store.ToggleLike("t1", tt.lookup, "u1")
		})
	}

	_, _, ok := store.ToggleLike("t1", "nope_", "u1")
	assert.False(t, ok)
}

func TestMessageStore_ToggleLikeRoundTrip(t *testing.T) {
	store := NewMessageStore()
	store.Ingest(message("m1", "t1", 0))

	got, liked, ok := store.ToggleLike("t1", "m1", "u1")
	require.True(t, ok)
	assert.True(t, liked)
	assert.Equal(t, 1, got.LikeCount)

	got, liked, _ = store.ToggleLike("t1", "m1", "u1")
	assert.False(t, liked)
	assert.Equal(t, 0, got.LikeCount)
	assert.Empty(t, got.Likes)
}

func TestMessageStore_ApplyLikesDerivesCount(t *testing.T) {
	store := NewMessageStore()
	store.Ingest(message("m1", "t1", 0))

	require.True(t, store.ApplyLikes("m1", []string{"a", "b", "b"}))
	thread := store.Thread("t1")
	assert.Equal(t, []string{"a", "b"}, thread[0].Likes)
	assert.Equal(t, 2, thread[0].LikeCount)

	assert.False(t, store.ApplyLikes("missing", []string{"a"}))
}

func TestMessageStore_Delete(t *testing.T) {
	store := NewMessageStore()
	store.Merge([]models.Message{message("m1", "t1", 0), message("m2", "t1", time.Second)})

	assert.True(t, store.Delete("m1"))
	assert.False(t, store.Delete("m1"))
	thread := store.Thread("t1")
	require.Len(t, thread, 1)
	assert.Equal(t, "m2", thread[0].ID)
}
