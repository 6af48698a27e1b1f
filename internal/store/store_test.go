package store

import (
	"context"
	"testing"
	"time"

	"mafia-be/internal/service/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *MatchStore {
	t.Helper()

	ms, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ms.Close() })

	return ms
}

func summaryAt(id string, ended time.Time) game.MatchSummary {
	return game.MatchSummary{
		ID:             id,
		RoomName:       "room-" + id,
		StartedAt:      ended.Add(-10 * time.Minute),
		EndedAt:        ended,
		WinningFaction: "town",
		WinningRoles:   []string{"Doctor", "Villager"},
		Participants: []game.Participant{
			{Username: "alice", Role: "Doctor", Won: true},
			{Username: "bob", Role: "Mafia", Won: false},
		},
		ConversationHistory: []game.Event{
			{Kind: game.EventChat, Message: "alice: hi", At: ended.Add(-time.Minute)},
		},
	}
}

func TestSaveAndLoadMatches(t *testing.T) {
	ms := openMemory(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, ms.SaveMatch(ctx, summaryAt("old", now.Add(-time.Hour))))
	require.NoError(t, ms.SaveMatch(ctx, summaryAt("new", now)))

	matches, err := ms.RecentMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	latest := matches[0]
	assert.Equal(t, "new", latest.ID)
	assert.Equal(t, "room-new", latest.RoomName)
	assert.Equal(t, "town", latest.WinningFaction)
	assert.Equal(t, []string{"Doctor", "Villager"}, latest.WinningRoles)
	assert.True(t, latest.EndedAt.Equal(now))
	assert.ElementsMatch(t, []game.Participant{
		{Username: "alice", Role: "Doctor", Won: true},
		{Username: "bob", Role: "Mafia", Won: false},
	}, latest.Participants)
	require.Len(t, latest.ConversationHistory, 1)
	assert.Equal(t, "alice: hi", latest.ConversationHistory[0].Message)
	assert.Empty(t, latest.ActionHistory)

	limited, err := ms.RecentMatches(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestSaveMatchRejectsDuplicateID(t *testing.T) {
	ms := openMemory(t)
	ctx := context.Background()

	summary := summaryAt("dup", time.Now())
	require.NoError(t, ms.SaveMatch(ctx, summary))
	assert.Error(t, ms.SaveMatch(ctx, summary))

	matches, err := ms.RecentMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Participants, 2)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("nosuchdriver", "whatever")
	assert.Error(t, err)
}
