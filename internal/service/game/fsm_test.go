package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	matches []MatchSummary
	err     error
}

func (s *memorySink) SaveMatch(_ context.Context, summary MatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.matches = append(s.matches, summary)
	return nil
}

func TestGameMachineServesRequestsUntilDone(t *testing.T) {
	room := NewRoom("fsm", testConfig(5), newRecordingMessenger())
	doneCh := make(chan struct{})
	gm := NewGameMachine(room, nil, doneCh)

	go gm.Start()

	reply := make(chan JoinResult, 1)
	gm.GetReqCh() <- RequestWrapper{
		ReqType:    REQ_JOIN_ROOM,
		ConnID:     "a",
		NativeData: &JoinCommand{Username: "alice", Reply: reply},
	}

	select {
	case res := <-reply:
		assert.Equal(t, JoinOK, res.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("join was not answered")
	}

	info := make(chan RoomInfo, 1)
	gm.GetReqCh() <- RequestWrapper{
		ReqType:    REQ_ROOM_INFO,
		NativeData: &RoomInfoQuery{Reply: info},
	}
	select {
	case got := <-info:
		assert.Equal(t, 1, got.Players)
		assert.False(t, got.Started)
	case <-time.After(2 * time.Second):
		t.Fatal("room info was not answered")
	}

	assert.False(t, gm.IsFinished())
	close(doneCh)

	assert.Eventually(t, gm.IsFinished, 2*time.Second, 10*time.Millisecond)
}

func TestGameMachinePersistsSummary(t *testing.T) {
	room, _ := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager)
	sink := &memorySink{}
	gm := NewGameMachine(room, sink, make(chan struct{}))

	room.EndGame(nil)
	gm.persist()

	require.Len(t, sink.matches, 1)
	assert.Equal(t, WinnerNobody, sink.matches[0].WinningFaction)
	assert.Equal(t, "rigged", sink.matches[0].RoomName)
	assert.Len(t, sink.matches[0].Participants, 3)

	sink.err = errors.New("disk full")
	assert.NotPanics(t, gm.persist)
}

func TestGameMachineExitsWhenGameEnds(t *testing.T) {
	room, _ := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	room.cfg.SecondsPerPlayer = 0
	room.cfg.FirstDay = 5 * time.Millisecond
	room.cfg.Night = 5 * time.Millisecond
	room.cfg.MinimumDay = 5 * time.Millisecond

	sink := &memorySink{}
	gm := NewGameMachine(room, sink, make(chan struct{}))

	// 无人死亡，定时器会一路推进到平局
	room.phases.Start(PhaseFirstDay)
	go gm.Start()

	assert.Eventually(t, gm.IsFinished, 5*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.matches, 1)
	assert.Equal(t, WinnerNobody, sink.matches[0].WinningFaction)
}
