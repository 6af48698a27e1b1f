package game

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingMessenger 记录房间发出的全部消息
type recordingMessenger struct {
	mu           sync.Mutex
	players      map[string][]ResponseWrapper
	rooms        map[string][]ResponseWrapper
	disconnected []string
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{
		players: make(map[string][]ResponseWrapper),
		rooms:   make(map[string][]ResponseWrapper),
	}
}

func (m *recordingMessenger) SendPlayerMessage(connID string, resp ResponseWrapper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[connID] = append(m.players[connID], resp)
}

func (m *recordingMessenger) SendRoomMessage(room string, resp ResponseWrapper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room] = append(m.rooms[room], resp)
}

func (m *recordingMessenger) DisconnectSockets(room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = append(m.disconnected, room)
}

func (m *recordingMessenger) countPlayer(connID, respType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, resp := range m.players[connID] {
		if resp.RespType == respType {
			n++
		}
	}
	return n
}

func (m *recordingMessenger) roomOfType(room, respType string) []ResponseWrapper {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ResponseWrapper
	for _, resp := range m.rooms[room] {
		if resp.RespType == respType {
			out = append(out, resp)
		}
	}
	return out
}

// playerSaw 判断玩家是否收到过某条私信
func (m *recordingMessenger) playerSaw(connID, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resp := range m.players[connID] {
		if data, ok := resp.Data.(ReceiveMessageData); ok && data.Message == message {
			return true
		}
	}
	return false
}

// roomSaw 判断房间广播过某条消息
func (m *recordingMessenger) roomSaw(room, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resp := range m.rooms[room] {
		if data, ok := resp.Data.(ReceiveMessageData); ok && data.Message == message {
			return true
		}
	}
	return false
}

func testConfig(size int) Config {
	return Config{
		Size:             size,
		SecondsPerPlayer: 1,
		FirstDay:         time.Second,
		Night:            time.Second,
		MinimumDay:       time.Second,
		MaxDays:          25,
		NoKillDays:       3,
		Rand:             rand.New(rand.NewPCG(1, 2)),
	}
}

func connOf(i int) string {
	return fmt.Sprintf("conn-%d", i)
}

// newRiggedRoom 创建一个已开局、角色按座位固定的房间，不进入任何阶段
func newRiggedRoom(t *testing.T, kinds ...RoleKind) (*Room, *recordingMessenger) {
	t.Helper()

	m := newRecordingMessenger()
	r := NewRoom("rigged", testConfig(len(kinds)+1), m)

	for i, kind := range kinds {
		p := r.players.Add(connOf(i), fmt.Sprintf("p%d", i))

		role, err := NewRole(kind)
		require.NoError(t, err)
		role.State().Owner = p.Position
		p.Role = role
	}
	r.roleList = kinds

	mafia := NewFaction(GroupMafia)
	mafia.FindMembers(r.players)
	r.factions = []*Faction{mafia}

	r.startedAt = time.Now()
	r.state.SetStarted(true)
	r.state.SetDayNumber(1)
	r.state.SetEndDay(1 + r.cfg.NoKillDays)

	return r, m
}

func pos(i int) *int {
	return &i
}

// fireTimeout 模拟当前阶段的定时器到期
func fireTimeout(t *testing.T, r *Room) {
	t.Helper()

	pending := r.PendingTimeout()
	require.NotNil(t, pending, "no pending timeout in phase %q", r.Phase())
	r.HandleTimeout(*pending)
}
