package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillRoom(t *testing.T, r *Room, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		_, code := r.AddPlayer(connOf(i), fmt.Sprintf("player%d", i))
		require.Equal(t, JoinOK, code)
	}
}

func TestRoomStartsExactlyAtSize(t *testing.T) {
	m := newRecordingMessenger()
	r := NewRoom("lobby", testConfig(5), m)

	fillRoom(t, r, 4)
	assert.False(t, r.Started())
	assert.Empty(t, m.roomOfType("lobby", RESP_UPDATE_DAY_TIME))

	_, code := r.AddPlayer(connOf(4), "player4")
	require.Equal(t, JoinOK, code)
	require.True(t, r.Started())
	assert.Equal(t, PhaseFirstDay, r.Phase())

	for i := 0; i < 5; i++ {
		assert.Equal(t, 1, m.countPlayer(connOf(i), RESP_ASSIGN_PLAYER_ROLE), "player %d", i)
		assert.Equal(t, 1, m.countPlayer(connOf(i), RESP_JOIN_ROOM), "player %d", i)
	}

	dayTimes := m.roomOfType("lobby", RESP_UPDATE_DAY_TIME)
	require.Len(t, dayTimes, 1)
	data, ok := dayTimes[0].Data.(DayTimeData)
	require.True(t, ok)
	assert.Equal(t, 1, data.DayNumber)
	assert.Equal(t, string(TimeDay), data.Time)

	roleLists := m.roomOfType("lobby", RESP_ROLE_LIST)
	require.Len(t, roleLists, 1)
	assert.Len(t, roleLists[0].Data.(RoleListData).RoleList, 5)

	mafia := 0
	for _, p := range r.Players() {
		require.NotNil(t, p.Role)
		assert.Equal(t, p.Position, p.Role.State().Owner)
		if p.Group() == GroupMafia {
			mafia++
		}
	}
	assert.GreaterOrEqual(t, mafia, 1)
}

func TestRoomJoinRejections(t *testing.T) {
	m := newRecordingMessenger()
	r := NewRoom("lobby", testConfig(3), m)

	_, code := r.AddPlayer("a", "alice")
	require.Equal(t, JoinOK, code)

	_, code = r.AddPlayer("b", "alice")
	assert.Equal(t, JoinDuplicate, code)

	_, code = r.AddPlayer("a", "alice2")
	assert.Equal(t, JoinDuplicate, code)

	_, code = r.AddPlayer("c", "bad name!")
	assert.Equal(t, JoinInvalidName, code)

	_, code = r.AddPlayer("c", "a-very-long-username-indeed")
	assert.Equal(t, JoinInvalidName, code)

	_, code = r.AddPlayer("b", "bob")
	require.Equal(t, JoinOK, code)
	_, code = r.AddPlayer("c", "carol")
	require.Equal(t, JoinOK, code)
	require.True(t, r.Started())

	_, code = r.AddPlayer("d", "dave")
	assert.Equal(t, JoinFull, code)
	assert.Equal(t, 3, r.PlayerCount())
}

func TestRoomLeaveBeforeStartRenumbers(t *testing.T) {
	r := NewRoom("lobby", testConfig(5), newRecordingMessenger())
	fillRoom(t, r, 3)

	require.NoError(t, r.RemovePlayer(connOf(0)))
	assert.ErrorIs(t, r.RemovePlayer(connOf(0)), ErrNotInRoom)

	players := r.Players()
	require.Len(t, players, 2)
	for i, p := range players {
		assert.Equal(t, i, p.Position)
	}
	assert.Equal(t, "player1", players[0].Name)
}

func TestRoomLeaveAfterStartAbandons(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)

	require.NoError(t, r.RemovePlayer(connOf(3)))
	p := r.players.ByPosition(3)
	assert.Empty(t, p.ConnID)
	assert.True(t, p.IsAlive)

	r.state.SetTime(TimeNight)
	r.resolveNight()

	assert.False(t, p.IsAlive)
	assert.Len(t, r.Players(), 5)
}

func TestDispatchJoinCommandReplies(t *testing.T) {
	r := NewRoom("lobby", testConfig(3), newRecordingMessenger())

	reply := make(chan JoinResult, 1)
	err := r.Dispatch(RequestWrapper{
		ReqType:    REQ_JOIN_ROOM,
		ConnID:     "a",
		NativeData: &JoinCommand{Username: " alice ", Reply: reply},
	})
	require.NoError(t, err)

	res := <-reply
	assert.Equal(t, JoinOK, res.Code)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, "lobby", res.RoomName)
	assert.False(t, res.Started)

	err = r.Dispatch(RequestWrapper{ReqType: "nonsense"})
	assert.Error(t, err)
}

func TestDispatchDecodesClientRequests(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	r.phases.Start(PhaseDay)

	err := r.Dispatch(RequestWrapper{
		ReqType: REQ_VOTE,
		ConnID:  connOf(1),
		Data:    mustMarshal(VoteRequest{Position: pos(0), IsDay: true}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.players.ByPosition(0).VotesReceived)

	err = r.Dispatch(RequestWrapper{
		ReqType: REQ_SEND_MESSAGE,
		ConnID:  connOf(2),
		Data:    mustMarshal(SentMessageRequest{Message: "hello", IsDay: true}),
	})
	require.NoError(t, err)

	var found bool
	for _, resp := range m.roomOfType("rigged", RESP_RECEIVE_MESSAGE) {
		if resp.Data.(ReceiveMessageData).Message == "p2: hello" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNightChatIsMafiaOnly(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleGodfather, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleSentMessage(connOf(0), "who tonight?", false))
	assert.True(t, m.playerSaw(connOf(1), "[mafia] p0: who tonight?"))
	assert.False(t, m.playerSaw(connOf(2), "[mafia] p0: who tonight?"))

	err := r.HandleSentMessage(connOf(2), "hello?", false)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestDeadChatOnlyReachesDead(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeDay)
	r.killPlayer(r.players.ByPosition(1), "was killed")
	r.killPlayer(r.players.ByPosition(2), "was killed")

	require.NoError(t, r.HandleSentMessage(connOf(1), "boo", true))
	assert.True(t, m.playerSaw(connOf(2), "[dead] p1: boo"))
	assert.False(t, m.playerSaw(connOf(3), "[dead] p1: boo"))
}

func TestWhisperLeaksToTapper(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleTapper, RoleVillager, RoleVillager, RoleVillager)

	r.state.SetTime(TimeNight)
	require.NoError(t, r.HandleVisit(connOf(1), pos(2), false))
	r.resolveNight()
	r.state.IncrementDay()
	r.state.SetTime(TimeDay)

	require.NoError(t, r.HandleWhisper(connOf(2), 3, "vote p0", true))
	assert.True(t, m.playerSaw(connOf(3), "Whisper from p2: vote p0"))
	assert.True(t, m.playerSaw(connOf(1), "You overheard p2 whisper to p3: vote p0"))
	assert.False(t, m.playerSaw(connOf(0), "You overheard p2 whisper to p3: vote p0"))
}

func TestEndGameLocksAndSummarizes(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleSurvivor)
	r.killPlayer(r.players.ByPosition(0), "was killed")

	res := r.win.Evaluate(r)
	require.NotNil(t, res)
	r.EndGame(res)

	assert.True(t, r.Ended())
	assert.Equal(t, TimeLocked, r.State().Time)
	assert.Equal(t, []string{"rigged"}, m.disconnected)
	assert.Len(t, m.roomOfType("rigged", RESP_BLOCK_MESSAGES), 1)

	summary := r.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, string(GroupTown), summary.WinningFaction)
	assert.ElementsMatch(t, []string{"Villager", "Survivor"}, summary.WinningRoles)
	require.Len(t, summary.Participants, 4)
	assert.False(t, summary.Participants[0].Won)
	assert.True(t, summary.Participants[3].Won)
	assert.NotEmpty(t, summary.ActionHistory)

	err := r.HandleSentMessage(connOf(1), "gg", true)
	assert.ErrorIs(t, err, ErrGameOver)
}
