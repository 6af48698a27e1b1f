package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseCycleAndStaleTimeouts(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	r.phases.Start(PhaseFirstDay)
	require.Equal(t, PhaseFirstDay, r.Phase())
	assert.Equal(t, TimeDay, r.State().Time)

	pending := *r.PendingTimeout()

	stale := pending
	stale.Seq--
	r.HandleTimeout(stale)
	assert.Equal(t, PhaseFirstDay, r.Phase())

	wrongPhase := pending
	wrongPhase.Phase = PhaseNight
	r.HandleTimeout(wrongPhase)
	assert.Equal(t, PhaseFirstDay, r.Phase())

	r.HandleTimeout(pending)
	require.Equal(t, PhaseNight, r.Phase())
	assert.Equal(t, TimeNight, r.State().Time)
	assert.Equal(t, 1, r.State().DayNumber)

	// 同一个超时事件不能推进两次
	r.HandleTimeout(pending)
	assert.Equal(t, PhaseNight, r.Phase())

	fireTimeout(t, r)
	require.Equal(t, PhaseDay, r.Phase())
	assert.Equal(t, 2, r.State().DayNumber)

	fireTimeout(t, r)
	assert.Equal(t, PhaseNight, r.Phase())
	assert.Equal(t, 2, r.State().DayNumber)
}

func TestNoDeathsEndsInDraw(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	r.phases.Start(PhaseFirstDay)

	for i := 0; i < 20 && !r.Ended(); i++ {
		fireTimeout(t, r)
	}

	require.True(t, r.Ended())
	assert.Equal(t, 1+r.cfg.NoKillDays, r.State().DayNumber)
	assert.Equal(t, WinnerNobody, r.Summary().WinningFaction)
	assert.Nil(t, r.PendingTimeout())
	assert.Equal(t, []string{"rigged"}, m.disconnected)
}

func TestPeacemakerWinsDraw(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RolePeacemaker, RoleVillager, RoleVillager, RoleVillager)
	r.phases.Start(PhaseFirstDay)

	for i := 0; i < 20 && !r.Ended(); i++ {
		fireTimeout(t, r)
	}

	require.True(t, r.Ended())
	summary := r.Summary()
	assert.Equal(t, WinnerNobody, summary.WinningFaction)
	assert.Equal(t, []string{string(RolePeacemaker)}, summary.WinningRoles)
	assert.True(t, summary.Participants[1].Won)
}

func TestPhaseTimerNotifies(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager)
	r.cfg.FirstDay = 10 * time.Millisecond

	fired := make(chan TimeoutRequest, 1)
	r.SetTimeoutNotifier(func(req TimeoutRequest) { fired <- req })
	r.phases.Start(PhaseFirstDay)

	select {
	case req := <-fired:
		assert.Equal(t, PhaseFirstDay, req.Phase)
		assert.Equal(t, r.PendingTimeout().Seq, req.Seq)
	case <-time.After(2 * time.Second):
		t.Fatal("phase timer did not fire")
	}

	r.phases.Stop()
	assert.Equal(t, Phase(""), r.Phase())
	assert.Zero(t, r.phases.TimeLeft())
}

type panicPhase struct{ dayStrategy }

func (panicPhase) OnExit(*Room) { panic("boom") }

func TestPhasePanicIsRecovered(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager)

	assert.NotPanics(t, func() {
		r.phases.safeExit(panicPhase{})
	})
}
