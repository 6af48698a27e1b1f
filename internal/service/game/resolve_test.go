package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMafiaAttackKillsUndefendedTarget(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(3), false))
	r.resolveNight()

	assert.False(t, r.players.ByPosition(3).IsAlive)
	assert.Equal(t, 4, r.players.CountAlive())
	assert.True(t, m.playerSaw(connOf(3), "You have died! You can only talk to other dead players now."))
	assert.Equal(t, 1+r.cfg.NoKillDays, r.State().EndDay)

	mafia := r.players.ByPosition(0).Role.State()
	assert.False(t, mafia.IsAttacking)
	assert.Equal(t, noTarget, mafia.Visiting)
	assert.Equal(t, noTarget, mafia.AttackVote)
}

func TestDoctorSavesAttackedTarget(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleDoctor, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(2), false))
	require.NoError(t, r.HandleVisit(connOf(1), pos(2), false))
	r.resolveNight()

	assert.True(t, r.players.ByPosition(2).IsAlive)
	assert.True(t, m.playerSaw(connOf(2), "You were attacked, but you survived!"))
}

func TestEscortBlocksDoctor(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleEscort, RoleDoctor, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(3), false))
	require.NoError(t, r.HandleVisit(connOf(1), pos(2), false))
	require.NoError(t, r.HandleVisit(connOf(2), pos(3), false))
	r.resolveNight()

	assert.True(t, m.playerSaw(connOf(2), "You were roleblocked!"))
	assert.False(t, r.players.ByPosition(3).IsAlive)
}

func TestRoleblockedHealLeavesDefenceAtBase(t *testing.T) {
	run := func(block bool) *RoleState {
		r, _ := newRiggedRoom(t, RoleMafia, RoleEscort, RoleDoctor, RoleVillager, RoleVillager)
		r.state.SetTime(TimeNight)

		if block {
			require.NoError(t, r.HandleVisit(connOf(1), pos(2), false))
		}
		require.NoError(t, r.HandleVisit(connOf(2), pos(3), false))
		r.resolveNight()

		return r.players.ByPosition(3).Role.State()
	}

	healed := run(false)
	assert.Equal(t, healed.BaseDefence+1, healed.Defence)

	blocked := run(true)
	assert.Equal(t, blocked.BaseDefence, blocked.Defence)
}

func TestGodfatherIsBulletproofAndDisguised(t *testing.T) {
	r, m := newRiggedRoom(t, RoleGodfather, RoleManiac, RoleInvestigator, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(1), pos(0), false))
	require.NoError(t, r.HandleVisit(connOf(2), pos(0), false))
	r.resolveNight()

	assert.True(t, r.players.ByPosition(0).IsAlive)
	assert.True(t, m.playerSaw(connOf(2), "p0 appears to be a member of the Town."))
}

func TestFramedTargetAppearsMafia(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleFramer, RoleInvestigator, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(1), pos(3), false))
	require.NoError(t, r.HandleVisit(connOf(2), pos(3), false))
	r.resolveNight()

	assert.True(t, m.playerSaw(connOf(2), "p3 appears to be a member of the Mafia."))
	assert.False(t, r.players.ByPosition(3).Role.State().Framed)
}

func TestVeteranShootsVisitors(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleVeteran, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(1), false))
	require.NoError(t, r.HandleVisit(connOf(1), pos(1), false))
	r.resolveNight()

	assert.True(t, r.players.ByPosition(1).IsAlive)
	assert.False(t, r.players.ByPosition(0).IsAlive)
	assert.True(t, m.playerSaw(connOf(0), "You were shot by the Veteran you visited!"))
	assert.Equal(t, 2, r.players.ByPosition(1).Role.State().Uses)
}

func TestJailorExecutesPrisoner(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RoleJailor, RoleVillager, RoleVillager, RoleVillager)

	r.state.SetTime(TimeDay)
	require.NoError(t, r.HandleVisit(connOf(1), pos(0), true))
	r.players.ByPosition(1).Role.DayVisit(r)
	require.True(t, r.players.ByPosition(0).Role.State().Jailed)

	r.state.SetTime(TimeNight)
	assert.ErrorIs(t, r.HandleVisit(connOf(0), pos(2), false), ErrRoleblocked)
	assert.ErrorIs(t, r.HandleVisit(connOf(1), pos(2), false), ErrInvalidTarget)
	require.NoError(t, r.HandleVisit(connOf(1), pos(0), false))
	r.resolveNight()

	assert.False(t, r.players.ByPosition(0).IsAlive)
	assert.Equal(t, 0, r.players.ByPosition(1).Role.State().Uses)
	assert.True(t, r.players.ByPosition(2).IsAlive)
}

func TestBodyguardTradesWithAttacker(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleMafia, RoleBodyguard, RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(2), false))
	require.NoError(t, r.HandleVisit(connOf(1), pos(2), false))
	r.resolveNight()

	assert.True(t, r.players.ByPosition(2).IsAlive)
	assert.False(t, r.players.ByPosition(0).IsAlive)
	assert.False(t, r.players.ByPosition(1).IsAlive)
}

func TestSilencedPlayerCannotTalkNextDay(t *testing.T) {
	r, _ := newRiggedRoom(t, RoleSilencer, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(2), false))
	r.resolveNight()
	r.state.IncrementDay()
	r.state.SetTime(TimeDay)

	assert.ErrorIs(t, r.HandleSentMessage(connOf(2), "hi", true), ErrSilenced)
	assert.ErrorIs(t, r.HandleWhisper(connOf(2), 1, "hi", true), ErrSilenced)
	assert.NoError(t, r.HandleSentMessage(connOf(1), "hi", true))
}

func TestFactionAttackerDrawnFromAllMembers(t *testing.T) {
	picked := map[int]int{}

	for seed := uint64(1); seed <= 64; seed++ {
		r, _ := newRiggedRoom(t, RoleMafia, RoleConsort, RoleVillager, RoleVillager, RoleVillager)
		r.rng = rand.New(rand.NewPCG(seed, 7))
		r.state.SetTime(TimeNight)

		require.NoError(t, r.HandleVisit(connOf(0), pos(3), false))
		r.factions[0].HandleNightVote(r)

		for _, i := range []int{0, 1} {
			if rs := r.players.ByPosition(i).Role.State(); rs.IsAttacking {
				assert.Equal(t, 3, rs.Visiting)
				picked[i]++
			}
		}
	}

	assert.Equal(t, 64, picked[0]+picked[1])
	assert.Positive(t, picked[0])
	assert.Positive(t, picked[1])
}

func TestSupportMafiaLosesAbilityWhenSentToKill(t *testing.T) {
	for seed := uint64(1); seed <= 64; seed++ {
		r, m := newRiggedRoom(t, RoleMafia, RoleFramer, RoleInvestigator, RoleVillager, RoleVillager)
		r.rng = rand.New(rand.NewPCG(seed, 7))
		r.state.SetTime(TimeNight)

		require.NoError(t, r.HandleVisit(connOf(0), pos(3), false))
		require.NoError(t, r.HandleVisit(connOf(1), pos(4), false))
		require.NoError(t, r.HandleVisit(connOf(2), pos(4), false))
		r.resolveNight()

		if !m.playerSaw(connOf(0), "p1 will attack p3 tonight.") {
			continue
		}

		assert.False(t, r.players.ByPosition(3).IsAlive)
		assert.True(t, m.playerSaw(connOf(2), "p4 appears to be a member of the Town."))
		return
	}

	t.Fatal("framer was never sent to attack")
}

func TestCancelledVisitDoesNothing(t *testing.T) {
	r, m := newRiggedRoom(t, RoleMafia, RoleDoctor, RoleVillager, RoleVillager, RoleVillager)
	r.state.SetTime(TimeNight)

	require.NoError(t, r.HandleVisit(connOf(0), pos(2), false))
	require.NoError(t, r.HandleVisit(connOf(0), nil, false))
	assert.True(t, m.playerSaw(connOf(0), "p0 has withdrawn their attack vote."))
	r.resolveNight()

	assert.Equal(t, 5, r.players.CountAlive())
}
