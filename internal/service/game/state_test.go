package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStateListenersSeeTransitions(t *testing.T) {
	gsm := NewGameStateManager()

	var seen [][2]GameState
	gsm.Subscribe(func(next, prev GameState) {
		seen = append(seen, [2]GameState{next, prev})
	})

	gsm.SetTime(TimeDay)
	gsm.IncrementDay()

	require.Len(t, seen, 2)
	assert.Equal(t, TimeBetween, seen[0][1].Time)
	assert.Equal(t, TimeDay, seen[0][0].Time)
	assert.Equal(t, 0, seen[1][1].DayNumber)
	assert.Equal(t, 1, seen[1][0].DayNumber)

	snap := gsm.Snapshot()
	gsm.SetEnded(true)
	gsm.SetTime(TimeLocked)
	gsm.Restore(snap)

	assert.False(t, gsm.Ended())
	assert.Equal(t, TimeDay, gsm.Time())
	assert.Len(t, seen, 5)
}

func TestPlayerRegistryRenumbers(t *testing.T) {
	pr := NewPlayerRegistry()
	for i := 0; i < 4; i++ {
		pr.Add(connOf(i), fmt.Sprintf("p%d", i))
	}

	removed := pr.Remove(connOf(1))
	require.NotNil(t, removed)
	assert.Equal(t, "p1", removed.Name)
	assert.Nil(t, pr.Remove(connOf(1)))

	require.Equal(t, 3, pr.Len())
	for i, p := range pr.All() {
		assert.Equal(t, i, p.Position)
	}
	assert.Equal(t, "p2", pr.ByPosition(1).Name)
	assert.Nil(t, pr.ByPosition(3))
	assert.Nil(t, pr.ByPosition(-1))
	assert.Equal(t, connOf(3), pr.ByName("p3").ConnID)

	pr.ByPosition(0).IsAlive = false
	assert.Equal(t, 2, pr.CountAlive())
	assert.Len(t, pr.Dead(), 1)
	assert.Len(t, pr.Alive(), 2)
}

func TestEventBusCapsHistory(t *testing.T) {
	eb := NewEventBus()

	var deaths int
	eb.Subscribe(EventDeath, func(Event) { deaths++ })

	for i := 0; i < historyLimit+5; i++ {
		eb.Chat(fmt.Sprintf("line %d", i))
	}
	eb.Publish(EventDeath, "p1 was killed")
	eb.Action("p2 voted for p3")

	conv := eb.Conversation()
	require.Len(t, conv, historyLimit)
	assert.Equal(t, "line 5", conv[0].Message)
	assert.Equal(t, fmt.Sprintf("line %d", historyLimit+4), conv[len(conv)-1].Message)

	assert.Len(t, eb.Actions(), 2)
	assert.Equal(t, 1, deaths)
}

type countingAbility struct {
	name     string
	priority int
	order    *[]string
}

func (a countingAbility) Name() string                 { return a.name }
func (countingAbility) Stage() AbilityStage            { return StageVisit }
func (a countingAbility) Priority() int                { return a.priority }
func (countingAbility) CanUse(ac *AbilityContext) bool { return true }
func (a countingAbility) Use(ac *AbilityContext)       { *a.order = append(*a.order, a.name) }

func TestAbilityManagerRunsByPriority(t *testing.T) {
	var order []string
	am := NewAbilityManager(
		countingAbility{"low", 10, &order},
		countingAbility{"high", 90, &order},
	)
	am.Add(countingAbility{"mid", 50, &order})

	r, _ := newRiggedRoom(t, RoleVillager, RoleVillager)
	ac := &AbilityContext{Room: r, Self: r.players.ByPosition(0), Target: r.players.ByPosition(1)}

	assert.Equal(t, 3, am.Run(StageVisit, ac))
	assert.Equal(t, []string{"high", "mid", "low"}, order)
	assert.Zero(t, am.Run(StageReact, ac))
	assert.False(t, am.Has(StageDay))
}

func TestLimitedAbilityConsumesUses(t *testing.T) {
	r, m := newRiggedRoom(t, RoleSurvivor, RoleVillager)
	survivor := r.players.ByPosition(0)
	survivor.Role.State().Uses = 1

	ac := &AbilityContext{Room: r, Self: survivor, Target: survivor}
	ability := limited{healAbility{amount: 1}}

	require.True(t, ability.CanUse(ac))
	ability.Use(ac)
	assert.Equal(t, 0, survivor.Role.State().Uses)
	assert.Equal(t, 1, survivor.Role.State().Defence)
	assert.False(t, ability.CanUse(ac))
	assert.True(t, m.playerSaw(connOf(0), "You have no uses of heal left."))
}
