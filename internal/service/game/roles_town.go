package game

import "fmt"

const (
	RoleVillager     RoleKind = "Villager"
	RoleDoctor       RoleKind = "Doctor"
	RoleInvestigator RoleKind = "Investigator"
	RoleWatchman     RoleKind = "Watchman"
	RoleTracker      RoleKind = "Tracker"
	RoleJailor       RoleKind = "Jailor"
	RoleLawman       RoleKind = "Lawman"
	RoleEscort       RoleKind = "Escort"
	RoleBodyguard    RoleKind = "Bodyguard"
	RoleVeteran      RoleKind = "Veteran"
	RoleTapper       RoleKind = "Tapper"
	RoleFortifier    RoleKind = "Fortifier"
	RoleSniper       RoleKind = "Sniper"
	RoleMayor        RoleKind = "Mayor"
	RoleTrapper      RoleKind = "Trapper"
)

type Villager struct{ baseRole }

func newVillager() Role {
	return &Villager{newBaseRole(RoleVillager, GroupTown)}
}

type Doctor struct{ baseRole }

func newDoctor() Role {
	d := &Doctor{newBaseRole(RoleDoctor, GroupTown, healAbility{amount: 1})}
	d.NightVisitSelf = true
	d.NightVisitOthers = true
	return d
}

type Investigator struct{ baseRole }

func newInvestigator() Role {
	i := &Investigator{newBaseRole(RoleInvestigator, GroupTown, investigateAbility{})}
	i.NightVisitOthers = true
	return i
}

type Watchman struct{ baseRole }

func newWatchman() Role {
	w := &Watchman{newBaseRole(RoleWatchman, GroupTown, watchAbility{})}
	w.NightVisitOthers = true
	return w
}

type Tracker struct{ baseRole }

func newTracker() Role {
	t := &Tracker{newBaseRole(RoleTracker, GroupTown, trackAbility{})}
	t.NightVisitOthers = true
	return t
}

// Jailor 白天选择关押对象，夜里会封锁囚犯并可以选择处决
type Jailor struct{ baseRole }

func newJailor() Role {
	j := &Jailor{newBaseRole(
		RoleJailor,
		GroupTown,
		jailAbility{},
		roleblockAbility{},
		limited{executeAbility{}},
	)}
	j.Roleblocker = true
	j.DayVisitOthers = true
	j.Uses = 1
	return j
}

// 夜里只能对当天关押的囚犯下达处决
func (j *Jailor) HandleNightAction(r *Room, target *Player) error {
	if j.Visiting == noTarget {
		return fmt.Errorf("%w: nobody is jailed tonight", ErrNoAbility)
	}
	if target == nil || target.Position != j.Visiting {
		return fmt.Errorf("%w: you can only execute your prisoner", ErrInvalidTarget)
	}
	if j.Uses <= 0 {
		return fmt.Errorf("%w: no executions left", ErrNoAbility)
	}

	j.Executing = true
	r.sendPlayerMessage(j.self(r), fmt.Sprintf("You have decided to execute %s.", target.Name))
	return nil
}

func (j *Jailor) CancelNightAction(r *Room) {
	if !j.Executing {
		return
	}
	j.Executing = false
	r.sendPlayerMessage(j.self(r), "You have decided to spare your prisoner.")
}

type Lawman struct{ baseRole }

func newLawman() Role {
	l := &Lawman{newBaseRole(RoleLawman, GroupTown, attackAbility{stage: StageVisit, damage: 1})}
	l.NightVisitOthers = true
	return l
}

type Escort struct{ baseRole }

func newEscort() Role {
	e := &Escort{newBaseRole(RoleEscort, GroupTown, roleblockAbility{})}
	e.Roleblocker = true
	e.NightVisitOthers = true
	return e
}

type Bodyguard struct{ baseRole }

func newBodyguard() Role {
	b := &Bodyguard{newBaseRole(RoleBodyguard, GroupTown, guardAbility{})}
	b.NightVisitOthers = true
	return b
}

// Veteran 只能对自己使用，警戒时攻击所有来访者
type Veteran struct{ baseRole }

func newVeteran() Role {
	v := &Veteran{newBaseRole(RoleVeteran, GroupTown, limited{alertAbility{}}, vengeanceAbility{})}
	v.NightVisitSelf = true
	v.Uses = 3
	return v
}

type Tapper struct{ baseRole }

func newTapper() Role {
	t := &Tapper{newBaseRole(RoleTapper, GroupTown, tapAbility{})}
	t.NightVisitOthers = true
	return t
}

type Fortifier struct{ baseRole }

func newFortifier() Role {
	f := &Fortifier{newBaseRole(RoleFortifier, GroupTown, limited{fortifyAbility{}})}
	f.NightVisitSelf = true
	f.NightVisitOthers = true
	f.Uses = 1
	return f
}

// Sniper 白天开枪，结果在白天结束时结算，第一天不能开枪
type Sniper struct{ baseRole }

func newSniper() Role {
	s := &Sniper{newBaseRole(RoleSniper, GroupTown, limited{attackAbility{stage: StageDay, damage: 2}})}
	s.DayVisitOthers = true
	s.Uses = 1
	return s
}

func (s *Sniper) HandleDayAction(r *Room, target *Player) error {
	if r.state.DayNumber() <= 1 {
		return fmt.Errorf("%w: the sniper cannot shoot on the first day", ErrWrongPhase)
	}
	if s.Uses <= 0 {
		return fmt.Errorf("%w: no bullets left", ErrNoAbility)
	}
	return s.baseRole.HandleDayAction(r, target)
}

type Mayor struct{ baseRole }

func newMayor() Role {
	m := &Mayor{newBaseRole(RoleMayor, GroupTown, revealAbility{weight: 3})}
	m.DayVisitSelf = true
	return m
}

func (m *Mayor) HandleDayAction(r *Room, target *Player) error {
	if m.Revealed {
		return fmt.Errorf("%w: already revealed", ErrNoAbility)
	}
	return m.baseRole.HandleDayAction(r, target)
}

type Trapper struct{ baseRole }

func newTrapper() Role {
	t := &Trapper{newBaseRole(RoleTrapper, GroupTown, trapAbility{})}
	t.NightVisitOthers = true
	return t
}
