package game

const (
	RoleManiac     RoleKind = "Maniac"
	RolePeacemaker RoleKind = "Peacemaker"
	RoleConfesser  RoleKind = "Confesser"
	RoleSurvivor   RoleKind = "Survivor"
)

// personalGoal 由拥有额外胜利条件的中立角色实现
type personalGoal interface {
	AchievedGoal(r *Room) bool
}

type Maniac struct{ baseRole }

func newManiac() Role {
	m := &Maniac{newBaseRole(RoleManiac, GroupNeutral, attackAbility{stage: StageVisit, damage: 1})}
	m.NightVisitOthers = true
	return m
}

// Peacemaker 在无人死亡导致的平局中获胜
type Peacemaker struct{ baseRole }

func newPeacemaker() Role {
	return &Peacemaker{newBaseRole(RolePeacemaker, GroupNeutral)}
}

func (p *Peacemaker) InitRole(r *Room) {
	r.sendPlayerMessage(p.self(r), "You win if nobody dies for long enough that the game ends in a draw.")
}

func (p *Peacemaker) AchievedGoal(r *Room) bool {
	return r.state.EndDay() <= r.state.DayNumber()
}

// Confesser 被投票处决后，本局剩余时间都不再进行投票
type Confesser struct{ baseRole }

func newConfesser() Role {
	return &Confesser{newBaseRole(RoleConfesser, GroupNeutral)}
}

func (c *Confesser) InitRole(r *Room) {
	r.sendPlayerMessage(c.self(r), "You win if the town votes you out.")
}

func (c *Confesser) AchievedGoal(r *Room) bool {
	return c.Confessed
}

type Survivor struct{ baseRole }

func newSurvivor() Role {
	s := &Survivor{newBaseRole(RoleSurvivor, GroupNeutral, limited{healAbility{amount: 1}})}
	s.NightVisitSelf = true
	s.Uses = 4
	return s
}

func (s *Survivor) AchievedGoal(r *Room) bool {
	self := s.self(r)
	return self != nil && self.IsAlive
}
