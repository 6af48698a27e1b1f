package game

import (
	"fmt"
	"strings"
)

const (
	RoleMafia       RoleKind = "Mafia"
	RoleGodfather   RoleKind = "Godfather"
	RoleConsort     RoleKind = "Consort"
	RoleFramer      RoleKind = "Framer"
	RoleConsigliere RoleKind = "Consigliere"
	RoleJanitor     RoleKind = "Janitor"
	RoleSilencer    RoleKind = "Silencer"
)

// supportOnly 让黑手党辅助能力在被派去执行击杀的那一晚失效
type supportOnly struct {
	Ability
}

func (s supportOnly) CanUse(ac *AbilityContext) bool {
	return !ac.self().IsAttacking && s.Ability.CanUse(ac)
}

// mafiaRole 是所有黑手党角色的公共部分：都能在被派出时执行阵营击杀
type mafiaRole struct{ baseRole }

func newMafiaRole(name RoleKind, abilities ...Ability) mafiaRole {
	wrapped := make([]Ability, 0, len(abilities)+1)
	wrapped = append(wrapped, attackAbility{stage: StageVisit, damage: 1, requireAttacking: true})
	for _, a := range abilities {
		wrapped = append(wrapped, supportOnly{a})
	}
	return mafiaRole{newBaseRole(name, GroupMafia, wrapped...)}
}

// InitRole 告知黑手党成员彼此的身份
func (m *mafiaRole) InitRole(r *Room) {
	self := m.self(r)
	if self == nil {
		return
	}

	var mates []string
	for _, p := range r.players.All() {
		if p.Position != self.Position && p.Group() == GroupMafia {
			mates = append(mates, fmt.Sprintf("%s (%s)", p.Name, p.RoleName()))
		}
	}

	if len(mates) == 0 {
		r.sendPlayerMessage(self, "You are the only member of the Mafia.")
		return
	}
	r.sendPlayerMessage(self, "Your fellow Mafia members: "+strings.Join(mates, ", ")+".")
}

func (m *mafiaRole) voteAttack(r *Room, target *Player) error {
	if target == nil || target.Role == nil || !target.IsAlive {
		return fmt.Errorf("%w: target is not alive", ErrInvalidTarget)
	}
	if target.Group() == GroupMafia {
		return fmt.Errorf("%w: cannot attack your faction", ErrInvalidTarget)
	}

	m.AttackVote = target.Position
	r.sendFactionMessage(GroupMafia, fmt.Sprintf("%s votes to attack %s.", m.self(r).Name, target.Name))
	return nil
}

func (m *mafiaRole) cancelAttackVote(r *Room) {
	if m.AttackVote == noTarget {
		return
	}
	m.AttackVote = noTarget
	r.sendFactionMessage(GroupMafia, fmt.Sprintf("%s has withdrawn their attack vote.", m.self(r).Name))
}

type Mafia struct{ mafiaRole }

func newMafia() Role {
	m := &Mafia{newMafiaRole(RoleMafia)}
	m.NightVote = true
	return m
}

func (m *Mafia) HandleNightAction(r *Room, target *Player) error {
	return m.voteAttack(r, target)
}

func (m *Mafia) CancelNightAction(r *Room) {
	m.cancelAttackVote(r)
}

// Godfather 防弹，被调查时显示为城镇
type Godfather struct{ mafiaRole }

func newGodfather() Role {
	g := &Godfather{newMafiaRole(RoleGodfather)}
	g.abilities.Add(bulletproofTrait{})
	g.NightVote = true
	g.Disguised = true
	return g
}

func (g *Godfather) HandleNightAction(r *Room, target *Player) error {
	return g.voteAttack(r, target)
}

func (g *Godfather) CancelNightAction(r *Room) {
	g.cancelAttackVote(r)
}

type Consort struct{ mafiaRole }

func newConsort() Role {
	c := &Consort{newMafiaRole(RoleConsort, roleblockAbility{})}
	c.Roleblocker = true
	c.NightVisitOthers = true
	return c
}

type Framer struct{ mafiaRole }

func newFramer() Role {
	f := &Framer{newMafiaRole(RoleFramer, frameAbility{})}
	f.NightVisitOthers = true
	return f
}

type Consigliere struct{ mafiaRole }

func newConsigliere() Role {
	c := &Consigliere{newMafiaRole(RoleConsigliere, inspectAbility{})}
	c.NightVisitOthers = true
	return c
}

type Janitor struct{ mafiaRole }

func newJanitor() Role {
	j := &Janitor{newMafiaRole(RoleJanitor, cleanAbility{})}
	j.NightVisitOthers = true
	j.Uses = 3
	return j
}

type Silencer struct{ mafiaRole }

func newSilencer() Role {
	s := &Silencer{newMafiaRole(RoleSilencer, silenceAbility{})}
	s.NightVisitOthers = true
	return s
}
