package game

import "math/rand/v2"

// 平衡区间：power 低于下限强制补城镇，高于上限强制补坏人
const (
	balanceLower = -2
	balanceUpper = 3

	neutralChance = 0.25
)

// RoleHandler 在开局前按人数生成一套大致平衡的角色
type RoleHandler struct {
	rng *rand.Rand
}

func NewRoleHandler(rng *rand.Rand) *RoleHandler {
	return &RoleHandler{rng: rng}
}

type roleBuild struct {
	roles []RoleKind
	power int
	town  int
	mafia int

	pools map[Group][]RoleKind
}

func (b *roleBuild) add(kind RoleKind) {
	def := roleCatalog[kind]

	b.roles = append(b.roles, kind)
	b.power += def.Power
	switch def.Group {
	case GroupTown:
		b.town++
	case GroupMafia:
		b.mafia++
	}

	if !def.Unique {
		return
	}
	pool := b.pools[def.Group]
	for i, k := range pool {
		if k == kind {
			b.pools[def.Group] = append(pool[:i], pool[i+1:]...)
			break
		}
	}
}

func (rh *RoleHandler) pick(b *roleBuild, group Group) RoleKind {
	pool := b.pools[group]
	return pool[rh.rng.IntN(len(pool))]
}

// AssignGame 返回 n 个打乱顺序的角色，第一个加入的角色固定为 Mafia。
// 最终黑手党人数严格少于城镇人数（n >= 3）
func (rh *RoleHandler) AssignGame(n int) []RoleKind {
	b := &roleBuild{
		pools: map[Group][]RoleKind{
			GroupTown:    rolesOf(GroupTown),
			GroupMafia:   rolesOf(GroupMafia),
			GroupNeutral: rolesOf(GroupNeutral),
		},
	}

	if n <= 0 {
		return nil
	}
	b.add(RoleMafia)

	for len(b.roles) < n {
		// 本次加入之后还剩的空位，全部按城镇算时的城镇上限
		left := n - len(b.roles) - 1
		canMafia := b.mafia+1 < b.town+left
		canNeutral := b.mafia < b.town+left && len(b.pools[GroupNeutral]) > 0

		var town bool
		switch {
		case b.power < balanceLower:
			town = true
		case b.power > balanceUpper:
			town = false
		default:
			town = rh.rng.IntN(balanceUpper-balanceLower+1)+balanceLower >= b.power
		}

		if town || (!canMafia && !canNeutral) {
			b.add(rh.pick(b, GroupTown))
			continue
		}

		if canNeutral && (!canMafia || rh.rng.Float64() < neutralChance) {
			b.add(rh.pick(b, GroupNeutral))
			continue
		}
		b.add(rh.pick(b, GroupMafia))
	}

	rh.shuffle(b.roles)
	return b.roles
}

// Fisher-Yates
func (rh *RoleHandler) shuffle(roles []RoleKind) {
	for i := len(roles) - 1; i > 0; i-- {
		j := rh.rng.IntN(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
}
