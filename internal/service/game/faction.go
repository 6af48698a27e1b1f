package game

import (
	"fmt"

	"go.uber.org/zap"
)

// Faction 协调同阵营玩家的夜间击杀投票
type Faction struct {
	Group   Group
	members []int
}

func NewFaction(group Group) *Faction {
	return &Faction{Group: group}
}

func (f *Faction) Members() []int {
	return f.members
}

// FindMembers 在分配角色后扫描全部玩家
func (f *Faction) FindMembers(pr *PlayerRegistry) {
	f.members = f.members[:0]
	for _, p := range pr.All() {
		if p.Group() == f.Group {
			f.members = append(f.members, p.Position)
		}
	}
}

// RemoveMembers 剔除已死亡或已经不属于本阵营的成员
func (f *Faction) RemoveMembers(pr *PlayerRegistry) {
	kept := f.members[:0]
	for _, pos := range f.members {
		p := pr.ByPosition(pos)
		if p == nil || !p.IsAlive || p.Group() != f.Group {
			continue
		}
		kept = append(kept, pos)
	}
	f.members = kept
}

// HandleNightVote 从全部投票中随机选一个目标（票多的目标被选中概率更高），
// 再从全部存活成员中随机选一名执行击杀。所有成员的投票都会被清空
func (f *Faction) HandleNightVote(r *Room) {
	var votes []int
	var everyone []*Player

	for _, pos := range f.members {
		p := r.players.ByPosition(pos)
		if p == nil || p.Role == nil {
			continue
		}
		rs := p.state()
		everyone = append(everyone, p)
		if rs.AttackVote != noTarget {
			votes = append(votes, rs.AttackVote)
		}
		rs.AttackVote = noTarget
	}

	if len(votes) == 0 || len(everyone) == 0 {
		return
	}

	target := r.players.ByPosition(votes[r.rng.IntN(len(votes))])
	if target == nil || !target.IsAlive {
		zap.L().Warn(
			"阵营击杀目标无效",
			zap.String("room", r.name),
			zap.String("faction", string(f.Group)),
		)
		return
	}

	// 被选中的辅助角色当晚失去自己的能力
	attacker := everyone[r.rng.IntN(len(everyone))]

	as := attacker.state()
	as.Visiting = target.Position
	as.IsAttacking = true

	r.sendFactionMessage(f.Group, fmt.Sprintf("%s will attack %s tonight.", attacker.Name, target.Name))
	r.events.Action(fmt.Sprintf("%s faction: %s attacks %s", f.Group, attacker.Name, target.Name))
}
