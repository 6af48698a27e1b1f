package game

import (
	"fmt"

	"go.uber.org/zap"
)

type RoleKind string

// 没有目标时 Visiting / DayVisiting 的取值
const noTarget = -1

// 足以击穿任何防御的伤害，用于处决与弃局
const lethalDamage = 1000

// Role 是每个角色对外暴露的能力集合，具体角色嵌入 baseRole 并按需覆盖
type Role interface {
	State() *RoleState

	HandleDayAction(r *Room, target *Player) error
	CancelDayAction(r *Room)
	HandleNightAction(r *Room, target *Player) error
	CancelNightAction(r *Room)

	Visit(r *Room)
	DayVisit(r *Room)
	HandleVisits(r *Room)
	HandleDamage(r *Room)

	InitRole(r *Room)
}

// RoleState 保存角色的全部可变属性。
// 所有对其他角色的引用都是座位号，开局后座位号不再变化
type RoleState struct {
	Name  RoleKind
	Group Group
	Owner int

	BaseDefence int
	Defence     int
	Damage      int
	Attackers   []int

	Roleblocker bool
	Roleblocked bool

	Visiting    int
	DayVisiting int
	Visitors    []int

	// 黑手党夜间投票
	IsAttacking bool
	AttackVote  int

	DayVisitSelf      bool
	DayVisitOthers    bool
	DayVisitFaction   bool
	NightVisitSelf    bool
	NightVisitOthers  bool
	NightVisitFaction bool
	NightVote         bool

	// 调查时显示为城镇
	Disguised bool
	Framed    bool
	Cleaned   bool
	// 清洁工的座位号，目标当晚死亡时才消耗次数
	CleanedBy int
	Jailed    bool
	Executing bool
	Alert     bool
	Revealed  bool
	Abandoned bool
	// 被投票处决的忏悔者
	Confessed bool

	SilencedDay int
	TappedBy    int
	TapDay      int

	Uses       int
	VoteWeight int
}

func newRoleState(name RoleKind, group Group) RoleState {
	return RoleState{
		Name:        name,
		Group:       group,
		Owner:       noTarget,
		Visiting:    noTarget,
		DayVisiting: noTarget,
		AttackVote:  noTarget,
		TappedBy:    noTarget,
		CleanedBy:   noTarget,
		VoteWeight:  1,
	}
}

func (rs *RoleState) takeHit(attacker int, damage int) {
	rs.Damage += damage
	rs.Attackers = append(rs.Attackers, attacker)
}

// resetCombat 在每次结算（夜间结算与白天处决之后的 dayVisit）开始时调用
func (rs *RoleState) resetCombat() {
	rs.Defence = rs.BaseDefence
	rs.Damage = 0
	if rs.Abandoned {
		rs.Damage = lethalDamage
	}
	rs.Attackers = nil
}

// cleanupAfterNight 清理一次结算产生的临时状态
func (rs *RoleState) cleanupAfterNight(dayNumber int) {
	rs.Visiting = noTarget
	rs.DayVisiting = noTarget
	rs.Roleblocked = false
	rs.Visitors = nil
	rs.IsAttacking = false
	rs.AttackVote = noTarget
	rs.Framed = false
	rs.Cleaned = false
	rs.CleanedBy = noTarget
	rs.Jailed = false
	rs.Executing = false
	rs.Alert = false

	// 当晚新装的窃听留到第二天
	if rs.TapDay <= dayNumber {
		rs.TappedBy = noTarget
		rs.TapDay = 0
	}
}

func (rs *RoleState) isSilenced(dayNumber int) bool {
	return rs.SilencedDay != 0 && rs.SilencedDay == dayNumber
}

func (rs *RoleState) canDayVisit() bool {
	return rs.DayVisitSelf || rs.DayVisitOthers || rs.DayVisitFaction
}

func (rs *RoleState) canNightVisit() bool {
	return rs.NightVisitSelf || rs.NightVisitOthers || rs.NightVisitFaction
}

// checkTarget 根据角色的可选目标标记校验目标
func (rs *RoleState) checkTarget(self, target *Player, day bool) error {
	if target == nil || target.Role == nil {
		return fmt.Errorf("%w: no such player", ErrInvalidTarget)
	}
	if !target.IsAlive {
		return fmt.Errorf("%w: %s is dead", ErrInvalidTarget, target.Name)
	}

	visitSelf, visitOthers, visitFaction := rs.NightVisitSelf, rs.NightVisitOthers, rs.NightVisitFaction
	if day {
		visitSelf, visitOthers, visitFaction = rs.DayVisitSelf, rs.DayVisitOthers, rs.DayVisitFaction
	}

	switch {
	case target.Position == self.Position:
		if !visitSelf {
			return fmt.Errorf("%w: cannot target yourself", ErrInvalidTarget)
		}
	case rs.Group == GroupMafia && target.Group() == GroupMafia:
		if !visitFaction {
			return fmt.Errorf("%w: cannot target your faction", ErrInvalidTarget)
		}
	default:
		if !visitOthers {
			return fmt.Errorf("%w: cannot target other players", ErrInvalidTarget)
		}
	}

	return nil
}

// baseRole 提供默认实现：按标记选择目标，visit/handleVisits/dayVisit 交给能力管理器
type baseRole struct {
	RoleState
	abilities *AbilityManager
}

func newBaseRole(name RoleKind, group Group, abilities ...Ability) baseRole {
	return baseRole{
		RoleState: newRoleState(name, group),
		abilities: NewAbilityManager(abilities...),
	}
}

func (b *baseRole) State() *RoleState {
	return &b.RoleState
}

func (b *baseRole) self(r *Room) *Player {
	return r.players.ByPosition(b.Owner)
}

func (b *baseRole) HandleDayAction(r *Room, target *Player) error {
	if !b.canDayVisit() {
		return fmt.Errorf("%w: %s has no day ability", ErrNoAbility, b.Name)
	}
	if err := b.checkTarget(b.self(r), target, true); err != nil {
		return err
	}

	b.DayVisiting = target.Position
	r.sendPlayerMessage(b.self(r), fmt.Sprintf("You have chosen %s.", target.Name))
	return nil
}

func (b *baseRole) CancelDayAction(r *Room) {
	if b.DayVisiting == noTarget {
		return
	}
	b.DayVisiting = noTarget
	r.sendPlayerMessage(b.self(r), "You have cancelled your day action.")
}

func (b *baseRole) HandleNightAction(r *Room, target *Player) error {
	if !b.canNightVisit() {
		return fmt.Errorf("%w: %s has no night ability", ErrNoAbility, b.Name)
	}
	if err := b.checkTarget(b.self(r), target, false); err != nil {
		return err
	}

	b.Visiting = target.Position
	r.sendPlayerMessage(b.self(r), fmt.Sprintf("You have chosen to visit %s tonight.", target.Name))
	return nil
}

func (b *baseRole) CancelNightAction(r *Room) {
	if b.Visiting == noTarget {
		return
	}
	b.Visiting = noTarget
	r.sendPlayerMessage(b.self(r), "You have cancelled your night action.")
}

func (b *baseRole) Visit(r *Room) {
	if b.Visiting == noTarget {
		return
	}

	self, target := b.self(r), r.players.ByPosition(b.Visiting)
	if self == nil || target == nil || target.Role == nil {
		zap.L().Warn(
			"visit 目标不存在，跳过",
			zap.String("room", r.name),
			zap.Int("owner", b.Owner),
			zap.Int("visiting", b.Visiting),
		)
		return
	}

	ts := target.state()
	ts.Visitors = append(ts.Visitors, b.Owner)

	b.abilities.Run(StageVisit, &AbilityContext{Room: r, Self: self, Target: target})
}

func (b *baseRole) DayVisit(r *Room) {
	if b.DayVisiting == noTarget {
		return
	}

	self, target := b.self(r), r.players.ByPosition(b.DayVisiting)
	if self == nil || target == nil {
		return
	}

	b.abilities.Run(StageDay, &AbilityContext{Room: r, Self: self, Target: target})
	b.DayVisiting = noTarget
}

func (b *baseRole) HandleVisits(r *Room) {
	self := b.self(r)
	var target *Player
	if b.Visiting != noTarget {
		target = r.players.ByPosition(b.Visiting)
	}

	b.abilities.Run(StageReact, &AbilityContext{Room: r, Self: self, Target: target})
}

// HandleDamage 伤害严格大于防御时死亡
func (b *baseRole) HandleDamage(r *Room) {
	self := b.self(r)
	if self == nil || !self.IsAlive {
		return
	}

	if b.Damage > b.Defence {
		cause := "was killed"
		if b.Abandoned {
			cause = "abandoned the game"
		}
		r.killPlayer(self, cause)
		return
	}

	if b.Damage > 0 {
		r.sendPlayerMessage(self, "You were attacked, but you survived!")
	}
}

func (b *baseRole) InitRole(r *Room) {}

// applyPassives 在每次夜间结算复位后执行被动能力
func applyPassives(r *Room, p *Player) {
	if br, ok := p.Role.(interface{ manager() *AbilityManager }); ok {
		br.manager().Run(StagePassive, &AbilityContext{Room: r, Self: p, Target: p})
	}
}

func (b *baseRole) manager() *AbilityManager {
	return b.abilities
}
