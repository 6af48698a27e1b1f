package game

import (
	"fmt"
	"sort"
	"strings"
)

// 能力的执行时机
type AbilityStage int

const (
	// 每个结算开始时，属性复位之后
	StagePassive AbilityStage = iota
	// 白天结束时的 dayVisit
	StageDay
	// 夜晚 visit
	StageVisit
	// 夜晚 handleVisits，此时 visitors 已经完整
	StageReact
)

type AbilityContext struct {
	Room   *Room
	Self   *Player
	Target *Player
}

func (ac *AbilityContext) self() *RoleState   { return ac.Self.state() }
func (ac *AbilityContext) target() *RoleState { return ac.Target.state() }

// Ability 是组合式的角色能力，Priority 越高越先执行
type Ability interface {
	Name() string
	Stage() AbilityStage
	Priority() int
	CanUse(ac *AbilityContext) bool
	Use(ac *AbilityContext)
}

type AbilityManager struct {
	abilities []Ability
}

func NewAbilityManager(abilities ...Ability) *AbilityManager {
	am := &AbilityManager{}
	for _, a := range abilities {
		am.Add(a)
	}
	return am
}

func (am *AbilityManager) Add(a Ability) {
	am.abilities = append(am.abilities, a)
	sort.SliceStable(am.abilities, func(i, j int) bool {
		return am.abilities[i].Priority() > am.abilities[j].Priority()
	})
}

func (am *AbilityManager) Has(stage AbilityStage) bool {
	if am == nil {
		return false
	}
	for _, a := range am.abilities {
		if a.Stage() == stage {
			return true
		}
	}
	return false
}

// Run 按优先级执行某一阶段的全部能力，返回实际执行的数量
func (am *AbilityManager) Run(stage AbilityStage, ac *AbilityContext) int {
	if am == nil || ac.Self == nil {
		return 0
	}

	used := 0
	for _, a := range am.abilities {
		if a.Stage() != stage {
			continue
		}
		if !a.CanUse(ac) {
			continue
		}
		a.Use(ac)
		used++
	}
	return used
}

func targetAlive(ac *AbilityContext) bool {
	return ac.Target != nil && ac.Target.IsAlive && ac.Target.Role != nil
}

// ---------------------------------------------------------------------------

type healAbility struct {
	amount int
}

func (healAbility) Name() string                   { return "heal" }
func (healAbility) Stage() AbilityStage            { return StageVisit }
func (healAbility) Priority() int                  { return 80 }
func (healAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }
func (h healAbility) Use(ac *AbilityContext)       { ac.target().Defence += h.amount }

type attackAbility struct {
	stage  AbilityStage
	damage int
	// 黑手党成员只有被派去执行击杀时才会攻击
	requireAttacking bool
}

func (attackAbility) Name() string          { return "attack" }
func (a attackAbility) Stage() AbilityStage { return a.stage }
func (attackAbility) Priority() int         { return 50 }

func (a attackAbility) CanUse(ac *AbilityContext) bool {
	if !targetAlive(ac) {
		return false
	}
	return !a.requireAttacking || ac.self().IsAttacking
}

func (a attackAbility) Use(ac *AbilityContext) {
	ac.target().takeHit(ac.Self.Position, a.damage)
}

type roleblockAbility struct{}

func (roleblockAbility) Name() string                   { return "roleblock" }
func (roleblockAbility) Stage() AbilityStage            { return StageVisit }
func (roleblockAbility) Priority() int                  { return 100 }
func (roleblockAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }
func (roleblockAbility) Use(ac *AbilityContext)         { ac.target().Roleblocked = true }

// apparentGroup 是调查类角色看到的阵营，被陷害者显示为黑手党，伪装者显示为城镇
func apparentGroup(rs *RoleState) Group {
	switch {
	case rs.Framed:
		return GroupMafia
	case rs.Disguised:
		return GroupTown
	default:
		return rs.Group
	}
}

type investigateAbility struct{}

func (investigateAbility) Name() string                   { return "investigate" }
func (investigateAbility) Stage() AbilityStage            { return StageReact }
func (investigateAbility) Priority() int                  { return 50 }
func (investigateAbility) CanUse(ac *AbilityContext) bool { return ac.Target != nil && ac.Target.Role != nil }

func (investigateAbility) Use(ac *AbilityContext) {
	group := apparentGroup(ac.target())
	ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("%s appears to be a member of the %s.", ac.Target.Name, groupTitle(group)))
}

type inspectAbility struct{}

func (inspectAbility) Name() string                   { return "inspect" }
func (inspectAbility) Stage() AbilityStage            { return StageReact }
func (inspectAbility) Priority() int                  { return 50 }
func (inspectAbility) CanUse(ac *AbilityContext) bool { return ac.Target != nil && ac.Target.Role != nil }

func (inspectAbility) Use(ac *AbilityContext) {
	ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("%s's role is %s.", ac.Target.Name, ac.Target.RoleName()))
}

type watchAbility struct{}

func (watchAbility) Name() string                   { return "watch" }
func (watchAbility) Stage() AbilityStage            { return StageReact }
func (watchAbility) Priority() int                  { return 40 }
func (watchAbility) CanUse(ac *AbilityContext) bool { return ac.Target != nil && ac.Target.Role != nil }

func (watchAbility) Use(ac *AbilityContext) {
	var names []string
	for _, pos := range ac.target().Visitors {
		if pos == ac.Self.Position {
			continue
		}
		if v := ac.Room.players.ByPosition(pos); v != nil {
			names = append(names, v.Name)
		}
	}

	if len(names) == 0 {
		ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("Nobody visited %s last night.", ac.Target.Name))
		return
	}
	ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("%s was visited by: %s.", ac.Target.Name, strings.Join(names, ", ")))
}

type trackAbility struct{}

func (trackAbility) Name() string                   { return "track" }
func (trackAbility) Stage() AbilityStage            { return StageReact }
func (trackAbility) Priority() int                  { return 40 }
func (trackAbility) CanUse(ac *AbilityContext) bool { return ac.Target != nil && ac.Target.Role != nil }

func (trackAbility) Use(ac *AbilityContext) {
	visited := ac.Room.players.ByPosition(ac.target().Visiting)
	if visited == nil {
		ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("%s did not visit anyone last night.", ac.Target.Name))
		return
	}
	ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("%s visited %s last night.", ac.Target.Name, visited.Name))
}

// 保镖：替目标挡下一次攻击，并反击第一个攻击者
type guardAbility struct{}

func (guardAbility) Name() string        { return "guard" }
func (guardAbility) Stage() AbilityStage { return StageReact }
func (guardAbility) Priority() int       { return 60 }

func (guardAbility) CanUse(ac *AbilityContext) bool {
	return targetAlive(ac) && len(ac.target().Attackers) > 0
}

func (guardAbility) Use(ac *AbilityContext) {
	target := ac.target()
	for _, pos := range target.Attackers {
		if pos == ac.Self.Position {
			continue
		}
		attacker := ac.Room.players.ByPosition(pos)
		if attacker == nil || attacker.Role == nil {
			continue
		}

		attacker.state().takeHit(ac.Self.Position, 1)
		ac.self().takeHit(pos, 1)
		if target.Damage > 0 {
			target.Damage--
		}
		ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("You fought off an attacker while protecting %s!", ac.Target.Name))
		return
	}
}

type frameAbility struct{}

func (frameAbility) Name() string                   { return "frame" }
func (frameAbility) Stage() AbilityStage            { return StageVisit }
func (frameAbility) Priority() int                  { return 90 }
func (frameAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }
func (frameAbility) Use(ac *AbilityContext)         { ac.target().Framed = true }

// 清理：目标当晚死亡时隐藏其身份，次数在 killPlayer 中扣除
type cleanAbility struct{}

func (cleanAbility) Name() string        { return "clean" }
func (cleanAbility) Stage() AbilityStage { return StageVisit }
func (cleanAbility) Priority() int       { return 30 }

func (cleanAbility) CanUse(ac *AbilityContext) bool {
	return targetAlive(ac) && ac.self().Uses > 0
}

func (cleanAbility) Use(ac *AbilityContext) {
	target := ac.target()
	target.Cleaned = true
	target.CleanedBy = ac.Self.Position
}

// 禁言对下一个白天生效
type silenceAbility struct{}

func (silenceAbility) Name() string                   { return "silence" }
func (silenceAbility) Stage() AbilityStage            { return StageVisit }
func (silenceAbility) Priority() int                  { return 30 }
func (silenceAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }

func (silenceAbility) Use(ac *AbilityContext) {
	ac.target().SilencedDay = ac.Room.state.DayNumber() + 1
	ac.Room.sendPlayerMessage(ac.Target, "You have been silenced! You will not be able to speak tomorrow.")
}

// 窃听对下一个白天的私聊生效
type tapAbility struct{}

func (tapAbility) Name() string                   { return "tap" }
func (tapAbility) Stage() AbilityStage            { return StageVisit }
func (tapAbility) Priority() int                  { return 30 }
func (tapAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }

func (tapAbility) Use(ac *AbilityContext) {
	target := ac.target()
	target.TappedBy = ac.Self.Position
	target.TapDay = ac.Room.state.DayNumber() + 1
}

// 永久提升目标的基础防御
type fortifyAbility struct{}

func (fortifyAbility) Name() string                   { return "fortify" }
func (fortifyAbility) Stage() AbilityStage            { return StageVisit }
func (fortifyAbility) Priority() int                  { return 70 }
func (fortifyAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }

func (fortifyAbility) Use(ac *AbilityContext) {
	target := ac.target()
	target.BaseDefence++
	target.Defence++
	ac.Room.sendPlayerMessage(ac.Target, "Your house has been fortified.")
}

// 老兵警戒：提高自身防御，并在 handleVisits 时攻击所有来访者
type alertAbility struct{}

func (alertAbility) Name() string        { return "alert" }
func (alertAbility) Stage() AbilityStage { return StageVisit }
func (alertAbility) Priority() int       { return 95 }

func (alertAbility) CanUse(ac *AbilityContext) bool {
	return ac.Target != nil && ac.Target.Position == ac.Self.Position
}

func (alertAbility) Use(ac *AbilityContext) {
	self := ac.self()
	self.Alert = true
	self.Defence++
}

type vengeanceAbility struct{}

func (vengeanceAbility) Name() string                   { return "vengeance" }
func (vengeanceAbility) Stage() AbilityStage            { return StageReact }
func (vengeanceAbility) Priority() int                  { return 70 }
func (vengeanceAbility) CanUse(ac *AbilityContext) bool { return ac.self().Alert }

func (vengeanceAbility) Use(ac *AbilityContext) {
	for _, pos := range ac.self().Visitors {
		if pos == ac.Self.Position {
			continue
		}
		if visitor := ac.Room.players.ByPosition(pos); visitor != nil && visitor.Role != nil {
			visitor.state().takeHit(ac.Self.Position, 1)
			ac.Room.sendPlayerMessage(visitor, "You were shot by the Veteran you visited!")
		}
	}
}

// 陷阱：伤害攻击目标的人
type trapAbility struct{}

func (trapAbility) Name() string        { return "trap" }
func (trapAbility) Stage() AbilityStage { return StageReact }
func (trapAbility) Priority() int       { return 60 }

func (trapAbility) CanUse(ac *AbilityContext) bool {
	return targetAlive(ac) && len(ac.target().Attackers) > 0
}

func (trapAbility) Use(ac *AbilityContext) {
	for _, pos := range ac.target().Attackers {
		if pos == ac.Self.Position {
			continue
		}
		if attacker := ac.Room.players.ByPosition(pos); attacker != nil && attacker.Role != nil {
			attacker.state().takeHit(ac.Self.Position, 1)
			ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("Your trap on %s was sprung!", ac.Target.Name))
		}
	}
}

// 狱卒白天关押目标，夜里可以处决
type jailAbility struct{}

func (jailAbility) Name() string                   { return "jail" }
func (jailAbility) Stage() AbilityStage            { return StageDay }
func (jailAbility) Priority() int                  { return 50 }
func (jailAbility) CanUse(ac *AbilityContext) bool { return targetAlive(ac) }

func (jailAbility) Use(ac *AbilityContext) {
	ac.target().Jailed = true
	ac.self().Visiting = ac.Target.Position
	ac.Room.sendPlayerMessage(ac.Target, "You have been hauled off to jail!")
	ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("You have jailed %s.", ac.Target.Name))
}

type executeAbility struct{}

func (executeAbility) Name() string        { return "execute" }
func (executeAbility) Stage() AbilityStage { return StageVisit }
func (executeAbility) Priority() int       { return 90 }

func (executeAbility) CanUse(ac *AbilityContext) bool {
	return targetAlive(ac) && ac.self().Executing && ac.target().Jailed
}

func (executeAbility) Use(ac *AbilityContext) {
	ac.target().takeHit(ac.Self.Position, lethalDamage)
	ac.Room.sendPlayerMessage(ac.Target, "You were executed by the Jailor!")
}

// 市长公开身份后票数变为三票
type revealAbility struct {
	weight int
}

func (revealAbility) Name() string        { return "reveal" }
func (revealAbility) Stage() AbilityStage { return StageDay }
func (revealAbility) Priority() int       { return 50 }

func (revealAbility) CanUse(ac *AbilityContext) bool {
	return ac.Target != nil && ac.Target.Position == ac.Self.Position && !ac.self().Revealed
}

func (r revealAbility) Use(ac *AbilityContext) {
	self := ac.self()
	self.Revealed = true
	self.VoteWeight = r.weight
	ac.Room.sendRoomMessage(fmt.Sprintf("%s has revealed themselves as the %s!", ac.Self.Name, ac.Self.RoleName()))
}

// 被动：防弹
type bulletproofTrait struct{}

func (bulletproofTrait) Name() string                   { return "bulletproof" }
func (bulletproofTrait) Stage() AbilityStage            { return StagePassive }
func (bulletproofTrait) Priority() int                  { return 100 }
func (bulletproofTrait) CanUse(ac *AbilityContext) bool { return true }
func (bulletproofTrait) Use(ac *AbilityContext)         { ac.self().Defence++ }

// limited 给任意能力加上次数限制，次数记录在角色的 Uses 上
type limited struct {
	Ability
}

func (l limited) CanUse(ac *AbilityContext) bool {
	return ac.self().Uses > 0 && l.Ability.CanUse(ac)
}

func (l limited) Use(ac *AbilityContext) {
	ac.self().Uses--
	l.Ability.Use(ac)
	if ac.self().Uses == 0 {
		ac.Room.sendPlayerMessage(ac.Self, fmt.Sprintf("You have no uses of %s left.", l.Name()))
	}
}

func groupTitle(g Group) string {
	switch g {
	case GroupTown:
		return "Town"
	case GroupMafia:
		return "Mafia"
	case GroupNeutral:
		return "Neutral"
	}
	return string(g)
}
