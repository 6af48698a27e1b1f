package game

import "sort"

type WinResult struct {
	Faction string
	Players []*Player
}

// WinCondition 返回 nil 表示尚未分出胜负
type WinCondition interface {
	Priority() int
	Check(r *Room) *WinResult
}

type WinConditionManager struct {
	conditions []WinCondition
}

func NewWinConditionManager(conds ...WinCondition) *WinConditionManager {
	wm := &WinConditionManager{}
	for _, c := range conds {
		wm.Add(c)
	}
	return wm
}

func (wm *WinConditionManager) Add(c WinCondition) {
	wm.conditions = append(wm.conditions, c)
	sort.SliceStable(wm.conditions, func(i, j int) bool {
		return wm.conditions[i].Priority() > wm.conditions[j].Priority()
	})
}

// Evaluate 按优先级从高到低检查，返回第一个结果
func (wm *WinConditionManager) Evaluate(r *Room) *WinResult {
	for _, c := range wm.conditions {
		if res := c.Check(r); res != nil {
			return res
		}
	}
	return nil
}

func defaultWinConditions(maxDays int) *WinConditionManager {
	return NewWinConditionManager(
		peacemakerDraw{},
		maxDaysDraw{maxDays: maxDays},
		factionElimination{},
	)
}

// 连续多天无人死亡，且场上有和平主义者
type peacemakerDraw struct{}

func (peacemakerDraw) Priority() int { return 100 }

func (peacemakerDraw) Check(r *Room) *WinResult {
	if r.state.EndDay() == 0 || r.state.EndDay() > r.state.DayNumber() {
		return nil
	}

	var peacemakers []*Player
	for _, p := range r.players.All() {
		if p.state() != nil && p.state().Name == RolePeacemaker {
			peacemakers = append(peacemakers, p)
		}
	}
	if len(peacemakers) == 0 {
		return nil
	}

	return &WinResult{Faction: WinnerNobody, Players: peacemakers}
}

type maxDaysDraw struct {
	maxDays int
}

func (maxDaysDraw) Priority() int { return 90 }

func (m maxDaysDraw) Check(r *Room) *WinResult {
	if m.maxDays <= 0 || r.state.DayNumber() < m.maxDays {
		return nil
	}
	return &WinResult{Faction: WinnerNobody}
}

// 阵营淘汰：存活的中立玩家跟随任意阵营一起获胜
type factionElimination struct{}

func (factionElimination) Priority() int { return 50 }

func (factionElimination) Check(r *Room) *WinResult {
	counts := r.players.CountAliveByGroup()
	town, mafia, neutral := counts[GroupTown], counts[GroupMafia], counts[GroupNeutral]

	alive := r.players.Alive()
	withNeutrals := func(group Group) []*Player {
		var winners []*Player
		for _, p := range alive {
			if p.Group() == group || p.Group() == GroupNeutral {
				winners = append(winners, p)
			}
		}
		return winners
	}

	switch {
	case town == 0 && mafia == 0 && neutral == 0:
		return &WinResult{Faction: WinnerNobody}
	case town == 0 && mafia == 0:
		return &WinResult{Faction: string(GroupNeutral), Players: withNeutrals(GroupNeutral)}
	case mafia == 0:
		return &WinResult{Faction: string(GroupTown), Players: withNeutrals(GroupTown)}
	case town == 0:
		return &WinResult{Faction: string(GroupMafia), Players: withNeutrals(GroupMafia)}
	case mafia >= town && neutral == 0:
		return &WinResult{Faction: string(GroupMafia), Players: withNeutrals(GroupMafia)}
	}

	return nil
}
