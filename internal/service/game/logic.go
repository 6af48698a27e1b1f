package game

import (
	"fmt"
	"time"
)

// 游戏按 第一天 -> 夜晚 -> 白天 -> 夜晚 ... 循环：
// 1. 第一天（FirstDay）：时间很短，只执行白天行动，不投票
// 2. 夜晚（Night）：选择夜间目标，结束时执行夜间结算，天数加一
// 3. 白天（Day）：讨论与投票，结束时处决得票过半的玩家并执行白天行动
// 每个阶段结束后都会检查胜负

type firstDayStrategy struct{}

func (firstDayStrategy) Phase() Phase { return PhaseFirstDay }
func (firstDayStrategy) Next() Phase  { return PhaseNight }

func (firstDayStrategy) Duration(r *Room) time.Duration {
	return r.cfg.FirstDay
}

func (firstDayStrategy) OnEnter(r *Room) {
	r.state.SetTime(TimeDay)
	r.broadcastDayTime(r.cfg.FirstDay)
	r.sendRoomMessage("Day 1 has begun. There is no voting on the first day.")
}

func (firstDayStrategy) OnExit(r *Room) {
	r.state.SetTime(TimeBetween)

	alive := r.players.Alive()
	for _, p := range alive {
		p.Role.DayVisit(r)
	}
	for _, p := range alive {
		p.resetDayState()
	}
}

type dayStrategy struct{}

func (dayStrategy) Phase() Phase { return PhaseDay }
func (dayStrategy) Next() Phase  { return PhaseNight }

func (dayStrategy) Duration(r *Room) time.Duration {
	return r.cfg.dayDuration()
}

func (dayStrategy) OnEnter(r *Room) {
	// 连续多天无人死亡
	if r.state.EndDay() <= r.state.DayNumber() {
		res := peacemakerDraw{}.Check(r)
		if res == nil {
			res = &WinResult{Faction: WinnerNobody}
		}
		r.sendRoomMessage("Nobody has died for too long. The game is a draw.")
		r.EndGame(res)
		return
	}

	r.state.SetTime(TimeDay)
	r.broadcastDayTime(r.cfg.dayDuration())

	for _, p := range r.players.Alive() {
		p.resetDayState()
	}
	r.votes.Clear()

	if r.state.ConfesserVotedOut() {
		r.sendRoomMessage(fmt.Sprintf("Day %d has begun. Voting has been disabled.", r.state.DayNumber()))
		return
	}

	required := RequiredVotes(r.players.CountAlive())
	r.sendRoomMessage(fmt.Sprintf("Day %d has begun. %d votes are required to execute a player.", r.state.DayNumber(), required))
}

func (dayStrategy) OnExit(r *Room) {
	r.state.SetTime(TimeBetween)

	if !r.state.ConfesserVotedOut() {
		required := RequiredVotes(r.players.CountAlive())

		var condemned []*Player
		for _, p := range r.players.Alive() {
			if p.VotesReceived >= required {
				condemned = append(condemned, p)
			}
		}
		for _, p := range condemned {
			r.executePlayer(p)
		}
	}
	r.votes.Clear()

	alive := r.players.Alive()
	for _, p := range alive {
		p.state().resetCombat()
		applyPassives(r, p)
	}
	for _, p := range alive {
		p.Role.DayVisit(r)
	}
	for _, p := range alive {
		if p.IsAlive {
			p.Role.HandleDamage(r)
		}
	}
}

type nightStrategy struct{}

func (nightStrategy) Phase() Phase { return PhaseNight }
func (nightStrategy) Next() Phase  { return PhaseDay }

func (nightStrategy) Duration(r *Room) time.Duration {
	return r.cfg.Night
}

func (nightStrategy) OnEnter(r *Room) {
	r.state.SetTime(TimeNight)
	r.broadcastDayTime(r.cfg.Night)
	r.sendRoomMessage(fmt.Sprintf("Night %d has begun.", r.state.DayNumber()))

	for _, p := range r.players.Alive() {
		if p.state().Jailed {
			r.sendPlayerMessage(p, "You are in jail tonight and cannot act.")
		}
	}
}

func (nightStrategy) OnExit(r *Room) {
	r.state.SetTime(TimeBetween)
	defer r.state.IncrementDay()

	r.resolveNight()
}

func (r *Room) broadcastDayTime(d time.Duration) {
	r.broadcastResp(WrapResponse(RESP_UPDATE_DAY_TIME, DayTimeData{
		Time:      string(r.state.Time()),
		DayNumber: r.state.DayNumber(),
		TimeLeft:  int(d / time.Second),
	}))
}
