package game

// 消息可见性用的时间段
type Time string

const (
	TimeDay     Time = "day"
	TimeNight   Time = "night"
	TimeBetween Time = "between"
	TimeLocked  Time = "locked"
)

type GameState struct {
	Time              Time `json:"time"`
	DayNumber         int  `json:"dayNumber"`
	Started           bool `json:"started"`
	Ended             bool `json:"ended"`
	EndDay            int  `json:"endDay"`
	ConfesserVotedOut bool `json:"confesserVotedOut"`
}

// StateListener 在任意字段变化后被调用
type StateListener func(next, prev GameState)

// GameStateManager 是阶段、天数与开始/结束标记的唯一来源，不校验状态迁移是否合法
type GameStateManager struct {
	cur       GameState
	listeners []StateListener
}

func NewGameStateManager() *GameStateManager {
	return &GameStateManager{
		cur: GameState{Time: TimeBetween},
	}
}

func (gsm *GameStateManager) Subscribe(l StateListener) {
	gsm.listeners = append(gsm.listeners, l)
}

func (gsm *GameStateManager) mutate(fn func(s *GameState)) {
	prev := gsm.cur
	fn(&gsm.cur)
	for _, l := range gsm.listeners {
		l(gsm.cur, prev)
	}
}

func (gsm *GameStateManager) Time() Time              { return gsm.cur.Time }
func (gsm *GameStateManager) DayNumber() int          { return gsm.cur.DayNumber }
func (gsm *GameStateManager) Started() bool           { return gsm.cur.Started }
func (gsm *GameStateManager) Ended() bool             { return gsm.cur.Ended }
func (gsm *GameStateManager) EndDay() int             { return gsm.cur.EndDay }
func (gsm *GameStateManager) ConfesserVotedOut() bool { return gsm.cur.ConfesserVotedOut }

func (gsm *GameStateManager) SetTime(t Time) {
	gsm.mutate(func(s *GameState) { s.Time = t })
}

func (gsm *GameStateManager) SetDayNumber(n int) {
	gsm.mutate(func(s *GameState) { s.DayNumber = n })
}

func (gsm *GameStateManager) IncrementDay() {
	gsm.mutate(func(s *GameState) { s.DayNumber++ })
}

func (gsm *GameStateManager) SetStarted(started bool) {
	gsm.mutate(func(s *GameState) { s.Started = started })
}

func (gsm *GameStateManager) SetEnded(ended bool) {
	gsm.mutate(func(s *GameState) { s.Ended = ended })
}

func (gsm *GameStateManager) SetEndDay(day int) {
	gsm.mutate(func(s *GameState) { s.EndDay = day })
}

func (gsm *GameStateManager) SetConfesserVotedOut(v bool) {
	gsm.mutate(func(s *GameState) { s.ConfesserVotedOut = v })
}

func (gsm *GameStateManager) Snapshot() GameState {
	return gsm.cur
}

func (gsm *GameStateManager) Restore(s GameState) {
	gsm.mutate(func(cur *GameState) { *cur = s })
}
