package game

import (
	"time"

	"go.uber.org/zap"
)

type Phase string

const (
	PhaseFirstDay Phase = "FirstDay"
	PhaseDay      Phase = "Day"
	PhaseNight    Phase = "Night"
)

// PhaseStrategy 描述一个阶段：进入、定时结束后退出、下一个阶段
type PhaseStrategy interface {
	Phase() Phase
	Duration(r *Room) time.Duration
	OnEnter(r *Room)
	OnExit(r *Room)
	Next() Phase
}

func newPhaseStrategy(phase Phase) PhaseStrategy {
	switch phase {
	case PhaseFirstDay:
		return firstDayStrategy{}
	case PhaseDay:
		return dayStrategy{}
	case PhaseNight:
		return nightStrategy{}
	}
	return nil
}

// PhaseManager 保证同一时间最多只有一个活动阶段。
// 超时通过 notify 投递回房间所在的协程，由 HandleTimeout 推进
type PhaseManager struct {
	room    *Room
	current PhaseStrategy

	seq      uint64
	pending  *TimeoutRequest
	deadline time.Time
	timer    *time.Timer

	notify func(TimeoutRequest)
}

func NewPhaseManager(r *Room) *PhaseManager {
	return &PhaseManager{room: r}
}

func (pm *PhaseManager) Current() Phase {
	if pm.current == nil {
		return ""
	}
	return pm.current.Phase()
}

// Start 开始一个新阶段，如果当前还有活动阶段则先强制退出
func (pm *PhaseManager) Start(phase Phase) {
	strategy := newPhaseStrategy(phase)
	if strategy == nil {
		zap.L().Error(
			"未知的游戏阶段",
			zap.String("room", pm.room.name),
			zap.String("phase", string(phase)),
		)
		return
	}

	if prev := pm.current; prev != nil {
		pm.cancelTimer()
		pm.current = nil
		pm.safeExit(prev)
	}

	pm.current = strategy
	pm.seq++
	pm.room.events.Publish(EventPhase, string(phase))

	pm.safeEnter(strategy)

	// OnEnter 可能直接结束了游戏
	if pm.room.state.Ended() || pm.current != strategy {
		return
	}

	pm.schedule(strategy.Phase(), strategy.Duration(pm.room))
}

// HandleTimeout 只处理与当前阶段序号一致的超时
func (pm *PhaseManager) HandleTimeout(req TimeoutRequest) {
	if pm.current == nil || req.Seq != pm.seq || req.Phase != pm.current.Phase() {
		zap.L().Debug(
			"忽略过期的超时事件",
			zap.String("room", pm.room.name),
			zap.String("phase", string(req.Phase)),
			zap.Uint64("seq", req.Seq),
		)
		return
	}

	pm.advance()
}

func (pm *PhaseManager) advance() {
	strategy := pm.current
	pm.cancelTimer()
	pm.current = nil

	pm.safeExit(strategy)

	r := pm.room
	if r.state.Ended() {
		return
	}

	if res := r.win.Evaluate(r); res != nil {
		r.EndGame(res)
		return
	}

	pm.Start(strategy.Next())
}

// Stop 取消待触发的定时器，之后到达的超时都会被忽略
func (pm *PhaseManager) Stop() {
	pm.cancelTimer()
	pm.current = nil
	pm.seq++
}

// Pending 返回当前阶段等待中的超时事件
func (pm *PhaseManager) Pending() *TimeoutRequest {
	return pm.pending
}

func (pm *PhaseManager) TimeLeft() time.Duration {
	if pm.pending == nil {
		return 0
	}
	left := time.Until(pm.deadline)
	if left < 0 {
		return 0
	}
	return left
}

func (pm *PhaseManager) schedule(phase Phase, d time.Duration) {
	req := TimeoutRequest{Phase: phase, Seq: pm.seq}
	pm.pending = &req
	pm.deadline = time.Now().Add(d)

	if pm.notify == nil {
		return
	}
	notify := pm.notify
	pm.timer = time.AfterFunc(d, func() { notify(req) })
}

func (pm *PhaseManager) cancelTimer() {
	if pm.timer != nil {
		pm.timer.Stop()
		pm.timer = nil
	}
	pm.pending = nil
}

func (pm *PhaseManager) safeEnter(s PhaseStrategy) {
	defer pm.recoverPhase(s, "enter")
	s.OnEnter(pm.room)
}

func (pm *PhaseManager) safeExit(s PhaseStrategy) {
	defer pm.recoverPhase(s, "exit")
	s.OnExit(pm.room)
}

func (pm *PhaseManager) recoverPhase(s PhaseStrategy, step string) {
	if v := recover(); v != nil {
		zap.L().Error(
			"阶段处理发生异常，继续推进游戏",
			zap.String("room", pm.room.name),
			zap.String("phase", string(s.Phase())),
			zap.String("step", step),
			zap.Any("panic", v),
			zap.Stack("stack"),
		)
	}
}
