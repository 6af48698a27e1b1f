package game

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// GameMachine 驱动一个房间的事件循环：房间的所有状态只在这个协程里修改
type GameMachine struct {
	room *Room
	sink Sink

	// 这是所有的用户的请求汇总的通道
	reqCh chan RequestWrapper
	// 阶段定时器投递超时事件的通道
	tmoCh chan RequestWrapper
	// 结束通道，用于通知游戏状态机退出事件循环
	doneCh chan struct{}

	createdAt time.Time
	// 事件循环退出后置位，可以在其他协程读取
	finished atomic.Bool
}

func NewGameMachine(room *Room, sink Sink, doneCh chan struct{}) *GameMachine {
	gm := &GameMachine{
		room:      room,
		sink:      sink,
		reqCh:     make(chan RequestWrapper, 64),
		tmoCh:     make(chan RequestWrapper, 8),
		doneCh:    doneCh,
		createdAt: time.Now(),
	}

	room.SetTimeoutNotifier(gm.postTimeout)

	return gm
}

func (gm *GameMachine) postTimeout(req TimeoutRequest) {
	wrapper := RequestWrapper{
		ReqType:    REQ_TIMEOUT,
		NativeData: &req,
	}

	select {
	case gm.tmoCh <- wrapper:
	default:
		zap.L().Warn(
			"超时通道已满，丢弃超时事件",
			zap.String("room", gm.room.Name()),
			zap.String("phase", string(req.Phase)),
		)
	}
}

func (gm *GameMachine) GetReqCh() chan RequestWrapper {
	return gm.reqCh
}

func (gm *GameMachine) Room() *Room {
	return gm.room
}

func (gm *GameMachine) Start() {
	defer gm.finished.Store(true)

	for !gm.room.Ended() {
		var req RequestWrapper

		select {
		case req = <-gm.reqCh:
			zap.L().Debug(
				"接收到客户端请求",
				zap.String("room", gm.room.Name()),
				zap.String("request_type", req.ReqType),
			)
		case req = <-gm.tmoCh:
			zap.L().Debug(
				"接收到超时事件",
				zap.String("room", gm.room.Name()),
			)
		case <-gm.doneCh:
			zap.L().Info(
				"收到退出信号，结束游戏状态机",
				zap.String("room", gm.room.Name()),
			)
			gm.room.phases.Stop()
			return
		}

		if err := gm.room.Dispatch(req); err != nil {
			zap.L().Debug(
				"处理请求失败",
				zap.String("room", gm.room.Name()),
				zap.String("phase", string(gm.room.Phase())),
				zap.String("request_type", req.ReqType),
				zap.Error(err),
			)
		}
	}

	gm.persist()

	// 游戏结束后，协程应当自动退出，释放资源
	zap.L().Info(
		"游戏状态机已结束",
		zap.String("room", gm.room.Name()),
	)
}

func (gm *GameMachine) persist() {
	summary := gm.room.Summary()
	if gm.sink == nil || summary == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := gm.sink.SaveMatch(ctx, *summary); err != nil {
		zap.L().Error(
			"保存对局记录失败",
			zap.String("room", gm.room.Name()),
			zap.Error(err),
		)
		return
	}

	zap.L().Info(
		"对局记录已保存",
		zap.String("room", gm.room.Name()),
		zap.String("match_id", summary.ID),
	)
}

func (gm *GameMachine) IsFinished() bool {
	return gm.finished.Load()
}

func (gm *GameMachine) CreatedAt() time.Time {
	return gm.createdAt
}
