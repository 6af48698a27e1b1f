package service

import (
	"errors"
	"time"

	"mafia-be/internal/service/game"
)

// 服务层错误带有大写错误码前缀，便于 HTTP 层直接返回
var (
	ErrRoomNotFound  = errors.New("ROOM_NOT_FOUND: 房间不存在")
	ErrRoomBusy      = errors.New("ROOM_BUSY: 房间无法及时处理请求")
	ErrRoomClosed    = errors.New("ROOM_CLOSED: 房间已经关闭")
	ErrServiceClosed = errors.New("SERVICE_CLOSED: 服务正在关闭")
)

const (
	// 等待房间协程接收与回复请求的时间
	roomRequestTimeout = 5 * time.Second
	// 没人加入的空房间也会被保留，只有结束的房间会被清理
	cleanupInterval = time.Minute
)

type roomEntry struct {
	machine *game.GameMachine
	reqCh   chan game.RequestWrapper
	doneCh  chan struct{}
	// 是否已经开局，开局后不再作为当前房间
	started bool
}

func isRoomValid(entry *roomEntry) bool {
	if entry == nil || entry.machine == nil {
		return false
	}

	return !entry.machine.IsFinished()
}

// sendWithTimeout 在超时前把请求投递给房间协程
func sendWithTimeout(reqCh chan<- game.RequestWrapper, req game.RequestWrapper) error {
	timer := time.NewTimer(roomRequestTimeout)
	defer timer.Stop()

	select {
	case reqCh <- req:
		return nil
	case <-timer.C:
		return ErrRoomBusy
	}
}

func waitReply[T any](replyCh <-chan T) (T, error) {
	timer := time.NewTimer(roomRequestTimeout)
	defer timer.Stop()

	var zero T
	select {
	case v := <-replyCh:
		return v, nil
	case <-timer.C:
		return zero, ErrRoomBusy
	}
}
