package service

import (
	"strings"
	"sync"
	"time"

	"mafia-be/internal/service/game"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// RoomService 管理全部房间。任意时刻只有一个“当前房间”接受新玩家，
// 它开局后下一次加入会创建新的当前房间
type RoomService struct {
	state *roomServiceState

	hub     *Hub
	sink    game.Sink
	gameCfg game.Config

	wg conc.WaitGroup
}

type roomServiceState struct {
	mu sync.RWMutex

	rooms   map[string]*roomEntry
	current string
	closed  bool

	cleanUpDone chan struct{}
}

func NewRoomService(gameCfg game.Config, hub *Hub, sink game.Sink) *RoomService {
	state := &roomServiceState{
		rooms:       make(map[string]*roomEntry),
		cleanUpDone: make(chan struct{}),
	}

	rs := &RoomService{
		state:   state,
		hub:     hub,
		sink:    sink,
		gameCfg: gameCfg,
	}

	// 启动一个 goroutine 定期清理已结束的房间
	go rs.startCleanupLoop()

	return rs
}

func (rs *RoomService) Hub() *Hub {
	return rs.hub
}

func (rs *RoomService) startCleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.state.cleanUpDone:
			return

		case <-ticker.C:
			rs.cleanup()
		}
	}
}

func (rs *RoomService) cleanup() {
	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	for name, entry := range rs.state.rooms {
		if isRoomValid(entry) {
			continue
		}

		zap.S().Infof("房间 %s 已结束，开始清理", name)
		delete(rs.state.rooms, name)

		if rs.state.current == name {
			rs.state.current = ""
		}
	}
}

// Close 通知所有房间协程退出，并等待它们结束
func (rs *RoomService) Close() {
	rs.state.mu.Lock()
	if rs.state.closed {
		rs.state.mu.Unlock()
		return
	}
	rs.state.closed = true
	close(rs.state.cleanUpDone)

	for _, entry := range rs.state.rooms {
		close(entry.doneCh)
	}
	rs.state.mu.Unlock()

	rs.wg.Wait()
	zap.L().Info("所有房间协程已退出")
}

// createRoomLocked 调用方需要持有写锁
func (rs *RoomService) createRoomLocked() *roomEntry {
	name := game.ShortID()
	room := game.NewRoom(name, rs.gameCfg, rs.hub)

	doneCh := make(chan struct{})
	machine := game.NewGameMachine(room, rs.sink, doneCh)

	entry := &roomEntry{
		machine: machine,
		reqCh:   machine.GetReqCh(),
		doneCh:  doneCh,
	}
	rs.state.rooms[name] = entry
	rs.state.current = name

	// 每个房间独立的 goroutine
	rs.wg.Go(machine.Start)

	zap.S().Infof("创建新房间 %s", name)

	return entry
}

func (rs *RoomService) currentLocked() *roomEntry {
	entry := rs.state.rooms[rs.state.current]
	if entry == nil || entry.started || !isRoomValid(entry) {
		return rs.createRoomLocked()
	}
	return entry
}

// JoinRoom 把玩家加入当前房间，成功时返回房间的请求通道
func (rs *RoomService) JoinRoom(connID, username string) (game.JoinResult, chan<- game.RequestWrapper, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return game.JoinResult{Username: username, Code: game.JoinInvalidName}, nil, nil
	}

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	if rs.state.closed {
		return game.JoinResult{}, nil, ErrServiceClosed
	}

	entry := rs.currentLocked()
	roomName := rs.state.current

	// 先加入广播范围，开局时的广播才能送达
	rs.hub.Bind(connID, roomName)

	reply := make(chan game.JoinResult, 1)
	req := game.RequestWrapper{
		ReqType: game.REQ_JOIN_ROOM,
		ConnID:  connID,
		NativeData: &game.JoinCommand{
			Username: username,
			Reply:    reply,
		},
	}

	zap.S().Debugf("房间 %s 收到加入请求：%s", roomName, username)

	if err := sendWithTimeout(entry.reqCh, req); err != nil {
		rs.hub.Bind(connID, "")
		zap.S().Warnf("房间 %s 无法及时处理加入请求，%s 发送失败", roomName, username)
		return game.JoinResult{}, nil, err
	}

	res, err := waitReply(reply)
	if err != nil {
		rs.hub.Bind(connID, "")
		zap.S().Warnf("房间 %s 加入请求响应超时：%s", roomName, username)
		return game.JoinResult{}, nil, err
	}

	if res.Code != game.JoinOK {
		rs.hub.Bind(connID, "")
		zap.S().Infof("房间 %s 拒绝玩家 %s，错误码 %d", roomName, username, res.Code)
		return res, nil, nil
	}

	if res.Started {
		entry.started = true
		rs.state.current = ""
		zap.S().Infof("房间 %s 已满员开局", roomName)
	}

	zap.S().Infof("房间 %s 接纳玩家 %s", roomName, res.Username)

	return res, entry.reqCh, nil
}

// CurrentRoom 查询当前可加入房间的概况，没有时创建一个
func (rs *RoomService) CurrentRoom() (game.RoomInfo, error) {
	rs.state.mu.Lock()
	if rs.state.closed {
		rs.state.mu.Unlock()
		return game.RoomInfo{}, ErrServiceClosed
	}
	entry := rs.currentLocked()
	rs.state.mu.Unlock()

	return rs.queryInfo(entry)
}

func (rs *RoomService) RoomInfo(name string) (game.RoomInfo, error) {
	rs.state.mu.RLock()
	entry := rs.state.rooms[name]
	rs.state.mu.RUnlock()

	if entry == nil {
		return game.RoomInfo{}, ErrRoomNotFound
	}

	return rs.queryInfo(entry)
}

func (rs *RoomService) ActiveRooms() int {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	n := 0
	for _, entry := range rs.state.rooms {
		if isRoomValid(entry) {
			n++
		}
	}
	return n
}

func (*RoomService) queryInfo(entry *roomEntry) (game.RoomInfo, error) {
	if !isRoomValid(entry) {
		return game.RoomInfo{}, ErrRoomClosed
	}

	reply := make(chan game.RoomInfo, 1)
	req := game.RequestWrapper{
		ReqType:    game.REQ_ROOM_INFO,
		NativeData: &game.RoomInfoQuery{Reply: reply},
	}

	if err := sendWithTimeout(entry.reqCh, req); err != nil {
		return game.RoomInfo{}, err
	}

	return waitReply(reply)
}

// LeaveRoom 由连接层在断开时调用，房间已结束时直接忽略
func (rs *RoomService) LeaveRoom(connID string, reqCh chan<- game.RequestWrapper) {
	defer rs.hub.Unregister(connID)

	if reqCh == nil {
		return
	}

	req := game.RequestWrapper{
		ReqType: game.REQ_LEAVE_ROOM,
		ConnID:  connID,
	}

	select {
	case reqCh <- req:
		zap.L().Debug(
			"发送离开请求成功",
			zap.String("conn_id", connID),
		)
	default:
		zap.L().Warn(
			"发送离开请求失败：请求通道已满",
			zap.String("conn_id", connID),
		)
	}
}
