package websocket

import (
	"encoding/json"
	"time"

	"mafia-be/internal/service/game"
	"mafia-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

func JoinGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadLimit(MAX_MESSAGE_SIZE)
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		clientIP := ctx.RemoteAddr()
		connID := game.GenID()

		roomSvc := appState.RoomSvc
		hub := roomSvc.Hub()

		// 响应通道由 Hub 持有并负责关闭
		respCh := make(chan game.ResponseWrapper, 64)
		hub.Register(connID, respCh)

		go writeLoop(conn, respCh, clientIP)

		reqCh := joinLoop(conn, appState, connID, clientIP)
		if reqCh == nil {
			hub.Unregister(connID)
			return
		}

		limiter := newLimiter(appState.Cfg.MessagesPerSecond, appState.Cfg.MessageBurst)

		// 读取协程（主协程）
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}

			if !limiter.Allow() {
				hub.SendPlayerMessage(connID, game.WrapErrResponse("发送过于频繁，请稍后再试"))
				continue
			}

			// 解析消息
			var wrapper game.RequestWrapper

			if err := json.Unmarshal(msg, &wrapper); err != nil {
				zap.L().Debug(
					"解析消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)

				hub.SendPlayerMessage(connID, game.WrapErrResponse("无效的请求格式"))

				continue
			}

			// 身份只由服务端决定，内部请求类型不允许客户端发送
			wrapper.ConnID = connID
			wrapper.NativeData = nil
			switch wrapper.ReqType {
			case game.REQ_LEAVE_ROOM, game.REQ_TIMEOUT, game.REQ_ROOM_INFO, game.REQ_JOIN_ROOM:
				hub.SendPlayerMessage(connID, game.WrapErrResponse("不支持的请求类型"))
				continue
			}

			// 将解析后的请求发送到游戏状态机
			select {
			case reqCh <- wrapper:
				zap.L().Debug(
					"发送请求到游戏状态机",
					zap.String("client_ip", clientIP),
					zap.String("request_type", wrapper.ReqType),
				)
			default:
				zap.L().Error(
					"发送请求到游戏状态机失败：请求通道已满",
					zap.String("client_ip", clientIP),
				)

				hub.SendPlayerMessage(connID, game.WrapErrResponse("房间繁忙，请稍后再试"))
			}
		}

		// 读循环退出，表示客户端断开连接
		zap.L().Info(
			"客户端连接断开，发送离开请求",
			zap.String("client_ip", clientIP),
			zap.String("conn_id", connID),
		)

		roomSvc.LeaveRoom(connID, reqCh)
	}
}

// joinLoop 读取加入请求直到成功加入房间，连接断开时返回 nil
func joinLoop(conn *websocket.Conn, appState *state.AppState, connID, clientIP string) chan<- game.RequestWrapper {
	hub := appState.RoomSvc.Hub()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			zap.L().Debug(
				"加入房间前连接断开",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			return nil
		}

		var wrapper game.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			hub.SendPlayerMessage(connID, game.WrapErrResponse("无效的请求格式"))
			continue
		}

		wrapper.NativeData = nil
		req := game.TryUnwrapJoinRoomRequest(wrapper)
		if req == nil {
			hub.SendPlayerMessage(connID, game.WrapErrResponse("请先加入房间"))
			continue
		}

		res, reqCh, err := appState.RoomSvc.JoinRoom(connID, req.Username)
		if err != nil {
			zap.L().Warn(
				"加入房间失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			hub.SendPlayerMessage(connID, game.WrapErrResponse(err.Error()))
			continue
		}

		// 成功时房间已经发送了确认
		if res.Code != game.JoinOK {
			hub.SendPlayerMessage(connID, game.WrapResponse(game.RESP_JOIN_ROOM, res))
			continue
		}

		zap.L().Info(
			"玩家成功加入房间",
			zap.String("client_ip", clientIP),
			zap.String("conn_id", connID),
			zap.String("username", res.Username),
			zap.String("room", res.RoomName),
		)

		return reqCh
	}
}

// writeLoop 是唯一写连接的协程，响应通道关闭后关闭连接，读循环随之退出
func writeLoop(conn *websocket.Conn, respCh <-chan game.ResponseWrapper, clientIP string) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"发送心跳失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

		case resp, ok := <-respCh:
			if !ok {
				zap.L().Info(
					"响应通道已关闭，退出写协程",
					zap.String("client_ip", clientIP),
				)

				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
					time.Now().Add(time.Second),
				)
				conn.Close()
				return
			}

			conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Error(
					"发送消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

			zap.L().Debug(
				"发送消息",
				zap.String("client_ip", clientIP),
				zap.String("response_type", resp.RespType),
			)
		}
	}
}
