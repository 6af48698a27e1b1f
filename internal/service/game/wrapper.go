package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 客户端请求类型
const (
	REQ_JOIN_ROOM    = "playerJoinRoom"
	REQ_SEND_MESSAGE = "messageSentByUser"
	REQ_VOTE         = "handleVote"
	REQ_VISIT        = "handleVisit"
	REQ_WHISPER      = "handleWhisper"

	// 以下请求只在服务端内部产生
	REQ_LEAVE_ROOM = "leaveRoom"
	REQ_TIMEOUT    = "timeout"
	REQ_ROOM_INFO  = "roomInfo"
)

type RequestWrapper struct {
	ReqType string          `json:"name"`
	Data    json.RawMessage `json:"data"`

	// 由连接层填写，客户端无法伪造
	ConnID string `json:"-"`
	// 服务端内部请求直接携带结构体，不经过 JSON
	NativeData any `json:"-"`
}

func tryUnwrap[T any](wrapper RequestWrapper, reqType string) *T {
	if wrapper.ReqType != reqType {
		return nil
	}

	if native, ok := wrapper.NativeData.(*T); ok && native != nil {
		return native
	}

	var req T

	if len(wrapper.Data) == 0 {
		return &req
	}

	if err := json.Unmarshal(wrapper.Data, &req); err != nil {
		zap.L().Error(
			"Failed to unwrap request",
			zap.String("request_type", reqType),
			zap.Error(err),
		)
		return nil
	}

	return &req
}

func TryUnwrapSentMessageRequest(wrapper RequestWrapper) *SentMessageRequest {
	return tryUnwrap[SentMessageRequest](wrapper, REQ_SEND_MESSAGE)
}

func TryUnwrapVoteRequest(wrapper RequestWrapper) *VoteRequest {
	return tryUnwrap[VoteRequest](wrapper, REQ_VOTE)
}

func TryUnwrapVisitRequest(wrapper RequestWrapper) *VisitRequest {
	return tryUnwrap[VisitRequest](wrapper, REQ_VISIT)
}

func TryUnwrapWhisperRequest(wrapper RequestWrapper) *WhisperRequest {
	return tryUnwrap[WhisperRequest](wrapper, REQ_WHISPER)
}

// TryUnwrapJoinRoomRequest 解析客户端发来的加入请求
func TryUnwrapJoinRoomRequest(wrapper RequestWrapper) *JoinRoomRequest {
	if wrapper.NativeData != nil {
		return nil
	}
	return tryUnwrap[JoinRoomRequest](wrapper, REQ_JOIN_ROOM)
}

// TryUnwrapJoinCommand 只接受服务端内部投递的加入命令
func TryUnwrapJoinCommand(wrapper RequestWrapper) *JoinCommand {
	if wrapper.ReqType != REQ_JOIN_ROOM {
		return nil
	}

	cmd, _ := wrapper.NativeData.(*JoinCommand)
	return cmd
}

func TryUnwrapRoomInfoQuery(wrapper RequestWrapper) *RoomInfoQuery {
	if wrapper.ReqType != REQ_ROOM_INFO {
		return nil
	}

	query, _ := wrapper.NativeData.(*RoomInfoQuery)
	return query
}

func TryUnwrapLeaveRoomRequest(wrapper RequestWrapper) *LeaveRoomRequest {
	return tryUnwrap[LeaveRoomRequest](wrapper, REQ_LEAVE_ROOM)
}

func TryUnwrapTimeoutRequest(wrapper RequestWrapper) *TimeoutRequest {
	return tryUnwrap[TimeoutRequest](wrapper, REQ_TIMEOUT)
}

// 服务端推送类型
const (
	RESP_ERROR              = "error"
	RESP_JOIN_ROOM          = "playerJoinRoom"
	RESP_RECEIVE_MESSAGE    = "receiveMessage"
	RESP_UPDATE_DAY_TIME    = "update-day-time"
	RESP_ASSIGN_PLAYER_ROLE = "assign-player-role"
	RESP_PLAYER_LIST        = "receive-player-list"
	RESP_ROLE_LIST          = "receive-role-list"
	RESP_BLOCK_MESSAGES     = "blockMessages"
)

type ResponseWrapper struct {
	RespType string `json:"name"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}

func WrapMessage(message string) ResponseWrapper {
	return WrapResponse(RESP_RECEIVE_MESSAGE, ReceiveMessageData{Message: message})
}
