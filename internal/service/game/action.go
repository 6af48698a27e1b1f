package game

// 加入房间的结果码，与前端约定保持一致
type JoinCode int

const (
	JoinOK          JoinCode = 0
	JoinDuplicate   JoinCode = 1
	JoinInvalidName JoinCode = 2
	JoinFull        JoinCode = 3
)

type JoinResult struct {
	Username string   `json:"username"`
	Code     JoinCode `json:"code"`
	RoomName string   `json:"room_name"`
	// 本次加入是否让房间满员并开局
	Started bool `json:"-"`
}

// JoinCommand 由 RoomService 投递给房间状态机，Reply 用于同步拿到结果
type JoinCommand struct {
	Username string
	Reply    chan JoinResult
}

type JoinRoomRequest struct {
	Username string `json:"username"`
}

// RoomInfoQuery 用于从房间协程外部安全地读取房间概况
type RoomInfoQuery struct {
	Reply chan RoomInfo
}

type RoomInfo struct {
	Name      string `json:"name"`
	Size      int    `json:"size"`
	Players   int    `json:"players"`
	Started   bool   `json:"started"`
	Ended     bool   `json:"ended"`
	Phase     Phase  `json:"phase,omitempty"`
	DayNumber int    `json:"dayNumber"`
}

type SentMessageRequest struct {
	Message string `json:"message"`
	IsDay   bool   `json:"isDay"`
}

// Position 为空时不做任何操作
type VoteRequest struct {
	Position *int `json:"position"`
	IsDay    bool `json:"isDay"`
}

type VisitRequest struct {
	Position *int `json:"position"`
	IsDay    bool `json:"isDay"`
}

type WhisperRequest struct {
	Position int    `json:"position"`
	Message  string `json:"message"`
	IsDay    bool   `json:"isDay"`
}

type LeaveRoomRequest struct{}

type TimeoutRequest struct {
	Phase Phase  `json:"phase"`
	Seq   uint64 `json:"seq"`
}

type ReceiveMessageData struct {
	Message string `json:"message"`
}

type DayTimeData struct {
	Time      string `json:"time"`
	DayNumber int    `json:"dayNumber"`
	TimeLeft  int    `json:"timeLeft"`
}

type AssignRoleData struct {
	Name              string `json:"name"`
	Role              string `json:"role"`
	Group             string `json:"group"`
	DayVisitSelf      bool   `json:"dayVisitSelf"`
	DayVisitOthers    bool   `json:"dayVisitOthers"`
	DayVisitFaction   bool   `json:"dayVisitFaction"`
	NightVisitSelf    bool   `json:"nightVisitSelf"`
	NightVisitOthers  bool   `json:"nightVisitOthers"`
	NightVisitFaction bool   `json:"nightVisitFaction"`
	NightVote         bool   `json:"nightVote"`
}

type PlayerListEntry struct {
	Name    string `json:"name"`
	IsAlive *bool  `json:"isAlive,omitempty"`
	Role    string `json:"role,omitempty"`
}

type PlayerListData struct {
	PlayerList []PlayerListEntry `json:"playerList"`
}

type RoleListData struct {
	RoleList []string `json:"roleList"`
}
