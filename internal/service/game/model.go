package game

// 阵营
type Group string

const (
	GroupTown    Group = "town"
	GroupMafia   Group = "mafia"
	GroupNeutral Group = "neutral"
)

// 平局时的获胜方
const WinnerNobody = "nobody"

// Player 在加入房间时创建，Position 是座位号，开局后保持不变
type Player struct {
	ConnID   string `json:"-"`
	Name     string `json:"name"`
	Position int    `json:"position"`

	IsAlive       bool `json:"isAlive"`
	HasVoted      bool `json:"-"`
	VotesReceived int  `json:"-"`

	Role Role `json:"-"`
}

func (p *Player) state() *RoleState {
	if p == nil || p.Role == nil {
		return nil
	}
	return p.Role.State()
}

func (p *Player) Group() Group {
	if rs := p.state(); rs != nil {
		return rs.Group
	}
	return ""
}

func (p *Player) RoleName() string {
	if rs := p.state(); rs != nil {
		return string(rs.Name)
	}
	return ""
}

// 每个白天开始时重置
func (p *Player) resetDayState() {
	p.HasVoted = false
	p.VotesReceived = 0
}
