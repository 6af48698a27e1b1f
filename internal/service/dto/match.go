package dto

import (
	"time"

	"mafia-be/internal/service/game"
)

// 对局记录的对外形式，不包含聊天与行动历史
type Match struct {
	ID             string        `json:"id"`
	RoomName       string        `json:"room_name"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        time.Time     `json:"ended_at"`
	WinningFaction string        `json:"winning_faction"`
	WinningRoles   []string      `json:"winning_roles"`
	Participants   []Participant `json:"participants"`
}

func NewMatch(s game.MatchSummary) Match {
	return Match{
		ID:             s.ID,
		RoomName:       s.RoomName,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
		WinningFaction: s.WinningFaction,
		WinningRoles:   s.WinningRoles,
		Participants:   NewParticipants(s.Participants),
	}
}

type RecentMatchesResponse struct {
	Matches []Match `json:"matches"`
}
