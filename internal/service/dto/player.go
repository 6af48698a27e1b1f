package dto

import "mafia-be/internal/service/game"

// 对局中的一名参与者，对局结束后才会公开角色
type Participant struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Won      bool   `json:"won"`
}

func NewParticipants(ps []game.Participant) []Participant {
	out := make([]Participant, 0, len(ps))
	for _, p := range ps {
		out = append(out, Participant{
			Username: p.Username,
			Role:     p.Role,
			Won:      p.Won,
		})
	}
	return out
}
