package game

import (
	"context"
	"time"
)

type Participant struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Won      bool   `json:"won"`
}

// MatchSummary 在对局结束时生成，交给 Sink 持久化
type MatchSummary struct {
	ID                  string        `json:"id"`
	RoomName            string        `json:"roomName"`
	StartedAt           time.Time     `json:"startedAt"`
	EndedAt             time.Time     `json:"endedAt"`
	WinningFaction      string        `json:"winningFaction"`
	WinningRoles        []string      `json:"winningRoles"`
	Participants        []Participant `json:"participants"`
	ConversationHistory []Event       `json:"conversationHistory"`
	ActionHistory       []Event       `json:"actionHistory"`
}

// Sink 只写的对局记录存储
type Sink interface {
	SaveMatch(ctx context.Context, summary MatchSummary) error
}

func (r *Room) buildSummary(res *WinResult) *MatchSummary {
	winners := make(map[int]bool)
	faction := ""
	if res != nil {
		faction = res.Faction
		for _, p := range res.Players {
			winners[p.Position] = true
		}
	}

	summary := &MatchSummary{
		ID:                  GenID(),
		RoomName:            r.name,
		StartedAt:           r.startedAt,
		EndedAt:             time.Now(),
		WinningFaction:      faction,
		ConversationHistory: r.events.Conversation(),
		ActionHistory:       r.events.Actions(),
	}

	seen := make(map[string]bool)
	for _, p := range r.players.All() {
		won := winners[p.Position]
		if goal, ok := p.Role.(personalGoal); ok && goal.AchievedGoal(r) {
			won = true
		}

		summary.Participants = append(summary.Participants, Participant{
			Username: p.Name,
			Role:     p.RoleName(),
			Won:      won,
		})

		if won && !seen[p.RoleName()] {
			seen[p.RoleName()] = true
			summary.WinningRoles = append(summary.WinningRoles, p.RoleName())
		}
	}

	return summary
}
