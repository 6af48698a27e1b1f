package dto

import "mafia-be/internal/service/game"

const (
	STATUS_WAITING  = "Waiting"
	STATUS_PLAYING  = "Playing"
	STATUS_FINISHED = "Finished"
)

type Room struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Size      int    `json:"size"`
	Players   int    `json:"players"`
	Phase     string `json:"phase,omitempty"`
	DayNumber int    `json:"day_number"`
}

func NewRoom(info game.RoomInfo) Room {
	status := STATUS_WAITING
	switch {
	case info.Ended:
		status = STATUS_FINISHED
	case info.Started:
		status = STATUS_PLAYING
	}

	return Room{
		Name:      info.Name,
		Status:    status,
		Size:      info.Size,
		Players:   info.Players,
		Phase:     string(info.Phase),
		DayNumber: info.DayNumber,
	}
}

type HealthResponse struct {
	Status      string `json:"status"`
	ActiveRooms int    `json:"active_rooms"`
	Connections int    `json:"connections"`
}
