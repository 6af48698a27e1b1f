package state

import (
	"mafia-be/internal/config"
	"mafia-be/internal/service"
	"mafia-be/internal/store"
)

type AppState struct {
	Cfg     *config.AppConfig
	RoomSvc *service.RoomService
	Store   *store.MatchStore
}

func NewAppState(
	cfg *config.AppConfig,
	roomSvc *service.RoomService,
	matchStore *store.MatchStore,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		RoomSvc: roomSvc,
		Store:   matchStore,
	}
}
