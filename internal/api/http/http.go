package http

import (
	"fmt"

	"mafia-be/internal/api/http/websocket"
	"mafia-be/internal/state"

	"github.com/kataras/iris/v12"
)

func NewApp(appState *state.AppState) *iris.Application {
	app := iris.Default()

	api := app.Party("/api/v1")

	api.Get("/health", Health(appState))
	api.Get("/rooms/current", CurrentRoom(appState))
	api.Get("/matches/recent", RecentMatches(appState))

	api.Get("/ws/join", websocket.JoinGame(appState))

	return app
}

func RunServer(appState *state.AppState) error {
	app := NewApp(appState)

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	return app.Listen(addr)
}
