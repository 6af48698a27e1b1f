package http

import (
	"errors"

	"mafia-be/internal/service"
	"mafia-be/internal/service/dto"
	"mafia-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const maxRecentMatches = 50

func Health(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.HealthResponse{
			Status:      "ok",
			ActiveRooms: appState.RoomSvc.ActiveRooms(),
			Connections: appState.RoomSvc.Hub().Connections(),
		})
	}
}

func CurrentRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		info, err := appState.RoomSvc.CurrentRoom()
		if err != nil {
			status := iris.StatusServiceUnavailable
			if errors.Is(err, service.ErrRoomNotFound) {
				status = iris.StatusNotFound
			}

			ctx.StatusCode(status)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(dto.NewRoom(info))
	}
}

func RecentMatches(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		if appState.Store == nil {
			ctx.StatusCode(iris.StatusServiceUnavailable)
			ctx.JSON(iris.Map{
				"error": "STORE_DISABLED: 未配置数据库",
			})
			return
		}

		limit := ctx.URLParamIntDefault("limit", 10)
		if limit <= 0 || limit > maxRecentMatches {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "INVALID_LIMIT: 请求参数无效",
			})
			return
		}

		summaries, err := appState.Store.RecentMatches(ctx.Request().Context(), limit)
		if err != nil {
			zap.L().Error("查询最近对局失败", zap.Error(err))
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{
				"error": "STORE_ERROR: 查询失败",
			})
			return
		}

		resp := dto.RecentMatchesResponse{Matches: make([]dto.Match, 0, len(summaries))}
		for _, s := range summaries {
			resp.Matches = append(resp.Matches, dto.NewMatch(s))
		}

		ctx.JSON(resp)
	}
}
