package main

import (
	"os"
	"os/signal"
	"syscall"

	"mafia-be/internal/api/http"
	"mafia-be/internal/config"
	"mafia-be/internal/logger"
	"mafia-be/internal/service"
	"mafia-be/internal/service/game"
	"mafia-be/internal/state"
	"mafia-be/internal/store"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)
	defer zap.L().Sync()

	// 对局记录存储是可选的
	var (
		matchStore *store.MatchStore
		sink       game.Sink
	)
	if cfg.DBDSN != "" {
		s, err := store.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			zap.L().Fatal("打开对局记录存储失败", zap.Error(err))
		}
		defer s.Close()

		matchStore = s
		sink = s
	}

	roomSvc := service.NewRoomService(cfg.GameConfig(), service.NewHub(), sink)
	defer roomSvc.Close()

	// 组装应用状态
	appState := state.NewAppState(cfg, roomSvc, matchStore)

	errCh := make(chan error, 1)
	go func() {
		// 启动服务器
		errCh <- http.RunServer(appState)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zap.L().Error("服务器退出", zap.Error(err))
	case sig := <-sigCh:
		zap.L().Info("收到退出信号", zap.String("signal", sig.String()))
	}
}
