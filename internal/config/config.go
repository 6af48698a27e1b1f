package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"mafia-be/internal/service/game"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 房间人数与各阶段时长
	RoomSize                int `mapstructure:"room_size"`
	SessionSecondsPerPlayer int `mapstructure:"session_seconds_per_player"`
	FirstDaySeconds         int `mapstructure:"first_day_seconds"`
	NightSeconds            int `mapstructure:"night_seconds"`
	MinimumDaySeconds       int `mapstructure:"minimum_day_seconds"`
	MaxDays                 int `mapstructure:"max_days"`
	NoKillDays              int `mapstructure:"no_kill_days"`

	// 对局记录存储，DSN 为空时不保存
	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	// 每个连接的消息限流
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	MessageBurst      int     `mapstructure:"message_burst"`
}

const envPrefix = "MAFIA"

func InitConfig() *AppConfig {
	config, err := Load("app_config.json")
	if err != nil {
		panic(err)
	}

	return config
}

// Load 依次读取默认值、配置文件和 MAFIA_ 前缀的环境变量，配置文件不存在时忽略
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("加载配置失败: %w", err)
			}
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if config.RoomSize < 3 {
		return nil, fmt.Errorf("房间人数至少为 3，当前为 %d", config.RoomSize)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	def := game.DefaultConfig()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("room_size", def.Size)
	v.SetDefault("session_seconds_per_player", def.SecondsPerPlayer)
	v.SetDefault("first_day_seconds", int(def.FirstDay/time.Second))
	v.SetDefault("night_seconds", int(def.Night/time.Second))
	v.SetDefault("minimum_day_seconds", int(def.MinimumDay/time.Second))
	v.SetDefault("max_days", def.MaxDays)
	v.SetDefault("no_kill_days", def.NoKillDays)

	v.SetDefault("db_driver", "sqlite3")
	v.SetDefault("db_dsn", "")

	v.SetDefault("messages_per_second", 5.0)
	v.SetDefault("message_burst", 10)
}

// GameConfig 转换为游戏引擎使用的配置
func (c *AppConfig) GameConfig() game.Config {
	return game.Config{
		Size:             c.RoomSize,
		SecondsPerPlayer: c.SessionSecondsPerPlayer,
		FirstDay:         time.Duration(c.FirstDaySeconds) * time.Second,
		Night:            time.Duration(c.NightSeconds) * time.Second,
		MinimumDay:       time.Duration(c.MinimumDaySeconds) * time.Second,
		MaxDays:          c.MaxDays,
		NoKillDays:       c.NoKillDays,
	}
}
