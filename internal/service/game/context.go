package game

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Messenger 是房间对外发送消息的唯一出口，由服务层注入
type Messenger interface {
	SendPlayerMessage(connID string, resp ResponseWrapper)
	SendRoomMessage(room string, resp ResponseWrapper)
	DisconnectSockets(room string)
}

type Config struct {
	Size int
	// 白天时长 = Size * SecondsPerPlayer + MinimumDay
	SecondsPerPlayer int
	FirstDay         time.Duration
	Night            time.Duration
	MinimumDay       time.Duration
	MaxDays          int
	// 多少天无人死亡判定平局
	NoKillDays int

	Rand *rand.Rand
}

func DefaultConfig() Config {
	return Config{
		Size:             10,
		SecondsPerPlayer: 4,
		FirstDay:         5 * time.Second,
		Night:            15 * time.Second,
		MinimumDay:       30 * time.Second,
		MaxDays:          25,
		NoKillDays:       3,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Size <= 0 {
		c.Size = def.Size
	}
	if c.SecondsPerPlayer <= 0 {
		c.SecondsPerPlayer = def.SecondsPerPlayer
	}
	if c.FirstDay <= 0 {
		c.FirstDay = def.FirstDay
	}
	if c.Night <= 0 {
		c.Night = def.Night
	}
	if c.MinimumDay <= 0 {
		c.MinimumDay = def.MinimumDay
	}
	if c.MaxDays <= 0 {
		c.MaxDays = def.MaxDays
	}
	if c.NoKillDays <= 0 {
		c.NoKillDays = def.NoKillDays
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

func (c Config) dayDuration() time.Duration {
	return time.Duration(c.Size*c.SecondsPerPlayer)*time.Second + c.MinimumDay
}

func (r *Room) broadcastResp(resp ResponseWrapper) {
	if r.messenger == nil {
		return
	}
	r.messenger.SendRoomMessage(r.name, resp)
}

func (r *Room) unicastResp(p *Player, resp ResponseWrapper) {
	if p == nil {
		zap.L().Warn(
			"无法找到玩家进行单播响应",
			zap.String("room", r.name),
		)
		return
	}
	if r.messenger == nil || p.ConnID == "" {
		return
	}
	r.messenger.SendPlayerMessage(p.ConnID, resp)
}

func (r *Room) sendPlayerMessage(p *Player, message string) {
	r.unicastResp(p, WrapMessage(message))
}

func (r *Room) sendRoomMessage(message string) {
	r.broadcastResp(WrapMessage(message))
	r.events.Chat(message)
}

// sendFactionMessage 发给某个阵营的存活成员
func (r *Room) sendFactionMessage(group Group, message string) {
	for _, p := range r.players.Alive() {
		if p.Group() == group {
			r.sendPlayerMessage(p, message)
		}
	}
}

func (r *Room) sendDeadMessage(message string) {
	for _, p := range r.players.Dead() {
		r.sendPlayerMessage(p, message)
	}
}
