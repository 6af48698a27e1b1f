package game

// PlayerRegistry 按座位顺序保存玩家，开局前删除玩家会重新编号
type PlayerRegistry struct {
	players []*Player
}

func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{}
}

func (pr *PlayerRegistry) Add(connID, name string) *Player {
	p := &Player{
		ConnID:   connID,
		Name:     name,
		Position: len(pr.players),
		IsAlive:  true,
	}
	pr.players = append(pr.players, p)
	return p
}

// Remove 删除玩家并把后面的座位号依次前移
func (pr *PlayerRegistry) Remove(connID string) *Player {
	for i, p := range pr.players {
		if p.ConnID != connID {
			continue
		}

		pr.players = append(pr.players[:i], pr.players[i+1:]...)
		for j := i; j < len(pr.players); j++ {
			pr.players[j].Position = j
		}
		return p
	}
	return nil
}

func (pr *PlayerRegistry) Len() int {
	return len(pr.players)
}

func (pr *PlayerRegistry) All() []*Player {
	return pr.players
}

func (pr *PlayerRegistry) ByPosition(pos int) *Player {
	if pos < 0 || pos >= len(pr.players) {
		return nil
	}
	return pr.players[pos]
}

func (pr *PlayerRegistry) ByConn(connID string) *Player {
	for _, p := range pr.players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (pr *PlayerRegistry) ByName(name string) *Player {
	for _, p := range pr.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (pr *PlayerRegistry) Alive() []*Player {
	var alive []*Player
	for _, p := range pr.players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (pr *PlayerRegistry) Dead() []*Player {
	var dead []*Player
	for _, p := range pr.players {
		if !p.IsAlive {
			dead = append(dead, p)
		}
	}
	return dead
}

func (pr *PlayerRegistry) CountAlive() int {
	n := 0
	for _, p := range pr.players {
		if p.IsAlive {
			n++
		}
	}
	return n
}

// CountAliveByGroup 统计各阵营存活人数
func (pr *PlayerRegistry) CountAliveByGroup() map[Group]int {
	counts := make(map[Group]int, 3)
	for _, p := range pr.players {
		if p.IsAlive && p.Role != nil {
			counts[p.Group()]++
		}
	}
	return counts
}
