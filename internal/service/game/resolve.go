package game

// resolveNight 夜间结算，顺序不能调整：
//  0. 复位防御与伤害，执行被动能力
//  1. 阵营决定击杀目标与执行者
//  2. 封锁类角色先行动
//  3. 其余角色行动，被封锁者的行动取消
//  4. 存活玩家处理来访（调查类角色在此得到结果）
//  5. 结算伤害，清理临时状态
func (r *Room) resolveNight() {
	alive := r.players.Alive()

	for _, p := range alive {
		p.state().resetCombat()
		applyPassives(r, p)
	}

	for _, f := range r.factions {
		f.RemoveMembers(r.players)
		f.HandleNightVote(r)
	}

	for _, p := range alive {
		if p.state().Roleblocker {
			p.Role.Visit(r)
		}
	}

	for _, p := range alive {
		rs := p.state()
		if rs.Roleblocker {
			continue
		}

		if rs.Roleblocked {
			rs.Visiting = noTarget
			rs.IsAttacking = false
			rs.Roleblocked = false
			r.sendPlayerMessage(p, "You were roleblocked!")
			continue
		}

		if rs.Visiting != noTarget {
			p.Role.Visit(r)
		}
	}

	for _, p := range alive {
		if p.IsAlive {
			p.Role.HandleVisits(r)
		}
	}

	for _, p := range alive {
		if p.IsAlive {
			p.Role.HandleDamage(r)
		}
	}

	day := r.state.DayNumber()
	for _, p := range r.players.All() {
		if rs := p.state(); rs != nil {
			rs.cleanupAfterNight(day)
		}
	}
}
