package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxUsernameLen = 16
	maxMessageLen  = 500
)

// Room 是一局游戏的聚合根。除 NewRoom 外所有方法都只能在房间自己的协程里调用
type Room struct {
	name      string
	cfg       Config
	rng       *rand.Rand
	messenger Messenger

	players  *PlayerRegistry
	factions []*Faction
	roleList []RoleKind
	votes    *VoteManager
	state    *GameStateManager
	phases   *PhaseManager
	win      *WinConditionManager
	events   *EventBus
	balance  *RoleHandler

	startedAt time.Time
	result    *WinResult
	summary   *MatchSummary
}

func NewRoom(name string, cfg Config, messenger Messenger) *Room {
	cfg = cfg.withDefaults()

	r := &Room{
		name:      name,
		cfg:       cfg,
		rng:       cfg.Rand,
		messenger: messenger,
		players:   NewPlayerRegistry(),
		votes:     NewVoteManager(false),
		state:     NewGameStateManager(),
		win:       defaultWinConditions(cfg.MaxDays),
		events:    NewEventBus(),
		balance:   NewRoleHandler(cfg.Rand),
	}
	r.phases = NewPhaseManager(r)

	r.state.Subscribe(func(next, prev GameState) {
		if next.Time != prev.Time {
			zap.L().Debug(
				"房间时间段变化",
				zap.String("room", r.name),
				zap.String("from", string(prev.Time)),
				zap.String("to", string(next.Time)),
				zap.Int("day", next.DayNumber),
			)
		}
	})

	return r
}

func (r *Room) Name() string                    { return r.name }
func (r *Room) Size() int                       { return r.cfg.Size }
func (r *Room) PlayerCount() int                { return r.players.Len() }
func (r *Room) Started() bool                   { return r.state.Started() }
func (r *Room) Ended() bool                     { return r.state.Ended() }
func (r *Room) State() GameState                { return r.state.Snapshot() }
func (r *Room) Phase() Phase                    { return r.phases.Current() }
func (r *Room) Players() []*Player              { return r.players.All() }
func (r *Room) Summary() *MatchSummary          { return r.summary }
func (r *Room) PendingTimeout() *TimeoutRequest { return r.phases.Pending() }

func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Name:      r.name,
		Size:      r.cfg.Size,
		Players:   r.players.Len(),
		Started:   r.state.Started(),
		Ended:     r.state.Ended(),
		Phase:     r.phases.Current(),
		DayNumber: r.state.DayNumber(),
	}
}

// SetTimeoutNotifier 设置阶段超时的投递方式，不设置时需要手动调用 HandleTimeout
func (r *Room) SetTimeoutNotifier(notify func(TimeoutRequest)) {
	r.phases.notify = notify
}

func (r *Room) HandleTimeout(req TimeoutRequest) {
	r.phases.HandleTimeout(req)
}

// deny 私信告知玩家操作被拒绝，并返回包装后的错误
func (r *Room) deny(p *Player, err error) error {
	r.sendPlayerMessage(p, userMessage(err))
	zap.L().Debug(
		"拒绝玩家操作",
		zap.String("room", r.name),
		zap.Error(err),
	)
	return err
}

// userMessage 去掉哨兵错误前缀，得到给玩家看的句子
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return msg
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:] + "."
}

func validUsername(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > maxUsernameLen {
		return false
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

// AddPlayer 人数达到 Size 时立即开局
func (r *Room) AddPlayer(connID, username string) (string, JoinCode) {
	username = strings.TrimSpace(username)

	if r.state.Started() || r.players.Len() >= r.cfg.Size {
		return username, JoinFull
	}
	if !validUsername(username) {
		return username, JoinInvalidName
	}
	if r.players.ByName(username) != nil || r.players.ByConn(connID) != nil {
		return username, JoinDuplicate
	}

	p := r.players.Add(connID, username)
	r.unicastResp(p, WrapResponse(RESP_JOIN_ROOM, JoinResult{
		Username: username,
		Code:     JoinOK,
		RoomName: r.name,
	}))
	r.sendRoomMessage(fmt.Sprintf("%s has joined the room.", username))
	r.broadcastPlayerList(false)

	zap.L().Info(
		"玩家加入房间",
		zap.String("room", r.name),
		zap.String("username", username),
		zap.Int("players", r.players.Len()),
	)

	if r.players.Len() == r.cfg.Size {
		r.StartGame()
	}

	return username, JoinOK
}

// RemovePlayer 开局前直接移除并重新编号；开局后视为弃局，在下次结算时死亡
func (r *Room) RemovePlayer(connID string) error {
	p := r.players.ByConn(connID)
	if p == nil {
		return ErrNotInRoom
	}

	if !r.state.Started() {
		r.players.Remove(connID)
		r.sendRoomMessage(fmt.Sprintf("%s has left the room.", p.Name))
		r.broadcastPlayerList(false)
		return nil
	}

	p.ConnID = ""
	if r.state.Ended() || !p.IsAlive {
		return nil
	}

	rs := p.state()
	rs.Abandoned = true
	rs.Damage = lethalDamage
	r.events.Action(fmt.Sprintf("%s abandoned the game", p.Name))
	return nil
}

func (r *Room) StartGame() {
	if r.state.Started() {
		return
	}

	r.roleList = r.balance.AssignGame(r.players.Len())
	for i, p := range r.players.All() {
		var kind RoleKind
		if i < len(r.roleList) {
			kind = r.roleList[i]
		}

		role, err := NewRole(kind)
		if err != nil {
			zap.L().Error(
				"创建角色失败，使用 Villager 代替",
				zap.String("room", r.name),
				zap.String("player", p.Name),
				zap.Error(err),
			)
			role = newVillager()
		}
		role.State().Owner = p.Position
		p.Role = role
	}

	r.factions = nil
	mafia := NewFaction(GroupMafia)
	mafia.FindMembers(r.players)
	if len(mafia.Members()) > 0 {
		r.factions = append(r.factions, mafia)
	}

	r.startedAt = time.Now()
	r.state.SetStarted(true)
	r.state.SetDayNumber(1)
	r.state.SetEndDay(1 + r.cfg.NoKillDays)

	for _, p := range r.players.All() {
		rs := p.state()
		r.unicastResp(p, WrapResponse(RESP_ASSIGN_PLAYER_ROLE, AssignRoleData{
			Name:              p.Name,
			Role:              string(rs.Name),
			Group:             string(rs.Group),
			DayVisitSelf:      rs.DayVisitSelf,
			DayVisitOthers:    rs.DayVisitOthers,
			DayVisitFaction:   rs.DayVisitFaction,
			NightVisitSelf:    rs.NightVisitSelf,
			NightVisitOthers:  rs.NightVisitOthers,
			NightVisitFaction: rs.NightVisitFaction,
			NightVote:         rs.NightVote,
		}))
	}

	r.broadcastResp(WrapResponse(RESP_ROLE_LIST, RoleListData{RoleList: r.sortedRoleList()}))
	r.broadcastPlayerList(false)

	for _, p := range r.players.All() {
		p.Role.InitRole(r)
	}

	zap.L().Info(
		"游戏开始",
		zap.String("room", r.name),
		zap.Int("players", r.players.Len()),
	)
	r.events.Action("game started")

	r.phases.Start(PhaseFirstDay)
}

// 角色列表按名字排序后公开，避免泄露座位与角色的对应关系
func (r *Room) sortedRoleList() []string {
	list := make([]string, 0, len(r.roleList))
	for _, k := range r.roleList {
		list = append(list, string(k))
	}
	sort.Strings(list)
	return list
}

func (r *Room) FindWinningFaction() string {
	if res := r.win.Evaluate(r); res != nil {
		return res.Faction
	}
	return ""
}

func (r *Room) EndGame(res *WinResult) {
	if r.state.Ended() {
		return
	}
	if res == nil {
		res = &WinResult{Faction: WinnerNobody}
	}

	r.phases.Stop()
	r.result = res
	r.state.SetEnded(true)

	switch res.Faction {
	case WinnerNobody:
		r.sendRoomMessage("The game has ended in a draw.")
	default:
		r.sendRoomMessage(fmt.Sprintf("The %s has won!", groupTitle(Group(res.Faction))))
	}
	r.events.Action("game ended: " + res.Faction)

	r.state.SetTime(TimeLocked)
	r.broadcastResp(WrapResponse(RESP_BLOCK_MESSAGES, nil))
	r.broadcastPlayerList(true)

	r.summary = r.buildSummary(res)

	zap.L().Info(
		"游戏结束",
		zap.String("room", r.name),
		zap.String("winner", res.Faction),
		zap.Int("day", r.state.DayNumber()),
	)

	if r.messenger != nil {
		r.messenger.DisconnectSockets(r.name)
	}
}

// killPlayer 标记死亡并刷新无人死亡的平局倒计时
func (r *Room) killPlayer(p *Player, cause string) {
	if !p.IsAlive {
		return
	}
	p.IsAlive = false

	rs := p.state()
	if rs != nil && rs.Cleaned {
		r.sendRoomMessage(fmt.Sprintf("%s %s. We could not determine their role.", p.Name, cause))
		r.consumeClean(p, rs.CleanedBy)
	} else {
		r.sendRoomMessage(fmt.Sprintf("%s %s. Their role was %s.", p.Name, cause, p.RoleName()))
	}
	r.events.Publish(EventDeath, fmt.Sprintf("%s (%s) %s", p.Name, p.RoleName(), cause))

	r.state.SetEndDay(r.state.DayNumber() + r.cfg.NoKillDays)

	r.sendPlayerMessage(p, "You have died! You can only talk to other dead players now.")
	r.broadcastPlayerList(false)
}

// consumeClean 扣除清洁工的次数，并私下告诉他死者的身份
func (r *Room) consumeClean(dead *Player, janitorPos int) {
	janitor := r.players.ByPosition(janitorPos)
	if janitor == nil || janitor.Role == nil {
		return
	}

	js := janitor.state()
	js.Uses--
	r.sendPlayerMessage(janitor, fmt.Sprintf("You cleaned up %s. Their role was %s.", dead.Name, dead.RoleName()))
	if js.Uses <= 0 {
		r.sendPlayerMessage(janitor, "You have no uses of clean left.")
	}
}

// executePlayer 白天投票处决
func (r *Room) executePlayer(p *Player) {
	r.killPlayer(p, "has been executed by the town")

	rs := p.state()
	if rs == nil || rs.Name != RoleConfesser {
		return
	}

	rs.Confessed = true
	r.state.SetConfesserVotedOut(true)
	r.sendRoomMessage("The town executed the Confesser! Voting is disabled for the rest of the game.")
}

func (r *Room) broadcastPlayerList(reveal bool) {
	list := make([]PlayerListEntry, 0, r.players.Len())
	for _, p := range r.players.All() {
		entry := PlayerListEntry{Name: p.Name}
		if r.state.Started() {
			entry.IsAlive = boolPtr(p.IsAlive)
		}
		if reveal {
			entry.Role = p.RoleName()
		}
		list = append(list, entry)
	}
	r.broadcastResp(WrapResponse(RESP_PLAYER_LIST, PlayerListData{PlayerList: list}))
}

// checkActor 校验发起操作的玩家：在房间内、游戏进行中、仍然存活
func (r *Room) checkActor(connID string) (*Player, error) {
	p := r.players.ByConn(connID)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if !r.state.Started() {
		return p, r.deny(p, fmt.Errorf("%w: the game has not started yet", ErrWrongPhase))
	}
	if r.state.Ended() {
		return p, r.deny(p, fmt.Errorf("%w: the game is over", ErrGameOver))
	}
	if !p.IsAlive {
		return p, r.deny(p, fmt.Errorf("%w: you are dead", ErrNotAlive))
	}
	return p, nil
}

func (r *Room) HandleSentMessage(connID, message string, isDay bool) error {
	p := r.players.ByConn(connID)
	if p == nil {
		return ErrNotInRoom
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen])
	}
	line := fmt.Sprintf("%s: %s", p.Name, message)

	switch {
	case !r.state.Started():
		r.sendRoomMessage(line)
		return nil
	case r.state.Ended() || r.state.Time() == TimeLocked:
		return r.deny(p, fmt.Errorf("%w: the game is over", ErrGameOver))
	case !p.IsAlive:
		r.sendDeadMessage("[dead] " + line)
		r.events.Chat("[dead] " + line)
		return nil
	}

	switch r.state.Time() {
	case TimeDay:
		if !isDay {
			return r.deny(p, fmt.Errorf("%w: it is day now", ErrWrongPhase))
		}
		if p.state().isSilenced(r.state.DayNumber()) {
			return r.deny(p, fmt.Errorf("%w: you have been silenced today", ErrSilenced))
		}
		r.sendRoomMessage(line)
		return nil

	case TimeNight:
		if isDay {
			return r.deny(p, fmt.Errorf("%w: it is night now", ErrWrongPhase))
		}
		if p.Group() != GroupMafia {
			return r.deny(p, fmt.Errorf("%w: only the mafia can talk at night", ErrWrongPhase))
		}
		r.sendFactionMessage(GroupMafia, "[mafia] "+line)
		r.events.Chat("[mafia] " + line)
		return nil
	}

	return r.deny(p, fmt.Errorf("%w: please wait for the next phase", ErrWrongPhase))
}

// HandleVote 只在白天开放，投出后不能更改
func (r *Room) HandleVote(connID string, position *int, isDay bool) error {
	p, err := r.checkActor(connID)
	if err != nil {
		return err
	}

	if !isDay || r.phases.Current() != PhaseDay || r.state.Time() != TimeDay {
		return r.deny(p, fmt.Errorf("%w: votes can only be cast during the day", ErrWrongPhase))
	}
	if r.state.ConfesserVotedOut() {
		return r.deny(p, fmt.Errorf("%w: voting has been disabled", ErrVotingDisabled))
	}
	if p.HasVoted || r.votes.HasVoted(p.Position) {
		return r.deny(p, fmt.Errorf("%w: you have already voted", ErrAlreadyVoted))
	}
	if position == nil {
		return nil
	}

	target := r.players.ByPosition(*position)
	switch {
	case target == nil:
		return r.deny(p, fmt.Errorf("%w: no such player", ErrInvalidTarget))
	case !target.IsAlive:
		return r.deny(p, fmt.Errorf("%w: %s is dead", ErrInvalidTarget, target.Name))
	case target.Position == p.Position:
		return r.deny(p, fmt.Errorf("%w: you cannot vote for yourself", ErrInvalidTarget))
	}

	weight := p.state().VoteWeight
	if !r.votes.Cast(p.Position, target.Position, weight) {
		return r.deny(p, fmt.Errorf("%w: you have already voted", ErrAlreadyVoted))
	}
	p.HasVoted = true
	target.VotesReceived += weight

	required := RequiredVotes(r.players.CountAlive())
	r.sendRoomMessage(fmt.Sprintf("%s has voted for %s (%d/%d).", p.Name, target.Name, target.VotesReceived, required))
	r.events.Action(fmt.Sprintf("%s voted for %s", p.Name, target.Name))

	if target.VotesReceived >= required {
		r.sendRoomMessage(fmt.Sprintf("%s will be executed at the end of the day.", target.Name))
	}
	return nil
}

// HandleVisit 白天与夜晚的目标选择，position 为空表示取消
func (r *Room) HandleVisit(connID string, position *int, isDay bool) error {
	p, err := r.checkActor(connID)
	if err != nil {
		return err
	}

	now := r.state.Time()
	if (isDay && now != TimeDay) || (!isDay && now != TimeNight) {
		return r.deny(p, fmt.Errorf("%w: you cannot do that right now", ErrWrongPhase))
	}

	rs := p.state()
	if !isDay && rs.Jailed {
		return r.deny(p, fmt.Errorf("%w: you are in jail tonight", ErrRoleblocked))
	}

	if position == nil {
		if isDay {
			p.Role.CancelDayAction(r)
		} else {
			p.Role.CancelNightAction(r)
		}
		return nil
	}

	target := r.players.ByPosition(*position)
	if isDay {
		err = p.Role.HandleDayAction(r, target)
	} else {
		err = p.Role.HandleNightAction(r, target)
	}
	if err != nil {
		return r.deny(p, err)
	}

	r.events.Action(fmt.Sprintf("%s (%s) targets %s", p.Name, rs.Name, target.Name))
	return nil
}

// HandleWhisper 白天的私聊，所有人都会知道发生了私聊；被窃听者的私聊内容会泄露给窃听者
func (r *Room) HandleWhisper(connID string, position int, message string, isDay bool) error {
	p, err := r.checkActor(connID)
	if err != nil {
		return err
	}

	if !isDay || r.state.Time() != TimeDay {
		return r.deny(p, fmt.Errorf("%w: you can only whisper during the day", ErrWrongPhase))
	}
	day := r.state.DayNumber()
	if p.state().isSilenced(day) {
		return r.deny(p, fmt.Errorf("%w: you have been silenced today", ErrSilenced))
	}

	target := r.players.ByPosition(position)
	switch {
	case target == nil:
		return r.deny(p, fmt.Errorf("%w: no such player", ErrInvalidTarget))
	case !target.IsAlive:
		return r.deny(p, fmt.Errorf("%w: %s is dead", ErrInvalidTarget, target.Name))
	case target.Position == p.Position:
		return r.deny(p, fmt.Errorf("%w: you cannot whisper to yourself", ErrInvalidTarget))
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen])
	}

	r.sendPlayerMessage(target, fmt.Sprintf("Whisper from %s: %s", p.Name, message))
	r.sendPlayerMessage(p, fmt.Sprintf("Whisper to %s: %s", target.Name, message))
	r.sendRoomMessage(fmt.Sprintf("%s is whispering to %s.", p.Name, target.Name))

	leaked := make(map[int]bool)
	for _, who := range []*Player{p, target} {
		rs := who.state()
		if rs.TappedBy == noTarget || rs.TapDay != day || leaked[rs.TappedBy] {
			continue
		}
		tapper := r.players.ByPosition(rs.TappedBy)
		if tapper == nil || !tapper.IsAlive {
			continue
		}
		leaked[rs.TappedBy] = true
		r.sendPlayerMessage(tapper, fmt.Sprintf("You overheard %s whisper to %s: %s", p.Name, target.Name, message))
	}

	r.events.Chat(fmt.Sprintf("[whisper] %s -> %s: %s", p.Name, target.Name, message))
	return nil
}

// Dispatch 把一个请求分发到对应的处理函数
func (r *Room) Dispatch(req RequestWrapper) error {
	if cmd := TryUnwrapJoinCommand(req); cmd != nil {
		name, code := r.AddPlayer(req.ConnID, cmd.Username)
		if cmd.Reply != nil {
			cmd.Reply <- JoinResult{
				Username: name,
				Code:     code,
				RoomName: r.name,
				Started:  r.state.Started(),
			}
		}
		return nil
	}

	if msg := TryUnwrapSentMessageRequest(req); msg != nil {
		return r.HandleSentMessage(req.ConnID, msg.Message, msg.IsDay)
	}

	if vote := TryUnwrapVoteRequest(req); vote != nil {
		return r.HandleVote(req.ConnID, vote.Position, vote.IsDay)
	}

	if visit := TryUnwrapVisitRequest(req); visit != nil {
		return r.HandleVisit(req.ConnID, visit.Position, visit.IsDay)
	}

	if whisper := TryUnwrapWhisperRequest(req); whisper != nil {
		return r.HandleWhisper(req.ConnID, whisper.Position, whisper.Message, whisper.IsDay)
	}

	if query := TryUnwrapRoomInfoQuery(req); query != nil {
		if query.Reply != nil {
			query.Reply <- r.Info()
		}
		return nil
	}

	if TryUnwrapLeaveRoomRequest(req) != nil {
		return r.RemovePlayer(req.ConnID)
	}

	if tmo := TryUnwrapTimeoutRequest(req); tmo != nil {
		r.HandleTimeout(*tmo)
		return nil
	}

	return errors.New("unknown request type: " + req.ReqType)
}
