package game

import "errors"

// 玩家输入类错误：处理器会私信告知玩家，不修改任何状态
var (
	ErrWrongPhase     = errors.New("wrong phase")
	ErrNotAlive       = errors.New("not alive")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrAlreadyVoted   = errors.New("already voted")
	ErrVotingDisabled = errors.New("voting disabled")
	ErrRoleblocked    = errors.New("roleblocked")
	ErrSilenced       = errors.New("silenced")
	ErrNoAbility      = errors.New("no ability")
	ErrNotInRoom      = errors.New("not in room")
	ErrGameOver       = errors.New("game over")
)
