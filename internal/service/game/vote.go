package game

// VoteManager 记录 投票人 -> 目标 的映射。
// AllowChange 为 false 时，已投票的人不能改票
type VoteManager struct {
	AllowChange bool

	votes   map[int]int
	weights map[int]int
}

func NewVoteManager(allowChange bool) *VoteManager {
	return &VoteManager{
		AllowChange: allowChange,
		votes:       make(map[int]int),
		weights:     make(map[int]int),
	}
}

// RequiredVotes 返回 n 名存活玩家时处决所需的票数
func RequiredVotes(n int) int {
	return n/2 + 1
}

// Cast 记录一票，返回是否被接受
func (vm *VoteManager) Cast(voter, target, weight int) bool {
	if _, voted := vm.votes[voter]; voted && !vm.AllowChange {
		return false
	}
	if weight < 1 {
		weight = 1
	}

	vm.votes[voter] = target
	vm.weights[voter] = weight
	return true
}

// Retract 撤回一票，返回被撤回的目标
func (vm *VoteManager) Retract(voter int) (int, bool) {
	target, ok := vm.votes[voter]
	if !ok {
		return noTarget, false
	}
	delete(vm.votes, voter)
	delete(vm.weights, voter)
	return target, true
}

func (vm *VoteManager) HasVoted(voter int) bool {
	_, ok := vm.votes[voter]
	return ok
}

func (vm *VoteManager) Clear() {
	vm.votes = make(map[int]int)
	vm.weights = make(map[int]int)
}

func (vm *VoteManager) CountFor(target int) int {
	n := 0
	for voter, t := range vm.votes {
		if t == target {
			n += vm.weights[voter]
		}
	}
	return n
}

// Leader 返回得票最多的目标。最高票不唯一时 tied 为 true，target 为 noTarget
func (vm *VoteManager) Leader() (target int, count int, tied bool) {
	target = noTarget
	for t, c := range vm.Tally() {
		switch {
		case c > count:
			target, count, tied = t, c, false
		case c == count && c > 0:
			tied = true
		}
	}
	if tied {
		target = noTarget
	}
	return target, count, tied
}

// Tally 返回每个目标的得票数
func (vm *VoteManager) Tally() map[int]int {
	tally := make(map[int]int)
	for voter, t := range vm.votes {
		tally[t] += vm.weights[voter]
	}
	return tally
}
