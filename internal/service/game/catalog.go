package game

import (
	"fmt"
	"sort"
)

type roleSpec struct {
	Group Group
	// 正数偏向城镇
	Power  int
	Unique bool
	New    func() Role
}

var roleCatalog = map[RoleKind]roleSpec{
	RoleVillager:     {GroupTown, 1, false, newVillager},
	RoleDoctor:       {GroupTown, 3, false, newDoctor},
	RoleInvestigator: {GroupTown, 3, false, newInvestigator},
	RoleWatchman:     {GroupTown, 2, false, newWatchman},
	RoleTracker:      {GroupTown, 2, false, newTracker},
	RoleJailor:       {GroupTown, 4, true, newJailor},
	RoleLawman:       {GroupTown, 3, true, newLawman},
	RoleEscort:       {GroupTown, 3, false, newEscort},
	RoleBodyguard:    {GroupTown, 3, false, newBodyguard},
	RoleVeteran:      {GroupTown, 3, false, newVeteran},
	RoleTapper:       {GroupTown, 2, false, newTapper},
	RoleFortifier:    {GroupTown, 2, false, newFortifier},
	RoleSniper:       {GroupTown, 3, true, newSniper},
	RoleMayor:        {GroupTown, 3, false, newMayor},
	RoleTrapper:      {GroupTown, 2, false, newTrapper},

	RoleMafia:       {GroupMafia, -4, false, newMafia},
	RoleGodfather:   {GroupMafia, -6, false, newGodfather},
	RoleConsort:     {GroupMafia, -5, false, newConsort},
	RoleFramer:      {GroupMafia, -4, true, newFramer},
	RoleConsigliere: {GroupMafia, -5, false, newConsigliere},
	RoleJanitor:     {GroupMafia, -4, false, newJanitor},
	RoleSilencer:    {GroupMafia, -4, false, newSilencer},

	RoleManiac:     {GroupNeutral, -3, true, newManiac},
	RolePeacemaker: {GroupNeutral, -1, true, newPeacemaker},
	RoleConfesser:  {GroupNeutral, -1, true, newConfesser},
	RoleSurvivor:   {GroupNeutral, 0, false, newSurvivor},
}

// NewRole 根据角色名创建角色实例
func NewRole(kind RoleKind) (Role, error) {
	def, ok := roleCatalog[kind]
	if !ok {
		return nil, fmt.Errorf("unknown role %q", kind)
	}
	return def.New(), nil
}

// rolesOf 按名字排序返回某个阵营的全部角色，保证固定种子下结果可复现
func rolesOf(group Group) []RoleKind {
	var kinds []RoleKind
	for kind, def := range roleCatalog {
		if def.Group == group {
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
