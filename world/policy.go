// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math/rand"
)

// CanSpawnAs returns whether it is possible to spawn as the entity type,
// which may depend on whether you are a bot or a moderator.
func CanSpawnAs(entityType EntityType, score int, bot, moderator bool) bool {
	data := entityType.Data()
	if data.SubKind == EntitySubKindDrone {
		return moderator && !bot
	}
	return data.Kind == EntityKindBoat && LevelToScore(data.Level) <= score && (bot || !data.NPC)
}

// CanUpgradeTo returns whether it is possible to upgrade from one entity type
// to another, evaluated in order; the first matching rule wins.
func CanUpgradeTo(from, to EntityType, score int, bot, moderator bool) bool {
	data, toData := from.Data(), to.Data()

	if moderator && toData.Kind == data.Kind {
		return true
	}
	if toData.SubKind == EntitySubKindDrone && !moderator {
		return false
	}
	if bot && to == EntityTypeChinook {
		return false
	}
	if bot && to == EntityTypeLst {
		return false
	}
	if from == EntityTypeLst && to == EntityTypeSherman {
		return score >= LevelToScore(4) && score < LevelToScore(6)
	}
	if data.SubKind == EntitySubKindTank && toData.SubKind == EntitySubKindLandingShip {
		return true
	}
	if data.SubKind == EntitySubKindLandingShip && toData.SubKind == EntitySubKindTank {
		return true
	}

	return toData.Level > data.Level &&
		toData.Kind == data.Kind &&
		score >= LevelToScore(toData.Level) &&
		(bot || !toData.NPC)
}

// UpgradeOptions calls yield for every entity type self may currently
// upgrade to, stopping early if yield returns false.
func UpgradeOptions(self EntityType, score int, bot, moderator bool, yield func(EntityType) bool) {
	data := self.Data()
	if !(score >= LevelToScore(data.Level) || data.SubKind == EntitySubKindTank || data.SubKind == EntitySubKindLandingShip || moderator) {
		return
	}
	for i := 1; i < EntityTypeCount; i++ {
		candidate := EntityType(i)
		if CanUpgradeTo(self, candidate, score, bot, moderator) {
			if !yield(candidate) {
				return
			}
		}
	}
}

// NaturalDeathCoins is a monotone, saturating function of score used to
// convert a boat's accumulated score into coins dropped on death.
func NaturalDeathCoins(score int) int {
	if score <= 0 {
		return 0
	}
	const coinCap = 100
	coins := score / 500
	if coins > coinCap {
		return coinCap
	}
	return coins
}

// Loot calls yield for every entity type that should be dropped when self
// (a Boat) dies with the given score. scoreToCoins controls whether any
// coins are minted from the score at all.
func Loot(self EntityType, score int, scoreToCoins bool, yield func(EntityType) bool) {
	data := self.Data()
	if data.Kind != EntityKindBoat {
		panic("Loot called on a non-boat entity type")
	}

	coinAmount := 0
	if scoreToCoins {
		coinAmount = NaturalDeathCoins(score)
	}

	pieceCount := int(data.Length * 0.25 * (0.9 + rand.Float32()*0.1))

	var lootTable []EntityType
	switch data.SubKind {
	case EntitySubKindPirate:
		lootTable = []EntityType{EntityTypeCrate, EntityTypeCoin}
	case EntitySubKindTanker:
		lootTable = []EntityType{EntityTypeScrap, EntityTypeBarrel}
	default:
		if self == ParseEntityType("Olympias") {
			lootTable = []EntityType{EntityTypeCrate}
		} else {
			lootTable = []EntityType{EntityTypeScrap}
		}
	}

	for i := 0; i < pieceCount; i++ {
		if !yield(lootTable[rand.Intn(len(lootTable))]) {
			return
		}
	}
	for i := 0; i < coinAmount; i++ {
		if !yield(EntityTypeCoin) {
			return
		}
	}
}
