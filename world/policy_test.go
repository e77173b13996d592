// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "testing"

// S2 Upgrade gate
func TestCanUpgradeTo_FletcherToArleighBurke(t *testing.T) {
	fletcher := ParseEntityType("Fletcher")
	arleighBurke := ParseEntityType("ArleighBurke")

	score := LevelToScore(arleighBurke.Data().Level)
	if !CanUpgradeTo(fletcher, arleighBurke, score, false, false) {
		t.Fatalf("expected upgrade to be allowed at exactly the required score")
	}
	if CanUpgradeTo(fletcher, arleighBurke, score-1, false, false) {
		t.Fatalf("expected upgrade to be denied one score short")
	}
}

// S3 LST side-grade
func TestCanUpgradeTo_LstToSherman(t *testing.T) {
	lst := ParseEntityType("Lst")
	sherman := ParseEntityType("Sherman")

	if !CanUpgradeTo(lst, sherman, LevelToScore(4), false, false) {
		t.Fatalf("expected Lst->Sherman allowed at level_to_score(4)")
	}
	if CanUpgradeTo(lst, sherman, LevelToScore(6), false, false) {
		t.Fatalf("expected Lst->Sherman denied at level_to_score(6)")
	}
	if CanUpgradeTo(lst, sherman, LevelToScore(3), false, false) {
		t.Fatalf("expected Lst->Sherman denied at level_to_score(3)")
	}
}

// S4 Drone policy
func TestCanSpawnAs_Drone(t *testing.T) {
	drone := ParseEntityType("Drone")

	if !CanSpawnAs(drone, 1_000_000, false, true) {
		t.Fatalf("expected moderator, non-bot to spawn as Drone")
	}
	if CanSpawnAs(drone, 1_000_000, false, false) {
		t.Fatalf("expected non-moderator to be denied Drone")
	}
	if CanSpawnAs(drone, 1_000_000, true, true) {
		t.Fatalf("expected bot moderator to be denied Drone")
	}
}

func TestCanSpawnAs_RequiresBoat(t *testing.T) {
	for i := 1; i < EntityTypeCount; i++ {
		entityType := EntityType(i)
		if CanSpawnAs(entityType, 1_000_000_000, true, true) && entityType.Data().Kind != EntityKindBoat {
			t.Fatalf("%s: can_spawn_as returned true for non-boat kind %s", entityType, entityType.Data().Kind)
		}
	}
}

func TestCanUpgradeTo_LevelMonotone(t *testing.T) {
	for i := 1; i < EntityTypeCount; i++ {
		from := EntityType(i)
		if from.Data().Kind != EntityKindBoat {
			continue
		}
		for j := 1; j < EntityTypeCount; j++ {
			to := EntityType(j)
			if to.Data().Kind != EntityKindBoat {
				continue
			}
			if !CanUpgradeTo(from, to, LevelToScore(to.Data().Level), false, false) {
				continue
			}
			fromSub, toSub := from.Data().SubKind, to.Data().SubKind
			crossGrade := (from == EntityTypeLst && to == EntityTypeSherman) ||
				(fromSub == EntitySubKindTank && toSub == EntitySubKindLandingShip) ||
				(fromSub == EntitySubKindLandingShip && toSub == EntitySubKindTank)
			if to.Data().Level < from.Data().Level || (to.Data().Level == from.Data().Level && !crossGrade) {
				t.Fatalf("%s -> %s: upgrade allowed without a level increase or an explicit cross-subkind rule", from, to)
			}
		}
	}
}

func TestLoot_PirateIndiaman(t *testing.T) {
	indiaman := ParseEntityType("Indiaman")
	const score = 10_000

	var pieces []EntityType
	Loot(indiaman, score, true, func(t EntityType) bool {
		pieces = append(pieces, t)
		return true
	})

	// score/500 capped at 100, independent of NaturalDeathCoins itself.
	const coinExtra = 20
	pieceCount := len(pieces) - coinExtra
	if pieceCount < 11 || pieceCount > 13 {
		t.Fatalf("expected piece_count in [11, 13], got %d", pieceCount)
	}

	for _, p := range pieces[:pieceCount] {
		if p != EntityTypeCrate && p != EntityTypeCoin {
			t.Fatalf("pirate loot piece %s is not Crate or Coin", p)
		}
	}
	for _, p := range pieces[pieceCount:] {
		if p != EntityTypeCoin {
			t.Fatalf("expected trailing coins, got %s", p)
		}
	}
}
