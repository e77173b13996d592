// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "testing"

func TestEntityType_RoundTrip(t *testing.T) {
	for i := 1; i < EntityTypeCount; i++ {
		entityType := EntityType(i)
		name := entityType.String()
		if got := ParseEntityType(name); got != entityType {
			t.Fatalf("%d: ParseEntityType(%q) = %d, want %d", i, name, got, entityType)
		}
	}
}

func TestEntityTypeData_BoatLevels(t *testing.T) {
	for i := 1; i < EntityTypeCount; i++ {
		data := EntityType(i).Data()
		if data.Kind != EntityKindBoat {
			continue
		}
		if data.Level < 1 || data.Level > EntityLevelMax {
			t.Errorf("%s: level %d out of [1, %d]", EntityType(i), data.Level, EntityLevelMax)
		}
		if data.Radius > EntityRadiusMax {
			t.Errorf("%s: radius %f exceeds max %f", EntityType(i), data.Radius, EntityRadiusMax)
		}
	}
}

func TestEntityTypeData_ArmamentAndTurretKinds(t *testing.T) {
	for i := 1; i < EntityTypeCount; i++ {
		data := EntityType(i).Data()
		for _, turret := range data.Turrets {
			if turret.Type.Data().Kind != EntityKindTurret {
				t.Errorf("%s: turret mount %s has kind %s, want Turret", EntityType(i), turret.Type, turret.Type.Data().Kind)
			}
		}
		for _, armament := range data.Armaments {
			switch armament.Type.Data().Kind {
			case EntityKindWeapon, EntityKindAircraft, EntityKindDecoy, EntityKindBoat:
			default:
				t.Errorf("%s: armament %s has kind %s, want one of Weapon/Aircraft/Decoy/Boat", EntityType(i), armament.Type, armament.Type.Data().Kind)
			}
			if idx := armament.TurretIndex(); idx >= 0 && idx >= len(data.Turrets) {
				t.Errorf("%s: armament %s references out-of-range turret %d", EntityType(i), armament.Type, idx)
			}
		}
	}
}

// Symmetric expansion must leave an even count of mirrored entries and no
// trace of the loader-only symmetrical/count fields in the runtime type.
func TestEntityTypeData_SymmetricExpansionIsFlat(t *testing.T) {
	fletcher := ParseEntityType("Fletcher").Data()

	torpedoes := 0
	for _, a := range fletcher.Armaments {
		if a.Type == ParseEntityType("Mark14") {
			torpedoes++
		}
	}
	if torpedoes != 4 || torpedoes%2 != 0 {
		t.Fatalf("expected 4 (2 sides x count 2) Mark14 tubes on Fletcher, got %d", torpedoes)
	}

	var sides []float32
	for _, a := range fletcher.Armaments {
		if a.Type == ParseEntityType("Mark14") {
			sides = append(sides, a.PositionSide)
		}
	}
	positive, negative := 0, 0
	for _, s := range sides {
		if s > 0 {
			positive++
		} else if s < 0 {
			negative++
		}
	}
	if positive != negative {
		t.Fatalf("expected symmetric split of Mark14 tubes, got %d positive %d negative", positive, negative)
	}
}

func TestLevelToScore(t *testing.T) {
	if LevelToScore(1) != 0 {
		t.Fatalf("level 1 should require 0 score, got %d", LevelToScore(1))
	}
	for level := uint8(2); level <= EntityLevelMax; level++ {
		if LevelToScore(level) <= LevelToScore(level-1) {
			t.Fatalf("LevelToScore should be strictly increasing, level %d gave %d <= level %d's %d",
				level, LevelToScore(level), level-1, LevelToScore(level-1))
		}
	}
}

func TestIndiamanLength(t *testing.T) {
	data := ParseEntityType("Indiaman").Data()
	if data.Length != 52.8143 {
		t.Fatalf("expected Indiaman length 52.8143, got %f", data.Length)
	}
	if data.SubKind != EntitySubKindPirate {
		t.Fatalf("expected Indiaman to be a Pirate, got %s", data.SubKind)
	}
}
