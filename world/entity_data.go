// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
)

var (
	EntityLevelMax         uint8
	EntityRadiusMax        float32
	EntityTypeCount        int
	BoatEntityTypesByLevel [][]EntityType

	// SpawnEntityTypes are the boat types a fresh player (or bot) may spawn
	// as: level 1 boats, which is BoatEntityTypesByLevel[1].
	SpawnEntityTypes []EntityType
)

type (
	// Armament is a single firing slot of an EntityTypeData: a weapon, decoy,
	// or carrier-launched aircraft/boat mounted at a fixed relative transform.
	// By the time it reaches this slice, symmetrical/count expansion has
	// already happened (see expandArmaments in entity_data_loader.go).
	Armament struct {
		Type            EntityType `json:"type"`
		PositionForward float32    `json:"positionForward"`
		PositionSide    float32    `json:"positionSide"`
		Angle           Angle      `json:"angle"`
		Vertical        bool       `json:"vertical"`
		External        bool       `json:"external"`
		Hidden          bool       `json:"hidden"`
		Airdrop         bool       `json:"airdrop,omitempty"` // fired type falls/glides to the surface before acting (e.g. aircraft-dropped torpedo)
		Turret          *int       `json:"turret,omitempty"` // index into EntityTypeData.Turrets, or nil
	}

	// EntityKind is the broad taxonomy of an entity.
	EntityKind enumChoice

	// EntitySubKind refines EntityKind.
	EntitySubKind enumChoice

	// EntityType is the closed identifier of every entity the catalog knows.
	EntityType enumChoice

	// EntityTypeData is the immutable, catalog-wide description of an EntityType.
	EntityTypeData struct {
		// All units are SI (meters, seconds, etc.)
		Kind              EntityKind    `json:"type"`
		SubKind           EntitySubKind `json:"subtype"`
		Level             uint8         `json:"level"`
		NPC               bool          `json:"npc"` // only bots may spawn as this type
		LandBased         bool          `json:"landBased"`
		Lifespan          Ticks         `json:"lifespan"`
		Reload            Ticks         `json:"reload"`
		Speed             Velocity      `json:"speed"`
		Range             float32       `json:"range"` // 0 = unlimited
		Depth             float32       `json:"depth"` // submarines
		Length            float32       `json:"length"`
		Width             float32       `json:"width"`
		Draft             float32       `json:"draft"`
		Mast              float32       `json:"mast"`
		Radius            float32       `json:"-"`
		InvSize           float32       `json:"-"`
		Damage            float32       `json:"damage"`
		RamDamage         float32       `json:"ramDamage"`
		TorpedoResistance float32       `json:"torpedoResistance"`
		Stealth           float32       `json:"stealth"`
		Limited           bool          `json:"limited,omitempty"` // doesn't replenish over time; only via Replenish (kill/pickup)
		AntiAircraft      float32       `json:"antiAircraft,omitempty"` // chance per second a nearby aircraft is shot down
		Sensors           Sensors       `json:"sensors"`
		Armaments         []Armament    `json:"armaments"`
		Turrets           []Turret      `json:"turrets"`
		Exhausts          []Exhaust     `json:"exhausts"`
		Label             string        `json:"label"`
	}

	// Sensors is the {visual, radar, sonar} range triple; a zero range means
	// the sensor is absent.
	Sensors struct {
		Visual float32 `json:"visual,omitempty"`
		Radar  float32 `json:"radar,omitempty"`
		Sonar  float32 `json:"sonar,omitempty"`
	}

	// SensorType names one of the three Sensors fields, for code that wants
	// to look one up generically (e.g. detection range comparisons).
	SensorType enumChoice

	// Turret is the description of a turret's relative transform and aim
	// limits in an EntityTypeData. Type names the mounted EntityType (kind
	// Turret) that owns the aiming geometry for armaments referencing it.
	Turret struct {
		Type            EntityType `json:"type"`
		PositionForward float32    `json:"positionForward"`
		PositionSide    float32    `json:"positionSide"`
		Angle           Angle      `json:"angle"`
		AzimuthFL       Angle      `json:"azimuthFL"`
		AzimuthFR       Angle      `json:"azimuthFR"`
		AzimuthBL       Angle      `json:"azimuthBL"`
		AzimuthBR       Angle      `json:"azimuthBR"`
	}

	// Exhaust is a smoke/wake emission point.
	Exhaust struct {
		PositionForward float32 `json:"positionForward"`
		PositionSide    float32 `json:"positionSide"`
	}
)

// TurretIndex returns the index of the turret the armament is mounted on, or -1.
func (armament *Armament) TurretIndex() int {
	if t := armament.Turret; t != nil {
		return *t
	}
	return -1
}

// Reload returns the time it takes to reload an Armament in ticks.
func (armament *Armament) Reload() Ticks {
	return armament.Type.Data().Reload
}

// Similar returns true if the Armament is mounted on the same turret and fires the same type as other.
func (armament *Armament) Similar(other *Armament) bool {
	return armament.Type == other.Type && armament.TurretIndex() == other.TurretIndex()
}

// CheckAzimuth returns true only if curr is within the turret's valid azimuth range.
func (turret *Turret) CheckAzimuth(curr Angle) bool {
	// Use floats so that negative angles work better with comparison operators.
	azimuthF := (Pi + curr - turret.Angle).Float()
	if turret.AzimuthFL.Float()-math32.Pi > azimuthF {
		return false
	}
	if math32.Pi-turret.AzimuthFR.Float() < azimuthF {
		return false
	}
	azimuthB := (curr - turret.Angle).Float()
	if turret.AzimuthBL.Float()-math32.Pi > azimuthB {
		return false
	}
	if math32.Pi-turret.AzimuthBR.Float() < azimuthB {
		return false
	}
	return true
}

// Range returns the range registered for the given SensorType, or 0 if absent.
func (sensors *Sensors) Range(sensorType SensorType) float32 {
	switch sensorType {
	case SensorTypeRadar:
		return sensors.Radar
	case SensorTypeSonar:
		return sensors.Sonar
	default:
		return sensors.Visual
	}
}

func (entityType EntityType) Data() *EntityTypeData {
	return &entityTypeData[entityType]
}

// IsLandBased reports whether the type requires land underneath it to spawn
// (as opposed to water).
func (data *EntityTypeData) IsLandBased() bool {
	return data.LandBased
}

// ReducedLifespan returns a lifespan to start an entity's life at, so that it
// expires in desiredLifespan ticks from now. A type whose lifespan is not
// longer than desiredLifespan starts at 0 and lives its full lifespan.
func (entityType EntityType) ReducedLifespan(desiredLifespan Ticks) Ticks {
	data := entityType.Data()
	if data.Lifespan > desiredLifespan {
		return data.Lifespan - desiredLifespan
	}
	return 0
}

// LevelToScore converts a boat level to the score required to spawn/upgrade as it.
// score = (level^2 - 1) * 10
func LevelToScore(level uint8) int {
	l := int(level)
	return (l*l - 1) * 10
}
