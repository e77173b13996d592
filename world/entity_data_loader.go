// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	_ "embed"
	"encoding/json"
	"errors"
	"sort"

	"github.com/chewxy/math32"
)

const (
	EntityKindInvalid    = EntityKind(invalidEnumChoice)
	EntitySubKindInvalid = EntitySubKind(invalidEnumChoice)
	EntityTypeInvalid    = EntityType(invalidEnumChoice)
	invalidEnumChoice    = 0
)

var (
	entityKindEnum    enum
	entitySubKindEnum enum
	entityTypeData    []EntityTypeData
	entityTypeEnum    enum
)

type (
	// entityTypeLoader discovers an entity's Kind/SubKind before the enums
	// that number them exist.
	entityTypeLoader struct {
		Kind    string `json:"type"`
		SubKind string `json:"subtype"`
	}

	// rawEntityTypeData is the on-disk shape of an entities.json entry:
	// armaments/turrets/exhausts still carry their loader-only
	// count/symmetrical fields and reference other entities by name.
	rawEntityTypeData struct {
		Kind              string        `json:"type"`
		SubKind           string        `json:"subtype"`
		Level             uint8         `json:"level"`
		NPC               bool          `json:"npc"`
		LandBased         bool          `json:"landBased"`
		Lifespan          Ticks         `json:"lifespan"`
		Reload            Ticks         `json:"reload"`
		Speed             Velocity      `json:"speed"`
		Range             float32       `json:"range"`
		Depth             float32       `json:"depth"`
		Length            float32       `json:"length"`
		Width             float32       `json:"width"`
		Draft             float32       `json:"draft"`
		Mast              float32       `json:"mast"`
		Damage            float32       `json:"damage"`
		RamDamage         float32       `json:"ramDamage"`
		TorpedoResistance float32       `json:"torpedoResistance"`
		Stealth           float32       `json:"stealth"`
		Limited           bool          `json:"limited"`
		Sensors           Sensors       `json:"sensors"`
		Armaments         []rawArmament `json:"armaments"`
		Turrets           []rawTurret   `json:"turrets"`
		Exhausts          []rawExhaust  `json:"exhausts"`
		Label             string        `json:"label"`
	}

	rawArmament struct {
		Type            string  `json:"type"`
		PositionForward float32 `json:"positionForward"`
		PositionSide    float32 `json:"positionSide"`
		Angle           float32 `json:"angle"` // degrees
		Vertical        bool    `json:"vertical"`
		External        bool    `json:"external"`
		Hidden          bool    `json:"hidden"`
		Airdrop         bool    `json:"airdrop"`
		Count           int     `json:"count"`
		Symmetrical     bool    `json:"symmetrical"`
		Turret          *int    `json:"turret,omitempty"` // index into rawEntityTypeData.Turrets
	}

	rawTurret struct {
		Type            string  `json:"type"`
		PositionForward float32 `json:"positionForward"`
		PositionSide    float32 `json:"positionSide"`
		Angle           float32 `json:"angle"` // degrees
		AzimuthFL       float32 `json:"azimuthFL"`
		AzimuthFR       float32 `json:"azimuthFR"`
		AzimuthBL       float32 `json:"azimuthBL"`
		AzimuthBR       float32 `json:"azimuthBR"`
		Symmetrical     bool    `json:"symmetrical"`
	}

	rawExhaust struct {
		PositionForward float32 `json:"positionForward"`
		PositionSide    float32 `json:"positionSide"`
		Symmetrical     bool    `json:"symmetrical"`
	}

	// enum is a list of possible choices and their strings
	enum struct {
		choices map[string]enumChoice // choices maps from strings to choices
		strings []string              // strings maps from choices to strings
		name    string                // name of enum for error
	}

	// enumChoice is a choice of an enum
	// Only use uint8 because only 255 options are needed (plus invalid)
	enumChoice uint8
)

func (enum *enum) add(s string) {
	if enum.strings == nil {
		enum.strings = []string{"invalid"}
	}

	// Check uniqueness
	for _, other := range enum.strings {
		if s == other {
			return
		}
	}

	enum.strings = append(enum.strings, s)
}

func (enum *enum) create(name string) {
	// Sort strings but invalid must remain at index 0
	sort.Strings(enum.strings[invalidEnumChoice+1:])

	enum.choices = make(map[string]enumChoice, len(enum.strings)-1)
	for i, s := range enum.strings {
		// Skip invalid
		if i == invalidEnumChoice {
			continue
		}
		enum.choices[s] = enumChoice(i)
	}

	enum.name = name
}

func (enum *enum) mustParse(s string) enumChoice {
	c, ok := enum.choices[s]
	if !ok {
		panic("invalid " + enum.name + ": " + s)
	}
	return c
}

func (c *enumChoice) unmarshalText(enum *enum, text []byte) error {
	var ok bool
	*c, ok = enum.choices[string(text)]
	if !ok {
		return errors.New("decode error: invalid " + enum.name + " " + string(text))
	}
	return nil
}

// degreesToAngle converts a human-authored degree measure (as used throughout
// entities.json for armament/turret bearings) into the runtime Angle type.
func degreesToAngle(degrees float32) Angle {
	return ToAngle(degrees * math32.Pi / 180)
}

//go:embed entities.json
var entityDataJSON []byte

func init() {
	typeLoaders := make(map[string]entityTypeLoader)
	err := json.Unmarshal(entityDataJSON, &typeLoaders)
	if err != nil {
		panic(err)
	}

	for t, d := range typeLoaders {
		entityKindEnum.add(d.Kind)
		entitySubKindEnum.add(d.SubKind)
		entityTypeEnum.add(t)
	}

	entityKindEnum.create("entity kind")
	entitySubKindEnum.create("entity sub kind")
	entityTypeEnum.create("entity type")

	// Unmarshal raw data now that the EntityType enum exists, so that
	// armament/turret Type references resolve.
	rawData := make(map[string]rawEntityTypeData)
	err = json.Unmarshal(entityDataJSON, &rawData)
	if err != nil {
		panic(err)
	}

	entityTypeData = make([]EntityTypeData, len(entityTypeEnum.strings))
	for i, s := range entityTypeEnum.strings {
		// Skip invalid
		if i == invalidEnumChoice {
			continue
		}

		raw := rawData[s]
		data := &entityTypeData[i]

		data.Kind = ParseEntityKind(raw.Kind)
		data.SubKind = ParseEntitySubKind(raw.SubKind)
		data.Level = raw.Level
		data.NPC = raw.NPC
		data.LandBased = raw.LandBased
		data.Lifespan = raw.Lifespan
		data.Reload = raw.Reload
		data.Speed = raw.Speed
		data.Range = raw.Range
		data.Depth = raw.Depth
		data.Length = raw.Length
		data.Width = raw.Width
		data.Draft = raw.Draft
		data.Mast = raw.Mast
		data.Damage = raw.Damage
		data.RamDamage = raw.RamDamage
		data.TorpedoResistance = raw.TorpedoResistance
		data.Stealth = raw.Stealth
		data.Sensors = raw.Sensors
		data.Limited = raw.Limited
		data.Label = raw.Label

		turrets, turretMapping := expandTurrets(raw.Turrets)
		data.Turrets = turrets
		data.Armaments = expandArmaments(raw.Armaments, turretMapping)
		data.Exhausts = expandExhausts(raw.Exhausts)

		data.Radius = Vec2f{X: data.Width, Y: data.Length}.Mul(0.5).Length()

		EntityRadiusMax = max(data.Radius, EntityRadiusMax)
		if data.Level > EntityLevelMax {
			EntityLevelMax = data.Level
		}

		data.InvSize = 1.0 / min(1, data.Radius*(1.0/30.0)*(1.0-data.Stealth))
	}

	EntityKindAircraft = ParseEntityKind("Aircraft")
	EntityKindBoat = ParseEntityKind("Boat")
	EntityKindCollectible = ParseEntityKind("Collectible")
	EntityKindDecoy = ParseEntityKind("Decoy")
	EntityKindObstacle = ParseEntityKind("Obstacle")
	EntityKindTurret = ParseEntityKind("Turret")
	EntityKindWeapon = ParseEntityKind("Weapon")

	EntitySubKindAeroplane = ParseEntitySubKind("Aeroplane")
	EntitySubKindBattleship = ParseEntitySubKind("Battleship")
	EntitySubKindCarrier = ParseEntitySubKind("Carrier")
	EntitySubKindCorvette = ParseEntitySubKind("Corvette")
	EntitySubKindCruiser = ParseEntitySubKind("Cruiser")
	EntitySubKindDepositor = ParseEntitySubKind("Depositor")
	EntitySubKindDepthCharge = ParseEntitySubKind("DepthCharge")
	EntitySubKindDestroyer = ParseEntitySubKind("Destroyer")
	EntitySubKindDreadnought = ParseEntitySubKind("Dreadnought")
	EntitySubKindDredger = ParseEntitySubKind("Dredger")
	EntitySubKindDrone = ParseEntitySubKind("Drone")
	EntitySubKindEkranoplan = ParseEntitySubKind("Ekranoplan")
	EntitySubKindGlideBomb = ParseEntitySubKind("GlideBomb")
	EntitySubKindGun = ParseEntitySubKind("Gun")
	EntitySubKindHelicopter = ParseEntitySubKind("Helicopter")
	EntitySubKindHovercraft = ParseEntitySubKind("Hovercraft")
	EntitySubKindIcebreaker = ParseEntitySubKind("Icebreaker")
	EntitySubKindLandingShip = ParseEntitySubKind("LandingShip")
	EntitySubKindLaser = ParseEntitySubKind("Laser")
	EntitySubKindLcs = ParseEntitySubKind("Lcs")
	EntitySubKindMine = ParseEntitySubKind("Mine")
	EntitySubKindMinelayer = ParseEntitySubKind("Minelayer")
	EntitySubKindMissile = ParseEntitySubKind("Missile")
	EntitySubKindMtb = ParseEntitySubKind("Mtb")
	EntitySubKindPassenger = ParseEntitySubKind("Passenger")
	EntitySubKindPirate = ParseEntitySubKind("Pirate")
	EntitySubKindRam = ParseEntitySubKind("Ram")
	EntitySubKindRocket = ParseEntitySubKind("Rocket")
	EntitySubKindRocketTorpedo = ParseEntitySubKind("RocketTorpedo")
	EntitySubKindSAM = ParseEntitySubKind("Sam")
	EntitySubKindScore = ParseEntitySubKind("Score")
	EntitySubKindShell = ParseEntitySubKind("Shell")
	EntitySubKindShovel = ParseEntitySubKind("Shovel")
	EntitySubKindSonar = ParseEntitySubKind("Sonar")
	EntitySubKindStarship = ParseEntitySubKind("Starship")
	EntitySubKindStructure = ParseEntitySubKind("Structure")
	EntitySubKindSubmarine = ParseEntitySubKind("Submarine")
	EntitySubKindTank = ParseEntitySubKind("Tank")
	EntitySubKindTankShell = ParseEntitySubKind("TankShell")
	EntitySubKindTanker = ParseEntitySubKind("Tanker")
	EntitySubKindTorpedo = ParseEntitySubKind("Torpedo")
	EntitySubKindTree = ParseEntitySubKind("Tree")

	EntityTypeAcacia = ParseEntityType("Acacia")
	EntityTypeBarrel = ParseEntityType("Barrel")
	EntityTypeChinook = ParseEntityType("Chinook")
	EntityTypeCoin = ParseEntityType("Coin")
	EntityTypeCount = len(entityTypeEnum.strings)
	EntityTypeCrate = ParseEntityType("Crate")
	EntityTypeHQ = ParseEntityType("Hq")
	EntityTypeLst = ParseEntityType("Lst")
	EntityTypeMark14 = ParseEntityType("Mark14")
	EntityTypeOilPlatform = ParseEntityType("OilPlatform")
	EntityTypeScrap = ParseEntityType("Scrap")
	EntityTypeSherman = ParseEntityType("Sherman")

	SensorTypeRadar = 1
	SensorTypeSonar = 2
	SensorTypeVisual = 0

	// Spawn entities are boats that are level 1
	for i, data := range entityTypeData {
		if data.Kind == EntityKindBoat {
			for len(BoatEntityTypesByLevel) <= int(data.Level) {
				BoatEntityTypesByLevel = append(BoatEntityTypesByLevel, []EntityType{})
			}
			BoatEntityTypesByLevel[data.Level] = append(BoatEntityTypesByLevel[data.Level], EntityType(i))
		}
	}
	if len(BoatEntityTypesByLevel) > 1 {
		SpawnEntityTypes = BoatEntityTypesByLevel[1]
	}

	// A boat carrying a SAM mount can shoot down nearby aircraft; the chance
	// scales with the number of SAM armaments it carries. This runs as a
	// second pass because it depends on Armaments having already been
	// resolved above for every entity.
	for i := range entityTypeData {
		data := &entityTypeData[i]
		if data.Kind != EntityKindBoat {
			continue
		}
		var sams int
		for _, armament := range data.Armaments {
			if armament.Type.Data().SubKind == EntitySubKindSAM {
				sams++
			}
		}
		if sams > 0 {
			data.AntiAircraft = min(1, 0.1*float32(sams))
		}
	}
}

// expandTurrets applies symmetrical expansion and returns the flat turret
// list together with a mapping from each raw index to its expanded indices
// (length 1, or 2 if symmetrical).
func expandTurrets(raw []rawTurret) ([]Turret, [][]int) {
	mapping := make([][]int, len(raw))
	var out []Turret

	for rawIndex, t := range raw {
		sides := []float32{t.PositionSide}
		angles := []Angle{degreesToAngle(t.Angle)}
		if t.Symmetrical {
			sides = append(sides, -t.PositionSide)
			angles = append(angles, -angles[0])
		}

		for i, side := range sides {
			mapping[rawIndex] = append(mapping[rawIndex], len(out))
			out = append(out, Turret{
				Type:            ParseEntityType(t.Type),
				PositionForward: t.PositionForward,
				PositionSide:    side,
				Angle:           angles[i],
				AzimuthFL:       degreesToAngle(t.AzimuthFL),
				AzimuthFR:       degreesToAngle(t.AzimuthFR),
				AzimuthBL:       degreesToAngle(t.AzimuthBL),
				AzimuthBR:       degreesToAngle(t.AzimuthBR),
			})
		}
	}

	return out, mapping
}

// expandArmaments applies symmetrical and count expansion. Symmetrical turns
// one entry into two mirrored placements; count duplicates each placement N
// times so the firing code can distribute reloads across identical slots.
func expandArmaments(raw []rawArmament, turretMapping [][]int) []Armament {
	var out []Armament

	for _, a := range raw {
		sides := []float32{a.PositionSide}
		angles := []Angle{degreesToAngle(a.Angle)}
		turrets := []*int{mappedTurret(a.Turret, turretMapping, 0)}

		if a.Symmetrical {
			sides = append(sides, -a.PositionSide)
			angles = append(angles, -angles[0])
			turrets = append(turrets, mappedTurret(a.Turret, turretMapping, 1))
		}

		count := a.Count
		if count < 1 {
			count = 1
		}

		for i, side := range sides {
			for c := 0; c < count; c++ {
				out = append(out, Armament{
					Type:            ParseEntityType(a.Type),
					PositionForward: a.PositionForward,
					PositionSide:    side,
					Angle:           angles[i],
					Vertical:        a.Vertical,
					External:        a.External,
					Hidden:          a.Hidden,
					Airdrop:         a.Airdrop,
					Turret:          turrets[i],
				})
			}
		}
	}

	return out
}

// mappedTurret resolves a raw turret index through turretMapping, preferring
// the mirror-th expanded index (falling back to the first if the referenced
// turret wasn't itself symmetrical).
func mappedTurret(rawTurretIndex *int, turretMapping [][]int, mirror int) *int {
	if rawTurretIndex == nil {
		return nil
	}
	expanded := turretMapping[*rawTurretIndex]
	if mirror >= len(expanded) {
		mirror = 0
	}
	idx := expanded[mirror]
	return &idx
}

func expandExhausts(raw []rawExhaust) []Exhaust {
	var out []Exhaust
	for _, e := range raw {
		out = append(out, Exhaust{PositionForward: e.PositionForward, PositionSide: e.PositionSide})
		if e.Symmetrical {
			out = append(out, Exhaust{PositionForward: e.PositionForward, PositionSide: -e.PositionSide})
		}
	}
	return out
}

// Enums used in code

var (
	EntityKindAircraft    EntityKind
	EntityKindBoat        EntityKind
	EntityKindCollectible EntityKind
	EntityKindDecoy       EntityKind
	EntityKindObstacle    EntityKind
	EntityKindTurret      EntityKind
	EntityKindWeapon      EntityKind

	EntitySubKindAeroplane     EntitySubKind
	EntitySubKindBattleship    EntitySubKind
	EntitySubKindCarrier       EntitySubKind
	EntitySubKindCorvette      EntitySubKind
	EntitySubKindCruiser       EntitySubKind
	EntitySubKindDepositor     EntitySubKind
	EntitySubKindDepthCharge   EntitySubKind
	EntitySubKindDestroyer     EntitySubKind
	EntitySubKindDreadnought   EntitySubKind
	EntitySubKindDredger       EntitySubKind
	EntitySubKindDrone         EntitySubKind
	EntitySubKindEkranoplan    EntitySubKind
	EntitySubKindGlideBomb     EntitySubKind
	EntitySubKindGun           EntitySubKind
	EntitySubKindHelicopter    EntitySubKind
	EntitySubKindHovercraft    EntitySubKind
	EntitySubKindIcebreaker    EntitySubKind
	EntitySubKindLandingShip   EntitySubKind
	EntitySubKindLaser         EntitySubKind
	EntitySubKindLcs           EntitySubKind
	EntitySubKindMine          EntitySubKind
	EntitySubKindMinelayer     EntitySubKind
	EntitySubKindMissile       EntitySubKind
	EntitySubKindMtb           EntitySubKind
	EntitySubKindPassenger     EntitySubKind
	EntitySubKindPirate        EntitySubKind
	EntitySubKindRam           EntitySubKind
	EntitySubKindRocket        EntitySubKind
	EntitySubKindRocketTorpedo EntitySubKind
	EntitySubKindSAM           EntitySubKind
	EntitySubKindScore         EntitySubKind
	EntitySubKindShell         EntitySubKind
	EntitySubKindShovel        EntitySubKind
	EntitySubKindSonar         EntitySubKind
	EntitySubKindStarship      EntitySubKind
	EntitySubKindStructure     EntitySubKind
	EntitySubKindSubmarine     EntitySubKind
	EntitySubKindTank          EntitySubKind
	EntitySubKindTankShell     EntitySubKind
	EntitySubKindTanker        EntitySubKind
	EntitySubKindTorpedo       EntitySubKind
	EntitySubKindTree          EntitySubKind

	EntityTypeAcacia      EntityType
	EntityTypeBarrel      EntityType
	EntityTypeChinook     EntityType
	EntityTypeCoin        EntityType
	EntityTypeCrate       EntityType
	EntityTypeHQ          EntityType
	EntityTypeLst         EntityType
	EntityTypeMark14      EntityType
	EntityTypeOilPlatform EntityType
	EntityTypeScrap       EntityType
	EntityTypeSherman     EntityType

	// SensorType identifies one of the three Sensors fields.
	SensorTypeRadar  SensorType
	SensorTypeSonar  SensorType
	SensorTypeVisual SensorType
)

// EntityKind helpers

func (entityKind EntityKind) AppendText(buf []byte) []byte {
	return append(buf, entityKind.String()...)
}

func (entityKind EntityKind) MarshalText() ([]byte, error) {
	return entityKind.AppendText(nil), nil
}

func ParseEntityKind(s string) EntityKind {
	return EntityKind(entityKindEnum.mustParse(s))
}

func (entityKind EntityKind) String() string {
	return entityKindEnum.strings[entityKind]
}

func (entityKind *EntityKind) UnmarshalText(text []byte) (err error) {
	var choice enumChoice
	err = choice.unmarshalText(&entityKindEnum, text)
	*entityKind = EntityKind(choice)
	return
}

// EntitySubKind helpers

func (entitySubKind EntitySubKind) AppendText(buf []byte) []byte {
	return append(buf, entitySubKind.String()...)
}

func (entitySubKind EntitySubKind) MarshalText() ([]byte, error) {
	return entitySubKind.AppendText(nil), nil
}

func ParseEntitySubKind(s string) EntitySubKind {
	return EntitySubKind(entitySubKindEnum.mustParse(s))
}

func (entitySubKind EntitySubKind) String() string {
	return entitySubKindEnum.strings[entitySubKind]
}

func (entitySubKind *EntitySubKind) UnmarshalText(text []byte) (err error) {
	var choice enumChoice
	err = choice.unmarshalText(&entitySubKindEnum, text)
	*entitySubKind = EntitySubKind(choice)
	return
}

// EntityType helpers

func (entityType EntityType) AppendText(buf []byte) []byte {
	return append(buf, entityType.String()...)
}

func (entityType EntityType) MarshalText() ([]byte, error) {
	return entityType.AppendText(nil), nil
}

func ParseEntityType(s string) EntityType {
	return EntityType(entityTypeEnum.mustParse(s))
}

func (entityType EntityType) String() string {
	return entityTypeEnum.strings[entityType]
}

func (entityType *EntityType) UnmarshalText(text []byte) (err error) {
	var choice enumChoice
	err = choice.unmarshalText(&entityTypeEnum, text)
	*entityType = EntityType(choice)
	return
}
