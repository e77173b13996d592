// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"github.com/chewxy/math32"
	"log"
	"math/rand"
	"brinewar/server/terrain"
	"brinewar/server/world"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// barrelRadius is the radius around an oil platform that barrels are counted.
	barrelRadius = 125
	// max amount of barrels around an oil platform
	platformBarrelCount = 12
	// platformBarrelSpawnRate is average seconds per barrel spawn.
	// Cant be less than spawnPeriod.
	platformBarrelSpawnRate = time.Second * 3
	// platformBarrelSpawnProb is the probability that a barrel will spawn around an oil platform.
	platformBarrelSpawnProb = float64(spawnPeriod) / float64(platformBarrelSpawnRate)
	// hq is this many times better than platform
	hqFactor = 2

	// Per-type densities (instances per square meter of world_area) and
	// per-tick refill budgets for spawn_statics. world_area = pi * worldRadius^2.
	crateDensity      = 1.0 / 30000
	crateSpawnRate    = 150
	platformDensity   = 1.0 / 1_000_000
	platformSpawnRate = 2
	acaciaDensity     = 1.0 / 100_000
	acaciaSpawnRate   = 1
)

// Spawn is spawn_statics(ticks): it density-maintains background
// collectibles, obstacles, and vegetation, plus the oil-platform barrel
// drops that enrich them. ticks is how much simulated time elapsed since
// the last call (the tick orchestrator calls it with Ticks(1) every tick).
func (h *Hub) Spawn(ticks world.Ticks) {
	defer h.timeFunction("spawn", time.Now())

	// Outputs platforms that should spawn 1 barrel
	barrelSpawnerOutput := make(chan world.Vec2f, runtime.NumCPU()*2)
	barrelSpawnerPositions := make([]world.Vec2f, 0, 16)
	var wait sync.WaitGroup
	wait.Add(1)
	go func() {
		for position := range barrelSpawnerOutput {
			barrelSpawnerPositions = append(barrelSpawnerPositions, position)
		}
		wait.Done()
	}()

	// Use int64s for atomic ops
	currentCrateCount := int64(0)
	currentPlatformCount := int64(0) // OilPlatform + HQ, counted together
	currentAcaciaCount := int64(0)

	h.world.SetParallel(true)
	h.world.ForEntities(func(entity *world.Entity) (stop, remove bool) {
		if entity.EntityType == world.EntityTypeAcacia {
			atomic.AddInt64(&currentAcaciaCount, 1)
			return
		}

		switch entity.Data().Kind {
		case world.EntityKindCollectible:
			atomic.AddInt64(&currentCrateCount, 1)
		case world.EntityKindObstacle:
			maxBarrels := 0
			spawnProb := 0.0
			switch entity.EntityType {
			case world.EntityTypeHQ:
				atomic.AddInt64(&currentPlatformCount, 1)
				maxBarrels = platformBarrelCount * hqFactor
				spawnProb = platformBarrelSpawnProb * hqFactor
			case world.EntityTypeOilPlatform:
				atomic.AddInt64(&currentPlatformCount, 1)
				maxBarrels = platformBarrelCount
				spawnProb = platformBarrelSpawnProb
			}
			if maxBarrels > 0 && rand.Float64() < spawnProb {
				pos := entity.Position
				barrelCount := 0

				// Count current barrels
				h.world.ForEntitiesInRadius(pos, barrelRadius, func(_ float32, _ world.EntityID, _ *world.Entity) (_ bool) {
					barrelCount++
					return
				})

				if barrelCount < maxBarrels {
					barrelSpawnerOutput <- pos
				}
			}
		}
		return
	})
	h.world.SetParallel(false)

	close(barrelSpawnerOutput)
	wait.Wait()

	// Spawn barrels near platforms that rolled one this tick.
	for _, pos := range barrelSpawnerPositions {
		barrelEntity := &world.Entity{
			Transform: world.Transform{
				Position:  pos,
				Velocity:  world.ToVelocity(rand.Float32()*10 + 10),
				Direction: world.ToAngle(rand.Float32() * math32.Pi * 2),
			},
			EntityType: world.EntityTypeBarrel,
		}
		h.spawnHereOrNearby(barrelEntity, barrelRadius*0.9)
	}

	worldArea := math32.Pi * h.worldRadius * h.worldRadius
	ticksF := float32(ticks)

	h.spawnStatics(world.EntityTypeCrate, int(currentCrateCount), worldArea*crateDensity, crateSpawnRate*ticksF)
	h.spawnStatics(world.EntityTypeOilPlatform, int(currentPlatformCount), worldArea*platformDensity, platformSpawnRate*ticksF)
	h.spawnStatics(world.EntityTypeAcacia, int(currentAcaciaCount), worldArea*acaciaDensity, acaciaSpawnRate*ticksF)
}

// spawnStatics spawns min(target-current, budget) instances of entityType,
// each placed uniformly at random within the world disk, never removing
// anything: count(entityType) after the call is <= target+budget.
func (h *Hub) spawnStatics(entityType world.EntityType, current int, rawTarget float32, budget float32) {
	target := int(math32.Ceil(rawTarget))

	n := target - current
	if b := int(budget); b < n {
		n = b
	}

	data := entityType.Data()
	for i := 0; i < n; i++ {
		entity := &world.Entity{EntityType: entityType}
		if data.Lifespan != 0 {
			// Stagger expirations instead of letting a whole batch expire together.
			entity.Lifespan = world.Ticks(rand.Float32() * 0.25 * float32(data.Lifespan))
		}
		h.spawnStatic(entity)
	}
}

// spawnStatic is spawn_static: a thin wrapper around try_spawn with default
// guidance and a uniformly random position/direction within the world disk.
func (h *Hub) spawnStatic(entity *world.Entity) bool {
	angle := world.ToAngle(rand.Float32() * 2 * math32.Pi)
	entity.Position = angle.Vec2f().Mul(math32.Sqrt(rand.Float32()) * h.worldRadius)
	entity.Direction = world.ToAngle(rand.Float32() * 2 * math32.Pi)
	entity.DirectionTarget = entity.Direction
	return h.trySpawn(entity)
}

// trySpawn is try_spawn(entity): inserts entity if can_spawn accepts it at
// threshold 1.0. No side effects on failure.
func (h *Hub) trySpawn(entity *world.Entity) bool {
	if !h.canSpawn(entity, 1.0) {
		return false
	}
	h.addEntity(entity)
	return true
}

// addEntity inserts entity into the world index and, for a boat with an
// owner, wires up the owner's EntityID.
func (h *Hub) addEntity(entity *world.Entity) world.EntityID {
	h.world.AddEntity(entity)
	entityID := entity.EntityID
	if entity.Owner != nil && entity.Data().Kind == world.EntityKindBoat {
		if entity.Owner.EntityID != world.EntityIDInvalid {
			panic("owner already has EntityID")
		}
		if entity.Owner.Respawning() {
			entity.Owner.ClearRespawn()
		}
		entity.Owner.EntityID = entityID
	}
	return entityID
}

// spawnHereOrNearby is spawn_here_or_nearby(entity, initial_radius): widens
// its search around entity's current position (taken as the search center)
// until can_spawn accepts, or the attempts governor (128 for boats, 8 for
// everything else) is exhausted.
func (h *Hub) spawnHereOrNearby(entity *world.Entity, initialRadius float32) bool {
	if initialRadius == 0 {
		return h.trySpawn(entity)
	}

	boat := entity.Data().Kind == world.EntityKindBoat
	maxAttempts := 8
	if boat {
		maxAttempts = 128
	}

	center := entity.Position
	radius := max(initialRadius, 1)
	threshold := float32(6.0)

	attempt := 0
	if boat {
		defer func() {
			log.Printf("spawn: boat placement took %d attempt(s)", attempt)
		}()
	}

	for {
		attempt++

		// Always randomize, even on the first iteration.
		angle := world.ToAngle(rand.Float32() * 2 * math32.Pi)
		entity.Position = center.Add(angle.Vec2f().Mul(math32.Sqrt(rand.Float32()) * radius))
		entity.Direction = world.ToAngle(rand.Float32() * 2 * math32.Pi)

		if h.canSpawn(entity, threshold) {
			// Prevents the entity from immediately rotating back to 0.
			entity.DirectionTarget = entity.Direction
			return h.trySpawn(entity)
		}

		if attempt >= maxAttempts {
			return false
		}

		radius = min(radius*1.1, h.worldRadius*0.85)
		threshold = 0.05 + threshold*0.95 // Asymptotically approaches 1.0 from above.
	}
}

// canSpawn is can_spawn(entity, threshold): fails fast on the first
// violation found. threshold must be >= 1.0.
func (h *Hub) canSpawn(entity *world.Entity, threshold float32) bool {
	if threshold < 1.0 {
		panic("canSpawn: threshold must be >= 1.0")
	}

	if entity.Position.LengthSquared() > h.worldRadius*h.worldRadius {
		return false
	}

	data := entity.Data()
	maxCollisionRadius := data.Radius + world.EntityRadiusMax

	switch data.Kind {
	case world.EntityKindDecoy, world.EntityKindWeapon:
		obstacleNearby := h.world.ForEntitiesInRadius(entity.Position, maxCollisionRadius, func(_ float32, _ world.EntityID, other *world.Entity) bool {
			return other.Data().Kind == world.EntityKindObstacle && entity.Collides(other, 0)
		})
		if obstacleNearby {
			return false
		}
		return !h.terrain.Collides(entity, 0)
	case world.EntityKindCollectible, world.EntityKindAircraft:
		return !h.terrain.Collides(entity, 0)
	}

	// Terrain category check (Boats and other fall-through kinds): threshold
	// inflates the square so widening search also widens the safety margin.
	side := (data.Radius + terrain.Scale) * 2 * threshold
	if terrain.LandInSquare(h.terrain, entity.Position, side) != data.IsLandBased() {
		return false
	}

	// Entity proximity check.
	tooClose := h.world.ForEntitiesInRadius(entity.Position, maxCollisionRadius*threshold, func(distanceSquared float32, _ world.EntityID, other *world.Entity) bool {
		otherData := other.Data()
		if otherData.Kind == world.EntityKindCollectible {
			return false
		}

		collisionDistance := data.Radius + otherData.Radius
		safeMultiplier := max(threshold*0.5, float32(1.0))
		if data.Kind == world.EntityKindBoat && otherData.Kind == world.EntityKindBoat && otherData.Level > 2 {
			safeMultiplier = threshold
		}
		safeDistance := collisionDistance * safeMultiplier
		return distanceSquared <= safeDistance*safeDistance
	})

	return !tooClose
}
