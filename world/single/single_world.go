// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package single is a map-backed world.World: O(n) radius queries, no
// sectoring. Useful as ground truth in tests.
package single

import (
	"fmt"

	"brinewar/server/world"
)

// A world holds entities
type World struct {
	entities map[world.EntityID]*world.Entity
}

func New() *World {
	return &World{
		entities: make(map[world.EntityID]*world.Entity),
	}
}

func (w *World) Count() int {
	return len(w.entities)
}

func (w *World) AddEntity(entity *world.Entity) world.EntityID {
	entity.EntityID = world.AllocateEntityID(func(id world.EntityID) bool {
		_, ok := w.entities[id]
		return ok
	})
	clone := *entity
	w.entities[entity.EntityID] = &clone
	return entity.EntityID
}

func (w *World) EntityByID(entityID world.EntityID, callback func(entity *world.Entity) (remove bool)) {
	entity, ok := w.entities[entityID]
	if !ok {
		return
	}
	if callback(entity) {
		w.removeEntity(entityID, entity)
	}
}

func (w *World) ForEntities(callback func(entityID world.EntityID, entity *world.Entity) (stop, remove bool)) bool {
	for entityID, entity := range w.entities {
		stop, remove := callback(entityID, entity)
		if remove {
			w.removeEntity(entityID, entity)
		}
		if stop {
			return true
		}
	}
	return false
}

func (w *World) ForEntitiesInRadius(position world.Vec2f, radius float32, callback func(r float32, entityID world.EntityID, entity *world.Entity) (stop bool)) bool {
	r2 := radius * radius
	for entityID, entity := range w.entities {
		r := position.DistanceSquared(entity.Position)
		if r > r2 {
			continue
		}
		if callback(r, entityID, entity) {
			return true
		}
	}
	return false
}

func (w *World) ForEntitiesAndOthers(entityCallback func(entityID world.EntityID, entity *world.Entity) (stop bool, radius float32),
	otherCallback func(entityID world.EntityID, entity *world.Entity, otherEntityID world.EntityID, otherEntity *world.Entity) (stop, remove, removeOther bool)) bool {

	for entityID, entity := range w.entities {
		stop, radius := entityCallback(entityID, entity)
		if stop {
			return true
		}
		if radius <= 0 {
			continue
		}
		r2 := radius * radius
		for otherID, other := range w.entities {
			if otherID == entityID || entity.Position.DistanceSquared(other.Position) > r2 {
				continue
			}

			stopInner, remove, removeOther := otherCallback(entityID, entity, otherID, other)

			if remove {
				w.removeEntity(entityID, entity)
			}
			if removeOther {
				w.removeEntity(otherID, other)
			}
			if stopInner || remove {
				break
			}
		}
	}
	return false
}

// SetParallel is a no-op; this implementation never supports concurrent iteration.
func (w *World) SetParallel(_ bool) bool {
	return false
}

func (w *World) Debug() {
	fmt.Printf("single world: entities: %d\n", w.Count())
}

func (w *World) Resize(_ float32) {
	// No sectoring to resize.
}

func (w *World) removeEntity(entityID world.EntityID, entity *world.Entity) {
	entity.Close()
	delete(w.entities, entityID)
}
