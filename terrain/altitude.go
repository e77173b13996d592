// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "brinewar/server/world"

// AltitudeAt returns the altitude (in meters) above sea level at pos.
func AltitudeAt(t Terrain, pos world.Vec2f) float32 {
	// 0.3 is a kludge factor
	return (float32(t.AtPos(pos)) - SandLevel) * 0.3
}

// LandAt returns whether the position lies on land (sand or higher).
func LandAt(t Terrain, pos world.Vec2f) bool {
	return t.AtPos(pos) >= SandLevel
}

// LandInSquare samples a square of the given side length centered at pos and
// reports whether at least half the samples are land. Used to decide whether
// a spawn location satisfies a land-based or water-based type's terrain
// requirement.
func LandInSquare(t Terrain, pos world.Vec2f, side float32) bool {
	half := side * 0.5
	samples, land := 0, 0
	for dx := -half; dx <= half; dx += Scale {
		for dy := -half; dy <= half; dy += Scale {
			samples++
			if LandAt(t, pos.Add(world.Vec2f{X: dx, Y: dy})) {
				land++
			}
		}
	}
	return samples > 0 && land*2 >= samples
}
