// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"brinewar/server/cloud"
	"brinewar/server/terrain"
	"brinewar/server/terrain/compressed"
	"brinewar/server/terrain/noise"
	"brinewar/server/world"
	"brinewar/server/world/sector"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// debugTicks is how many simulated ticks elapse between benchmark
	// flushes and debug snapshots (5 simulated seconds).
	debugTicks = 5 * world.TicksPerSecond

	// spawnPeriod is how often Spawn (and so the barrel-spawn roll) runs,
	// now that post_update fires every tick.
	spawnPeriod = world.TickPeriod

	// encodeBotMessages makes BotClient.Send marshal json and check for errors.
	// Only useful for testing/benchmarking (drops performance significantly).
	encodeBotMessages = false
)

// Hub maintains the set of active clients and broadcasts messages to the clients.
type Hub struct {
	// World state
	world       *sector.World
	worldRadius float32 // interpolated
	terrain     terrain.Terrain
	clients     ClientList // implemented as double-linked list
	despawn     ClientList // clients that are being removed
	teams       map[world.TeamID]*Team

	// Flags
	minPlayers int
	auth       string

	// ipConns counts live connections per IP, to bound abuse from a single source.
	ipMu    sync.RWMutex
	ipConns map[string]int

	// Cloud (and things that are served atomically by HTTP)
	cloud      *cloud.Cloud
	statusJSON atomic.Value

	// chats are buffered until next update.
	chats []Chat
	// funcBenches are benchmarks of core Hub functions.
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	cloudTicker *time.Ticker

	// tickTicker drives the per-tick orchestrator (tick); it is the only
	// clock the simulation itself runs on. tickCounter advances once per
	// fire and gates the every-5-simulated-seconds debug/benchmark step.
	tickTicker  *time.Ticker
	tickCounter int
}

func newHub(minPlayers int, auth string) *Hub {
	c, err := cloud.New()
	if err != nil {
		fmt.Println("Cloud error:", err)
	}
	fmt.Println(c)

	radius := max(world.MinRadius, world.RadiusOf(minPlayers))
	return &Hub{
		cloud:       c,
		world:       sector.New(radius),
		terrain:     compressed.New(noise.NewDefault()),
		worldRadius: radius,
		teams:       make(map[world.TeamID]*Team),
		minPlayers:  minPlayers,
		auth:        auth,
		ipConns:     make(map[string]int),
		inbound:     make(chan SignedInbound, 16+minPlayers*2),
		register:    make(chan Client, 8+minPlayers/256),
		unregister:  make(chan Client, 16+minPlayers/128),
		cloudTicker: time.NewTicker(cloud.UpdatePeriod),
		tickTicker:  time.NewTicker(world.TickPeriod),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	h.Cloud()

	for {
		select {
		case client := <-h.register:
			h.clients.Add(client)
			client.Data().Hub = h
			client.Init()

			if _, bot := client.(*BotClient); !bot {
				h.cloud.IncrementPlayerStatistic()
			}
		case client := <-h.unregister:
			client.Close()
			player := &client.Data().Player.Player

			// Player no longer is joining teams
			// May want to do this during despawn because clearing team requests in O(n).
			h.clearTeamRequests(player)

			// Removes team or transfers ownership, if applicable
			h.leaveTeam(player)

			client.Data().Hub = nil
			h.clients.Remove(client)

			// Removed in Despawn at the start of the next tick.
			h.despawn.Add(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				// If not same hub the message is old
				data := in.Client.Data()
				if h == data.Hub {
					in.Inbound(h, in.Client, &data.Player)
				}

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.tickTicker.C:
			h.tick()
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

// tick is the per-tick orchestrator: it runs the nine-step sequence, in
// order, exactly once per fire of tickTicker (one Ticks(1) of simulated
// time).
func (h *Hub) tick() {
	// 1. Advance tick counter.
	h.tickCounter++

	// 2. Prune clients (releases disconnected players' boats).
	h.Despawn()

	// 3. Adjust bot population toward minPlayers.
	h.updateBotCount()

	// 4. Game update by Ticks(1): moves entities, resolves collisions,
	// fires weapons, applies damage.
	h.Physics(world.Ticks(1))

	// 5. Recompute each player's alive/team state from current entity
	// ownership and team membership.
	h.UpdateIsAliveAndTeamID()

	// 6. Update clients (broadcast snapshot) and bots (issue inputs,
	// driven by the same broadcast via Client.Send).
	h.Update()

	// 7. Leaderboard ingest from players.
	h.Leaderboard()

	// 8. Post-update hook: density-driven background spawning, terrain
	// repair, and world radius interpolation.
	h.postUpdate()

	// 9. Every 5 simulated seconds, flush benchmark timers and reset them.
	if h.tickCounter%int(debugTicks) == 0 {
		h.Debug()
		h.SnapshotTerrain()
	}
}

// updateBotCount adds bots until the client count reaches minPlayers.
func (h *Hub) updateBotCount() {
	// Add as many as fit in the channel but don't block because it would deadlock.
	for i := h.clients.Len + len(h.register) - len(h.unregister); i < h.minPlayers; i++ {
		select {
		case h.register <- &BotClient{}:
		default:
			break
		}
	}
}

// UpdateIsAliveAndTeamID resyncs derived per-player state against the
// authoritative sources it's computed from: a player is alive iff it owns
// an Entity (maintained incrementally by Entity.Close on death), and a
// player's TeamID is cleared if the team it names was disbanded or no
// longer lists them as a member.
func (h *Hub) UpdateIsAliveAndTeamID() {
	for client := h.clients.First; client != nil; client = client.Data().Next {
		player := &client.Data().Player.Player
		if player.TeamID == world.TeamIDInvalid {
			continue
		}
		team := h.teams[player.TeamID]
		if team == nil || team.Members.GetByID(player.PlayerID()) == nil {
			player.TeamID = world.TeamIDInvalid
		}
	}
}

// postUpdate performs density-driven background spawning and other
// once-per-tick maintenance that doesn't belong to the game update itself.
func (h *Hub) postUpdate() {
	h.terrain.Repair()
	h.Spawn(world.Ticks(1))

	h.worldRadius = world.Lerp(h.worldRadius, world.RadiusOf(h.clients.Len), 0.25)
	h.world.Resize(h.worldRadius)
}

func (h *Hub) clearTeamRequests(player *world.Player) {
	for _, team := range h.teams {
		team.JoinRequests.Remove(player)
	}
}

// Removes a player from the team that they are on. If the player was the owner,
// transfers or deletes the team depending on if there are remaining members
func (h *Hub) leaveTeam(player *world.Player) {
	if team := h.teams[player.TeamID]; team != nil {
		team.Members.Remove(player)

		// Team is empty, delete it
		if len(team.Members) == 0 {
			delete(h.teams, player.TeamID)
		}
	}

	player.TeamID = world.TeamIDInvalid
}
