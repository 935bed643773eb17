package main

import (
	"sync"
	"time"

	"gearmarket/internal/market"
)

// devWorld is a standalone stand-in for the host game: an advancing calendar,
// an in-memory bank, a couple of auctioneers, and players that appear on
// first sight holding a stack of trade goods. It exists so the server binary
// runs and can be poked with a websocket client; a real deployment wires the
// game's own services instead.
type devWorld struct {
	start        time.Time
	gameHourSecs float64

	mu          sync.Mutex
	balances    map[string]int
	tills       map[int64]int
	players     map[string]*devPlayer
	auctioneers map[int64]market.Auctioneer
}

type devPlayer struct {
	p    market.Player
	held *market.ItemStack
}

func newDevWorld(gameHourSecs float64) *devWorld {
	if gameHourSecs <= 0 {
		gameHourSecs = 60
	}
	return &devWorld{
		start:        time.Now(),
		gameHourSecs: gameHourSecs,
		balances:     map[string]int{},
		tills:        map[int64]int{},
		players:      map[string]*devPlayer{},
		auctioneers: map[int64]market.Auctioneer{
			1: {EntityID: 1, Pos: market.Vec3{X: 0, Y: 64, Z: 0}},
			2: {EntityID: 2, Pos: market.Vec3{X: 5000, Y: 64, Z: 5000}},
		},
	}
}

func (d *devWorld) NowHours() float64 {
	return time.Since(d.start).Seconds() / d.gameHourSecs
}

func (d *devWorld) Balance(uid string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(uid)
	return d.balances[uid]
}

func (d *devWorld) Deduct(uid string, amount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.balances[uid] -= amount
}

func (d *devWorld) Credit(uid string, amount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.balances[uid] += amount
}

func (d *devWorld) CreditTrader(auctioneerEntityID int64, amount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tills[auctioneerEntityID] += amount
}

func (d *devWorld) Lookup(uid string) (market.Player, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(uid)
	return d.players[uid].p, true
}

func (d *devWorld) HeldSlot(uid string) market.Slot {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(uid)
	return &devSlot{player: d.players[uid]}
}

func (d *devWorld) GiveItem(uid string, st *market.ItemStack) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(uid)
	// Single-slot inventory: merge same goods, otherwise replace.
	dp := d.players[uid]
	if dp.held != nil && st != nil && dp.held.Code == st.Code && dp.held.Class == st.Class {
		dp.held.Quantity += st.Quantity
		return
	}
	dp.held = st
}

func (d *devWorld) ByEntityID(id int64) (market.Auctioneer, bool) {
	a, ok := d.auctioneers[id]
	return a, ok
}

func (d *devWorld) Resolve(class, code string) bool {
	return class != "" && code != ""
}

// ensure seeds a first-seen player with gears and goods near auctioneer 1.
// Callers hold d.mu.
func (d *devWorld) ensure(uid string) {
	if _, ok := d.players[uid]; ok {
		return
	}
	d.balances[uid] = 100
	d.players[uid] = &devPlayer{
		p: market.Player{
			UID:      uid,
			Name:     uid,
			EntityID: int64(1000 + len(d.players)),
			Pos:      market.Vec3{X: 0, Y: 64, Z: 0},
		},
		held: &market.ItemStack{Class: "item", Code: "gear-rusty-axe", Quantity: 10},
	}
}

type devSlot struct {
	player *devPlayer
}

func (s *devSlot) Quantity() int {
	if s.player.held == nil {
		return 0
	}
	return s.player.held.Quantity
}

func (s *devSlot) Empty() bool {
	return s.player.held == nil || s.player.held.Quantity == 0
}

func (s *devSlot) Stack() *market.ItemStack {
	return s.player.held
}

func (s *devSlot) TakeOut(qty int) *market.ItemStack {
	if s.player.held == nil || qty <= 0 {
		return nil
	}
	if qty >= s.player.held.Quantity {
		out := s.player.held
		s.player.held = nil
		return out
	}
	out := s.player.held.Clone()
	out.Quantity = qty
	s.player.held.Quantity -= qty
	return out
}
