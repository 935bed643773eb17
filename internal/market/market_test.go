package market

import (
	"io"
	"log"
	"sync"
	"testing"
)

// Shared test doubles for the collaborator interfaces.

type fakeClock struct {
	mu    sync.Mutex
	hours float64
}

func (c *fakeClock) NowHours() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hours
}

// Advance is for tests that run the loop goroutine; single-goroutine tests
// set hours directly.
func (c *fakeClock) Advance(h float64) {
	c.mu.Lock()
	c.hours += h
	c.mu.Unlock()
}

type fakeBank struct {
	balances map[string]int
	tills    map[int64]int
}

func (b *fakeBank) Balance(uid string) int        { return b.balances[uid] }
func (b *fakeBank) Deduct(uid string, amount int) { b.balances[uid] -= amount }
func (b *fakeBank) Credit(uid string, amount int) { b.balances[uid] += amount }
func (b *fakeBank) CreditTrader(id int64, amount int) {
	b.tills[id] += amount
}

type fakeSlot struct {
	stack *ItemStack
}

func (s *fakeSlot) Quantity() int {
	if s.stack == nil {
		return 0
	}
	return s.stack.Quantity
}

func (s *fakeSlot) Empty() bool { return s.stack == nil || s.stack.Quantity == 0 }

func (s *fakeSlot) Stack() *ItemStack { return s.stack }

func (s *fakeSlot) TakeOut(qty int) *ItemStack {
	if s.stack == nil || qty <= 0 {
		return nil
	}
	if qty >= s.stack.Quantity {
		out := s.stack
		s.stack = nil
		return out
	}
	out := s.stack.Clone()
	out.Quantity = qty
	s.stack.Quantity -= qty
	return out
}

type fakeWorld struct {
	players     map[string]Player
	slots       map[string]*fakeSlot
	given       map[string][]*ItemStack
	auctioneers map[int64]Auctioneer
	unresolved  map[string]bool
}

func (w *fakeWorld) Lookup(uid string) (Player, bool) {
	p, ok := w.players[uid]
	return p, ok
}

func (w *fakeWorld) HeldSlot(uid string) Slot {
	s, ok := w.slots[uid]
	if !ok {
		s = &fakeSlot{}
		w.slots[uid] = s
	}
	return s
}

func (w *fakeWorld) GiveItem(uid string, st *ItemStack) {
	w.given[uid] = append(w.given[uid], st)
}

func (w *fakeWorld) ByEntityID(id int64) (Auctioneer, bool) {
	a, ok := w.auctioneers[id]
	return a, ok
}

func (w *fakeWorld) Resolve(class, code string) bool {
	return !w.unresolved[class+":"+code]
}

// newTestMarket wires a market over the fakes. Auctioneer 1 sits at the
// origin, auctioneer 2 about 7071 blocks away so delivery between them costs
// 2 gears at the default curve.
func newTestMarket(t *testing.T) (*Market, *fakeClock, *fakeBank, *fakeWorld) {
	t.Helper()
	clock := &fakeClock{hours: 100}
	bank := &fakeBank{balances: map[string]int{}, tills: map[int64]int{}}
	w := &fakeWorld{
		players:    map[string]Player{},
		slots:      map[string]*fakeSlot{},
		given:      map[string][]*ItemStack{},
		unresolved: map[string]bool{},
		auctioneers: map[int64]Auctioneer{
			1: {EntityID: 1, Pos: Vec3{0, 64, 0}},
			2: {EntityID: 2, Pos: Vec3{5000, 64, 5000}},
		},
	}
	cfg := Config{
		Pricing: PricingPolicy{
			SalesCutRate:     0.1,
			DeliveryCostMul:  1,
			DurationWeeksMul: 1,
		},
		MaxListings:      30,
		ListingWeekHours: 168,
		SaveSlot:         "test",
	}
	m := New(cfg, clock, bank, w, w, w, log.New(io.Discard, "", 0))
	return m, clock, bank, w
}

func (w *fakeWorld) addPlayer(uid string, pos Vec3, held *ItemStack, bank *fakeBank, gears int) Player {
	p := Player{UID: uid, Name: uid, EntityID: int64(1000 + len(w.players)), Pos: pos}
	w.players[uid] = p
	w.slots[uid] = &fakeSlot{stack: held}
	bank.balances[uid] = gears
	return p
}
