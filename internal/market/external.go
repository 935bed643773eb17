package market

import "math"

// External collaborators. The market never reimplements these; the host game
// (or the dev harness in cmd/server) provides them.

// Clock is the in-game calendar in total elapsed hours. Monotonic in normal
// operation; a snapshot imported from another timeline can put saved
// timestamps ahead of it, which the sweep clamps (and logs).
type Clock interface {
	NowHours() float64
}

// AssetAccount moves a player's fungible currency. Transfers are immediate
// and final; the only escrow in the system is the held item itself.
type AssetAccount interface {
	Balance(playerUID string) int
	Deduct(playerUID string, amount int)
	Credit(playerUID string, amount int)
	// CreditTrader pays into the till of the auctioneer entity.
	CreditTrader(auctioneerEntityID int64, amount int)
}

// PersistentStore holds one opaque ledger blob per save slot.
type PersistentStore interface {
	Get(slot string) ([]byte, bool, error)
	Put(slot string, blob []byte) error
}

// ItemResolver re-binds a deserialized stack against the live item/block
// registry after a load.
type ItemResolver interface {
	Resolve(class, code string) bool
}

// Slot is the seller's source inventory slot at listing time.
type Slot interface {
	Quantity() int
	Empty() bool
	// Stack is a read-only view of the slot's contents.
	Stack() *ItemStack
	// TakeOut removes qty from the slot and returns it as a detached stack.
	TakeOut(qty int) *ItemStack
}

// ItemDeliverer hands a retrieved stack back into a player's inventory.
type ItemDeliverer interface {
	GiveItem(playerUID string, st *ItemStack)
}

// PlayerDirectory resolves the session identity to the live player.
type PlayerDirectory interface {
	Lookup(uid string) (Player, bool)
	HeldSlot(uid string) Slot
}

// AuctioneerDirectory resolves the physical intermediary entities.
type AuctioneerDirectory interface {
	ByEntityID(id int64) (Auctioneer, bool)
}

type Player struct {
	UID      string
	Name     string
	EntityID int64
	Pos      Vec3
}

// Auctioneer is the trader NPC a listing or pickup goes through.
type Auctioneer struct {
	EntityID int64
	Pos      Vec3
}

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) DistanceTo(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
