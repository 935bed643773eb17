package market

import "gearmarket/internal/protocol"

// State is the item-delivery axis of an auction's lifecycle. Money
// collection is tracked separately on the row (MoneyCollected); a row leaves
// the ledger only when both axes are resolved.
type State uint8

const (
	StateActive State = iota
	StateSold
	StateSoldRetrieved
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSold:
		return "sold"
	case StateSoldRetrieved:
		return "soldretrieved"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// StateFromString is the inverse of State.String; unknown strings map to
// StateActive.
func StateFromString(s string) State {
	switch s {
	case "sold":
		return StateSold
	case "soldretrieved":
		return StateSoldRetrieved
	case "expired":
		return StateExpired
	}
	return StateActive
}

// Auction is one ledger row. All fields are mutated only by the market loop
// goroutine; everything outside sees copies (protocol.AuctionRow).
type Auction struct {
	ID   int64
	Item *ItemStack

	Price     int
	TraderCut int // frozen at listing time, reserved for the seller's payout math

	PostedHours float64
	ExpireHours float64

	SrcPos          Vec3
	SrcAuctioneerID int64

	SellerUID      string
	SellerName     string
	SellerEntityID int64

	BuyerUID  string
	BuyerName string

	// RetrievableHours is when the current holder of the pending transfer
	// (buyer for the item, seller for proceeds or the returned item) may
	// collect.
	RetrievableHours float64

	DstPos          Vec3
	DstAuctioneerID int64

	State          State
	MoneyCollected bool
	WithDelivery   bool
}

// Row builds the client-visible projection of the auction.
func (a *Auction) Row() protocol.AuctionRow {
	r := protocol.AuctionRow{
		AuctionID:        a.ID,
		Price:            a.Price,
		PostedHours:      a.PostedHours,
		ExpireHours:      a.ExpireHours,
		RetrievableHours: a.RetrievableHours,
		SellerUID:        a.SellerUID,
		SellerName:       a.SellerName,
		BuyerUID:         a.BuyerUID,
		BuyerName:        a.BuyerName,
		SrcAuctioneerID:  a.SrcAuctioneerID,
		DstAuctioneerID:  a.DstAuctioneerID,
		State:            a.State.String(),
		MoneyCollected:   a.MoneyCollected,
		WithDelivery:     a.WithDelivery,
	}
	if a.Item != nil {
		r.ItemClass = a.Item.Class
		r.ItemCode = a.Item.Code
		r.Quantity = a.Item.Quantity
	}
	return r
}
