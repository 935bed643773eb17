package market

import (
	"testing"

	"gearmarket/internal/protocol"
)

func activeRow() *Auction {
	return &Auction{
		ID:              1,
		Item:            &ItemStack{Class: "item", Code: "gear-rusty-axe", Quantity: 1},
		Price:           10,
		TraderCut:       1,
		PostedHours:     100,
		ExpireHours:     268,
		SrcPos:          Vec3{0, 64, 0},
		SrcAuctioneerID: 1,
		SellerUID:       "seller",
		SellerName:      "seller",
		DstPos:          Vec3{0, 64, 0},
		DstAuctioneerID: 1,
		State:           StateActive,
	}
}

func TestTransitionPurchase(t *testing.T) {
	buyer := Player{UID: "buyer", Name: "buyer"}
	far := Auctioneer{EntityID: 2, Pos: Vec3{5000, 64, 5000}}

	a := activeRow()
	if code := transitionPurchase(a, Player{UID: "seller"}, far, false, 0, 100); code != protocol.ErrOwnAuction {
		t.Fatalf("self purchase: code %q, want ownauction", code)
	}
	if a.State != StateActive {
		t.Fatalf("failed purchase mutated the row")
	}

	if code := transitionPurchase(a, buyer, far, true, 2, 100); code != "" {
		t.Fatalf("purchase: %q", code)
	}
	if a.State != StateSold || a.BuyerUID != "buyer" || !a.WithDelivery {
		t.Fatalf("purchase left row %+v", a)
	}
	if a.RetrievableHours != 100+1+3*2 {
		t.Fatalf("RetrievableHours = %v, want 107", a.RetrievableHours)
	}
	if a.DstAuctioneerID != 2 {
		t.Fatalf("delivery purchase kept destination %d", a.DstAuctioneerID)
	}

	if code := transitionPurchase(a, Player{UID: "other"}, far, false, 0, 100); code != protocol.ErrAlreadyPurchased {
		t.Fatalf("double purchase: code %q, want alreadypurchased", code)
	}
}

func TestTransitionPurchase_NoDeliveryKeepsSource(t *testing.T) {
	a := activeRow()
	at := Auctioneer{EntityID: 2, Pos: Vec3{5000, 64, 5000}}
	if code := transitionPurchase(a, Player{UID: "buyer"}, at, false, 0, 100); code != "" {
		t.Fatalf("purchase: %q", code)
	}
	if a.DstAuctioneerID != a.SrcAuctioneerID {
		t.Fatalf("no-delivery purchase moved destination to %d", a.DstAuctioneerID)
	}
	if a.RetrievableHours != 101 {
		t.Fatalf("RetrievableHours = %v, want 101", a.RetrievableHours)
	}
}

func TestTransitionExpire(t *testing.T) {
	a := activeRow()
	if transitionExpire(a, a.ExpireHours) {
		t.Fatalf("expired exactly at the deadline; deadline hour is still live")
	}
	if !transitionExpire(a, a.ExpireHours+0.5) {
		t.Fatalf("did not expire past the deadline")
	}
	if a.State != StateExpired {
		t.Fatalf("state %s after expiry", a.State)
	}
	if a.RetrievableHours != a.ExpireHours+0.5+6 {
		t.Fatalf("grace end = %v", a.RetrievableHours)
	}
	if transitionExpire(a, a.ExpireHours+10) {
		t.Fatalf("expired twice")
	}
}

func TestTransitionCancel(t *testing.T) {
	a := activeRow()
	if code := transitionCancel(a, 150); code != "" {
		t.Fatalf("cancel: %q", code)
	}
	if a.State != StateExpired || a.RetrievableHours != 156 {
		t.Fatalf("cancel left row state=%s retrievable=%v", a.State, a.RetrievableHours)
	}
	if code := transitionCancel(a, 150); code != protocol.ErrCodingError {
		t.Fatalf("cancel of non-active row: %q", code)
	}
}

func TestTransitionBuyerRetrieve(t *testing.T) {
	src := Auctioneer{EntityID: 1, Pos: Vec3{0, 64, 0}}
	far := Auctioneer{EntityID: 2, Pos: Vec3{5000, 64, 5000}}
	buyerAtSrc := Player{UID: "buyer", Pos: Vec3{10, 64, 10}}
	buyerFar := Player{UID: "buyer", Pos: Vec3{5000, 64, 5000}}

	a := activeRow()
	transitionPurchase(a, buyerAtSrc, src, false, 0, 100)

	if code := transitionBuyerRetrieve(a, buyerAtSrc, src, 100.5); code != protocol.ErrNotYetRetrievable {
		t.Fatalf("mid-transit retrieve: %q", code)
	}
	if code := transitionBuyerRetrieve(a, buyerFar, far, 102); code != protocol.ErrWrongTrader {
		t.Fatalf("retrieve at wrong trader: %q", code)
	}
	// Standing within pickup range of the source counts even through another
	// auctioneer.
	if code := transitionBuyerRetrieve(a, buyerAtSrc, far, 102); code != "" {
		t.Fatalf("retrieve within pickup range: %q", code)
	}
	if a.State != StateSoldRetrieved {
		t.Fatalf("state %s after retrieve", a.State)
	}
	if code := transitionBuyerRetrieve(a, buyerAtSrc, src, 103); code != protocol.ErrAlreadyRetrieved {
		t.Fatalf("double retrieve: %q", code)
	}
}

func TestTransitionBuyerRetrieve_DeliveredAnywhere(t *testing.T) {
	far := Auctioneer{EntityID: 2, Pos: Vec3{5000, 64, 5000}}
	buyer := Player{UID: "buyer", Pos: Vec3{5000, 64, 5000}}
	a := activeRow()
	transitionPurchase(a, buyer, far, true, 2, 100)
	if code := transitionBuyerRetrieve(a, buyer, far, 108); code != "" {
		t.Fatalf("delivered retrieve at destination: %q", code)
	}
}

func TestTransitionSellerReclaim(t *testing.T) {
	a := activeRow()
	if code := transitionSellerReclaim(a, 300); code != protocol.ErrCodingError {
		t.Fatalf("reclaim of active row: %q", code)
	}
	transitionExpire(a, 270)
	if code := transitionSellerReclaim(a, 273); code != protocol.ErrNotYetRetrievable {
		t.Fatalf("reclaim inside grace: %q", code)
	}
	if code := transitionSellerReclaim(a, 277); code != "" {
		t.Fatalf("reclaim after grace: %q", code)
	}
}

func TestTransitionCollectMoney(t *testing.T) {
	a := activeRow()
	if code := transitionCollectMoney(a, 200); code != protocol.ErrCodingError {
		t.Fatalf("collect on active row: %q", code)
	}
	transitionPurchase(a, Player{UID: "buyer"}, Auctioneer{EntityID: 1}, false, 0, 100)
	if code := transitionCollectMoney(a, 100.5); code != protocol.ErrNotYetRetrievable {
		t.Fatalf("collect mid-transit: %q", code)
	}
	if code := transitionCollectMoney(a, 102); code != "" {
		t.Fatalf("collect: %q", code)
	}
	if !a.MoneyCollected {
		t.Fatalf("MoneyCollected not set")
	}
	if code := transitionCollectMoney(a, 103); code != protocol.ErrMoneyAlreadyCollected {
		t.Fatalf("double collect: %q", code)
	}
}

func TestResolved(t *testing.T) {
	a := activeRow()
	if resolved(a) {
		t.Fatalf("active row resolved")
	}
	transitionPurchase(a, Player{UID: "buyer"}, Auctioneer{EntityID: 1}, false, 0, 100)
	if resolved(a) {
		t.Fatalf("sold row resolved")
	}
	transitionCollectMoney(a, 102)
	if resolved(a) {
		t.Fatalf("sold row with money collected but item pending resolved")
	}
	transitionBuyerRetrieve(a, Player{UID: "buyer"}, Auctioneer{EntityID: 1}, 102)
	if !resolved(a) {
		t.Fatalf("fully settled row not resolved")
	}
}
