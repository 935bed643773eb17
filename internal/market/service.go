package market

import (
	"log"

	"gearmarket/internal/persistence/snapshot"
	"gearmarket/internal/protocol"
)

// Config is the market's operational tuning, resolved by the caller from
// tuning.yaml.
type Config struct {
	Pricing          PricingPolicy
	MaxListings      int
	ListingWeekHours float64
	SaveSlot         string
}

// Market owns the auction ledger. Every mutation, client actions and the
// expiry sweep alike, runs on the single loop goroutine (Run); handlers
// never lock because nothing else may touch the ledger.
type Market struct {
	cfg Config

	clock       Clock
	bank        AssetAccount
	auctioneers AuctioneerDirectory
	players     PlayerDirectory
	deliverer   ItemDeliverer

	ledger *Ledger
	subs   map[string]*subscriber

	lastSweepHours float64

	log *log.Logger

	// Channels served by the loop (loop.go).
	enter    chan EnterReq
	leave    chan LeaveReq
	place    chan PlaceReq
	purchase chan PurchaseReq
	retrieve chan RetrieveReq
	export   chan exportReq
	stop     chan struct{}

	// Optional save sink; blob encoding and writing happen off the loop
	// goroutine.
	saveSink chan<- snapshot.LedgerV1
}

func New(cfg Config, clock Clock, bank AssetAccount, auctioneers AuctioneerDirectory, players PlayerDirectory, deliverer ItemDeliverer, logger *log.Logger) *Market {
	if cfg.MaxListings <= 0 {
		cfg.MaxListings = 30
	}
	if cfg.ListingWeekHours <= 0 {
		cfg.ListingWeekHours = 7 * 24
	}
	return &Market{
		cfg:         cfg,
		clock:       clock,
		bank:        bank,
		auctioneers: auctioneers,
		players:     players,
		deliverer:   deliverer,
		ledger:      NewLedger(),
		subs:        map[string]*subscriber{},
		log:         logger,
		enter:       make(chan EnterReq, 64),
		leave:       make(chan LeaveReq, 64),
		place:       make(chan PlaceReq, 256),
		purchase:    make(chan PurchaseReq, 256),
		retrieve:    make(chan RetrieveReq, 256),
		export:      make(chan exportReq, 8),
		stop:        make(chan struct{}),
	}
}

func (m *Market) SetSaveSink(ch chan<- snapshot.LedgerV1) { m.saveSink = ch }

// Config accessors; cfg is immutable after New, so these are safe from any
// goroutine.
func (m *Market) SalesCutRate() float64 { return m.cfg.Pricing.SalesCutRate }
func (m *Market) MaxListings() int      { return m.cfg.MaxListings }

// PlaceAuction lists qty out of the seller's slot at the given auctioneer.
// Returns the new auction id and an empty code, or 0 and a failure code with
// no state changed.
func (m *Market) PlaceAuction(seller Player, slot Slot, qty, price, durationWeeks int, at Auctioneer) (int64, string) {
	if slot == nil || slot.Empty() {
		return 0, protocol.ErrEmptyAuctionSlot
	}
	if slot.Quantity() < qty || qty < 1 {
		return 0, protocol.ErrNotEnoughItems
	}
	if m.ledger.CountBySeller(seller.UID) > m.cfg.MaxListings {
		return 0, protocol.ErrTooManyAuctions
	}
	if price < 1 {
		return 0, protocol.ErrAtLeastOneGear
	}

	if durationWeeks < 1 {
		durationWeeks = 1
	}
	now := m.clock.NowHours()

	// All guards pass before any mutation: charge the deposit only once the
	// row is certain to be created.
	deposit := m.cfg.Pricing.DepositCost(slot.Stack()) * m.cfg.Pricing.DurationDeposits(durationWeeks)
	if m.bank.Balance(seller.UID) < deposit {
		return 0, protocol.ErrNotEnoughGears
	}
	m.bank.Deduct(seller.UID, deposit)
	m.bank.CreditTrader(at.EntityID, deposit)

	cut := m.ledger.ApplyCut(seller.UID, price, m.cfg.Pricing.SalesCutRate)

	item := slot.TakeOut(qty)
	a := &Auction{
		ID:              m.ledger.NextID(),
		Item:            item,
		Price:           price,
		TraderCut:       cut,
		PostedHours:     now,
		ExpireHours:     now + float64(durationWeeks)*m.cfg.ListingWeekHours,
		SrcPos:          at.Pos,
		SrcAuctioneerID: at.EntityID,
		SellerUID:       seller.UID,
		SellerName:      seller.Name,
		SellerEntityID:  seller.EntityID,
		DstPos:          at.Pos,
		DstAuctioneerID: at.EntityID,
		State:           StateActive,
	}
	m.ledger.Insert(a)

	m.broadcastRows([]*Auction{a}, nil)
	m.sendDebtUpdate(seller.UID)
	return a.ID, ""
}

// PurchaseAuction buys an active listing, optionally paying for delivery to
// the buyer's auctioneer.
func (m *Market) PurchaseAuction(buyer Player, auctionID int64, at Auctioneer, withDelivery bool) string {
	a := m.ledger.Get(auctionID)
	if a == nil {
		return protocol.ErrNoSuchAuction
	}
	if code := m.repairIfBroken(a); code != "" {
		return code
	}
	if buyer.UID == a.SellerUID {
		return protocol.ErrOwnAuction
	}
	if a.BuyerUID != "" || a.State != StateActive {
		return protocol.ErrAlreadyPurchased
	}

	deliveryCost := 0
	if withDelivery {
		deliveryCost = m.cfg.Pricing.DeliveryCost(at.Pos.DistanceTo(a.SrcPos))
	}
	total := a.Price + deliveryCost
	if m.bank.Balance(buyer.UID) < total {
		return protocol.ErrNotEnoughGears
	}

	now := m.clock.NowHours()
	if code := transitionPurchase(a, buyer, at, withDelivery, deliveryCost, now); code != "" {
		return code
	}

	// Buyer pays everything; the trader keeps its reserved cut plus the
	// delivery fee, and price - TraderCut stays owed to the seller.
	m.bank.Deduct(buyer.UID, total)
	m.bank.CreditTrader(at.EntityID, a.TraderCut+deliveryCost)

	m.broadcastRows([]*Auction{a}, nil)
	return ""
}

// RetrieveAuction is the dual-path collection operation: buyers pick up a
// bought item, sellers reclaim an expired listing or collect proceeds.
// moneyReceived reports whether currency (rather than an item) was paid out.
func (m *Market) RetrieveAuction(requester Player, auctionID int64, at Auctioneer) (moneyReceived bool, code string) {
	a := m.ledger.Get(auctionID)
	if a == nil {
		return false, protocol.ErrNoSuchAuction
	}
	if c := m.repairIfBroken(a); c != "" {
		return false, c
	}
	now := m.clock.NowHours()

	switch {
	case a.BuyerUID != "" && requester.UID == a.BuyerUID:
		if c := transitionBuyerRetrieve(a, requester, at, now); c != "" {
			return false, c
		}
		m.deliverer.GiveItem(requester.UID, a.Item)
		a.Item = nil
		if a.MoneyCollected {
			m.ledger.Remove(a.ID)
			m.broadcastRows(nil, []int64{a.ID})
		} else {
			m.broadcastRows([]*Auction{a}, nil)
		}
		return false, ""

	case requester.UID == a.SellerUID:
		switch a.State {
		case StateActive:
			// Pull the listing; the item comes back after the grace period.
			if c := transitionCancel(a, now); c != "" {
				return false, c
			}
			m.broadcastRows([]*Auction{a}, nil)
			return false, ""

		case StateExpired:
			if c := transitionSellerReclaim(a, now); c != "" {
				return false, c
			}
			m.deliverer.GiveItem(requester.UID, a.Item)
			a.Item = nil
			m.ledger.Remove(a.ID)
			m.broadcastRows(nil, []int64{a.ID})
			return false, ""

		case StateSold, StateSoldRetrieved:
			if c := transitionCollectMoney(a, now); c != "" {
				return false, c
			}
			m.bank.Credit(requester.UID, a.Price-a.TraderCut)
			if resolved(a) {
				m.ledger.Remove(a.ID)
				m.broadcastRows(nil, []int64{a.ID})
			} else {
				m.broadcastRows([]*Auction{a}, nil)
			}
			return true, ""
		}
		m.log.Printf("retrieve: auction %d in impossible state %s", a.ID, a.State)
		return false, protocol.ErrCodingError
	}
	return false, protocol.ErrNotYourItem
}

// TickAuctions is the periodic expiry sweep: any active row past its expiry
// goes Expired with the grace period, batched into one broadcast.
func (m *Market) TickAuctions() {
	now := m.clock.NowHours()
	if m.lastSweepHours > now {
		// Saved calendar ahead of the live clock: a snapshot imported from
		// another timeline. Clamp once and keep going.
		m.log.Printf("sweep: saved clock %.1fh ahead of now %.1fh, clamping", m.lastSweepHours, now)
		m.lastSweepHours = now
	}

	var expired []*Auction
	m.ledger.Each(func(a *Auction) bool {
		if transitionExpire(a, now) {
			expired = append(expired, a)
		}
		return true
	})
	m.lastSweepHours = now

	if len(expired) > 0 {
		m.broadcastRows(expired, nil)
	}
}

// repairIfBroken restores the nearest sane state for rows violating internal
// invariants, logging instead of crashing. A Sold row without a buyer cannot
// settle, so it reverts to Active.
func (m *Market) repairIfBroken(a *Auction) string {
	if (a.State == StateSold || a.State == StateSoldRetrieved) && a.BuyerUID == "" {
		m.log.Printf("repair: auction %d is %s with no buyer, reverting to active", a.ID, a.State)
		a.State = StateActive
		a.RetrievableHours = 0
		a.MoneyCollected = false
		m.broadcastRows([]*Auction{a}, nil)
		return protocol.ErrCodingError
	}
	return ""
}

// exportLedger snapshots the full ledger for persistence. Loop goroutine
// only; outside callers go through Export.
func (m *Market) exportLedger() snapshot.LedgerV1 {
	snap := snapshot.LedgerV1{
		Header:         snapshot.Header{Version: 1, Slot: m.cfg.SaveSlot},
		NextID:         m.ledger.nextID,
		DebtBySeller:   map[string]float64{},
		LastSweepHours: m.lastSweepHours,
	}
	for uid, d := range m.ledger.debtBySeller {
		snap.DebtBySeller[uid] = d
	}
	m.ledger.Each(func(a *Auction) bool {
		v := snapshot.AuctionV1{
			ID:               a.ID,
			Price:            a.Price,
			TraderCut:        a.TraderCut,
			PostedHours:      a.PostedHours,
			ExpireHours:      a.ExpireHours,
			SrcPos:           [3]float64{a.SrcPos.X, a.SrcPos.Y, a.SrcPos.Z},
			SrcAuctioneerID:  a.SrcAuctioneerID,
			SellerUID:        a.SellerUID,
			SellerName:       a.SellerName,
			SellerEntityID:   a.SellerEntityID,
			BuyerUID:         a.BuyerUID,
			BuyerName:        a.BuyerName,
			RetrievableHours: a.RetrievableHours,
			DstPos:           [3]float64{a.DstPos.X, a.DstPos.Y, a.DstPos.Z},
			DstAuctioneerID:  a.DstAuctioneerID,
			State:            a.State.String(),
			MoneyCollected:   a.MoneyCollected,
			WithDelivery:     a.WithDelivery,
		}
		if a.Item != nil {
			v.ItemClass = a.Item.Class
			v.ItemCode = a.Item.Code
			v.Quantity = a.Item.Quantity
			v.Attributes = append([]byte(nil), a.Item.Attributes...)
		}
		snap.Rows = append(snap.Rows, v)
		return true
	})
	return snap
}

// ImportLedger restores a persisted ledger. Item payloads are re-resolved
// against the live registry; rows whose item no longer exists are dropped
// with a log line. Call before Run.
func (m *Market) ImportLedger(snap snapshot.LedgerV1, resolver ItemResolver) {
	m.ledger = NewLedger()
	m.ledger.nextID = snap.NextID
	for uid, d := range snap.DebtBySeller {
		m.ledger.debtBySeller[uid] = d
	}
	m.lastSweepHours = snap.LastSweepHours

	for _, v := range snap.Rows {
		a := &Auction{
			ID:               v.ID,
			Price:            v.Price,
			TraderCut:        v.TraderCut,
			PostedHours:      v.PostedHours,
			ExpireHours:      v.ExpireHours,
			SrcPos:           Vec3{v.SrcPos[0], v.SrcPos[1], v.SrcPos[2]},
			SrcAuctioneerID:  v.SrcAuctioneerID,
			SellerUID:        v.SellerUID,
			SellerName:       v.SellerName,
			SellerEntityID:   v.SellerEntityID,
			BuyerUID:         v.BuyerUID,
			BuyerName:        v.BuyerName,
			RetrievableHours: v.RetrievableHours,
			DstPos:           Vec3{v.DstPos[0], v.DstPos[1], v.DstPos[2]},
			DstAuctioneerID:  v.DstAuctioneerID,
			State:            StateFromString(v.State),
			MoneyCollected:   v.MoneyCollected,
			WithDelivery:     v.WithDelivery,
		}
		if v.ItemCode != "" {
			a.Item = &ItemStack{
				Class:      v.ItemClass,
				Code:       v.ItemCode,
				Quantity:   v.Quantity,
				Attributes: append([]byte(nil), v.Attributes...),
			}
			if resolver != nil && !a.Item.Resolve(resolver) {
				m.log.Printf("load: dropping auction %d, item %s:%s no longer resolves", a.ID, v.ItemClass, v.ItemCode)
				continue
			}
		}
		m.ledger.Insert(a)
	}
}

// Debt reports a seller's carried fractional debt (loop goroutine only;
// tests and handlers).
func (m *Market) Debt(uid string) float64 { return m.ledger.Debt(uid) }
