package market

import (
	"context"
	"time"

	"gearmarket/internal/persistence/snapshot"
	"gearmarket/internal/protocol"
)

// Request envelopes served by the market loop. Each mutating action is its
// own variant; the transport builds one and waits on Resp for the
// synchronous answer.

type EnterReq struct {
	UID                string
	AuctioneerEntityID int64
	Out                chan []byte
	Resp               chan protocol.ActionResponseMsg
}

type LeaveReq struct {
	UID string
}

type PlaceReq struct {
	UID                string
	AuctioneerEntityID int64
	Quantity           int
	Price              int
	DurationWeeks      int
	Resp               chan protocol.ActionResponseMsg
}

type PurchaseReq struct {
	UID                string
	AuctionID          int64
	AuctioneerEntityID int64
	WithDelivery       bool
	Resp               chan protocol.ActionResponseMsg
}

type RetrieveReq struct {
	UID                string
	AuctionID          int64
	AuctioneerEntityID int64
	Resp               chan protocol.ActionResponseMsg
}

type exportReq struct {
	Resp chan snapshot.LedgerV1
}

func (m *Market) Enter() chan<- EnterReq       { return m.enter }
func (m *Market) Leave() chan<- LeaveReq       { return m.leave }
func (m *Market) Place() chan<- PlaceReq       { return m.place }
func (m *Market) Purchase() chan<- PurchaseReq { return m.purchase }
func (m *Market) Retrieve() chan<- RetrieveReq { return m.retrieve }

// Export asks the loop for a consistent ledger snapshot. Safe from any
// goroutine; blocks until the loop answers.
func (m *Market) Export() snapshot.LedgerV1 {
	resp := make(chan snapshot.LedgerV1, 1)
	m.export <- exportReq{Resp: resp}
	return <-resp
}

func (m *Market) Stop() { close(m.stop) }

// Run is the single goroutine that owns the ledger. All action handlers and
// the expiry sweep execute here, serially; nothing else mutates market
// state. sweepEvery is the real-time sweep interval, saveEvery the autosave
// interval.
func (m *Market) Run(ctx context.Context, sweepEvery, saveEvery time.Duration) error {
	sweep := time.NewTicker(sweepEvery)
	defer sweep.Stop()
	save := time.NewTicker(saveEvery)
	defer save.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil

		case req := <-m.enter:
			m.handleEnter(req)
		case req := <-m.leave:
			m.unsubscribe(req.UID)
		case req := <-m.place:
			m.handlePlace(req)
		case req := <-m.purchase:
			m.handlePurchase(req)
		case req := <-m.retrieve:
			m.handleRetrieve(req)
		case req := <-m.export:
			req.Resp <- m.exportLedger()

		case <-sweep.C:
			m.TickAuctions()
		case <-save.C:
			if m.saveSink != nil {
				select {
				case m.saveSink <- m.exportLedger():
				default:
					// Writer backed up; skip this autosave.
				}
			}
		}
	}
}

func (m *Market) handleEnter(req EnterReq) {
	resp := protocol.ActionResponseMsg{
		Type:               protocol.TypeResponse,
		ProtocolVersion:    protocol.Version,
		Action:             protocol.ActionEnterMarket,
		AuctioneerEntityID: req.AuctioneerEntityID,
	}
	if _, ok := m.auctioneers.ByEntityID(req.AuctioneerEntityID); !ok {
		m.log.Printf("enter: unknown auctioneer entity %d", req.AuctioneerEntityID)
		resp.ErrorCode = protocol.ErrCodingError
		reply(req.Resp, resp)
		return
	}
	m.subscribe(req.UID, req.Out)
	reply(req.Resp, resp)
}

func (m *Market) handlePlace(req PlaceReq) {
	resp := protocol.ActionResponseMsg{
		Type:               protocol.TypeResponse,
		ProtocolVersion:    protocol.Version,
		Action:             protocol.ActionPlace,
		AuctioneerEntityID: req.AuctioneerEntityID,
	}
	seller, at, code := m.resolveActors(req.UID, req.AuctioneerEntityID)
	if code != "" {
		resp.ErrorCode = code
		reply(req.Resp, resp)
		return
	}
	slot := m.players.HeldSlot(req.UID)
	id, code := m.PlaceAuction(seller, slot, req.Quantity, req.Price, req.DurationWeeks, at)
	resp.AuctionID = id
	resp.ErrorCode = code
	reply(req.Resp, resp)
}

func (m *Market) handlePurchase(req PurchaseReq) {
	resp := protocol.ActionResponseMsg{
		Type:               protocol.TypeResponse,
		ProtocolVersion:    protocol.Version,
		Action:             protocol.ActionPurchase,
		AuctionID:          req.AuctionID,
		AuctioneerEntityID: req.AuctioneerEntityID,
	}
	buyer, at, code := m.resolveActors(req.UID, req.AuctioneerEntityID)
	if code != "" {
		resp.ErrorCode = code
		reply(req.Resp, resp)
		return
	}
	resp.ErrorCode = m.PurchaseAuction(buyer, req.AuctionID, at, req.WithDelivery)
	reply(req.Resp, resp)
}

func (m *Market) handleRetrieve(req RetrieveReq) {
	resp := protocol.ActionResponseMsg{
		Type:               protocol.TypeResponse,
		ProtocolVersion:    protocol.Version,
		Action:             protocol.ActionRetrieve,
		AuctionID:          req.AuctionID,
		AuctioneerEntityID: req.AuctioneerEntityID,
	}
	requester, at, code := m.resolveActors(req.UID, req.AuctioneerEntityID)
	if code != "" {
		resp.ErrorCode = code
		reply(req.Resp, resp)
		return
	}
	money, code := m.RetrieveAuction(requester, req.AuctionID, at)
	resp.MoneyReceived = money
	resp.ErrorCode = code
	reply(req.Resp, resp)
}

// resolveActors maps session identity and auctioneer entity to live objects.
// Lookup failures are invariant breaks (the transport only forwards known
// sessions), logged and surfaced as codingerror.
func (m *Market) resolveActors(uid string, auctioneerEntityID int64) (Player, Auctioneer, string) {
	p, ok := m.players.Lookup(uid)
	if !ok {
		m.log.Printf("resolve: unknown player %s", uid)
		return Player{}, Auctioneer{}, protocol.ErrCodingError
	}
	at, ok := m.auctioneers.ByEntityID(auctioneerEntityID)
	if !ok {
		m.log.Printf("resolve: unknown auctioneer entity %d", auctioneerEntityID)
		return Player{}, Auctioneer{}, protocol.ErrCodingError
	}
	return p, at, ""
}

func reply(ch chan protocol.ActionResponseMsg, resp protocol.ActionResponseMsg) {
	if ch != nil {
		ch <- resp
	}
}
