package market

import (
	"encoding/json"

	"gearmarket/internal/protocol"
)

// Subscription and delta broadcast. A session is subscribed while its market
// browser is open; only subscribed sessions receive deltas, which bounds
// broadcast cost to active browsers rather than total player count.

type subscriber struct {
	uid string
	out chan []byte

	// lastDebt is the debt value last pushed to this client, so DEBT_UPDATE
	// only fires on change.
	lastDebt float64

	// needsResync is set when a delta had to be dropped on a full queue; the
	// next broadcast replaces it with a full snapshot so the mirror cannot
	// silently drift.
	needsResync bool
}

// subscribe registers the session and sends the full snapshot with the
// sender's carried debt.
func (m *Market) subscribe(uid string, out chan []byte) {
	sub := &subscriber{uid: uid, out: out, lastDebt: m.ledger.Debt(uid)}
	m.subs[uid] = sub
	m.sendFull(sub)
}

func (m *Market) unsubscribe(uid string) {
	delete(m.subs, uid)
}

func (m *Market) sendFull(sub *subscriber) {
	full := protocol.ListDeltaMsg{
		Type:            protocol.TypeListDelta,
		ProtocolVersion: protocol.Version,
		IsFullUpdate:    true,
		SenderDebt:      m.ledger.Debt(sub.uid),
	}
	m.ledger.Each(func(a *Auction) bool {
		full.NewOrUpdated = append(full.NewOrUpdated, a.Row())
		return true
	})
	sub.needsResync = !m.send(sub, full)
}

// broadcastRows pushes an incremental delta to every subscribed session.
// Empty deltas are never sent.
func (m *Market) broadcastRows(updated []*Auction, removed []int64) {
	if len(updated) == 0 && len(removed) == 0 {
		return
	}
	rows := make([]protocol.AuctionRow, 0, len(updated))
	for _, a := range updated {
		rows = append(rows, a.Row())
	}
	for _, sub := range m.subs {
		if sub.needsResync {
			m.sendFull(sub)
			continue
		}
		ok := m.send(sub, protocol.ListDeltaMsg{
			Type:            protocol.TypeListDelta,
			ProtocolVersion: protocol.Version,
			NewOrUpdated:    rows,
			RemovedIDs:      removed,
			SenderDebt:      m.ledger.Debt(sub.uid),
		})
		sub.needsResync = !ok
	}
}

// sendDebtUpdate notifies a subscribed seller that their carried fractional
// debt changed. Low frequency; suppressed when the value is unchanged.
func (m *Market) sendDebtUpdate(uid string) {
	sub := m.subs[uid]
	if sub == nil {
		return
	}
	debt := m.ledger.Debt(uid)
	if debt == sub.lastDebt {
		return
	}
	sub.lastDebt = debt
	m.send(sub, protocol.DebtUpdateMsg{
		Type:            protocol.TypeDebtUpdate,
		ProtocolVersion: protocol.Version,
		Debt:            debt,
	})
}

// send marshals and enqueues without ever blocking the market loop. Reports
// whether the message made it onto the queue.
func (m *Market) send(sub *subscriber, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		m.log.Printf("sync: marshal for %s: %v", sub.uid, err)
		return false
	}
	select {
	case sub.out <- b:
		return true
	default:
		return false
	}
}
