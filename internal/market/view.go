package market

import (
	"sort"

	"gearmarket/internal/protocol"
)

// View is the client-side mirror of the ledger, maintained purely from the
// delta stream. It feeds two projections: the browse list and the local
// player's own dealings. The mirror is stale until the next delta arrives;
// there is no speculative mutation.
type View struct {
	playerUID string

	rows map[int64]protocol.AuctionRow

	// ActiveAuctions holds browsable rows: active listings plus sold rows
	// still in their buyer-visible window. OwnAuctions holds everything the
	// local player is a party to. Both are re-sorted after each batch.
	ActiveAuctions []protocol.AuctionRow
	OwnAuctions    []protocol.AuctionRow

	// Debt is the player's carried fractional trader-cut debt.
	Debt float64
}

func NewView(playerUID string) *View {
	return &View{
		playerUID: playerUID,
		rows:      map[int64]protocol.AuctionRow{},
	}
}

// Apply folds one delta into the mirror and rebuilds both projections.
func (v *View) Apply(d protocol.ListDeltaMsg) {
	if d.IsFullUpdate {
		v.rows = map[int64]protocol.AuctionRow{}
	}
	for _, r := range d.NewOrUpdated {
		v.rows[r.AuctionID] = r
	}
	for _, id := range d.RemovedIDs {
		delete(v.rows, id)
	}
	v.Debt = d.SenderDebt
	v.rebuild()
}

// ApplyDebt folds a DEBT_UPDATE into the mirror.
func (v *View) ApplyDebt(d protocol.DebtUpdateMsg) {
	v.Debt = d.Debt
}

func (v *View) rebuild() {
	v.ActiveAuctions = v.ActiveAuctions[:0]
	v.OwnAuctions = v.OwnAuctions[:0]

	for _, r := range v.rows {
		state := StateFromString(r.State)
		if state == StateActive || state == StateSold {
			v.ActiveAuctions = append(v.ActiveAuctions, r)
		}
		if r.SellerUID == v.playerUID || (r.BuyerUID == v.playerUID && state == StateSold) {
			v.OwnAuctions = append(v.OwnAuctions, r)
		}
	}

	sort.SliceStable(v.ActiveAuctions, func(i, j int) bool {
		return rowLess(v.ActiveAuctions[i], v.ActiveAuctions[j])
	})
	sort.SliceStable(v.OwnAuctions, func(i, j int) bool {
		return rowLess(v.OwnAuctions[i], v.OwnAuctions[j])
	})
}

// rowLess orders rows for display: active listings by soonest expiry, rows
// sharing any other state by soonest retrieval, rows in different states by
// lifecycle ordinal.
func rowLess(a, b protocol.AuctionRow) bool {
	sa, sb := StateFromString(a.State), StateFromString(b.State)
	if sa != sb {
		return sa < sb
	}
	if sa == StateActive {
		return a.ExpireHours < b.ExpireHours
	}
	return a.RetrievableHours < b.RetrievableHours
}
