package market

import "math"

// Ledger is the authoritative collection of auction rows plus the id
// generator and the per-seller fractional-debt table. Insertion order is
// preserved so full-sync enumeration is deterministic. Mutated only from the
// market loop goroutine.
type Ledger struct {
	order  []int64
	byID   map[int64]*Auction
	nextID int64

	// debtBySeller carries the unpaid fractional remainder of trader-cut
	// computations to the seller's next sale.
	debtBySeller map[string]float64
}

func NewLedger() *Ledger {
	return &Ledger{
		byID:         map[int64]*Auction{},
		debtBySeller: map[string]float64{},
	}
}

// NextID returns a fresh strictly-increasing auction id.
func (l *Ledger) NextID() int64 {
	l.nextID++
	return l.nextID
}

func (l *Ledger) Get(id int64) *Auction {
	return l.byID[id]
}

func (l *Ledger) Len() int {
	return len(l.order)
}

func (l *Ledger) Insert(a *Auction) {
	if _, ok := l.byID[a.ID]; ok {
		return
	}
	l.byID[a.ID] = a
	l.order = append(l.order, a.ID)
}

func (l *Ledger) Remove(id int64) {
	if _, ok := l.byID[id]; !ok {
		return
	}
	delete(l.byID, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Each visits rows in insertion order; return false to stop.
func (l *Ledger) Each(fn func(*Auction) bool) {
	for _, id := range l.order {
		if a := l.byID[id]; a != nil {
			if !fn(a) {
				return
			}
		}
	}
}

func (l *Ledger) CountBySeller(uid string) int {
	n := 0
	for _, id := range l.order {
		if a := l.byID[id]; a != nil && a.SellerUID == uid {
			n++
		}
	}
	return n
}

func (l *Ledger) Debt(uid string) float64 {
	return l.debtBySeller[uid]
}

// ApplyCut charges the seller the trader's cut of price at the given rate,
// in whole currency units. The fractional remainder is carried to the
// seller's next sale instead of being rounded away, so over many small sales
// the sum of charged cuts tracks price*rate with no systematic drift.
func (l *Ledger) ApplyCut(sellerUID string, price int, rate float64) int {
	cut := float64(price)*rate + l.debtBySeller[sellerUID]
	charged := math.Floor(cut)
	rem := cut - charged
	if rem == 0 {
		delete(l.debtBySeller, sellerUID)
	} else {
		l.debtBySeller[sellerUID] = rem
	}
	return int(charged)
}
