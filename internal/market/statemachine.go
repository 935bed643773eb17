package market

import "gearmarket/internal/protocol"

// Pure transition rules for a single auction row. Each function checks its
// guard and either mutates the row or returns a protocol error code leaving
// the row untouched. The ledger and all money movement live elsewhere.

const (
	// baseTransitHours is the minimum wait before a buyer may pick up.
	baseTransitHours = 1.0
	// transitHoursPerDeliveryCost stretches transit with delivery distance.
	transitHoursPerDeliveryCost = 3.0
	// expiredGraceHours is the wait before a seller may reclaim an expired
	// (or cancelled) listing.
	expiredGraceHours = 6.0
	// pickupRange is how far from the source auctioneer a buyer may stand
	// and still collect an undelivered item.
	pickupRange = 100.0
)

// transitionPurchase moves Active -> Sold. Guards: no self-purchase, no
// double purchase.
func transitionPurchase(a *Auction, buyer Player, at Auctioneer, withDelivery bool, deliveryCost int, now float64) string {
	if buyer.UID == a.SellerUID {
		return protocol.ErrOwnAuction
	}
	if a.BuyerUID != "" || a.State != StateActive {
		return protocol.ErrAlreadyPurchased
	}
	a.BuyerUID = buyer.UID
	a.BuyerName = buyer.Name
	a.WithDelivery = withDelivery
	a.RetrievableHours = now + baseTransitHours + transitHoursPerDeliveryCost*float64(deliveryCost)
	if withDelivery {
		a.DstPos = at.Pos
		a.DstAuctioneerID = at.EntityID
	} else {
		a.DstPos = a.SrcPos
		a.DstAuctioneerID = a.SrcAuctioneerID
	}
	a.State = StateSold
	return ""
}

// transitionExpire moves Active -> Expired. Run only by the periodic sweep,
// never by a direct player action.
func transitionExpire(a *Auction, now float64) bool {
	if a.State != StateActive || now <= a.ExpireHours {
		return false
	}
	a.State = StateExpired
	a.RetrievableHours = now + expiredGraceHours
	return true
}

// transitionCancel is the seller pulling an Active listing: it goes Expired
// with a fresh grace period, the item comes back later.
func transitionCancel(a *Auction, now float64) string {
	if a.State != StateActive {
		return protocol.ErrCodingError
	}
	a.State = StateExpired
	a.RetrievableHours = now + expiredGraceHours
	return ""
}

// transitionBuyerRetrieve moves Sold -> SoldRetrieved once transit is over
// and the buyer is at a legitimate pickup point.
func transitionBuyerRetrieve(a *Auction, buyer Player, at Auctioneer, now float64) string {
	if a.State == StateSoldRetrieved {
		return protocol.ErrAlreadyRetrieved
	}
	if a.State != StateSold {
		return protocol.ErrCodingError
	}
	if now < a.RetrievableHours {
		return protocol.ErrNotYetRetrievable
	}
	// Without paid delivery the item only exists at the source auctioneer.
	if !a.WithDelivery && at.EntityID != a.SrcAuctioneerID && buyer.Pos.DistanceTo(a.SrcPos) > pickupRange {
		return protocol.ErrWrongTrader
	}
	a.State = StateSoldRetrieved
	return ""
}

// transitionSellerReclaim checks that an Expired row's grace has passed; the
// caller then returns the item and deletes the row.
func transitionSellerReclaim(a *Auction, now float64) string {
	if a.State != StateExpired {
		return protocol.ErrCodingError
	}
	if now < a.RetrievableHours {
		return protocol.ErrNotYetRetrievable
	}
	return ""
}

// transitionCollectMoney marks the seller's proceeds as paid out. Runs from
// Sold or SoldRetrieved, independent of the item axis.
func transitionCollectMoney(a *Auction, now float64) string {
	if a.State != StateSold && a.State != StateSoldRetrieved {
		return protocol.ErrCodingError
	}
	if a.MoneyCollected {
		return protocol.ErrMoneyAlreadyCollected
	}
	if now < a.RetrievableHours {
		return protocol.ErrNotYetRetrievable
	}
	a.MoneyCollected = true
	return ""
}

// resolved reports whether both lifecycle axes are done and the row may
// leave the ledger: the item-side outcome is terminal and, if a sale
// happened, the proceeds were collected.
func resolved(a *Auction) bool {
	switch a.State {
	case StateSoldRetrieved:
		return a.MoneyCollected
	case StateExpired:
		// Expired rows are deleted at reclaim time by the retrieve handler.
		return false
	}
	return false
}
