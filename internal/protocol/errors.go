package protocol

// Failure codes carried in ActionResponseMsg.ErrorCode. These are part of
// the wire contract: clients key their feedback strings off them.
const (
	// Place.
	ErrNotEnoughItems   = "notenoughitems"
	ErrTooManyAuctions  = "toomanyauctions"
	ErrNotEnoughGears   = "notenoughgears"
	ErrAtLeastOneGear   = "atleast1gear"
	ErrEmptyAuctionSlot = "emptyauctionslot"

	// Purchase.
	ErrOwnAuction       = "ownauction"
	ErrAlreadyPurchased = "alreadypurchased"
	ErrNoSuchAuction    = "nosuchauction"

	// Retrieve.
	ErrNotYetRetrievable     = "notyetretrievable"
	ErrAlreadyRetrieved      = "alreadyretrieved"
	ErrWrongTrader           = "wrongtrader"
	ErrMoneyAlreadyCollected = "moneyalreadycollected"
	ErrNotYourItem           = "notyouritem"

	// Invariant violation caught inside a handler. Always logged server-side.
	ErrCodingError = "codingerror"
)

var knownCodes = map[string]struct{}{
	ErrNotEnoughItems:        {},
	ErrTooManyAuctions:       {},
	ErrNotEnoughGears:        {},
	ErrAtLeastOneGear:        {},
	ErrEmptyAuctionSlot:      {},
	ErrOwnAuction:            {},
	ErrAlreadyPurchased:      {},
	ErrNoSuchAuction:         {},
	ErrNotYetRetrievable:     {},
	ErrAlreadyRetrieved:      {},
	ErrWrongTrader:           {},
	ErrMoneyAlreadyCollected: {},
	ErrNotYourItem:           {},
	ErrCodingError:           {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
