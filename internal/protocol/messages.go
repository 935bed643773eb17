package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerUID       string `json:"player_uid"`
	PlayerName      string `json:"player_name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	PlayerUID       string  `json:"player_uid"`
	SalesCutRate    float64 `json:"sales_cut_rate"`
	MaxListings     int     `json:"max_listings"`
}

// ENTER_MARKET (client -> server): open the market browser at an auctioneer.
// The server subscribes the session to ledger deltas and answers with a full
// LIST_DELTA carrying every current row plus the sender's fractional debt.
type EnterMarketMsg struct {
	Type               string `json:"type"`
	ProtocolVersion    string `json:"protocol_version"`
	AuctioneerEntityID int64  `json:"auctioneer_entity_id"`
}

// LEAVE_MARKET (client -> server): close the browser, stop deltas.
type LeaveMarketMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// PLACE (client -> server): list the held slot's item at an auctioneer.
type PlaceMsg struct {
	Type               string `json:"type"`
	ProtocolVersion    string `json:"protocol_version"`
	AuctioneerEntityID int64  `json:"auctioneer_entity_id"`
	Quantity           int    `json:"quantity"`
	Price              int    `json:"price"`
	DurationWeeks      int    `json:"duration_weeks"`
}

// PURCHASE (client -> server)
type PurchaseMsg struct {
	Type               string `json:"type"`
	ProtocolVersion    string `json:"protocol_version"`
	AuctionID          int64  `json:"auction_id"`
	AuctioneerEntityID int64  `json:"auctioneer_entity_id"`
	WithDelivery       bool   `json:"with_delivery"`
}

// RETRIEVE (client -> server): collect whatever the ledger owes the sender
// for this row: the item for a buyer, the item back or the proceeds for a
// seller. The server picks the path from the sender's relation to the row.
type RetrieveMsg struct {
	Type               string `json:"type"`
	ProtocolVersion    string `json:"protocol_version"`
	AuctionID          int64  `json:"auction_id"`
	AuctioneerEntityID int64  `json:"auctioneer_entity_id"`
}

// ACTION_RESPONSE (server -> client): synchronous answer to every mutating
// action. ErrorCode is empty on success, otherwise a code from errors.go.
type ActionResponseMsg struct {
	Type               string `json:"type"`
	ProtocolVersion    string `json:"protocol_version"`
	ErrorCode          string `json:"error_code,omitempty"`
	Action             string `json:"action"`
	AuctionID          int64  `json:"auction_id,omitempty"`
	AuctioneerEntityID int64  `json:"auctioneer_entity_id,omitempty"`
	MoneyReceived      bool   `json:"money_received,omitempty"`
}

// AuctionRow is the client-visible projection of one ledger row.
type AuctionRow struct {
	AuctionID        int64   `json:"auction_id"`
	ItemClass        string  `json:"item_class,omitempty"`
	ItemCode         string  `json:"item_code,omitempty"`
	Quantity         int     `json:"quantity,omitempty"`
	Price            int     `json:"price"`
	PostedHours      float64 `json:"posted_hours"`
	ExpireHours      float64 `json:"expire_hours"`
	RetrievableHours float64 `json:"retrievable_hours,omitempty"`
	SellerUID        string  `json:"seller_uid"`
	SellerName       string  `json:"seller_name"`
	BuyerUID         string  `json:"buyer_uid,omitempty"`
	BuyerName        string  `json:"buyer_name,omitempty"`
	SrcAuctioneerID  int64   `json:"src_auctioneer_id"`
	DstAuctioneerID  int64   `json:"dst_auctioneer_id,omitempty"`
	State            string  `json:"state"`
	MoneyCollected   bool    `json:"money_collected,omitempty"`
	WithDelivery     bool    `json:"with_delivery,omitempty"`
}

// LIST_DELTA (server -> client): ledger changes for subscribed sessions.
// A full update replaces the client's mirror wholesale; otherwise rows in
// NewOrUpdated are upserts and RemovedIDs are deletions. Empty deltas are
// never sent.
type ListDeltaMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	IsFullUpdate    bool         `json:"is_full_update"`
	NewOrUpdated    []AuctionRow `json:"new_or_updated_rows,omitempty"`
	RemovedIDs      []int64      `json:"removed_row_ids,omitempty"`
	SenderDebt      float64      `json:"sender_debt"`
}

// DEBT_UPDATE (server -> client): the sender's carried fractional trader-cut
// debt changed. Low frequency, only on change.
type DebtUpdateMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Debt            float64 `json:"debt"`
}
