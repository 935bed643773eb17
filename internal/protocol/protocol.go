package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello       = "HELLO"
	TypeWelcome     = "WELCOME"
	TypeEnterMarket = "ENTER_MARKET"
	TypeLeaveMarket = "LEAVE_MARKET"
	TypePlace       = "PLACE"
	TypePurchase    = "PURCHASE"
	TypeRetrieve    = "RETRIEVE"
	TypeResponse    = "ACTION_RESPONSE"
	TypeListDelta   = "LIST_DELTA"
	TypeDebtUpdate  = "DEBT_UPDATE"
)

// Action names echoed back in ACTION_RESPONSE so the client can correlate
// a response to the request it has pending.
const (
	ActionEnterMarket = "EnterMarket"
	ActionLeaveMarket = "LeaveMarket"
	ActionPlace       = "Place"
	ActionPurchase    = "Purchase"
	ActionRetrieve    = "Retrieve"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
