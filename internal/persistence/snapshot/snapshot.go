package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	Slot    string `json:"slot"`
}

// LedgerV1 is the persisted form of the whole auction ledger: ordered rows,
// the id counter, and the per-seller fractional-debt table. One blob per
// save slot.
type LedgerV1 struct {
	Header Header `json:"header"`

	Rows         []AuctionV1        `json:"rows"`
	NextID       int64              `json:"next_id"`
	DebtBySeller map[string]float64 `json:"debt_by_seller,omitempty"`

	// LastSweepHours records the expiry sweep's clock position so a resumed
	// save does not re-run time it has already seen.
	LastSweepHours float64 `json:"last_sweep_hours"`
}

type AuctionV1 struct {
	ID int64 `json:"id"`

	ItemClass string `json:"item_class"`
	ItemCode  string `json:"item_code"`
	Quantity  int    `json:"quantity"`
	// Attributes is the host game's raw attribute encoding. Opaque; must
	// survive the round trip byte-for-byte.
	Attributes []byte `json:"attributes,omitempty"`

	Price     int `json:"price"`
	TraderCut int `json:"trader_cut"`

	PostedHours float64 `json:"posted_hours"`
	ExpireHours float64 `json:"expire_hours"`

	SrcPos          [3]float64 `json:"src_pos"`
	SrcAuctioneerID int64      `json:"src_auctioneer_id"`

	SellerUID      string `json:"seller_uid"`
	SellerName     string `json:"seller_name"`
	SellerEntityID int64  `json:"seller_entity_id"`

	BuyerUID  string `json:"buyer_uid,omitempty"`
	BuyerName string `json:"buyer_name,omitempty"`

	RetrievableHours float64 `json:"retrievable_hours,omitempty"`

	DstPos          [3]float64 `json:"dst_pos"`
	DstAuctioneerID int64      `json:"dst_auctioneer_id"`

	State          string `json:"state"`
	MoneyCollected bool   `json:"money_collected,omitempty"`
	WithDelivery   bool   `json:"with_delivery,omitempty"`
}

// Encode serializes the ledger as a zstd-compressed blob: a JSON header line
// for external inspection, then the gob payload.
func Encode(snap LedgerV1) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return nil, err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return nil, err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(blob []byte) (LedgerV1, error) {
	var snap LedgerV1
	dec, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is advisory; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
