package market

import (
	"context"
	"testing"
	"time"

	"gearmarket/internal/protocol"
)

func TestLoop_RequestsRoundTrip(t *testing.T) {
	m, clock, bank, w := newTestMarket(t)
	at, _ := w.ByEntityID(1)
	w.addPlayer("seller", at.Pos, &ItemStack{Class: "item", Code: "gear-rusty-axe", Quantity: 5}, bank, 50)
	w.addPlayer("buyer", at.Pos, nil, bank, 50)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Hour, time.Hour) }()

	ask := func(send func(resp chan protocol.ActionResponseMsg)) protocol.ActionResponseMsg {
		t.Helper()
		resp := make(chan protocol.ActionResponseMsg, 1)
		send(resp)
		select {
		case r := <-resp:
			return r
		case <-time.After(5 * time.Second):
			t.Fatalf("loop did not answer")
			return protocol.ActionResponseMsg{}
		}
	}

	out := make(chan []byte, 8)
	r := ask(func(resp chan protocol.ActionResponseMsg) {
		m.Enter() <- EnterReq{UID: "buyer", AuctioneerEntityID: 1, Out: out, Resp: resp}
	})
	if r.ErrorCode != "" || r.Action != protocol.ActionEnterMarket {
		t.Fatalf("enter response %+v", r)
	}
	<-out // full snapshot

	r = ask(func(resp chan protocol.ActionResponseMsg) {
		m.Place() <- PlaceReq{UID: "seller", AuctioneerEntityID: 1, Quantity: 1, Price: 10, DurationWeeks: 1, Resp: resp}
	})
	if r.ErrorCode != "" || r.AuctionID == 0 {
		t.Fatalf("place response %+v", r)
	}
	id := r.AuctionID

	r = ask(func(resp chan protocol.ActionResponseMsg) {
		m.Purchase() <- PurchaseReq{UID: "buyer", AuctionID: id, AuctioneerEntityID: 1, Resp: resp}
	})
	if r.ErrorCode != "" {
		t.Fatalf("purchase response %+v", r)
	}

	clock.Advance(2)
	r = ask(func(resp chan protocol.ActionResponseMsg) {
		m.Retrieve() <- RetrieveReq{UID: "buyer", AuctionID: id, AuctioneerEntityID: 1, Resp: resp}
	})
	if r.ErrorCode != "" || r.MoneyReceived {
		t.Fatalf("buyer retrieve response %+v", r)
	}

	r = ask(func(resp chan protocol.ActionResponseMsg) {
		m.Retrieve() <- RetrieveReq{UID: "seller", AuctionID: id, AuctioneerEntityID: 1, Resp: resp}
	})
	if r.ErrorCode != "" || !r.MoneyReceived {
		t.Fatalf("seller collect response %+v", r)
	}

	snap := m.Export()
	if len(snap.Rows) != 0 {
		t.Fatalf("settled ledger exported %d rows", len(snap.Rows))
	}

	m.Leave() <- LeaveReq{UID: "buyer"}
	m.Stop()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestLoop_UnknownActorsAreCodingErrors(t *testing.T) {
	m, _, _, _ := newTestMarket(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, time.Hour, time.Hour)
	defer m.Stop()

	resp := make(chan protocol.ActionResponseMsg, 1)
	m.Enter() <- EnterReq{UID: "ghost", AuctioneerEntityID: 404, Out: make(chan []byte, 1), Resp: resp}
	if r := <-resp; r.ErrorCode != protocol.ErrCodingError {
		t.Fatalf("unknown auctioneer enter: %+v", r)
	}

	resp = make(chan protocol.ActionResponseMsg, 1)
	m.Place() <- PlaceReq{UID: "ghost", AuctioneerEntityID: 1, Quantity: 1, Price: 10, DurationWeeks: 1, Resp: resp}
	if r := <-resp; r.ErrorCode != protocol.ErrCodingError {
		t.Fatalf("unknown player place: %+v", r)
	}
}
