package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"gearmarket/internal/market"
	"gearmarket/internal/protocol"
)

type Server struct {
	market   *market.Market
	log      *log.Logger
	queueMax int

	upgrader websocket.Upgrader
}

func NewServer(m *market.Market, queueMax int, logger *log.Logger) *Server {
	if queueMax <= 0 {
		queueMax = 64
	}
	return &Server{
		market:   m,
		log:      logger,
		queueMax: queueMax,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		uid, out := s.handshake(conn)
		if uid == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine: the only writer after handshake.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.route(uid, out, msg)
		}

		// Cleanup: a dropped connection behaves like closing the browser.
		s.market.Leave() <- market.LeaveReq{UID: uid}
	}
}

// route decodes one inbound message by type and forwards it to the market
// loop. Responses come back on resp and are pushed onto the session queue so
// the writer goroutine stays the single writer.
func (s *Server) route(uid string, out chan []byte, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return
	}
	if base.ProtocolVersion != protocol.Version {
		return
	}

	resp := make(chan protocol.ActionResponseMsg, 1)
	switch base.Type {
	case protocol.TypeEnterMarket:
		var m protocol.EnterMarketMsg
		if json.Unmarshal(msg, &m) != nil {
			return
		}
		s.market.Enter() <- market.EnterReq{UID: uid, AuctioneerEntityID: m.AuctioneerEntityID, Out: out, Resp: resp}

	case protocol.TypeLeaveMarket:
		s.market.Leave() <- market.LeaveReq{UID: uid}
		return

	case protocol.TypePlace:
		var m protocol.PlaceMsg
		if json.Unmarshal(msg, &m) != nil {
			return
		}
		s.market.Place() <- market.PlaceReq{
			UID:                uid,
			AuctioneerEntityID: m.AuctioneerEntityID,
			Quantity:           m.Quantity,
			Price:              m.Price,
			DurationWeeks:      m.DurationWeeks,
			Resp:               resp,
		}

	case protocol.TypePurchase:
		var m protocol.PurchaseMsg
		if json.Unmarshal(msg, &m) != nil {
			return
		}
		s.market.Purchase() <- market.PurchaseReq{
			UID:                uid,
			AuctionID:          m.AuctionID,
			AuctioneerEntityID: m.AuctioneerEntityID,
			WithDelivery:       m.WithDelivery,
			Resp:               resp,
		}

	case protocol.TypeRetrieve:
		var m protocol.RetrieveMsg
		if json.Unmarshal(msg, &m) != nil {
			return
		}
		s.market.Retrieve() <- market.RetrieveReq{
			UID:                uid,
			AuctionID:          m.AuctionID,
			AuctioneerEntityID: m.AuctioneerEntityID,
			Resp:               resp,
		}

	default:
		return
	}

	r := <-resp
	b, err := json.Marshal(r)
	if err != nil {
		s.log.Printf("ws: marshal response for %s: %v", uid, err)
		return
	}
	select {
	case out <- b:
	default:
		s.log.Printf("ws: response queue full for %s, dropping", uid)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (uid string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	uid = strings.TrimSpace(hello.PlayerUID)
	if uid == "" {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "missing player_uid"), time.Now().Add(time.Second))
		return "", nil
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 || maxQ > s.queueMax {
		maxQ = s.queueMax
	}
	out = make(chan []byte, maxQ)

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerUID:       uid,
		SalesCutRate:    s.market.SalesCutRate(),
		MaxListings:     s.market.MaxListings(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", nil
	}
	return uid, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
