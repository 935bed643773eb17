package market

// ItemStack is the opaque listed payload: item/block identity, quantity, and
// the raw attribute tree exactly as the host game serialized it. The market
// never interprets Attributes; the bytes must survive a save/reload round
// trip unchanged.
type ItemStack struct {
	Class      string
	Code       string
	Quantity   int
	Attributes []byte
}

func (s *ItemStack) Clone() *ItemStack {
	if s == nil {
		return nil
	}
	c := *s
	if s.Attributes != nil {
		c.Attributes = append([]byte(nil), s.Attributes...)
	}
	return &c
}

// Resolve re-binds the stack against the live registry after a load.
func (s *ItemStack) Resolve(r ItemResolver) bool {
	if s == nil {
		return false
	}
	return r.Resolve(s.Class, s.Code)
}
