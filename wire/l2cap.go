package wire

import "github.com/blehost/hoststack/packet"

// L2CAP channel identifiers relevant to this stack; every other CID decodes
// into Unknown.
const (
	CidAtt uint16 = 0x0004
	CidSmp uint16 = 0x0006
)

// L2capMessage is the L2CAP tagged union, keyed by channel ID. Unrecognized
// CIDs fall back to Unknown rather than erroring, since an unsupported
// fixed channel is routine on a real controller.
type L2capMessage interface {
	isL2capMessage()
}

type L2capAtt struct{ Pdu AttPdu }
type L2capSmp struct{ Pdu SmpPdu }
type L2capUnknown struct {
	Cid  uint16
	Data []byte
}

func (L2capAtt) isL2capMessage()     {}
func (L2capSmp) isL2capMessage()     {}
func (L2capUnknown) isL2capMessage() {}

// encodeL2capMessage writes the length-prefixed L2CAP frame: a 2-byte
// length covering only the payload (hence the -2 offset, since the CID
// field packed between the length slot and the payload would otherwise be
// counted), a 2-byte CID, and the payload itself.
func encodeL2capMessage(c *packet.Packet, msg L2capMessage) error {
	if err := c.ReserveLength(2, -2); err != nil {
		return err
	}
	switch v := msg.(type) {
	case L2capAtt:
		if err := c.PackUint16(CidAtt); err != nil {
			return err
		}
		return encodeAttPdu(c, v.Pdu)
	case L2capSmp:
		if err := c.PackUint16(CidSmp); err != nil {
			return err
		}
		return encodeSmpPdu(c, v.Pdu)
	case L2capUnknown:
		if err := c.PackUint16(v.Cid); err != nil {
			return err
		}
		return c.PackTrailing(v.Data)
	default:
		return packet.ErrNoMatchingVariant
	}
}

// decodeL2capMessage dispatches on the CID discriminant using the
// peek_eq tagged-union idiom: each candidate CID is attempted in
// declaration order, rewinding completely on mismatch, before falling
// back to the literal Unknown catch-all.
func decodeL2capMessage(c *packet.Packet) (L2capMessage, error) {
	if err := c.SkipLength(2); err != nil {
		return nil, err
	}

	if c.PeekEq(func(p *packet.Packet) (bool, error) {
		cid, err := p.UnpackUint16()
		return cid == CidAtt, err
	}) {
		pdu, err := decodeAttPdu(c)
		if err != nil {
			return nil, err
		}
		return L2capAtt{pdu}, nil
	}

	if c.PeekEq(func(p *packet.Packet) (bool, error) {
		cid, err := p.UnpackUint16()
		return cid == CidSmp, err
	}) {
		pdu, err := decodeSmpPdu(c)
		if err != nil {
			return nil, err
		}
		return L2capSmp{pdu}, nil
	}

	cid, err := c.UnpackUint16()
	if err != nil {
		return nil, err
	}
	return L2capUnknown{Cid: cid, Data: c.UnpackTrailing()}, nil
}
