package wire

import "github.com/blehost/hoststack/packet"

// H4 packet type tags.
const (
	h4TagCommand uint8 = 0x01
	h4TagAcl     uint8 = 0x02
	h4TagEvent   uint8 = 0x04
)

// H4Frame is the top-level tagged union: every byte blob the transport
// yields or accepts is one of these three framings.
type H4Frame interface {
	isH4Frame()
}

// H4Command wraps an outbound/inbound HCI command.
type H4Command struct{ Command HciCommand }

// H4Event wraps an inbound HCI event.
type H4Event struct{ Event HciEvent }

// H4Acl wraps inbound/outbound ACL data (L2CAP-framed).
type H4Acl struct{ Acl *HciAcl }

func (H4Command) isH4Frame() {}
func (H4Event) isH4Frame()   {}
func (H4Acl) isH4Frame()     {}

// EncodeH4 serializes a frame to its wire bytes.
func EncodeH4(f H4Frame) ([]byte, error) {
	c := packet.New()
	switch v := f.(type) {
	case H4Command:
		if err := c.PackUint8(h4TagCommand); err != nil {
			return nil, err
		}
		if err := encodeHciCommand(c, v.Command); err != nil {
			return nil, err
		}
	case H4Event:
		if err := c.PackUint8(h4TagEvent); err != nil {
			return nil, err
		}
		if err := encodeHciEvent(c, v.Event); err != nil {
			return nil, err
		}
	case H4Acl:
		if err := c.PackUint8(h4TagAcl); err != nil {
			return nil, err
		}
		if err := encodeHciAcl(c, v.Acl); err != nil {
			return nil, err
		}
	default:
		return nil, packet.ErrNoMatchingVariant
	}
	return c.Bytes(), nil
}

// DecodeH4 parses one complete H4 frame from b.
func DecodeH4(b []byte) (H4Frame, error) {
	c := packet.FromBytes(b)
	tag, err := c.UnpackUint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case h4TagCommand:
		cmd, err := decodeHciCommand(c)
		if err != nil {
			return nil, err
		}
		return H4Command{cmd}, nil
	case h4TagEvent:
		evt, err := decodeHciEvent(c)
		if err != nil {
			return nil, err
		}
		return H4Event{evt}, nil
	case h4TagAcl:
		acl, err := decodeHciAcl(c)
		if err != nil {
			return nil, err
		}
		return H4Acl{acl}, nil
	default:
		return nil, packet.ErrNoMatchingVariant
	}
}
