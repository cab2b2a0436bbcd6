package wire

import "github.com/blehost/hoststack/packet"

// HciAcl is an ACL data packet: a 12-bit connection handle bit-packed with
// the 2-bit boundary and 2-bit broadcast flags, followed by a length-
// prefixed L2CAP payload.
type HciAcl struct {
	ConnectionHandle ConnectionHandle
	PbFlag           PacketBoundaryFlag
	BcFlag           BroadcastFlag
	Payload          L2capMessage
}

func encodeHciAcl(c *packet.Packet, acl *HciAcl) error {
	if err := c.SetBits(12).PackUint16(uint16(acl.ConnectionHandle)); err != nil {
		return err
	}
	if err := c.SetBits(2).PackUint8(uint8(acl.PbFlag)); err != nil {
		return err
	}
	if err := c.SetBits(2).PackUint8(uint8(acl.BcFlag)); err != nil {
		return err
	}
	if err := c.ReserveLength(2, 0); err != nil {
		return err
	}
	return encodeL2capMessage(c, acl.Payload)
}

func decodeHciAcl(c *packet.Packet) (*HciAcl, error) {
	handle, err := c.SetBits(12).UnpackUint16()
	if err != nil {
		return nil, err
	}
	pb, err := c.SetBits(2).UnpackUint8()
	if err != nil {
		return nil, err
	}
	bc, err := c.SetBits(2).UnpackUint8()
	if err != nil {
		return nil, err
	}
	if err := c.SkipLength(2); err != nil {
		return nil, err
	}
	payload, err := decodeL2capMessage(c)
	if err != nil {
		return nil, err
	}
	return &HciAcl{
		ConnectionHandle: ConnectionHandle(handle),
		PbFlag:           PacketBoundaryFlag(pb),
		BcFlag:           BroadcastFlag(bc),
		Payload:          payload,
	}, nil
}
