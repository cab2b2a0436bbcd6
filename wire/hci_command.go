package wire

import "github.com/blehost/hoststack/packet"

// HciCommand is the HCI Command tagged union, keyed by a 16-bit OpCode. It
// has no Unknown fallback: an unrecognized opcode is a decode error.
type HciCommand interface {
	Opcode() OpCode
	encodePayload(c *packet.Packet) error
}

type commandDecoder func(c *packet.Packet) (HciCommand, error)

var commandRegistry = map[uint16]commandDecoder{}

func registerCommand(op OpCode, dec commandDecoder) {
	commandRegistry[op.Uint16()] = dec
}

func encodeHciCommand(c *packet.Packet, cmd HciCommand) error {
	if err := packOpCode(c, cmd.Opcode()); err != nil {
		return err
	}
	if err := c.ReserveLength(1, 0); err != nil {
		return err
	}
	return cmd.encodePayload(c)
}

func decodeHciCommand(c *packet.Packet) (HciCommand, error) {
	op, err := unpackOpCode(c)
	if err != nil {
		return nil, err
	}
	if err := c.SkipLength(1); err != nil {
		return nil, err
	}
	dec, ok := commandRegistry[op.Uint16()]
	if !ok {
		return nil, packet.ErrNoMatchingVariant
	}
	return dec(c)
}

// --- Disconnect -------------------------------------------------------

var opDisconnect = OpCode{OCF: 0x0006, OGF: 0x01}

type CmdDisconnect struct {
	ConnectionHandle ConnectionHandle
	Reason           uint8
}

func (CmdDisconnect) Opcode() OpCode { return opDisconnect }

func (cmd CmdDisconnect) encodePayload(c *packet.Packet) error {
	if err := cmd.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	return c.PackUint8(cmd.Reason)
}

func init() {
	registerCommand(opDisconnect, func(c *packet.Packet) (HciCommand, error) {
		h, err := unpackConnectionHandlePlain(c)
		if err != nil {
			return nil, err
		}
		reason, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		return CmdDisconnect{h, reason}, nil
	})
}

// --- Reset --------------------------------------------------------------

var opReset = OpCode{OCF: 0x0003, OGF: 0x03}

type CmdReset struct{}

func (CmdReset) Opcode() OpCode                           { return opReset }
func (CmdReset) encodePayload(c *packet.Packet) error     { return nil }

func init() {
	registerCommand(opReset, func(c *packet.Packet) (HciCommand, error) { return CmdReset{}, nil })
}

// --- SetEventMask ---------------------------------------------------------

var opSetEventMask = OpCode{OCF: 0x0001, OGF: 0x03}

type CmdSetEventMask struct{ Mask uint64 }

func (CmdSetEventMask) Opcode() OpCode { return opSetEventMask }
func (cmd CmdSetEventMask) encodePayload(c *packet.Packet) error {
	return c.PackUint64(cmd.Mask)
}

func init() {
	registerCommand(opSetEventMask, func(c *packet.Packet) (HciCommand, error) {
		m, err := c.UnpackUint64()
		return CmdSetEventMask{m}, err
	})
}

// --- ReadLocalSupportedCommands -------------------------------------------

var opReadLocalSupportedCommands = OpCode{OCF: 0x0002, OGF: 0x04}

type CmdReadLocalSupportedCommands struct{}

func (CmdReadLocalSupportedCommands) Opcode() OpCode                       { return opReadLocalSupportedCommands }
func (CmdReadLocalSupportedCommands) encodePayload(c *packet.Packet) error { return nil }

func init() {
	registerCommand(opReadLocalSupportedCommands, func(c *packet.Packet) (HciCommand, error) {
		return CmdReadLocalSupportedCommands{}, nil
	})
}

// --- ReadBdAddr ------------------------------------------------------------

var opReadBdAddr = OpCode{OCF: 0x0009, OGF: 0x04}

type CmdReadBdAddr struct{}

func (CmdReadBdAddr) Opcode() OpCode                       { return opReadBdAddr }
func (CmdReadBdAddr) encodePayload(c *packet.Packet) error { return nil }

func init() {
	registerCommand(opReadBdAddr, func(c *packet.Packet) (HciCommand, error) { return CmdReadBdAddr{}, nil })
}

// --- WriteScanEnable ------------------------------------------------------

var opWriteScanEnable = OpCode{OCF: 0x001a, OGF: 0x03}

type ScanEnable uint8

const (
	ScanEnableNoScans                             ScanEnable = 0x00
	ScanEnableInquiryScanEnabledPageScanDisabled   ScanEnable = 0x01
	ScanEnableInquiryScanDisabledPageScanEnabled   ScanEnable = 0x02
	ScanEnableInquiryScanEnabledPageScanEnabled    ScanEnable = 0x03
)

type CmdWriteScanEnable struct{ Scan ScanEnable }

func (CmdWriteScanEnable) Opcode() OpCode { return opWriteScanEnable }
func (cmd CmdWriteScanEnable) encodePayload(c *packet.Packet) error {
	return c.PackUint8(uint8(cmd.Scan))
}

func init() {
	registerCommand(opWriteScanEnable, func(c *packet.Packet) (HciCommand, error) {
		v, err := c.UnpackUint8()
		return CmdWriteScanEnable{ScanEnable(v)}, err
	})
}

// --- WriteConnectionAcceptTimeout -----------------------------------------

var opWriteConnectionAcceptTimeout = OpCode{OCF: 0x0016, OGF: 0x03}

type CmdWriteConnectionAcceptTimeout struct{ Timeout uint16 }

func (CmdWriteConnectionAcceptTimeout) Opcode() OpCode { return opWriteConnectionAcceptTimeout }
func (cmd CmdWriteConnectionAcceptTimeout) encodePayload(c *packet.Packet) error {
	return c.PackUint16(cmd.Timeout)
}

func init() {
	registerCommand(opWriteConnectionAcceptTimeout, func(c *packet.Packet) (HciCommand, error) {
		v, err := c.UnpackUint16()
		return CmdWriteConnectionAcceptTimeout{v}, err
	})
}

// --- WritePageTimeout ------------------------------------------------------

var opWritePageTimeout = OpCode{OCF: 0x0018, OGF: 0x03}

type CmdWritePageTimeout struct{ Timeout uint16 }

func (CmdWritePageTimeout) Opcode() OpCode { return opWritePageTimeout }
func (cmd CmdWritePageTimeout) encodePayload(c *packet.Packet) error {
	return c.PackUint16(cmd.Timeout)
}

func init() {
	registerCommand(opWritePageTimeout, func(c *packet.Packet) (HciCommand, error) {
		v, err := c.UnpackUint16()
		return CmdWritePageTimeout{v}, err
	})
}

// --- WriteLocalName ---------------------------------------------------

var opWriteLocalName = OpCode{OCF: 0x0013, OGF: 0x03}

const localNameWidth = 248

type CmdWriteLocalName struct{ Name string }

func (CmdWriteLocalName) Opcode() OpCode { return opWriteLocalName }
func (cmd CmdWriteLocalName) encodePayload(c *packet.Packet) error {
	return c.PackFixedUTF8(cmd.Name, localNameWidth)
}

func init() {
	registerCommand(opWriteLocalName, func(c *packet.Packet) (HciCommand, error) {
		s, err := c.UnpackFixedUTF8(localNameWidth)
		return CmdWriteLocalName{s}, err
	})
}

// --- ReadLocalName -----------------------------------------------------

var opReadLocalName = OpCode{OCF: 0x0014, OGF: 0x03}

type CmdReadLocalName struct {
	Status HciStatus
	Name   string
}

func (CmdReadLocalName) Opcode() OpCode { return opReadLocalName }
func (cmd CmdReadLocalName) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(cmd.Status.byte()); err != nil {
		return err
	}
	return c.PackFixedUTF8(cmd.Name, localNameWidth)
}

func init() {
	registerCommand(opReadLocalName, func(c *packet.Packet) (HciCommand, error) {
		s, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		name, err := c.UnpackFixedUTF8(localNameWidth)
		return CmdReadLocalName{hciStatusFromByte(s), name}, err
	})
}

// --- LeSetEventMask ------------------------------------------------------

var opLeSetEventMask = OpCode{OCF: 0x0001, OGF: 0x08}

type CmdLeSetEventMask struct{ Mask uint64 }

func (CmdLeSetEventMask) Opcode() OpCode { return opLeSetEventMask }
func (cmd CmdLeSetEventMask) encodePayload(c *packet.Packet) error {
	return c.PackUint64(cmd.Mask)
}

func init() {
	registerCommand(opLeSetEventMask, func(c *packet.Packet) (HciCommand, error) {
		m, err := c.UnpackUint64()
		return CmdLeSetEventMask{m}, err
	})
}

// --- LeReadBufferSize --------------------------------------------------

var opLeReadBufferSize = OpCode{OCF: 0x0002, OGF: 0x08}

type CmdLeReadBufferSize struct{}

func (CmdLeReadBufferSize) Opcode() OpCode                       { return opLeReadBufferSize }
func (CmdLeReadBufferSize) encodePayload(c *packet.Packet) error { return nil }

func init() {
	registerCommand(opLeReadBufferSize, func(c *packet.Packet) (HciCommand, error) {
		return CmdLeReadBufferSize{}, nil
	})
}

// --- LeSetRandomAddress --------------------------------------------------

var opLeSetRandomAddress = OpCode{OCF: 0x0005, OGF: 0x08}

type CmdLeSetRandomAddress struct{ Address BdAddr }

func (CmdLeSetRandomAddress) Opcode() OpCode { return opLeSetRandomAddress }
func (cmd CmdLeSetRandomAddress) encodePayload(c *packet.Packet) error {
	return cmd.Address.pack(c)
}

func init() {
	registerCommand(opLeSetRandomAddress, func(c *packet.Packet) (HciCommand, error) {
		a, err := unpackBdAddr(c)
		return CmdLeSetRandomAddress{a}, err
	})
}

// --- LeSetAdvertisingParameters ---------------------------------------

var opLeSetAdvertisingParameters = OpCode{OCF: 0x0006, OGF: 0x08}

type CmdLeSetAdvertisingParameters struct {
	AdvertisingIntervalMin uint16
	AdvertisingIntervalMax uint16
	AdvertisingType        uint8
	OwnAddressType         uint8
	PeerAddressType        uint8
	PeerAddress            BdAddr
	AdvertisingChannelMap  uint8
	AdvertisingFilterPolicy uint8
}

func (CmdLeSetAdvertisingParameters) Opcode() OpCode { return opLeSetAdvertisingParameters }
func (cmd CmdLeSetAdvertisingParameters) encodePayload(c *packet.Packet) error {
	for _, step := range []func() error{
		func() error { return c.PackUint16(cmd.AdvertisingIntervalMin) },
		func() error { return c.PackUint16(cmd.AdvertisingIntervalMax) },
		func() error { return c.PackUint8(cmd.AdvertisingType) },
		func() error { return c.PackUint8(cmd.OwnAddressType) },
		func() error { return c.PackUint8(cmd.PeerAddressType) },
		func() error { return cmd.PeerAddress.pack(c) },
		func() error { return c.PackUint8(cmd.AdvertisingChannelMap) },
		func() error { return c.PackUint8(cmd.AdvertisingFilterPolicy) },
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	registerCommand(opLeSetAdvertisingParameters, func(c *packet.Packet) (HciCommand, error) {
		var cmd CmdLeSetAdvertisingParameters
		var err error
		if cmd.AdvertisingIntervalMin, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if cmd.AdvertisingIntervalMax, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if cmd.AdvertisingType, err = c.UnpackUint8(); err != nil {
			return nil, err
		}
		if cmd.OwnAddressType, err = c.UnpackUint8(); err != nil {
			return nil, err
		}
		if cmd.PeerAddressType, err = c.UnpackUint8(); err != nil {
			return nil, err
		}
		if cmd.PeerAddress, err = unpackBdAddr(c); err != nil {
			return nil, err
		}
		if cmd.AdvertisingChannelMap, err = c.UnpackUint8(); err != nil {
			return nil, err
		}
		if cmd.AdvertisingFilterPolicy, err = c.UnpackUint8(); err != nil {
			return nil, err
		}
		return cmd, nil
	})
}

// --- LeSetAdvertisingData -------------------------------------------------

var opLeSetAdvertisingData = OpCode{OCF: 0x0008, OGF: 0x08}

type CmdLeSetAdvertisingData struct {
	Length uint8
	Data   [31]byte
}

func (CmdLeSetAdvertisingData) Opcode() OpCode { return opLeSetAdvertisingData }
func (cmd CmdLeSetAdvertisingData) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(cmd.Length); err != nil {
		return err
	}
	return c.PackBytesFixed(cmd.Data[:])
}

func init() {
	registerCommand(opLeSetAdvertisingData, func(c *packet.Packet) (HciCommand, error) {
		length, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		b, err := c.UnpackBytesFixed(31)
		if err != nil {
			return nil, err
		}
		var cmd CmdLeSetAdvertisingData
		cmd.Length = length
		copy(cmd.Data[:], b)
		return cmd, nil
	})
}

// --- LeReadLocalP256PublicKey ----------------------------------------------

var opLeReadLocalP256PublicKey = OpCode{OCF: 0x0025, OGF: 0x08}

type CmdLeReadLocalP256PublicKey struct{}

func (CmdLeReadLocalP256PublicKey) Opcode() OpCode                       { return opLeReadLocalP256PublicKey }
func (CmdLeReadLocalP256PublicKey) encodePayload(c *packet.Packet) error { return nil }

func init() {
	registerCommand(opLeReadLocalP256PublicKey, func(c *packet.Packet) (HciCommand, error) {
		return CmdLeReadLocalP256PublicKey{}, nil
	})
}

// --- LeSetAdvertisingEnable ------------------------------------------------

var opLeSetAdvertisingEnable = OpCode{OCF: 0x000A, OGF: 0x08}

type CmdLeSetAdvertisingEnable struct{ Enable bool }

func (CmdLeSetAdvertisingEnable) Opcode() OpCode { return opLeSetAdvertisingEnable }
func (cmd CmdLeSetAdvertisingEnable) encodePayload(c *packet.Packet) error {
	return c.PackBool(cmd.Enable)
}

func init() {
	registerCommand(opLeSetAdvertisingEnable, func(c *packet.Packet) (HciCommand, error) {
		v, err := c.UnpackBool()
		return CmdLeSetAdvertisingEnable{v}, err
	})
}

// --- LeSetDataLength --------------------------------------------------

var opLeSetDataLength = OpCode{OCF: 0x0022, OGF: 0x08}

type CmdLeSetDataLength struct {
	ConnectionHandle ConnectionHandle
	TxOctets         uint16
	TxTime           uint16
}

func (CmdLeSetDataLength) Opcode() OpCode { return opLeSetDataLength }
func (cmd CmdLeSetDataLength) encodePayload(c *packet.Packet) error {
	if err := cmd.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	if err := c.PackUint16(cmd.TxOctets); err != nil {
		return err
	}
	return c.PackUint16(cmd.TxTime)
}

func init() {
	registerCommand(opLeSetDataLength, func(c *packet.Packet) (HciCommand, error) {
		h, err := unpackConnectionHandlePlain(c)
		if err != nil {
			return nil, err
		}
		tx, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		tt, err := c.UnpackUint16()
		return CmdLeSetDataLength{h, tx, tt}, err
	})
}

// --- LeLongTermKeyRequestReply ---------------------------------------------

var opLeLongTermKeyRequestReply = OpCode{OCF: 0x001A, OGF: 0x08}

type CmdLeLongTermKeyRequestReply struct {
	ConnectionHandle ConnectionHandle
	LongTermKey      Uint128
}

func (CmdLeLongTermKeyRequestReply) Opcode() OpCode { return opLeLongTermKeyRequestReply }
func (cmd CmdLeLongTermKeyRequestReply) encodePayload(c *packet.Packet) error {
	if err := cmd.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	return cmd.LongTermKey.pack(c)
}

func init() {
	registerCommand(opLeLongTermKeyRequestReply, func(c *packet.Packet) (HciCommand, error) {
		h, err := unpackConnectionHandlePlain(c)
		if err != nil {
			return nil, err
		}
		ltk, err := unpackUint128(c)
		return CmdLeLongTermKeyRequestReply{h, ltk}, err
	})
}

// --- LeLongTermKeyRequestNegativeReply --------------------------------------
//
// Not present in the reference source's message catalog (only its call site
// in the pairing handler's state table is), added here because the AwaitLTKReq
// transition names it explicitly; OCF 0x001B is the BLE Core Spec's
// LE_Long_Term_Key_Request_Negative_Reply.

var opLeLongTermKeyRequestNegativeReply = OpCode{OCF: 0x001B, OGF: 0x08}

type CmdLeLongTermKeyRequestNegativeReply struct {
	ConnectionHandle ConnectionHandle
}

func (CmdLeLongTermKeyRequestNegativeReply) Opcode() OpCode {
	return opLeLongTermKeyRequestNegativeReply
}
func (cmd CmdLeLongTermKeyRequestNegativeReply) encodePayload(c *packet.Packet) error {
	return cmd.ConnectionHandle.packPlain(c)
}

func init() {
	registerCommand(opLeLongTermKeyRequestNegativeReply, func(c *packet.Packet) (HciCommand, error) {
		h, err := unpackConnectionHandlePlain(c)
		return CmdLeLongTermKeyRequestNegativeReply{h}, err
	})
}
