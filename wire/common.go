// Package wire is the wire-format catalog: concrete HCI, L2CAP, ATT and SMP
// frame types and their codec bindings over the bit cursor in package packet.
//
// Every type here follows the same idiom as the reference codec's annotated
// definitions: a composite struct or tagged union with an Encode method and a
// package-level Decode function, both built from packet.Packet primitives.
// Most catalog tagged unions (HciCommand, HciEvent, LeMeta, AttPdu, SmpPdu)
// dispatch on their opcode/code discriminant through a package-level
// registry populated by init(), since their discriminant sets are large and
// sparse. L2capMessage, whose discriminant set is small and fixed, instead
// dispatches by attempting each variant's CID in declaration order via
// packet.Packet.PeekEq, rewinding on mismatch — the literal peek_eq idiom.
// A trailing Unknown(tag, bytes) variant, where present, is the catch-all.
package wire

import "github.com/blehost/hoststack/packet"

// OpCode is the 16-bit HCI command identifier: a 10-bit OCF packed with a
// 6-bit OGF, OCF in the low bits.
type OpCode struct {
	OCF uint16
	OGF uint8
}

func (op OpCode) Uint16() uint16 {
	return (op.OCF & 0x03FF) | (uint16(op.OGF&0x3F) << 10)
}

func opCodeFromUint16(v uint16) OpCode {
	return OpCode{OCF: v & 0x03FF, OGF: uint8((v >> 10) & 0x3F)}
}

func packOpCode(c *packet.Packet, op OpCode) error {
	return c.PackUint16(op.Uint16())
}

func unpackOpCode(c *packet.Packet) (OpCode, error) {
	v, err := c.UnpackUint16()
	if err != nil {
		return OpCode{}, err
	}
	return opCodeFromUint16(v), nil
}

// ConnectionHandle is a 12-bit HCI connection handle (max 0x0EFF). Command
// and event parameters transmit it as a full 16-bit field; only the ACL
// header packs it into 12 bits alongside the boundary/broadcast flags.
type ConnectionHandle uint16

func (h ConnectionHandle) packPlain(c *packet.Packet) error {
	return c.PackUint16(uint16(h))
}

func unpackConnectionHandlePlain(c *packet.Packet) (ConnectionHandle, error) {
	v, err := c.UnpackUint16()
	return ConnectionHandle(v), err
}

// BdAddr is a 6-byte Bluetooth device address, transmitted byte 0 first (no
// reordering — the reference codec transmits it as a plain 6-byte array).
type BdAddr [6]byte

func (a BdAddr) pack(c *packet.Packet) error {
	return c.PackBytesFixed(a[:])
}

func unpackBdAddr(c *packet.Packet) (BdAddr, error) {
	b, err := c.UnpackBytesFixed(6)
	if err != nil {
		return BdAddr{}, err
	}
	var a BdAddr
	copy(a[:], b)
	return a, nil
}

// PacketBoundaryFlag is the 2-bit ACL packet boundary flag.
type PacketBoundaryFlag uint8

const (
	PBFirstNonFlushable PacketBoundaryFlag = 0b00
	PBContinuation      PacketBoundaryFlag = 0b01
	PBFirstFlushable    PacketBoundaryFlag = 0b10
	PBDeprecated        PacketBoundaryFlag = 0b11
)

// BroadcastFlag is the 2-bit ACL broadcast flag.
type BroadcastFlag uint8

const (
	BCPointToPoint   BroadcastFlag = 0b00
	BCBdEdrBroadcast BroadcastFlag = 0b01
)

// HciStatus is the 1-byte HCI status code: 0x00 is success, anything else is
// a failure carrying the raw code.
type HciStatus struct {
	Success bool
	Code    uint8 // valid when !Success
}

var HciStatusSuccess = HciStatus{Success: true}

func HciStatusFailure(code uint8) HciStatus {
	return HciStatus{Success: false, Code: code}
}

func (s HciStatus) byte() uint8 {
	if s.Success {
		return 0x00
	}
	return s.Code
}

func hciStatusFromByte(b uint8) HciStatus {
	if b == 0x00 {
		return HciStatusSuccess
	}
	return HciStatusFailure(b)
}

// Role is the LE connection role.
type Role uint8

const (
	RoleCentral    Role = 0
	RolePeripheral Role = 1
)

// AddressType is the LE address type.
type AddressType uint8

const (
	AddressPublic AddressType = 0
	AddressRandom AddressType = 1
)

// ClockAccuracy is the central's sleep clock accuracy.
type ClockAccuracy uint8

const (
	ClockPpm500 ClockAccuracy = 0
	ClockPpm250 ClockAccuracy = 1
	ClockPpm150 ClockAccuracy = 2
	ClockPpm100 ClockAccuracy = 3
	ClockPpm75  ClockAccuracy = 4
	ClockPpm50  ClockAccuracy = 5
	ClockPpm30  ClockAccuracy = 6
	ClockPpm20  ClockAccuracy = 7
)

// KeyDistributionFlags packs four 1-bit flags LSB-first, followed by 4
// reserved bits.
type KeyDistributionFlags struct {
	EncKey  bool
	IDKey   bool
	SignKey bool
	LinkKey bool
}

func (k KeyDistributionFlags) byte() uint8 {
	var b uint8
	if k.EncKey {
		b |= 1 << 0
	}
	if k.IDKey {
		b |= 1 << 1
	}
	if k.SignKey {
		b |= 1 << 2
	}
	if k.LinkKey {
		b |= 1 << 3
	}
	return b
}

func keyDistributionFlagsFromByte(b uint8) KeyDistributionFlags {
	return KeyDistributionFlags{
		EncKey:  b&(1<<0) != 0,
		IDKey:   b&(1<<1) != 0,
		SignKey: b&(1<<2) != 0,
		LinkKey: b&(1<<3) != 0,
	}
}

// AuthenticationRequirements packs bonding (1 bit) + mitm/sc/keypress/ct2 (1
// bit each) + 3 reserved bits, LSB-first. The reference source's doc comment
// claims bonding is 2 bits, but every call site constructs it as a plain
// bool; this implementation keeps it a single bit and folds the spare bit
// into the reserved field (see DESIGN.md).
type AuthenticationRequirements struct {
	Bonding              bool
	MITMProtection       bool
	SecureConnections    bool
	KeypressNotification bool
	CT2                  bool
}

func (a AuthenticationRequirements) byte() uint8 {
	var b uint8
	if a.Bonding {
		b |= 1 << 0
	}
	if a.MITMProtection {
		b |= 1 << 1
	}
	if a.SecureConnections {
		b |= 1 << 2
	}
	if a.KeypressNotification {
		b |= 1 << 3
	}
	if a.CT2 {
		b |= 1 << 4
	}
	return b
}

func authenticationRequirementsFromByte(b uint8) AuthenticationRequirements {
	return AuthenticationRequirements{
		Bonding:              b&(1<<0) != 0,
		MITMProtection:       b&(1<<1) != 0,
		SecureConnections:    b&(1<<2) != 0,
		KeypressNotification: b&(1<<3) != 0,
		CT2:                  b&(1<<4) != 0,
	}
}

// IOCapability is the SMP IO capability code.
type IOCapability uint8

const (
	IOCapabilityDisplayOnly     IOCapability = 0x00
	IOCapabilityDisplayYesNo    IOCapability = 0x01
	IOCapabilityKeyboardOnly    IOCapability = 0x02
	IOCapabilityNoInputNoOutput IOCapability = 0x03
	IOCapabilityKeyboardDisplay IOCapability = 0x04
)

// OOBDataFlag is the SMP out-of-band data flag.
type OOBDataFlag uint8

const (
	OOBNotAvailable OOBDataFlag = 0x00
	OOBAvailable    OOBDataFlag = 0x01
)

// SmpPairingFailure is an SMP pairing-failed reason code.
type SmpPairingFailure uint8

const (
	SmpFailPasskeyEntryFailed                              SmpPairingFailure = 0x01
	SmpFailOobNotAvailable                                 SmpPairingFailure = 0x02
	SmpFailAuthenticationRequirements                      SmpPairingFailure = 0x03
	SmpFailConfirmValueFailed                              SmpPairingFailure = 0x04
	SmpFailPairingNotSupported                             SmpPairingFailure = 0x05
	SmpFailEncryptionKeySize                               SmpPairingFailure = 0x06
	SmpFailCommandNotSupported                             SmpPairingFailure = 0x07
	SmpFailUnspecifiedReason                               SmpPairingFailure = 0x08
	SmpFailRepeatedAttempts                                SmpPairingFailure = 0x09
	SmpFailInvalidParameters                               SmpPairingFailure = 0x0A
	SmpFailDhKeyCheckFailed                                SmpPairingFailure = 0x0B
	SmpFailNumericComparisonFailed                         SmpPairingFailure = 0x0C
	SmpFailBrEdrPairingInProgress                          SmpPairingFailure = 0x0D
	SmpFailCrossTransportKeyDerivationGenerationNotAllowed SmpPairingFailure = 0x0E
	SmpFailKeyRejected                                     SmpPairingFailure = 0x0F
	SmpFailBusy                                            SmpPairingFailure = 0x10
)

// Uint128 is a 128-bit value transmitted as 16 raw little-endian bytes.
// Because it is opaque (used only for equality and as AES block
// input/output, never arithmetic), it is modeled as a byte array rather than
// a big.Int: an AES-128 block's 16 output bytes are exactly its wire bytes,
// with no endian conversion needed.
type Uint128 [16]byte

func (u Uint128) pack(c *packet.Packet) error {
	return c.PackBytesFixed(u[:])
}

func unpackUint128(c *packet.Packet) (Uint128, error) {
	b, err := c.UnpackBytesFixed(16)
	if err != nil {
		return Uint128{}, err
	}
	var u Uint128
	copy(u[:], b)
	return u, nil
}
