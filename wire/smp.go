package wire

import "github.com/blehost/hoststack/packet"

// SMP opcodes.
const (
	smpOpPairingRequest         uint8 = 0x01
	smpOpPairingResponse        uint8 = 0x02
	smpOpPairingConfirm         uint8 = 0x03
	smpOpPairingRandom          uint8 = 0x04
	smpOpPairingFailed          uint8 = 0x05
	smpOpEncryptionInformation  uint8 = 0x06
	smpOpCentralIdentification  uint8 = 0x07
)

// SmpPdu is the Security Manager Protocol tagged union, keyed by a 1-byte
// code. Unlike AttPdu and L2capMessage, it has no Unknown fallback: an
// unrecognized SMP code is a decode error, since this stack only ever
// speaks LE legacy pairing and any other code is a protocol violation.
type SmpPdu interface {
	smpCode() uint8
	encodeSmpPayload(c *packet.Packet) error
}

type smpDecoder func(c *packet.Packet) (SmpPdu, error)

var smpRegistry = map[uint8]smpDecoder{}

func registerSmp(code uint8, dec smpDecoder) {
	smpRegistry[code] = dec
}

func encodeSmpPdu(c *packet.Packet, pdu SmpPdu) error {
	if err := c.PackUint8(pdu.smpCode()); err != nil {
		return err
	}
	return pdu.encodeSmpPayload(c)
}

func decodeSmpPdu(c *packet.Packet) (SmpPdu, error) {
	code, err := c.UnpackUint8()
	if err != nil {
		return nil, err
	}
	dec, ok := smpRegistry[code]
	if !ok {
		return nil, packet.ErrNoMatchingVariant
	}
	return dec(c)
}

// SmpPairingReqRes is the shared shape of PairingRequest and PairingResponse;
// isResponse selects which opcode it encodes as.
type SmpPairingReqRes struct {
	isResponse                 bool
	IOCapability               IOCapability
	OOBDataFlag                OOBDataFlag
	AuthReq                    AuthenticationRequirements
	MaxEncryptionKeySize       uint8
	InitiatorKeyDistribution   KeyDistributionFlags
	ResponderKeyDistribution   KeyDistributionFlags
}

// NewPairingRequest builds the PairingRequest variant of the shared shape.
func NewPairingRequest(io IOCapability, oob OOBDataFlag, auth AuthenticationRequirements, maxKeySize uint8, ikd, rkd KeyDistributionFlags) SmpPairingReqRes {
	return SmpPairingReqRes{false, io, oob, auth, maxKeySize, ikd, rkd}
}

// NewPairingResponse builds the PairingResponse variant of the shared shape.
func NewPairingResponse(io IOCapability, oob OOBDataFlag, auth AuthenticationRequirements, maxKeySize uint8, ikd, rkd KeyDistributionFlags) SmpPairingReqRes {
	return SmpPairingReqRes{true, io, oob, auth, maxKeySize, ikd, rkd}
}

func (p SmpPairingReqRes) IsResponse() bool { return p.isResponse }

// Bytes returns the 7-byte command payload (code included) used as the
// cmd-preq/cmd-pres input to cryptoprim.C1.
func (p SmpPairingReqRes) Bytes() [7]byte {
	return [7]byte{
		p.smpCode(),
		uint8(p.IOCapability),
		uint8(p.OOBDataFlag),
		p.AuthReq.byte(),
		p.MaxEncryptionKeySize,
		p.InitiatorKeyDistribution.byte(),
		p.ResponderKeyDistribution.byte(),
	}
}

func (p SmpPairingReqRes) smpCode() uint8 {
	if p.isResponse {
		return smpOpPairingResponse
	}
	return smpOpPairingRequest
}

func (p SmpPairingReqRes) encodeSmpPayload(c *packet.Packet) error {
	if err := c.PackUint8(uint8(p.IOCapability)); err != nil {
		return err
	}
	if err := c.PackUint8(uint8(p.OOBDataFlag)); err != nil {
		return err
	}
	if err := c.PackUint8(p.AuthReq.byte()); err != nil {
		return err
	}
	if err := c.PackUint8(p.MaxEncryptionKeySize); err != nil {
		return err
	}
	if err := c.PackUint8(p.InitiatorKeyDistribution.byte()); err != nil {
		return err
	}
	return c.PackUint8(p.ResponderKeyDistribution.byte())
}

func decodeSmpPairingReqRes(isResponse bool) smpDecoder {
	return func(c *packet.Packet) (SmpPdu, error) {
		io, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		oob, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		auth, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		maxKeySize, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		ikd, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		rkd, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		return SmpPairingReqRes{
			isResponse:               isResponse,
			IOCapability:             IOCapability(io),
			OOBDataFlag:              OOBDataFlag(oob),
			AuthReq:                  authenticationRequirementsFromByte(auth),
			MaxEncryptionKeySize:     maxKeySize,
			InitiatorKeyDistribution: keyDistributionFlagsFromByte(ikd),
			ResponderKeyDistribution: keyDistributionFlagsFromByte(rkd),
		}, nil
	}
}

func init() {
	registerSmp(smpOpPairingRequest, decodeSmpPairingReqRes(false))
	registerSmp(smpOpPairingResponse, decodeSmpPairingReqRes(true))
}

// --- PairingConfirm / PairingRandom ----------------------------------------

type SmpPairingConfirm struct{ Value Uint128 }

func (SmpPairingConfirm) smpCode() uint8 { return smpOpPairingConfirm }
func (p SmpPairingConfirm) encodeSmpPayload(c *packet.Packet) error { return p.Value.pack(c) }

func init() {
	registerSmp(smpOpPairingConfirm, func(c *packet.Packet) (SmpPdu, error) {
		v, err := unpackUint128(c)
		return SmpPairingConfirm{v}, err
	})
}

type SmpPairingRandom struct{ Value Uint128 }

func (SmpPairingRandom) smpCode() uint8 { return smpOpPairingRandom }
func (p SmpPairingRandom) encodeSmpPayload(c *packet.Packet) error { return p.Value.pack(c) }

func init() {
	registerSmp(smpOpPairingRandom, func(c *packet.Packet) (SmpPdu, error) {
		v, err := unpackUint128(c)
		return SmpPairingRandom{v}, err
	})
}

// --- PairingFailed ----------------------------------------------------

type SmpPairingFailed struct{ Reason SmpPairingFailure }

func (SmpPairingFailed) smpCode() uint8 { return smpOpPairingFailed }
func (p SmpPairingFailed) encodeSmpPayload(c *packet.Packet) error {
	return c.PackUint8(uint8(p.Reason))
}

func init() {
	registerSmp(smpOpPairingFailed, func(c *packet.Packet) (SmpPdu, error) {
		v, err := c.UnpackUint8()
		return SmpPairingFailed{SmpPairingFailure(v)}, err
	})
}

// --- EncryptionInformation -----------------------------------------------

type SmpEncryptionInformation struct{ LongTermKey Uint128 }

func (SmpEncryptionInformation) smpCode() uint8 { return smpOpEncryptionInformation }
func (p SmpEncryptionInformation) encodeSmpPayload(c *packet.Packet) error {
	return p.LongTermKey.pack(c)
}

func init() {
	registerSmp(smpOpEncryptionInformation, func(c *packet.Packet) (SmpPdu, error) {
		v, err := unpackUint128(c)
		return SmpEncryptionInformation{v}, err
	})
}

// --- CentralIdentification ------------------------------------------------
//
// Field order follows the reference catalog's struct declaration order
// (EncryptedDiversifier before RandomNumber) rather than the pairing
// handler's struct-literal construction order, since only the declared
// field order is wire-significant.

type SmpCentralIdentification struct {
	EncryptedDiversifier uint16
	RandomNumber         uint64
}

func (SmpCentralIdentification) smpCode() uint8 { return smpOpCentralIdentification }
func (p SmpCentralIdentification) encodeSmpPayload(c *packet.Packet) error {
	if err := c.PackUint16(p.EncryptedDiversifier); err != nil {
		return err
	}
	return c.PackUint64(p.RandomNumber)
}

func init() {
	registerSmp(smpOpCentralIdentification, func(c *packet.Packet) (SmpPdu, error) {
		ediv, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		rand, err := c.UnpackUint64()
		return SmpCentralIdentification{ediv, rand}, err
	})
}
