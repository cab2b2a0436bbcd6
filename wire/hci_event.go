package wire

import "github.com/blehost/hoststack/packet"

// HciEvent is the HCI Event tagged union, keyed by a 1-byte event code. No
// Unknown fallback: an unrecognized code is a decode error.
type HciEvent interface {
	eventCode() uint8
	encodePayload(c *packet.Packet) error
}

type eventDecoder func(c *packet.Packet) (HciEvent, error)

var eventRegistry = map[uint8]eventDecoder{}

func registerEvent(code uint8, dec eventDecoder) {
	eventRegistry[code] = dec
}

func encodeHciEvent(c *packet.Packet, evt HciEvent) error {
	if err := c.PackUint8(evt.eventCode()); err != nil {
		return err
	}
	if err := c.ReserveLength(1, 0); err != nil {
		return err
	}
	return evt.encodePayload(c)
}

func decodeHciEvent(c *packet.Packet) (HciEvent, error) {
	code, err := c.UnpackUint8()
	if err != nil {
		return nil, err
	}
	if err := c.SkipLength(1); err != nil {
		return nil, err
	}
	dec, ok := eventRegistry[code]
	if !ok {
		return nil, packet.ErrNoMatchingVariant
	}
	return dec(c)
}

// --- DisconnectionComplete -------------------------------------------------

const eventDisconnectionComplete uint8 = 0x05

type EvtDisconnectionComplete struct {
	Status           HciStatus
	ConnectionHandle ConnectionHandle
	Reason           uint8
}

func (EvtDisconnectionComplete) eventCode() uint8 { return eventDisconnectionComplete }
func (e EvtDisconnectionComplete) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Status.byte()); err != nil {
		return err
	}
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	return c.PackUint8(e.Reason)
}

func init() {
	registerEvent(eventDisconnectionComplete, func(c *packet.Packet) (HciEvent, error) {
		status, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		h, err := unpackConnectionHandlePlain(c)
		if err != nil {
			return nil, err
		}
		reason, err := c.UnpackUint8()
		return EvtDisconnectionComplete{hciStatusFromByte(status), h, reason}, err
	})
}

// --- CommandComplete ---------------------------------------------------

const eventCommandComplete uint8 = 0x0E

type EvtCommandComplete struct {
	NumHciCommandPackets uint8
	Opcode               OpCode
	ReturnParameters     []byte
}

func (EvtCommandComplete) eventCode() uint8 { return eventCommandComplete }
func (e EvtCommandComplete) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.NumHciCommandPackets); err != nil {
		return err
	}
	if err := packOpCode(c, e.Opcode); err != nil {
		return err
	}
	return c.PackTrailing(e.ReturnParameters)
}

func init() {
	registerEvent(eventCommandComplete, func(c *packet.Packet) (HciEvent, error) {
		n, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		op, err := unpackOpCode(c)
		if err != nil {
			return nil, err
		}
		return EvtCommandComplete{n, op, c.UnpackTrailing()}, nil
	})
}

// --- CommandStatus -------------------------------------------------------

const eventCommandStatus uint8 = 0x0F

type EvtCommandStatus struct {
	Status               HciStatus
	NumHciCommandPackets uint8
	Opcode               OpCode
}

func (EvtCommandStatus) eventCode() uint8 { return eventCommandStatus }
func (e EvtCommandStatus) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Status.byte()); err != nil {
		return err
	}
	if err := c.PackUint8(e.NumHciCommandPackets); err != nil {
		return err
	}
	return packOpCode(c, e.Opcode)
}

func init() {
	registerEvent(eventCommandStatus, func(c *packet.Packet) (HciEvent, error) {
		status, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		n, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		op, err := unpackOpCode(c)
		return EvtCommandStatus{hciStatusFromByte(status), n, op}, err
	})
}

// --- NumberOfCompletedPackets ---------------------------------------------
//
// Simplified to a single handle/count pair, matching the reference source's
// own simplification rather than the real Core Spec's variable-length array.

const eventNumberOfCompletedPackets uint8 = 0x13

type EvtNumberOfCompletedPackets struct {
	ConnectionHandle ConnectionHandle
	NumCompletedPackets uint16
}

func (EvtNumberOfCompletedPackets) eventCode() uint8 { return eventNumberOfCompletedPackets }
func (e EvtNumberOfCompletedPackets) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(1); err != nil {
		return err
	}
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	return c.PackUint16(e.NumCompletedPackets)
}

func init() {
	registerEvent(eventNumberOfCompletedPackets, func(c *packet.Packet) (HciEvent, error) {
		if _, err := c.UnpackUint8(); err != nil {
			return nil, err
		}
		h, err := unpackConnectionHandlePlain(c)
		if err != nil {
			return nil, err
		}
		n, err := c.UnpackUint16()
		return EvtNumberOfCompletedPackets{h, n}, err
	})
}

// --- EncryptionChange -------------------------------------------------

const eventEncryptionChange uint8 = 0x08

type EvtEncryptionChange struct {
	Status           HciStatus
	ConnectionHandle ConnectionHandle
	EncryptionEnabled bool
}

func (EvtEncryptionChange) eventCode() uint8 { return eventEncryptionChange }
func (e EvtEncryptionChange) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Status.byte()); err != nil {
		return err
	}
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	return c.PackBool(e.EncryptionEnabled)
}

func init() {
	registerEvent(eventEncryptionChange, func(c *packet.Packet) (HciEvent, error) {
		status, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		h, err := unpackConnectionHandlePlain(c)
		if err != nil {
			return nil, err
		}
		enabled, err := c.UnpackBool()
		return EvtEncryptionChange{hciStatusFromByte(status), h, enabled}, err
	})
}

// --- LeMeta -----------------------------------------------------------
//
// LeMeta is a nested tagged union keyed by a 1-byte subevent code, itself
// wrapped as a single HciEvent variant (event code 0x3E).

const eventLeMeta uint8 = 0x3E

type LeMeta interface {
	leSubeventCode() uint8
	encodeLePayload(c *packet.Packet) error
}

type EvtLeMetaEvent struct{ Subevent LeMeta }

func (EvtLeMetaEvent) eventCode() uint8 { return eventLeMeta }
func (e EvtLeMetaEvent) encodePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Subevent.leSubeventCode()); err != nil {
		return err
	}
	return e.Subevent.encodeLePayload(c)
}

type leSubeventDecoder func(c *packet.Packet) (LeMeta, error)

var leSubeventRegistry = map[uint8]leSubeventDecoder{}

func registerLeSubevent(code uint8, dec leSubeventDecoder) {
	leSubeventRegistry[code] = dec
}

func init() {
	registerEvent(eventLeMeta, func(c *packet.Packet) (HciEvent, error) {
		code, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		dec, ok := leSubeventRegistry[code]
		if !ok {
			return nil, packet.ErrNoMatchingVariant
		}
		sub, err := dec(c)
		if err != nil {
			return nil, err
		}
		return EvtLeMetaEvent{sub}, nil
	})
}

// --- LeConnectionComplete -----------------------------------------------

const leSubeventConnectionComplete uint8 = 0x01

type LeConnectionComplete struct {
	Status                HciStatus
	ConnectionHandle      ConnectionHandle
	Role                  Role
	PeerAddressType       AddressType
	PeerAddress           BdAddr
	ConnectionInterval    uint16
	PeripheralLatency     uint16
	SupervisionTimeout    uint16
	CentralClockAccuracy  ClockAccuracy
}

func (LeConnectionComplete) leSubeventCode() uint8 { return leSubeventConnectionComplete }
func (e LeConnectionComplete) encodeLePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Status.byte()); err != nil {
		return err
	}
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	if err := c.PackUint8(uint8(e.Role)); err != nil {
		return err
	}
	if err := c.PackUint8(uint8(e.PeerAddressType)); err != nil {
		return err
	}
	if err := e.PeerAddress.pack(c); err != nil {
		return err
	}
	if err := c.PackUint16(e.ConnectionInterval); err != nil {
		return err
	}
	if err := c.PackUint16(e.PeripheralLatency); err != nil {
		return err
	}
	if err := c.PackUint16(e.SupervisionTimeout); err != nil {
		return err
	}
	return c.PackUint8(uint8(e.CentralClockAccuracy))
}

func init() {
	registerLeSubevent(leSubeventConnectionComplete, func(c *packet.Packet) (LeMeta, error) {
		var e LeConnectionComplete
		status, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.Status = hciStatusFromByte(status)
		if e.ConnectionHandle, err = unpackConnectionHandlePlain(c); err != nil {
			return nil, err
		}
		role, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.Role = Role(role)
		pat, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.PeerAddressType = AddressType(pat)
		if e.PeerAddress, err = unpackBdAddr(c); err != nil {
			return nil, err
		}
		if e.ConnectionInterval, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if e.PeripheralLatency, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if e.SupervisionTimeout, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		acc, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.CentralClockAccuracy = ClockAccuracy(acc)
		return e, nil
	})
}

// --- LeConnectionUpdateComplete --------------------------------------------

const leSubeventConnectionUpdateComplete uint8 = 0x03

type LeConnectionUpdateComplete struct {
	Status             HciStatus
	ConnectionHandle   ConnectionHandle
	ConnectionInterval uint16
	PeripheralLatency  uint16
	SupervisionTimeout uint16
}

func (LeConnectionUpdateComplete) leSubeventCode() uint8 { return leSubeventConnectionUpdateComplete }
func (e LeConnectionUpdateComplete) encodeLePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Status.byte()); err != nil {
		return err
	}
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	if err := c.PackUint16(e.ConnectionInterval); err != nil {
		return err
	}
	if err := c.PackUint16(e.PeripheralLatency); err != nil {
		return err
	}
	return c.PackUint16(e.SupervisionTimeout)
}

func init() {
	registerLeSubevent(leSubeventConnectionUpdateComplete, func(c *packet.Packet) (LeMeta, error) {
		var e LeConnectionUpdateComplete
		status, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.Status = hciStatusFromByte(status)
		var err2 error
		if e.ConnectionHandle, err2 = unpackConnectionHandlePlain(c); err2 != nil {
			return nil, err2
		}
		if e.ConnectionInterval, err2 = c.UnpackUint16(); err2 != nil {
			return nil, err2
		}
		if e.PeripheralLatency, err2 = c.UnpackUint16(); err2 != nil {
			return nil, err2
		}
		if e.SupervisionTimeout, err2 = c.UnpackUint16(); err2 != nil {
			return nil, err2
		}
		return e, nil
	})
}

// --- LeLongTermKeyRequest ------------------------------------------------

const leSubeventLongTermKeyRequest uint8 = 0x05

type LeLongTermKeyRequest struct {
	ConnectionHandle  ConnectionHandle
	RandomNumber      uint64
	EncryptedDiversifier uint16
}

func (LeLongTermKeyRequest) leSubeventCode() uint8 { return leSubeventLongTermKeyRequest }
func (e LeLongTermKeyRequest) encodeLePayload(c *packet.Packet) error {
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	if err := c.PackUint64(e.RandomNumber); err != nil {
		return err
	}
	return c.PackUint16(e.EncryptedDiversifier)
}

func init() {
	registerLeSubevent(leSubeventLongTermKeyRequest, func(c *packet.Packet) (LeMeta, error) {
		var e LeLongTermKeyRequest
		var err error
		if e.ConnectionHandle, err = unpackConnectionHandlePlain(c); err != nil {
			return nil, err
		}
		if e.RandomNumber, err = c.UnpackUint64(); err != nil {
			return nil, err
		}
		if e.EncryptedDiversifier, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		return e, nil
	})
}

// --- LeDataLengthChange -------------------------------------------------

const leSubeventDataLengthChange uint8 = 0x07

type LeDataLengthChange struct {
	ConnectionHandle ConnectionHandle
	MaxTxOctets      uint16
	MaxTxTime        uint16
	MaxRxOctets      uint16
	MaxRxTime        uint16
}

func (LeDataLengthChange) leSubeventCode() uint8 { return leSubeventDataLengthChange }
func (e LeDataLengthChange) encodeLePayload(c *packet.Packet) error {
	if err := e.ConnectionHandle.packPlain(c); err != nil {
		return err
	}
	if err := c.PackUint16(e.MaxTxOctets); err != nil {
		return err
	}
	if err := c.PackUint16(e.MaxTxTime); err != nil {
		return err
	}
	if err := c.PackUint16(e.MaxRxOctets); err != nil {
		return err
	}
	return c.PackUint16(e.MaxRxTime)
}

func init() {
	registerLeSubevent(leSubeventDataLengthChange, func(c *packet.Packet) (LeMeta, error) {
		var e LeDataLengthChange
		var err error
		if e.ConnectionHandle, err = unpackConnectionHandlePlain(c); err != nil {
			return nil, err
		}
		if e.MaxTxOctets, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if e.MaxTxTime, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if e.MaxRxOctets, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		if e.MaxRxTime, err = c.UnpackUint16(); err != nil {
			return nil, err
		}
		return e, nil
	})
}

// --- LeReadLocalP256PublicKeyComplete --------------------------------------

const leSubeventReadLocalP256PublicKeyComplete uint8 = 0x08

type LeReadLocalP256PublicKeyComplete struct {
	Status HciStatus
	Key    [64]byte
}

func (LeReadLocalP256PublicKeyComplete) leSubeventCode() uint8 {
	return leSubeventReadLocalP256PublicKeyComplete
}
func (e LeReadLocalP256PublicKeyComplete) encodeLePayload(c *packet.Packet) error {
	if err := c.PackUint8(e.Status.byte()); err != nil {
		return err
	}
	return c.PackBytesFixed(e.Key[:])
}

func init() {
	registerLeSubevent(leSubeventReadLocalP256PublicKeyComplete, func(c *packet.Packet) (LeMeta, error) {
		status, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		b, err := c.UnpackBytesFixed(64)
		if err != nil {
			return nil, err
		}
		var e LeReadLocalP256PublicKeyComplete
		e.Status = hciStatusFromByte(status)
		copy(e.Key[:], b)
		return e, nil
	})
}

// --- LeAdvertisingReport --------------------------------------------------

const leSubeventAdvertisingReport uint8 = 0x02

type LeAdvertisingReport struct {
	AddressType AddressType
	Address     BdAddr
	Data        []byte
	Rssi        int8
}

func (LeAdvertisingReport) leSubeventCode() uint8 { return leSubeventAdvertisingReport }
func (e LeAdvertisingReport) encodeLePayload(c *packet.Packet) error {
	if err := c.PackUint8(uint8(e.AddressType)); err != nil {
		return err
	}
	if err := e.Address.pack(c); err != nil {
		return err
	}
	if err := c.PackUint8(uint8(len(e.Data))); err != nil {
		return err
	}
	if err := c.PackBytesFixed(e.Data); err != nil {
		return err
	}
	return c.PackUint8(uint8(e.Rssi))
}

func init() {
	registerLeSubevent(leSubeventAdvertisingReport, func(c *packet.Packet) (LeMeta, error) {
		var e LeAdvertisingReport
		at, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.AddressType = AddressType(at)
		if e.Address, err = unpackBdAddr(c); err != nil {
			return nil, err
		}
		n, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		if e.Data, err = c.UnpackBytesFixed(int(n)); err != nil {
			return nil, err
		}
		rssi, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		e.Rssi = int8(rssi)
		return e, nil
	})
}
