package wire

import "github.com/blehost/hoststack/packet"

// ATT opcodes. Only ExchangeMtuRequest/Response are wired to a handler
// (package attsvc); the rest of the catalog below is decode/encode only,
// present so a full attribute-protocol exchange can be framed and logged
// even though this stack implements no attribute database.
const (
	attOpErrorResponse            uint8 = 0x01
	attOpExchangeMtuRequest       uint8 = 0x02
	attOpExchangeMtuResponse      uint8 = 0x03
	attOpFindInformationRequest   uint8 = 0x04
	attOpFindInformationResponse  uint8 = 0x05
	attOpFindByTypeValueRequest   uint8 = 0x06
	attOpFindByTypeValueResponse  uint8 = 0x07
	attOpReadByTypeRequest        uint8 = 0x08
	attOpReadByTypeResponse       uint8 = 0x09
	attOpReadRequest              uint8 = 0x0A
	attOpReadResponse             uint8 = 0x0B
	attOpWriteRequest             uint8 = 0x12
	attOpWriteResponse            uint8 = 0x13
	attOpExecuteWriteRequest      uint8 = 0x18
	attOpExecuteWriteResponse     uint8 = 0x19
	attOpHandleValueNotification  uint8 = 0x1B
)

// AttPdu is the Attribute Protocol tagged union, keyed by a 1-byte opcode.
// AttUnknown is the catch-all for any opcode this catalog does not name.
type AttPdu interface {
	attOpcode() uint8
	encodeAttPayload(c *packet.Packet) error
}

type attDecoder func(c *packet.Packet) (AttPdu, error)

var attRegistry = map[uint8]attDecoder{}

func registerAtt(op uint8, dec attDecoder) {
	attRegistry[op] = dec
}

func encodeAttPdu(c *packet.Packet, pdu AttPdu) error {
	if err := c.PackUint8(pdu.attOpcode()); err != nil {
		return err
	}
	return pdu.encodeAttPayload(c)
}

func decodeAttPdu(c *packet.Packet) (AttPdu, error) {
	op, err := c.UnpackUint8()
	if err != nil {
		return nil, err
	}
	if dec, ok := attRegistry[op]; ok {
		return dec(c)
	}
	return AttUnknown{Opcode: op, Data: c.UnpackTrailing()}, nil
}

// AttUnknown carries any opcode outside this catalog, plus its raw trailing
// bytes, mirroring L2capUnknown's open-union fallback.
type AttUnknown struct {
	Opcode uint8
	Data   []byte
}

func (u AttUnknown) attOpcode() uint8 { return u.Opcode }
func (u AttUnknown) encodeAttPayload(c *packet.Packet) error {
	return c.PackTrailing(u.Data)
}

// --- ErrorResponse -------------------------------------------------------

type AttErrorResponse struct {
	RequestOpcode uint8
	Handle        uint16
	ErrorCode     uint8
}

func (AttErrorResponse) attOpcode() uint8 { return attOpErrorResponse }
func (p AttErrorResponse) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint8(p.RequestOpcode); err != nil {
		return err
	}
	if err := c.PackUint16(p.Handle); err != nil {
		return err
	}
	return c.PackUint8(p.ErrorCode)
}

func init() {
	registerAtt(attOpErrorResponse, func(c *packet.Packet) (AttPdu, error) {
		reqOp, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		handle, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		code, err := c.UnpackUint8()
		return AttErrorResponse{reqOp, handle, code}, err
	})
}

// --- ExchangeMtuRequest / Response -------------------------------------

type AttExchangeMtuRequest struct{ ClientRxMtu uint16 }

func (AttExchangeMtuRequest) attOpcode() uint8 { return attOpExchangeMtuRequest }
func (p AttExchangeMtuRequest) encodeAttPayload(c *packet.Packet) error {
	return c.PackUint16(p.ClientRxMtu)
}

func init() {
	registerAtt(attOpExchangeMtuRequest, func(c *packet.Packet) (AttPdu, error) {
		v, err := c.UnpackUint16()
		return AttExchangeMtuRequest{v}, err
	})
}

type AttExchangeMtuResponse struct{ ServerRxMtu uint16 }

func (AttExchangeMtuResponse) attOpcode() uint8 { return attOpExchangeMtuResponse }
func (p AttExchangeMtuResponse) encodeAttPayload(c *packet.Packet) error {
	return c.PackUint16(p.ServerRxMtu)
}

func init() {
	registerAtt(attOpExchangeMtuResponse, func(c *packet.Packet) (AttPdu, error) {
		v, err := c.UnpackUint16()
		return AttExchangeMtuResponse{v}, err
	})
}

// --- FindInformationRequest / Response ----------------------------------

type AttFindInformationRequest struct {
	StartHandle uint16
	EndHandle   uint16
}

func (AttFindInformationRequest) attOpcode() uint8 { return attOpFindInformationRequest }
func (p AttFindInformationRequest) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint16(p.StartHandle); err != nil {
		return err
	}
	return c.PackUint16(p.EndHandle)
}

func init() {
	registerAtt(attOpFindInformationRequest, func(c *packet.Packet) (AttPdu, error) {
		start, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		end, err := c.UnpackUint16()
		return AttFindInformationRequest{start, end}, err
	})
}

type AttFindInformationResponse struct {
	Format uint8
	Data   []byte
}

func (AttFindInformationResponse) attOpcode() uint8 { return attOpFindInformationResponse }
func (p AttFindInformationResponse) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint8(p.Format); err != nil {
		return err
	}
	return c.PackTrailing(p.Data)
}

func init() {
	registerAtt(attOpFindInformationResponse, func(c *packet.Packet) (AttPdu, error) {
		format, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		return AttFindInformationResponse{format, c.UnpackTrailing()}, nil
	})
}

// --- FindByTypeValueRequest / Response -----------------------------------

type AttFindByTypeValueRequest struct {
	StartHandle    uint16
	EndHandle      uint16
	AttributeType  uint16
	AttributeValue []byte
}

func (AttFindByTypeValueRequest) attOpcode() uint8 { return attOpFindByTypeValueRequest }
func (p AttFindByTypeValueRequest) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint16(p.StartHandle); err != nil {
		return err
	}
	if err := c.PackUint16(p.EndHandle); err != nil {
		return err
	}
	if err := c.PackUint16(p.AttributeType); err != nil {
		return err
	}
	return c.PackTrailing(p.AttributeValue)
}

func init() {
	registerAtt(attOpFindByTypeValueRequest, func(c *packet.Packet) (AttPdu, error) {
		start, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		end, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		typ, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		return AttFindByTypeValueRequest{start, end, typ, c.UnpackTrailing()}, nil
	})
}

type AttFindByTypeValueResponse struct{ HandlesInformationList []byte }

func (AttFindByTypeValueResponse) attOpcode() uint8 { return attOpFindByTypeValueResponse }
func (p AttFindByTypeValueResponse) encodeAttPayload(c *packet.Packet) error {
	return c.PackTrailing(p.HandlesInformationList)
}

func init() {
	registerAtt(attOpFindByTypeValueResponse, func(c *packet.Packet) (AttPdu, error) {
		return AttFindByTypeValueResponse{c.UnpackTrailing()}, nil
	})
}

// --- ReadByTypeRequest / Response -----------------------------------------

type AttReadByTypeRequest struct {
	StartHandle   uint16
	EndHandle     uint16
	AttributeType uint16
}

func (AttReadByTypeRequest) attOpcode() uint8 { return attOpReadByTypeRequest }
func (p AttReadByTypeRequest) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint16(p.StartHandle); err != nil {
		return err
	}
	if err := c.PackUint16(p.EndHandle); err != nil {
		return err
	}
	return c.PackUint16(p.AttributeType)
}

func init() {
	registerAtt(attOpReadByTypeRequest, func(c *packet.Packet) (AttPdu, error) {
		start, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		end, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		typ, err := c.UnpackUint16()
		return AttReadByTypeRequest{start, end, typ}, err
	})
}

type AttReadByTypeResponse struct {
	Length uint8
	Data   []byte
}

func (AttReadByTypeResponse) attOpcode() uint8 { return attOpReadByTypeResponse }
func (p AttReadByTypeResponse) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint8(p.Length); err != nil {
		return err
	}
	return c.PackTrailing(p.Data)
}

func init() {
	registerAtt(attOpReadByTypeResponse, func(c *packet.Packet) (AttPdu, error) {
		length, err := c.UnpackUint8()
		if err != nil {
			return nil, err
		}
		return AttReadByTypeResponse{length, c.UnpackTrailing()}, nil
	})
}

// --- ReadRequest / Response ------------------------------------------------

type AttReadRequest struct{ Handle uint16 }

func (AttReadRequest) attOpcode() uint8 { return attOpReadRequest }
func (p AttReadRequest) encodeAttPayload(c *packet.Packet) error {
	return c.PackUint16(p.Handle)
}

func init() {
	registerAtt(attOpReadRequest, func(c *packet.Packet) (AttPdu, error) {
		h, err := c.UnpackUint16()
		return AttReadRequest{h}, err
	})
}

type AttReadResponse struct{ Value []byte }

func (AttReadResponse) attOpcode() uint8 { return attOpReadResponse }
func (p AttReadResponse) encodeAttPayload(c *packet.Packet) error {
	return c.PackTrailing(p.Value)
}

func init() {
	registerAtt(attOpReadResponse, func(c *packet.Packet) (AttPdu, error) {
		return AttReadResponse{c.UnpackTrailing()}, nil
	})
}

// --- WriteRequest / Response -----------------------------------------------

type AttWriteRequest struct {
	Handle uint16
	Value  []byte
}

func (AttWriteRequest) attOpcode() uint8 { return attOpWriteRequest }
func (p AttWriteRequest) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint16(p.Handle); err != nil {
		return err
	}
	return c.PackTrailing(p.Value)
}

func init() {
	registerAtt(attOpWriteRequest, func(c *packet.Packet) (AttPdu, error) {
		h, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		return AttWriteRequest{h, c.UnpackTrailing()}, nil
	})
}

type AttWriteResponse struct{}

func (AttWriteResponse) attOpcode() uint8                           { return attOpWriteResponse }
func (AttWriteResponse) encodeAttPayload(c *packet.Packet) error    { return nil }

func init() {
	registerAtt(attOpWriteResponse, func(c *packet.Packet) (AttPdu, error) { return AttWriteResponse{}, nil })
}

// --- ExecuteWriteRequest / Response ----------------------------------------

type AttExecuteWriteRequest struct{ Flags uint8 }

func (AttExecuteWriteRequest) attOpcode() uint8 { return attOpExecuteWriteRequest }
func (p AttExecuteWriteRequest) encodeAttPayload(c *packet.Packet) error {
	return c.PackUint8(p.Flags)
}

func init() {
	registerAtt(attOpExecuteWriteRequest, func(c *packet.Packet) (AttPdu, error) {
		f, err := c.UnpackUint8()
		return AttExecuteWriteRequest{f}, err
	})
}

type AttExecuteWriteResponse struct{}

func (AttExecuteWriteResponse) attOpcode() uint8                        { return attOpExecuteWriteResponse }
func (AttExecuteWriteResponse) encodeAttPayload(c *packet.Packet) error { return nil }

func init() {
	registerAtt(attOpExecuteWriteResponse, func(c *packet.Packet) (AttPdu, error) {
		return AttExecuteWriteResponse{}, nil
	})
}

// --- HandleValueNotification -----------------------------------------------

type AttHandleValueNotification struct {
	Handle uint16
	Value  []byte
}

func (AttHandleValueNotification) attOpcode() uint8 { return attOpHandleValueNotification }
func (p AttHandleValueNotification) encodeAttPayload(c *packet.Packet) error {
	if err := c.PackUint16(p.Handle); err != nil {
		return err
	}
	return c.PackTrailing(p.Value)
}

func init() {
	registerAtt(attOpHandleValueNotification, func(c *packet.Packet) (AttPdu, error) {
		h, err := c.UnpackUint16()
		if err != nil {
			return nil, err
		}
		return AttHandleValueNotification{h, c.UnpackTrailing()}, nil
	})
}
