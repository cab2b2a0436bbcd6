// Package attsvc implements the per-connection ATT MTU exchange handshake.
// The rest of the Attribute Protocol (attribute database, reads, writes,
// notifications) is explicitly out of scope; this handler only negotiates
// the transport MTU.
package attsvc

import "github.com/blehost/hoststack/wire"

// ServerMtu is this stack's advertised receive MTU.
const ServerMtu uint16 = 247

// Handler negotiates the ATT MTU for one connection.
type Handler struct {
	connectionHandle wire.ConnectionHandle
	peerMtu          uint16
	negotiationStarted bool
}

// New constructs an ATT handler for a freshly completed LE connection.
func New(lecon wire.LeConnectionComplete) *Handler {
	return &Handler{connectionHandle: lecon.ConnectionHandle}
}

// PeerMtu reports the negotiated peer MTU, or 0 if not yet known.
func (h *Handler) PeerMtu() uint16 { return h.peerMtu }

func (h *Handler) aclOut(pdu wire.AttPdu) wire.H4Frame {
	return wire.H4Acl{Acl: &wire.HciAcl{
		ConnectionHandle: h.connectionHandle,
		PbFlag:           wire.PBFirstNonFlushable,
		BcFlag:           wire.BCPointToPoint,
		Payload:          wire.L2capAtt{Pdu: pdu},
	}}
}

// Execute starts the handshake on connection setup, emitting the one-time
// ExchangeMtuRequest.
func (h *Handler) Execute() []wire.H4Frame {
	if h.negotiationStarted {
		return nil
	}
	h.negotiationStarted = true
	return []wire.H4Frame{h.aclOut(wire.AttExchangeMtuRequest{ClientRxMtu: ServerMtu})}
}

// Process handles one inbound frame addressed to this connection.
func (h *Handler) Process(frame wire.H4Frame) []wire.H4Frame {
	acl, ok := frame.(wire.H4Acl)
	if !ok || acl.Acl.ConnectionHandle != h.connectionHandle {
		return nil
	}
	att, ok := acl.Acl.Payload.(wire.L2capAtt)
	if !ok {
		return nil
	}
	switch pdu := att.Pdu.(type) {
	case wire.AttExchangeMtuRequest:
		// min(server_mtu, v) per this design's literal contract, in
		// contrast to the reference handler's unconditional overwrite.
		if pdu.ClientRxMtu < ServerMtu {
			h.peerMtu = pdu.ClientRxMtu
		} else {
			h.peerMtu = ServerMtu
		}
		return []wire.H4Frame{h.aclOut(wire.AttExchangeMtuResponse{ServerRxMtu: ServerMtu})}
	case wire.AttExchangeMtuResponse:
		// Direct assignment, no clamp: the asymmetry vs. the request
		// branch is this design's literal contract.
		h.peerMtu = pdu.ServerRxMtu
	}
	return nil
}
