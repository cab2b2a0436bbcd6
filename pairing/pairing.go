// Package pairing implements the LE legacy (Just-Works) pairing state
// machine driven by the broker's per-connection handler dispatch.
package pairing

import (
	"github.com/blehost/hoststack/cryptoprim"
	"github.com/blehost/hoststack/wire"
)

// Phase is the pairing handler's state.
type Phase int

const (
	AwaitPairingReq Phase = iota
	AwaitConfirm
	AwaitRandom
	AwaitLTKReq
	AwaitEncChange
	Done
	Failed
)

// Handler is the per-connection LE legacy pairing state machine. The zero
// key (all-zero 128-bit) is used throughout, matching Just-Works pairing's
// temporary key.
type Handler struct {
	connectionHandle wire.ConnectionHandle
	localAddr        wire.BdAddr
	localAddrType    wire.AddressType
	localRand        wire.Uint128
	cidRand          uint64
	longTermKey      wire.Uint128

	phase      Phase
	FailReason wire.SmpPairingFailure

	preq        [7]byte
	pres        [7]byte
	peerConfirm wire.Uint128
	peerRand    wire.Uint128
	peerRandSet bool
	peerAddr    wire.BdAddr
	peerAddrType wire.AddressType
}

var zeroKey wire.Uint128

// New constructs a pairing handler for a freshly completed LE connection.
// localRand is the server's chosen pairing random value; cidRand and ltk
// are the central identification random and long-term key emitted once
// encryption is established.
func New(lecon wire.LeConnectionComplete, localAddr wire.BdAddr, localAddrType wire.AddressType, localRand wire.Uint128, cidRand uint64, ltk wire.Uint128) *Handler {
	return &Handler{
		connectionHandle: lecon.ConnectionHandle,
		localAddr:        localAddr,
		localAddrType:    localAddrType,
		localRand:        localRand,
		cidRand:          cidRand,
		longTermKey:      ltk,
		phase:            AwaitPairingReq,
		peerAddr:         lecon.PeerAddress,
		peerAddrType:     lecon.PeerAddressType,
	}
}

func (h *Handler) Phase() Phase { return h.phase }

func (h *Handler) aclOut(pdu wire.SmpPdu) wire.H4Frame {
	return wire.H4Acl{Acl: &wire.HciAcl{
		ConnectionHandle: h.connectionHandle,
		PbFlag:           wire.PBFirstNonFlushable,
		BcFlag:           wire.BCPointToPoint,
		Payload:          wire.L2capSmp{Pdu: pdu},
	}}
}

func (h *Handler) c1(r wire.Uint128) wire.Uint128 {
	return cryptoprim.C1(
		zeroKey, r, h.pres, h.preq,
		uint8(h.peerAddrType), h.peerAddr,
		uint8(h.localAddrType), h.localAddr,
	)
}

// Process handles one inbound frame addressed to this connection and
// returns the (possibly empty) sequence of frames to send in response.
func (h *Handler) Process(frame wire.H4Frame) []wire.H4Frame {
	switch f := frame.(type) {
	case wire.H4Acl:
		return h.processAcl(f.Acl)
	case wire.H4Event:
		return h.processEvent(f.Event)
	default:
		return nil
	}
}

func (h *Handler) processAcl(acl *wire.HciAcl) []wire.H4Frame {
	if acl.ConnectionHandle != h.connectionHandle {
		return nil
	}
	smp, ok := acl.Payload.(wire.L2capSmp)
	if !ok {
		return nil
	}

	switch h.phase {
	case AwaitPairingReq:
		req, ok := smp.Pdu.(wire.SmpPairingReqRes)
		if !ok || req.IsResponse() {
			return nil
		}
		res := wire.NewPairingResponse(
			wire.IOCapabilityNoInputNoOutput,
			wire.OOBNotAvailable,
			wire.AuthenticationRequirements{Bonding: true},
			16,
			wire.KeyDistributionFlags{},
			wire.KeyDistributionFlags{EncKey: true},
		)
		h.preq = req.Bytes()
		h.pres = res.Bytes()
		h.phase = AwaitConfirm
		return []wire.H4Frame{h.aclOut(res)}

	case AwaitConfirm:
		confirm, ok := smp.Pdu.(wire.SmpPairingConfirm)
		if !ok {
			return nil
		}
		h.peerConfirm = confirm.Value
		localConfirm := h.c1(h.localRand)
		h.phase = AwaitRandom
		return []wire.H4Frame{h.aclOut(wire.SmpPairingConfirm{Value: localConfirm})}

	case AwaitRandom:
		random, ok := smp.Pdu.(wire.SmpPairingRandom)
		if !ok {
			return nil
		}
		h.peerRand = random.Value
		h.peerRandSet = true
		expected := h.c1(h.peerRand)
		if expected != h.peerConfirm {
			h.phase = Failed
			h.FailReason = wire.SmpFailConfirmValueFailed
			return []wire.H4Frame{h.aclOut(wire.SmpPairingFailed{Reason: wire.SmpFailConfirmValueFailed})}
		}
		h.phase = AwaitLTKReq
		return []wire.H4Frame{h.aclOut(wire.SmpPairingRandom{Value: h.localRand})}
	}
	return nil
}

func (h *Handler) processEvent(evt wire.HciEvent) []wire.H4Frame {
	switch h.phase {
	case AwaitLTKReq:
		meta, ok := evt.(wire.EvtLeMetaEvent)
		if !ok {
			return nil
		}
		req, ok := meta.Subevent.(wire.LeLongTermKeyRequest)
		if !ok || req.ConnectionHandle != h.connectionHandle {
			return nil
		}
		if !h.peerRandSet {
			h.phase = Failed
			h.FailReason = wire.SmpFailUnspecifiedReason
			return []wire.H4Frame{wire.H4Command{Command: wire.CmdLeLongTermKeyRequestNegativeReply{
				ConnectionHandle: h.connectionHandle,
			}}}
		}
		stk := cryptoprim.S1(zeroKey, h.localRand, h.peerRand)
		h.phase = AwaitEncChange
		return []wire.H4Frame{wire.H4Command{Command: wire.CmdLeLongTermKeyRequestReply{
			ConnectionHandle: h.connectionHandle,
			LongTermKey:      stk,
		}}}

	case AwaitEncChange:
		ch, ok := evt.(wire.EvtEncryptionChange)
		if !ok || ch.ConnectionHandle != h.connectionHandle || !ch.EncryptionEnabled {
			return nil
		}
		h.phase = Done
		return []wire.H4Frame{
			h.aclOut(wire.SmpEncryptionInformation{LongTermKey: h.longTermKey}),
			h.aclOut(wire.SmpCentralIdentification{EncryptedDiversifier: 0, RandomNumber: h.cidRand}),
		}
	}
	return nil
}
