// Package broker implements the message-driven connection pipeline: it
// dispatches inbound/outbound packets and internal app events to the
// per-connection pairing and ATT handlers, and tracks HCI flow-control
// credits and connection lifecycle.
package broker

import (
	"github.com/blehost/hoststack/attsvc"
	"github.com/blehost/hoststack/internal/xlog"
	"github.com/blehost/hoststack/pairing"
	"github.com/blehost/hoststack/wire"
)

var log = xlog.Get("broker")

// Msg is the broker's message algebra: everything that flows through
// process in one call. InitAttHandler/InitPairingHandler are not modeled
// as Msg values here: the ATT handler's one-time bring-up traffic is
// produced by its Execute tick (spec §4.6's sanctioned alternative) at
// construction time, and the pairing handler's own init step produces no
// output (pairing is peer-initiated), so both would carry no payload.
type Msg interface {
	isMsg()
}

type Send struct{ Frame wire.H4Frame }
type Recv struct{ Frame wire.H4Frame }

// Disconnect requests that a connection be torn down.
type Disconnect struct{ Handle wire.ConnectionHandle }

// DisconnectComplete reports that a connection has already been torn down.
type DisconnectComplete struct{ Handle wire.ConnectionHandle }

// Pairing reports that a connection has started the pairing procedure.
type Pairing struct{ Handle wire.ConnectionHandle }

// PairingComplete reports that a connection finished pairing successfully.
type PairingComplete struct{ Handle wire.ConnectionHandle }

func (Send) isMsg()               {}
func (Recv) isMsg()               {}
func (Disconnect) isMsg()         {}
func (DisconnectComplete) isMsg() {}
func (Pairing) isMsg()            {}
func (PairingComplete) isMsg()    {}

// hciDisconnectReasonRemoteUserTerminated is the reason code given to the
// controller for a host-initiated teardown (Core Spec "Remote User
// Terminated Connection", the value the reference driver's own
// disconnect path uses).
const hciDisconnectReasonRemoteUserTerminated uint8 = 0x13

// RandomSource supplies the per-connection pairing random values and
// central-identification materials; the broker has no randomness of its
// own (construction-time injection, per the pairing handler's contract).
type RandomSource interface {
	LocalRand() wire.Uint128
	CidRand() uint64
	LongTermKey() wire.Uint128
}

type connHandlers struct {
	att     *attsvc.Handler
	pairing *pairing.Handler

	pairingStarted  bool
	pairingNotified bool
}

// Broker owns the handler set, the HCI flow-control credit count, and the
// local identity used to construct pairing handlers.
type Broker struct {
	handlers      map[wire.ConnectionHandle]*connHandlers
	order         []wire.ConnectionHandle
	hciCredits    uint8
	localAddr     wire.BdAddr
	localAddrType wire.AddressType
	rand          RandomSource

	unpaired map[wire.ConnectionHandle]bool
	paired   map[wire.ConnectionHandle]bool
}

// New constructs an empty broker bound to the given local identity and
// random source.
func New(localAddr wire.BdAddr, localAddrType wire.AddressType, rand RandomSource) *Broker {
	return &Broker{
		handlers:      map[wire.ConnectionHandle]*connHandlers{},
		localAddr:     localAddr,
		localAddrType: localAddrType,
		rand:          rand,
		unpaired:      map[wire.ConnectionHandle]bool{},
		paired:        map[wire.ConnectionHandle]bool{},
	}
}

// Process is the broker's single entry point: it fans msg out to every
// registered handler in registration order, then applies the broker's own
// interpretation, returning the combined, ordered output.
func (b *Broker) Process(msg Msg) []Msg {
	var out []Msg

	for _, h := range b.order {
		ch := b.handlers[h]
		if ch == nil {
			continue
		}
		out = append(out, dispatchToHandler(h, ch, msg)...)
	}

	out = append(out, b.interpret(msg)...)
	return out
}

// dispatchToHandler clones msg to the connection's handlers. Only Recv
// carries wire traffic the per-connection handlers react to; the pairing
// handler's own phase transitions are also watched here to derive the
// Pairing/PairingComplete lifecycle messages.
func dispatchToHandler(handle wire.ConnectionHandle, ch *connHandlers, msg Msg) []Msg {
	recv, ok := msg.(Recv)
	if !ok {
		return nil
	}

	var out []Msg
	if ch.att != nil {
		for _, f := range ch.att.Process(recv.Frame) {
			out = append(out, Send{f})
		}
	}
	if ch.pairing != nil {
		for _, f := range ch.pairing.Process(recv.Frame) {
			out = append(out, Send{f})
		}
		if !ch.pairingStarted && ch.pairing.Phase() != pairing.AwaitPairingReq {
			ch.pairingStarted = true
			out = append(out, Pairing{Handle: handle})
		}
		if !ch.pairingNotified && ch.pairing.Phase() == pairing.Done {
			ch.pairingNotified = true
			out = append(out, PairingComplete{Handle: handle})
		}
	}
	return out
}

func (b *Broker) interpret(msg Msg) []Msg {
	switch m := msg.(type) {
	case Recv:
		return b.interpretRecv(m.Frame)
	case Disconnect:
		return []Msg{Send{wire.H4Command{Command: wire.CmdDisconnect{
			ConnectionHandle: m.Handle,
			Reason:           hciDisconnectReasonRemoteUserTerminated,
		}}}}
	case DisconnectComplete:
		delete(b.handlers, m.Handle)
		b.order = removeHandle(b.order, m.Handle)
		delete(b.unpaired, m.Handle)
		delete(b.paired, m.Handle)
	case Pairing:
		b.unpaired[m.Handle] = true
	case PairingComplete:
		delete(b.unpaired, m.Handle)
		b.paired[m.Handle] = true
	}
	return nil
}

// Paired reports whether the given connection has completed pairing.
func (b *Broker) Paired(h wire.ConnectionHandle) bool { return b.paired[h] }

func (b *Broker) interpretRecv(frame wire.H4Frame) []Msg {
	evt, ok := frame.(wire.H4Event)
	if !ok {
		return nil
	}
	switch e := evt.Event.(type) {
	case wire.EvtCommandComplete:
		b.hciCredits = e.NumHciCommandPackets
	case wire.EvtCommandStatus:
		b.hciCredits = e.NumHciCommandPackets
	case wire.EvtLeMetaEvent:
		if cc, ok := e.Subevent.(wire.LeConnectionComplete); ok {
			return b.onConnectionComplete(cc)
		}
	}
	return nil
}

func (b *Broker) onConnectionComplete(cc wire.LeConnectionComplete) []Msg {
	ch := &connHandlers{
		att: attsvc.New(cc),
		pairing: pairing.New(cc, b.localAddr, b.localAddrType,
			b.rand.LocalRand(), b.rand.CidRand(), b.rand.LongTermKey()),
	}
	b.handlers[cc.ConnectionHandle] = ch
	b.order = append(b.order, cc.ConnectionHandle)

	var out []Msg
	for _, f := range ch.att.Execute() {
		out = append(out, Send{f})
	}
	log.WithField("handle", cc.ConnectionHandle).Debug("connection established")
	return out
}

// HciCredits reports the broker's current flow-control allowance.
func (b *Broker) HciCredits() uint8 { return b.hciCredits }

func removeHandle(order []wire.ConnectionHandle, h wire.ConnectionHandle) []wire.ConnectionHandle {
	out := order[:0]
	for _, v := range order {
		if v != h {
			out = append(out, v)
		}
	}
	return out
}
