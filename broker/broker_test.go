package broker

import (
	"testing"

	"github.com/blehost/hoststack/wire"
)

type fixedRandom struct{}

func (fixedRandom) LocalRand() wire.Uint128 { return wire.Uint128{1} }
func (fixedRandom) CidRand() uint64         { return 42 }
func (fixedRandom) LongTermKey() wire.Uint128 { return wire.Uint128{2} }

func leConnectionCompleteFrame(handle wire.ConnectionHandle) wire.H4Frame {
	return wire.H4Event{Event: wire.EvtLeMetaEvent{Subevent: wire.LeConnectionComplete{
		Status:           wire.HciStatusSuccess,
		ConnectionHandle: handle,
		Role:             wire.RolePeripheral,
		PeerAddressType:  wire.AddressPublic,
		PeerAddress:      wire.BdAddr{1, 2, 3, 4, 5, 6},
	}}}
}

func TestConnectionCompleteSpawnsHandlersAndStartsMtu(t *testing.T) {
	b := New(wire.BdAddr{}, wire.AddressPublic, fixedRandom{})

	out := b.Process(Recv{leConnectionCompleteFrame(0x0040)})
	if len(out) != 1 {
		t.Fatalf("out=%v", out)
	}
	send, ok := out[0].(Send)
	if !ok {
		t.Fatalf("got %T", out[0])
	}
	req := send.Frame.(wire.H4Acl).Acl.Payload.(wire.L2capAtt).Pdu.(wire.AttExchangeMtuRequest)
	if req.ClientRxMtu != 247 {
		t.Fatalf("mtu=%v", req.ClientRxMtu)
	}
	if _, ok := b.handlers[0x0040]; !ok {
		t.Fatal("expected handler set for connection")
	}
}

func TestCommandCompleteUpdatesCredits(t *testing.T) {
	b := New(wire.BdAddr{}, wire.AddressPublic, fixedRandom{})
	out := b.Process(Recv{wire.H4Event{Event: wire.EvtCommandComplete{NumHciCommandPackets: 5, Opcode: wire.OpCode{}}}})
	if out != nil {
		t.Fatalf("out=%v", out)
	}
	if b.HciCredits() != 5 {
		t.Fatalf("credits=%v", b.HciCredits())
	}
}

func TestDisconnectCompleteRetiresHandlers(t *testing.T) {
	b := New(wire.BdAddr{}, wire.AddressPublic, fixedRandom{})
	b.Process(Recv{leConnectionCompleteFrame(0x0040)})
	if _, ok := b.handlers[0x0040]; !ok {
		t.Fatal("expected handler before disconnect")
	}
	b.Process(DisconnectComplete{Handle: 0x0040})
	if _, ok := b.handlers[0x0040]; ok {
		t.Fatal("expected handler removed after disconnect")
	}
}

func TestDisconnectMsgEmitsHciDisconnectCommand(t *testing.T) {
	b := New(wire.BdAddr{}, wire.AddressPublic, fixedRandom{})
	out := b.Process(Disconnect{Handle: 0x0040})
	if len(out) != 1 {
		t.Fatalf("out=%v", out)
	}
	cmd, ok := out[0].(Send).Frame.(wire.H4Command).Command.(wire.CmdDisconnect)
	if !ok || cmd.ConnectionHandle != 0x0040 {
		t.Fatalf("got %+v", out[0])
	}
}

func TestPairingLifecycleMsgsAreDerivedAndTracked(t *testing.T) {
	b := New(wire.BdAddr{}, wire.AddressPublic, fixedRandom{})
	b.Process(Recv{leConnectionCompleteFrame(0x0040)})

	req := wire.NewPairingRequest(wire.IOCapabilityNoInputNoOutput, wire.OOBNotAvailable, wire.AuthenticationRequirements{}, 16, wire.KeyDistributionFlags{}, wire.KeyDistributionFlags{})
	frame := wire.H4Acl{Acl: &wire.HciAcl{ConnectionHandle: 0x0040, Payload: wire.L2capSmp{Pdu: req}}}

	out := b.Process(Recv{frame})
	var sawPairing, sawPairingComplete bool
	for _, m := range out {
		switch p := m.(type) {
		case Pairing:
			sawPairing = true
			if p.Handle != 0x0040 {
				t.Fatalf("handle=%v", p.Handle)
			}
		case PairingComplete:
			sawPairingComplete = true
		}
	}
	if !sawPairing {
		t.Fatalf("expected Pairing msg, got %v", out)
	}
	if sawPairingComplete {
		t.Fatalf("did not expect PairingComplete yet, got %v", out)
	}

	// Feeding the derived Pairing msg back through Process (as the outer
	// driver loop would) must update the broker's bookkeeping and must not
	// re-emit it from dispatchToHandler a second time.
	again := b.Process(Pairing{Handle: 0x0040})
	for _, m := range again {
		if _, ok := m.(Pairing); ok {
			t.Fatal("Pairing msg re-derived on a later Process call")
		}
	}
	if b.Paired(0x0040) {
		t.Fatal("expected not yet paired")
	}
}

func TestPairingRequestRoutedToPairingHandler(t *testing.T) {
	b := New(wire.BdAddr{}, wire.AddressPublic, fixedRandom{})
	b.Process(Recv{leConnectionCompleteFrame(0x0040)})

	req := wire.NewPairingRequest(wire.IOCapabilityNoInputNoOutput, wire.OOBNotAvailable, wire.AuthenticationRequirements{}, 16, wire.KeyDistributionFlags{}, wire.KeyDistributionFlags{})
	frame := wire.H4Acl{Acl: &wire.HciAcl{ConnectionHandle: 0x0040, Payload: wire.L2capSmp{Pdu: req}}}

	out := b.Process(Recv{frame})
	if len(out) != 2 {
		t.Fatalf("out=%v", out)
	}
	if p, ok := out[1].(Pairing); !ok || p.Handle != 0x0040 {
		t.Fatalf("second output=%v, want Pairing for 0x0040", out[1])
	}
	res := out[0].(Send).Frame.(wire.H4Acl).Acl.Payload.(wire.L2capSmp).Pdu.(wire.SmpPairingReqRes)
	if !res.IsResponse() {
		t.Fatal("expected pairing response")
	}
}
