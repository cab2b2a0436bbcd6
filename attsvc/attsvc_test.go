package attsvc

import "testing"

import "github.com/blehost/hoststack/wire"

func TestMtuExchangeScenario(t *testing.T) {
	h := New(wire.LeConnectionComplete{ConnectionHandle: 0x0040})

	out := h.Execute()
	if len(out) != 1 {
		t.Fatalf("execute out=%v", out)
	}
	req := out[0].(wire.H4Acl).Acl.Payload.(wire.L2capAtt).Pdu.(wire.AttExchangeMtuRequest)
	if req.ClientRxMtu != 247 {
		t.Fatalf("mtu=%v", req.ClientRxMtu)
	}
	if out2 := h.Execute(); out2 != nil {
		t.Fatalf("second execute should be a no-op, got %v", out2)
	}

	inReq := wire.H4Acl{Acl: &wire.HciAcl{
		ConnectionHandle: 0x0040,
		Payload:          wire.L2capAtt{Pdu: wire.AttExchangeMtuRequest{ClientRxMtu: 512}},
	}}
	out = h.Process(inReq)
	if len(out) != 1 {
		t.Fatalf("process request out=%v", out)
	}
	resp := out[0].(wire.H4Acl).Acl.Payload.(wire.L2capAtt).Pdu.(wire.AttExchangeMtuResponse)
	if resp.ServerRxMtu != 247 {
		t.Fatalf("resp mtu=%v", resp.ServerRxMtu)
	}
	if h.PeerMtu() != 247 {
		t.Fatalf("peer mtu should clamp to server mtu, got %v", h.PeerMtu())
	}

	inResp := wire.H4Acl{Acl: &wire.HciAcl{
		ConnectionHandle: 0x0040,
		Payload:          wire.L2capAtt{Pdu: wire.AttExchangeMtuResponse{ServerRxMtu: 400}},
	}}
	if out := h.Process(inResp); out != nil {
		t.Fatalf("response should produce no output, got %v", out)
	}
	if h.PeerMtu() != 400 {
		t.Fatalf("peer mtu=%v", h.PeerMtu())
	}
}

func TestIgnoresOtherConnection(t *testing.T) {
	h := New(wire.LeConnectionComplete{ConnectionHandle: 0x0040})
	frame := wire.H4Acl{Acl: &wire.HciAcl{
		ConnectionHandle: 0x0041,
		Payload:          wire.L2capAtt{Pdu: wire.AttExchangeMtuRequest{ClientRxMtu: 100}},
	}}
	if out := h.Process(frame); out != nil {
		t.Fatalf("got %v", out)
	}
	if h.PeerMtu() != 0 {
		t.Fatalf("peer mtu=%v", h.PeerMtu())
	}
}
