package main

import (
	"testing"

	"github.com/blehost/hoststack/config"
	"github.com/blehost/hoststack/socket"
	"github.com/blehost/hoststack/wire"
)

func TestRunSendsInitScriptThenDrainsConnection(t *testing.T) {
	cc := wire.H4Event{Event: wire.EvtLeMetaEvent{Subevent: wire.LeConnectionComplete{
		Status:           wire.HciStatusSuccess,
		ConnectionHandle: 0x0040,
		Role:             wire.RolePeripheral,
		PeerAddressType:  wire.AddressPublic,
		PeerAddress:      wire.BdAddr{1, 2, 3, 4, 5, 6},
	}}}

	mock := socket.NewMock([]socket.Entry{
		{Direction: socket.ControllerToHost, Frame: cc},
	})

	Run(mock, config.DefaultOptions())

	seq := config.InitScript(config.DefaultOptions())
	written := mock.Written()
	if len(written) < len(seq) {
		t.Fatalf("written=%d, want at least %d", len(written), len(seq))
	}
	if _, ok := written[0].(wire.H4Command); !ok {
		t.Fatalf("first write=%T, want H4Command", written[0])
	}

	last := written[len(written)-1]
	acl, ok := last.(wire.H4Acl)
	if !ok {
		t.Fatalf("last write=%T, want H4Acl (ATT MTU request)", last)
	}
	att := acl.Acl.Payload.(wire.L2capAtt)
	if _, ok := att.Pdu.(wire.AttExchangeMtuRequest); !ok {
		t.Fatalf("last ATT pdu=%T", att.Pdu)
	}
}
