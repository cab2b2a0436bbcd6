package config

import (
	"testing"

	"github.com/blehost/hoststack/wire"
)

func TestInitScriptOrderAndCount(t *testing.T) {
	seq := InitScript(DefaultOptions())
	if len(seq) != 14 {
		t.Fatalf("len=%d", len(seq))
	}
	if _, ok := seq[0].(wire.CmdReset); !ok {
		t.Fatalf("first=%T, want CmdReset", seq[0])
	}
	last := seq[len(seq)-1]
	enable, ok := last.(wire.CmdLeSetAdvertisingEnable)
	if !ok || !enable.Enable {
		t.Fatalf("last=%v, want CmdLeSetAdvertisingEnable{true}", last)
	}
}

func TestInitScriptCarriesLocalName(t *testing.T) {
	seq := InitScript(Options{LocalName: "test-dev"})
	for _, c := range seq {
		if wln, ok := c.(wire.CmdWriteLocalName); ok {
			if wln.Name != "test-dev" {
				t.Fatalf("name=%q", wln.Name)
			}
			return
		}
	}
	t.Fatal("no CmdWriteLocalName in sequence")
}

func TestAdvertisingDataEncodesFlagsAndName(t *testing.T) {
	data := buildAdvertisingData("Pi")
	if data[0] != 2 || data[1] != adTypeFlags {
		t.Fatalf("flags struct=%v", data[:2])
	}
	if data[3] != 3 || data[4] != adTypeCompleteName {
		t.Fatalf("name struct=%v", data[3:5])
	}
	if string(data[5:7]) != "Pi" {
		t.Fatalf("name bytes=%v", data[5:7])
	}
}
