package hcidump

import (
	"bytes"
	"testing"

	"github.com/blehost/hoststack/wire"
)

func TestParseSplitsDirectionsAndJoinsContinuations(t *testing.T) {
	dump := `
< 01 03 0C 00
> 04 0E 04 01 03 0C 00
< 01 01 0C 08 FF FF FB FF 07 F8 BF 3D
> 04 0E
  04 01
`
	entries, err := Parse(dump)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("len=%d", len(entries))
	}
	if entries[0].Direction != HostToController || !bytes.Equal(entries[0].Bytes, []byte{1, 3, 12, 0}) {
		t.Fatalf("entry0=%+v", entries[0])
	}
	if entries[1].Direction != ControllerToHost || !bytes.Equal(entries[1].Bytes, []byte{4, 14, 4, 1, 3, 12, 0}) {
		t.Fatalf("entry1=%+v", entries[1])
	}
	if !bytes.Equal(entries[3].Bytes, []byte{4, 14, 4, 1}) {
		t.Fatalf("entry3 (continuation-joined)=%+v", entries[3])
	}
}

func TestParseIgnoresBlankAndUnmarkedLines(t *testing.T) {
	dump := "\n# comment\n< 01 03 0C 00\n\n"
	entries, err := Parse(dump)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len=%d", len(entries))
	}
}

// fixtureDump assembles a synthetic capture from spec.md's own literal
// scenario byte sequences (S2, S3, S4), since no real hcidump-NN.txt
// fixture ships in the retrieved pack.
const fixtureDump = `
< 02 40 00 08 00 04 00 04 00 12 1A 00 01
< 01 03 0C 00
> 04 3E 13 01 00 40 00 01 00 26 0E D6 E8 C2 50 30 00 00 00 C0 03 01
`

func TestFixtureRoundTripsThroughWireCodec(t *testing.T) {
	entries, err := Parse(fixtureDump)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len=%d", len(entries))
	}
	for _, e := range entries {
		f, err := wire.DecodeH4(e.Bytes)
		if err != nil {
			t.Fatalf("decode % X: %v", e.Bytes, err)
		}
		out, err := wire.EncodeH4(f)
		if err != nil {
			t.Fatalf("encode %T: %v", f, err)
		}
		if !bytes.Equal(out, e.Bytes) {
			t.Fatalf("round trip mismatch: got % X want % X", out, e.Bytes)
		}
	}
}
