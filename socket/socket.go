// Package socket defines the transport collaborator contract: read one
// framed packet, write one framed packet. The real HCI socket is external
// to this stack (see the reference gatt driver's linux/internal/socket
// package for what a raw HCI_CHANNEL_USER socket looks like); this package
// only carries the interface and a mock for deterministic tests.
package socket

import "github.com/blehost/hoststack/wire"

// Socket is the transport collaborator: read returns (nil, false) when no
// packet is currently available; write is fire-and-forget from the core's
// perspective, errors are opaque and surface to the outer driver loop.
type Socket interface {
	Read() (wire.H4Frame, bool, error)
	Write(wire.H4Frame) error
}

// Direction distinguishes the two halves of a scripted exchange.
type Direction int

const (
	HostToController Direction = iota
	ControllerToHost
)

// Entry is one scripted exchange step for MockSocket.
type Entry struct {
	Direction Direction
	Frame     wire.H4Frame
}

// MockSocket drives tests from a pre-populated queue of (direction, frame)
// entries: Read drains ControllerToHost entries in order; Write records
// the frame and compares it with the next expected HostToController entry
// by their encoded bytes, reporting a mismatch only to the callback set by
// RespondWith (without one, a mismatch goes unreported).
type MockSocket struct {
	script  []Entry
	cursor  int
	written []wire.H4Frame
	onMismatch func(want, got wire.H4Frame)
}

// NewMock builds a MockSocket from a fixed script.
func NewMock(script []Entry) *MockSocket {
	return &MockSocket{script: script}
}

// RespondWith installs a callback invoked whenever Write doesn't match the
// next expected HostToController entry, letting tests assert without
// panicking mid-run.
func (m *MockSocket) RespondWith(onMismatch func(want, got wire.H4Frame)) {
	m.onMismatch = onMismatch
}

func (m *MockSocket) Read() (wire.H4Frame, bool, error) {
	for m.cursor < len(m.script) {
		e := m.script[m.cursor]
		if e.Direction != ControllerToHost {
			break
		}
		m.cursor++
		return e.Frame, true, nil
	}
	return nil, false, nil
}

func (m *MockSocket) Write(f wire.H4Frame) error {
	m.written = append(m.written, f)
	if m.cursor < len(m.script) {
		e := m.script[m.cursor]
		if e.Direction == HostToController {
			m.cursor++
			if m.onMismatch != nil && !framesEqual(e.Frame, f) {
				m.onMismatch(e.Frame, f)
			}
			return nil
		}
	}
	if m.onMismatch != nil {
		m.onMismatch(nil, f)
	}
	return nil
}

// Written returns every frame handed to Write, in order.
func (m *MockSocket) Written() []wire.H4Frame { return m.written }

func framesEqual(a, b wire.H4Frame) bool {
	ab, aerr := wire.EncodeH4(a)
	bb, berr := wire.EncodeH4(b)
	if aerr != nil || berr != nil {
		return false
	}
	if len(ab) != len(bb) {
		return false
	}
	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}
	return true
}
