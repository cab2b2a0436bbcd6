// Command blehostd drives the broker against a transport socket: it sends
// the fixed bring-up sequence, then loops reading inbound frames and
// feeding them through the broker, writing out whatever the broker
// produces, draining the broker's own follow-up messages (lifecycle
// transitions, handler replies) before reading the next inbound frame.
package main

import (
	"errors"
	"flag"
	"math/rand"

	"github.com/blehost/hoststack/broker"
	"github.com/blehost/hoststack/config"
	"github.com/blehost/hoststack/internal/xlog"
	"github.com/blehost/hoststack/socket"
	"github.com/blehost/hoststack/wire"
	"github.com/sirupsen/logrus"
)

var log = xlog.Get("blehostd")

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	if *debug {
		xlog.SetLevel(logrus.DebugLevel)
	}

	sock, err := openSocket()
	if err != nil {
		log.WithError(err).Fatal("failed to open HCI socket")
	}
	Run(sock, config.DefaultOptions())
}

// Run executes the full bring-up sequence against sock, then services the
// broker's cooperative dispatch loop until Read reports that no frame is
// available; a Read error is fatal.
func Run(sock socket.Socket, opts config.Options) {
	b := broker.New(opts.RandomAddress, wire.AddressRandom, systemRandom{})

	for _, cmd := range config.InitScript(opts) {
		if err := sock.Write(wire.H4Command{Command: cmd}); err != nil {
			log.WithError(err).Fatal("failed to write init command")
		}
	}

	var pending []broker.Msg
	for {
		frame, ok, err := sock.Read()
		if err != nil {
			log.WithError(err).Fatal("socket read failed")
		}
		if !ok {
			return
		}
		pending = append(pending, broker.Recv{Frame: frame})

		for len(pending) > 0 {
			msg := pending[0]
			pending = pending[1:]
			out := b.Process(msg)
			for _, m := range out {
				if send, ok := m.(broker.Send); ok {
					if err := sock.Write(send.Frame); err != nil {
						log.WithError(err).Error("socket write failed")
					}
					continue
				}
				pending = append(pending, m)
			}
		}
	}
}

type systemRandom struct{}

func (systemRandom) LocalRand() wire.Uint128 {
	var v wire.Uint128
	rand.Read(v[:])
	return v
}

func (systemRandom) CidRand() uint64 { return rand.Uint64() }

func (systemRandom) LongTermKey() wire.Uint128 {
	var v wire.Uint128
	rand.Read(v[:])
	return v
}

// openSocket is intentionally unimplemented: the real HCI_CHANNEL_USER
// transport is an external collaborator outside this stack's scope (see
// socket.Socket), left for the surrounding platform integration to supply.
func openSocket() (socket.Socket, error) {
	return nil, errors.New("no transport wired: blehostd needs a platform-specific socket.Socket implementation")
}
