// Package config builds the fixed HCI bring-up sequence a driver sends
// before advertising starts, in the same plain command-sequence idiom as
// the reference gatt driver's resetDevice.
package config

import "github.com/blehost/hoststack/wire"

// Advertising data field types, reused from the BLE AD structure so
// InitScript can build a LeSetAdvertisingData payload without a full
// GATT/advertisement package.
const (
	adTypeFlags        = 0x01
	adTypeCompleteName = 0x09
)

const (
	flagLEGeneralDiscoverable = 0x02
	flagLEOnly                = 0x04
)

// Options configures InitScript's device identity.
type Options struct {
	LocalName      string
	RandomAddress  wire.BdAddr
	AdvertisingIntervalMin uint16
	AdvertisingIntervalMax uint16
}

// DefaultOptions mirrors the reference driver's fixture values.
func DefaultOptions() Options {
	return Options{
		LocalName:              "My Pi",
		AdvertisingIntervalMin: 0x00A0,
		AdvertisingIntervalMax: 0x00A0,
	}
}

// InitScript returns the fixed sequence of HCI commands that bring the
// controller up and start advertising: Reset, event masks, scan/timeout
// settings, identity reads, local name and random address, advertising
// parameters, advertising data, and advertising enable.
func InitScript(opts Options) []wire.HciCommand {
	return []wire.HciCommand{
		wire.CmdReset{},
		wire.CmdSetEventMask{Mask: 0x3dbff807fffbffff},
		wire.CmdLeSetEventMask{Mask: 0x000000000000001F},
		wire.CmdWriteScanEnable{Scan: wire.ScanEnableInquiryScanEnabledPageScanEnabled},
		wire.CmdWriteConnectionAcceptTimeout{Timeout: 16288},
		wire.CmdWritePageTimeout{Timeout: 16384},
		wire.CmdReadLocalSupportedCommands{},
		wire.CmdReadBdAddr{},
		wire.CmdLeReadBufferSize{},
		wire.CmdWriteLocalName{Name: opts.LocalName},
		wire.CmdLeSetRandomAddress{Address: opts.RandomAddress},
		wire.CmdLeSetAdvertisingParameters{
			AdvertisingIntervalMin: opts.AdvertisingIntervalMin,
			AdvertisingIntervalMax: opts.AdvertisingIntervalMax,
			AdvertisingType:        0x00,
			OwnAddressType:         0x01,
			PeerAddressType:        0x00,
			AdvertisingChannelMap:  0x07,
			AdvertisingFilterPolicy: 0x00,
		},
		wire.CmdLeSetAdvertisingData{
			Length: advertisingDataLength(opts.LocalName),
			Data:   buildAdvertisingData(opts.LocalName),
		},
		wire.CmdLeSetAdvertisingEnable{Enable: true},
	}
}

// buildAdvertisingData packs a Flags AD structure followed by a Complete
// Local Name AD structure, zero-padded to the fixed 31-byte field.
func buildAdvertisingData(name string) (data [31]byte) {
	i := 0
	i += writeAdStruct(data[i:], adTypeFlags, []byte{flagLEGeneralDiscoverable | flagLEOnly})
	i += writeAdStruct(data[i:], adTypeCompleteName, []byte(name))
	return data
}

func advertisingDataLength(name string) uint8 {
	return uint8(2 + 1 + 2 + len(name))
}

func writeAdStruct(dst []byte, adType uint8, value []byte) int {
	n := 1 + len(value)
	dst[0] = uint8(n)
	dst[1] = adType
	copy(dst[2:], value)
	return 1 + n
}
