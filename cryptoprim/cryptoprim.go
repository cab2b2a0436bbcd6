// Package cryptoprim implements the LE legacy pairing security toolbox
// functions (e, c1, s1) used by package pairing to derive confirm values and
// the short-term key.
package cryptoprim

import (
	"crypto/aes"

	"github.com/blehost/hoststack/wire"
)

func xor128(a, b wire.Uint128) wire.Uint128 {
	var out wire.Uint128
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// e is the Security Manager toolbox function e: AES-128 block encryption of
// plaintext under key, per the Core Spec's security function e.
func e(key, plaintext wire.Uint128) wire.Uint128 {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		panic(err)
	}
	var out wire.Uint128
	block.Encrypt(out[:], plaintext[:])
	return out
}

// S1 is the toolbox function s1, used to derive the short-term key from the
// two pairing random values.
func S1(k, r1, r2 wire.Uint128) wire.Uint128 {
	var plaintext wire.Uint128
	copy(plaintext[0:8], r1[0:8])
	copy(plaintext[8:16], r2[0:8])
	return e(k, plaintext)
}

// C1 is the confirm value generation function c1 for LE legacy pairing. pres
// and preq are the 7-byte PairingResponse/PairingRequest commands (the SMP
// code followed by IO capability through responder key distribution); iat/rat are the
// initiator/responder address types (0=public, 1=random); ia/ra are the
// 6-byte initiator/responder addresses.
func C1(k, r wire.Uint128, pres, preq [7]byte, iat uint8, ia [6]byte, rat uint8, ra [6]byte) wire.Uint128 {
	var p1 wire.Uint128
	p1[0] = iat & 0x01
	p1[1] = rat & 0x01
	copy(p1[2:9], preq[:])
	copy(p1[9:16], pres[:])

	var p2 wire.Uint128
	copy(p2[0:6], ra[:])
	copy(p2[6:12], ia[:])

	return e(k, xor128(e(k, xor128(r, p1)), p2))
}
