package packet

// setBitsLE writes the low (end-start+1) bits of value into val's
// [start,end] bit range, little-endian within each byte, low bit first
// within the field.
func setBitsLE(val []byte, start, end int, value []byte) {
	numBits := end - start + 1
	for i := 0; i < numBits; i++ {
		bitPos := start + i
		byteIdx := bitPos / 8
		bitInByte := uint(bitPos % 8)
		if byteIdx >= len(val) {
			continue
		}

		var valueBit byte
		vByteIdx := i / 8
		if vByteIdx < len(value) {
			valueBit = (value[vByteIdx] >> uint(i%8)) & 1
		}

		val[byteIdx] &^= 1 << bitInByte
		if valueBit == 1 {
			val[byteIdx] |= 1 << bitInByte
		}
	}
}

// getBitsLE extracts val's [start,end] bit range into a byte slice the same
// length as val, little-endian within each byte, low bit first within the
// field.
func getBitsLE(val []byte, start, end int) []byte {
	numBits := end - start + 1
	result := make([]byte, len(val))
	for i := 0; i < numBits; i++ {
		bitPos := start + i
		valByte := bitPos / 8
		valBit := uint(bitPos % 8)
		if valByte >= len(val) {
			continue
		}
		bit := (val[valByte] >> valBit) & 1

		resByte := i / 8
		resBit := uint(i % 8)
		if resByte < len(result) {
			result[resByte] |= bit << resBit
		}
	}
	return result
}
