package binary

// needsStuffing reports whether a 0xFF at b[i] must be followed by a stuffing byte:
// the next byte would complete a false sync (%111xxxxx), is already zero,
// or the 0xFF is the last byte.
func needsStuffing(b []byte, i int) bool {
	if b[i] != 0xFF {
		return false
	}
	return i+1 == len(b) || b[i+1] >= 0xE0 || b[i+1] == 0x00
}

// RequiresUnsync reports whether Unsynchronize would change b.
func RequiresUnsync(b []byte) bool {
	for i := range b {
		if needsStuffing(b, i) {
			return true
		}
	}
	return false
}

// Unsynchronize inserts a zero byte after every 0xFF that could be mistaken
// for the start of an MPEG sync pattern.
func Unsynchronize(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/64+1)
	for i, c := range b {
		out = append(out, c)
		if needsStuffing(b, i) {
			out = append(out, 0x00)
		}
	}
	return out
}

// Deunsynchronize removes the zero byte following every 0xFF.
func Deunsynchronize(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
