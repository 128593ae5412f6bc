package h264

// findStartCode scans buf starting at from for the next Annex-B start
// code (00 00 01 or 00 00 00 01). It returns the index the start code
// begins at and its length (3 or 4), or ok=false if no complete start
// code was found at or after from.
func findStartCode(buf []byte, from int) (at, length int, ok bool) {
	for i := from; i+2 < len(buf); i++ {
		if buf[i] != 0 || buf[i+1] != 0 || buf[i+2] != 1 {
			continue
		}
		if i-1 >= 0 && buf[i-1] == 0 {
			// The 4-byte form; back up one so the caller sees the whole prefix.
			return i - 1, 4, true
		}
		return i, 3, true
	}
	return 0, 0, false
}
