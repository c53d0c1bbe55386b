package highlight

import "unicode/utf16"

// Offsets are measured in UTF-16 code units, the unit browsers use for
// selection ranges. Runes outside the BMP take two units.

// Len16 returns the length of s in UTF-16 code units.
func Len16(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func encode16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func decode16(units []uint16) string {
	return string(utf16.Decode(units))
}

// splitsPair reports whether offset i falls between the two halves of a
// surrogate pair.
func splitsPair(units []uint16, i int) bool {
	if i <= 0 || i >= len(units) {
		return false
	}
	return utf16.IsSurrogate(rune(units[i-1])) && units[i-1] < 0xDC00 && units[i] >= 0xDC00 && units[i] <= 0xDFFF
}

// snap moves an offset that splits a surrogate pair past the low half.
func snap(units []uint16, i int) int {
	if splitsPair(units, i) {
		return i + 1
	}
	return i
}
