package sanctions

// Similarity computes a normalized, symmetric string-similarity ratio in
// [0, 1] using the Ratcliff/Obershelp algorithm: twice the number of
// characters in recursively matched longest common blocks, divided by the
// total length of both strings. Identical strings score 1.0.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedChars(ra, rb)) / float64(total)
}

func matchedChars(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchedChars(a[:i], b[:j])
	matched += matchedChars(a[i+size:], b[j+size:])
	return matched
}

// longestMatch finds the longest common contiguous block between a and b,
// preferring the earliest occurrence in a, then in b.
func longestMatch(a, b []rune) (bestI, bestJ, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] holds the running match length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestI, bestJ, bestSize
}
