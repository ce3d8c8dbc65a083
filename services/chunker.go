package services

import "iter"

// Chunks returns a lazy, restartable sequence of fixed-size windows over
// text. Each window is text[offset:offset+size]; the next offset advances
// by size-overlap. Emission stops once a window reaches the end of the
// input. Empty text yields zero windows; text shorter than size yields one
// window equal to the whole text. Requires 0 <= overlap < size.
func Chunks(text string, size, overlap int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if len(text) == 0 || size <= 0 {
			return
		}
		stride := size - overlap
		if stride < 1 {
			stride = 1
		}
		for offset := 0; ; offset += stride {
			end := offset + size
			if end >= len(text) {
				yield(text[offset:])
				return
			}
			if !yield(text[offset:end]) {
				return
			}
		}
	}
}

// ChunkText collects the windows of Chunks into a slice.
func ChunkText(text string, size, overlap int) []string {
	var out []string
	for c := range Chunks(text, size, overlap) {
		out = append(out, c)
	}
	return out
}
