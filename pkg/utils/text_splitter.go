package utils

// SplitText cuts a knowledge-base passage into chunks of at most chunkSize
// runes, each overlapping the previous one by overlap runes so sentences
// straddling a boundary stay retrievable. Character-based on purpose: the
// embedding providers tolerate ragged edges, and rune slicing never loses
// text the way a lossy tokenizer split could.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		// Degenerate config; fall back to disjoint chunks.
		step = chunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
