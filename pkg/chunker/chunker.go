package chunker

import (
	"strings"
	"unicode/utf8"
)

type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

type ChunkOptions struct {
	ChunkSize    int    // target chunk size in characters
	ChunkOverlap int    // overlap between fixed chunks
	Strategy     string // "fixed" or "recursive"
}

type TextChunk struct {
	Content string
	Index   int
}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Strategy:     "recursive",
	}
}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}

	if opts.Strategy == "fixed" {
		return chunkFixed(text, opts)
	}
	return chunkRecursive(text, opts)
}

func chunkFixed(text string, opts ChunkOptions) []TextChunk {
	var chunks []TextChunk
	runes := []rune(text)
	idx := 0

	step := opts.ChunkSize - opts.ChunkOverlap
	if step <= 0 {
		step = opts.ChunkSize
	}

	for start := 0; start < len(runes); start += step {
		end := start + opts.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		content := string(runes[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, TextChunk{Content: content, Index: idx})
			idx++
		}
	}

	return chunks
}

// chunkRecursive splits on progressively finer separators until each piece
// fits the target size.
func chunkRecursive(text string, opts ChunkOptions) []TextChunk {
	separators := []string{"\n\n", "\n", ". ", " "}

	var chunks []TextChunk
	idx := 0

	for _, part := range splitRecursive(text, separators, opts.ChunkSize) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, TextChunk{Content: part, Index: idx})
		idx++
	}

	return chunks
}

func splitRecursive(text string, separators []string, chunkSize int) []string {
	if utf8.RuneCountInString(text) <= chunkSize {
		return []string{text}
	}

	if len(separators) == 0 {
		var result []string
		runes := []rune(text)
		for i := 0; i < len(runes); i += chunkSize {
			end := i + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			result = append(result, string(runes[i:end]))
		}
		return result
	}

	sep := separators[0]
	parts := strings.Split(text, sep)
	var result []string
	var current strings.Builder

	for _, part := range parts {
		if current.Len() > 0 && utf8.RuneCountInString(current.String()+sep+part) > chunkSize {
			result = append(result, splitRecursive(current.String(), separators[1:], chunkSize)...)
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(part)
	}

	if current.Len() > 0 {
		result = append(result, splitRecursive(current.String(), separators[1:], chunkSize)...)
	}

	return result
}
