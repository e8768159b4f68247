package chunker

import "encoding/json"

// DocumentType classifies how a chunk's block was detected.
type DocumentType string

const (
	// DocumentTypeStructured marks chunks of blocks found by the generic heading detector.
	DocumentTypeStructured DocumentType = "structured"
	// DocumentTypeUnstructured marks chunks split without any detected block structure.
	DocumentTypeUnstructured DocumentType = "unstructured"
	// DocumentTypeSection marks chunks of resume sections (Experience, Skills, ...).
	DocumentTypeSection DocumentType = "section"
	// DocumentTypeItem marks chunks of dated resume entries (jobs, projects).
	DocumentTypeItem DocumentType = "item"
)

// Chunk is the unit handed to the embedding step.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is attached to every chunk and passed through unchanged to storage.
type Metadata struct {
	Filename     string       `json:"filename"`
	ChunkIndex   int          `json:"chunk_index"` // Position within the block (starts at 0)
	Heading      string       `json:"heading,omitempty"`
	BlockIndex   int          `json:"block_index"`
	DocumentType DocumentType `json:"document_type"`
	CharCount    int          `json:"char_count"` // Characters (runes) of Content
}

// MarshalJSON encodes the same fields as Payload: block_index and heading are
// omitted for unstructured chunks.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	out := struct {
		plain
		Heading    string `json:"heading,omitempty"`
		BlockIndex *int   `json:"block_index,omitempty"`
	}{plain: plain(m)}
	if m.HasBlock() {
		out.Heading = m.Heading
		out.BlockIndex = &m.BlockIndex
	}
	return json.Marshal(out)
}

// HasBlock reports whether the chunk belongs to a detected block.
// Unstructured chunks carry neither a heading nor a block index.
func (m Metadata) HasBlock() bool {
	return m.DocumentType != DocumentTypeUnstructured
}

// Payload returns the metadata as a flat map suitable for vector store payloads.
func (m Metadata) Payload() map[string]any {
	payload := map[string]any{
		"filename":      m.Filename,
		"chunk_index":   m.ChunkIndex,
		"document_type": string(m.DocumentType),
		"char_count":    m.CharCount,
	}
	if m.HasBlock() {
		payload["heading"] = m.Heading
		payload["block_index"] = m.BlockIndex
	}
	return payload
}

// Block is a contiguous run of body lines under one detected boundary.
type Block struct {
	Heading string
	Body    string
	Kind    DocumentType
}
