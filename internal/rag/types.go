package rag

// QueryRequest represents a retrieval request.
type QueryRequest struct {
	// Query is the text to search for.
	Query string `json:"query"`
	// TopK is the number of results to return. Zero selects DefaultTopK; values above MaxTopK are clamped.
	TopK int `json:"top_k,omitempty"`
	// Filename restricts the search to one document when set.
	Filename string `json:"filename,omitempty"`
}

// Result is one retrieved chunk.
type Result struct {
	// ChunkID is the stable chunk identifier (same as the vector point ID).
	ChunkID string `json:"chunk_id"`
	// Content is the chunk text including its heading prefix.
	Content string `json:"content"`
	// Score is the blended final score used for ranking.
	Score float64 `json:"score"`
	// ScoreVector is the vector similarity score.
	ScoreVector float64 `json:"score_vector"`
	// ScoreLexical is the lexical score added on top of the vector score.
	ScoreLexical float64 `json:"score_lexical"`
	// Metadata is the chunk metadata stored with the vector.
	Metadata Metadata `json:"metadata"`
}

// Metadata mirrors the chunk metadata stored in the vector payload.
type Metadata struct {
	Filename     string `json:"filename"`
	DocumentID   string `json:"document_id,omitempty"`
	Heading      string `json:"heading,omitempty"`
	BlockIndex   *int   `json:"block_index,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
	DocumentType string `json:"document_type"`
	CharCount    int    `json:"char_count"`
}

// ChatRequest represents a question answered from retrieved context.
type ChatRequest struct {
	// Question is the user's question.
	Question string `json:"question"`
	// TopK is the number of context chunks, with the same bounds as QueryRequest.TopK.
	TopK int `json:"top_k,omitempty"`
}

// Source is a chunk used as context for an answer.
type Source struct {
	ChunkID    string  `json:"chunk_id"`
	Filename   string  `json:"filename"`
	Heading    string  `json:"heading,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// ChatResponse represents the answer to a ChatRequest.
type ChatResponse struct {
	// Answer is the generated answer.
	Answer string `json:"answer"`
	// Sources are the chunks that were given to the model.
	Sources []Source `json:"sources"`
}
