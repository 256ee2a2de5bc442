package dto

type IngestKbDocumentRequest struct {
	Text      string `json:"text" validate:"required"`
	SourceURL string `json:"source_url"`
}

type IngestKbDocumentResponse struct {
	Queued int `json:"queued"`
}

// PublishEmbedKbDocumentMessage is the watermill payload for the embedding
// worker.
type PublishEmbedKbDocumentMessage struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

type ReloadAnswersResponse struct {
	Entries int `json:"entries"`
}

type KbStatsResponse struct {
	Documents   int64 `json:"documents"`
	IndexedDocs int   `json:"indexed_docs"`
	AnswerTable int   `json:"answer_table"`
}
