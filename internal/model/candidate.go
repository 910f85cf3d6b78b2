package model

// Candidate is a discovered reference to a document, pre-fetch.
// Backend-specific fields live in the variant payload rather than in
// per-backend tuple shapes.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`

	// Backend names the search backend that produced this candidate.
	Backend string `json:"backend"`

	// Bill is set only for candidates from the legislative backend. The
	// fetch URL is derived from it, not from URL.
	Bill *BillRef `json:"bill,omitempty"`
}

// BillRef identifies a bill on the legislative full-text API.
type BillRef struct {
	Congress string `json:"congress"` // e.g. "117"
	Number   string `json:"number"`   // e.g. "1319"
	Chamber  string `json:"chamber"`  // "hr" or "s"
}

// Key returns the identity used for tried/untried bookkeeping during
// acquisition. Legislative candidates have no URL until fetched.
func (c Candidate) Key() string {
	if c.Bill != nil {
		return c.Bill.Congress + "/" + c.Bill.Chamber + "/" + c.Bill.Number
	}
	return c.URL
}

// Document is the full text of one successfully fetched candidate.
// An empty Text means the fetch failed; such documents are discarded,
// never stored.
type Document struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	AltTitle string `json:"alt_title,omitempty"`
	Text     string `json:"text"`
	Year     string `json:"year,omitempty"`
}

// Chunk is a sentence-aligned, token-bounded passage of a document.
// Text is non-empty by construction; empty chunks are filtered at
// creation.
type Chunk struct {
	Title string `json:"title"`
	Index int    `json:"chunk_id"`
	Text  string `json:"text"`
}
