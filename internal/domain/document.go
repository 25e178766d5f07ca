package domain

import "time"

type DocumentKind string

const (
	DocumentKindArticle   DocumentKind = "article"
	DocumentKindChangelog DocumentKind = "changelog"
	DocumentKindRoadmap   DocumentKind = "roadmap"
)

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentKindArticle, DocumentKindChangelog, DocumentKindRoadmap:
		return true
	}
	return false
}

// Document is a piece of authored content. Body holds the serialized
// block sequence.
type Document struct {
	ID        string       `json:"id"`
	Kind      DocumentKind `json:"kind"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Locale    string       `json:"locale"`
	FilePath  string       `json:"filePath"` // optional linked .md file
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Revision is one autosaved body of a document.
type Revision struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

type DocumentStore interface {
	CreateDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments(kind DocumentKind) ([]Document, error)
	UpdateDocument(d *Document) error
	DeleteDocument(id string) error
}

type RevisionStore interface {
	Push(documentID, body string) (*Revision, error)
	List(documentID string) ([]Revision, error)
	ClearDocument(documentID string) error
}

// DocumentState is what a client needs to render an open document.
type DocumentState struct {
	Document Document `json:"document"`
	Blocks   []Block  `json:"blocks"`
}
