package types

// DocumentType classifies a document attached to a risk
type DocumentType string

const (
	DocumentTypeURL          DocumentType = "URL"
	DocumentTypeEvidence     DocumentType = "EVIDENCE"
	DocumentTypeReferenceURL DocumentType = "REFERENCE_URL"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeURL, DocumentTypeEvidence, DocumentTypeReferenceURL:
		return true
	default:
		return false
	}
}

func (t DocumentType) String() string {
	return string(t)
}
