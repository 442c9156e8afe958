package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	RiskObject() RiskObjectRepository
	Document() DocumentRepository
	Person() PersonRepository
	Context() ContextRepository

	Close() error
}
