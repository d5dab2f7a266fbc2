package domain

// LetterFields carries the form input for a satisfaction letter. The
// fields are not persisted; they exist only for the lifetime of one
// document generation.
type LetterFields struct {
	DocDate         string
	ProjectType     string
	ProjectName     string
	ClientName      string
	Year            string
	ContactPerson   string
	ContactPosition string
	ContactEmail    string
}
