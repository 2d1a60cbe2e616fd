package schema

// BookAuthorTable represents the 'catalog.bookauthor' table
type BookAuthorTable struct {
	Table    string
	BookID   string
	AuthorID string
	Position string
}

// BookAuthor is the schema definition for catalog.bookauthor
var BookAuthor = BookAuthorTable{
	Table:    "catalog.bookauthor",
	BookID:   "bookid",
	AuthorID: "authorid",
	Position: "position",
}

func (t BookAuthorTable) Columns() []string {
	return []string{t.BookID, t.AuthorID, t.Position}
}
