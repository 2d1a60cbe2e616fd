package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table     string
	ID        string
	Title     string
	GenreID   string
	CoverKey  string
	Adapted   string
	FilmTitle string
	ISBN      string
	CreatedAt string
	UpdatedAt string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:     "catalog.book",
	ID:        "id",
	Title:     "title",
	GenreID:   "genreid",
	CoverKey:  "coverkey",
	Adapted:   "adapted",
	FilmTitle: "filmtitle",
	ISBN:      "isbn",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CatalogBookTable) Columns() []string {
	return []string{t.ID, t.Title, t.GenreID, t.CoverKey, t.Adapted, t.FilmTitle, t.ISBN, t.CreatedAt, t.UpdatedAt}
}
