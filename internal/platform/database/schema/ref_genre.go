package schema

// RefGenreTable represents the 'ref.genre' table
type RefGenreTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
}

// RefGenre is the schema definition for ref.genre
var RefGenre = RefGenreTable{
	Table:     "ref.genre",
	ID:        "id",
	Name:      "name",
	CreatedAt: "createdat",
}

func (t RefGenreTable) Columns() []string {
	return []string{t.ID, t.Name, t.CreatedAt}
}
