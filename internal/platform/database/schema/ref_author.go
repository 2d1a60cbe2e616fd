package schema

// RefAuthorTable represents the 'ref.author' table
type RefAuthorTable struct {
	Table         string
	ID            string
	FirstName     string
	LastName      string
	NationalityID string
	CreatedAt     string
	UpdatedAt     string
}

// RefAuthor is the schema definition for ref.author
var RefAuthor = RefAuthorTable{
	Table:         "ref.author",
	ID:            "id",
	FirstName:     "firstname",
	LastName:      "lastname",
	NationalityID: "nationalityid",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t RefAuthorTable) Columns() []string {
	return []string{t.ID, t.FirstName, t.LastName, t.NationalityID, t.CreatedAt, t.UpdatedAt}
}
