package schema

// RefNationalityTable represents the 'ref.nationality' table
type RefNationalityTable struct {
	Table     string
	ID        string
	Name      string
	Code      string
	CreatedAt string
}

// RefNationality is the schema definition for ref.nationality
var RefNationality = RefNationalityTable{
	Table:     "ref.nationality",
	ID:        "id",
	Name:      "name",
	Code:      "code",
	CreatedAt: "createdat",
}

func (t RefNationalityTable) Columns() []string {
	return []string{t.ID, t.Name, t.Code, t.CreatedAt}
}
