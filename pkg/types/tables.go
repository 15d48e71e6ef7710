package types

// Standard table names for Store.GetTable.
const (
	TablePets      = "pets"
	TableBreeds    = "breeds"
	TableOverrides = "overrides"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TablePets,
	TableBreeds,
	TableOverrides,
}
