package analysis

// ExpenseField is one typed summary value from an expense analysis,
// e.g. type VENDOR_NAME with value "ACME Corp".
type ExpenseField struct {
	Type  string
	Value string
}

// ExpenseDocument is one analyzed expense document.
type ExpenseDocument struct {
	SummaryFields []ExpenseField
}
