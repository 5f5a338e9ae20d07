package analysis

// ResumeQueries is the fixed question set submitted for resume documents.
// The aliases double as the CSV column order, so keep both lists in sync.
func ResumeQueries() []Query {
	return []Query{
		{Text: "What is the candidate's full name?", Alias: "Name"},
		{Text: "What is the email address?", Alias: "Email"},
		{Text: "What is the phone number?", Alias: "Phone"},
		{Text: "What are the technical skills?", Alias: "Skills"},
		{Text: "What is the university or college name?", Alias: "University"},
		{Text: "What is the highest degree obtained?", Alias: "Degree"},
		{Text: "How many years of work experience?", Alias: "Experience"},
	}
}

// ResumeAliases returns the declared alias set in output column order.
func ResumeAliases() []string {
	queries := ResumeQueries()
	aliases := make([]string, 0, len(queries))
	for _, q := range queries {
		aliases = append(aliases, q.Alias)
	}
	return aliases
}
