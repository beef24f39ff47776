package order

// Mode is the result ordering strategy.
type Mode string

// Ordering mode constants.
const (
	// Lexical sorts by package, then restpath, both ascending. It is the default.
	Lexical Mode = "lexical"
	// Relevance sorts by match score descending, then timestamp descending.
	Relevance Mode = "relevance"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Lexical || m == Relevance
}

// OrDefault returns Lexical for the zero value.
func (m Mode) OrDefault() Mode {
	if m == "" {
		return Lexical
	}
	return m
}
