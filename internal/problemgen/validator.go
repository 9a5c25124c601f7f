package problemgen

// Validator checks an already well-formed question. Implementations must
// be stateless and safe for concurrent use.
type Validator interface {
	// Name identifies the validator in errors and logs, e.g. "length".
	Name() string

	// Validate returns nil when q passes.
	Validate(q *Question) *ValidationError
}

// runValidators returns the first failure in chain order.
func runValidators(chain []Validator, q *Question) *ValidationError {
	for _, v := range chain {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}
