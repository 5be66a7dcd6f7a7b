package models

// Account is the signed-in identity handed to us by the authorization provider.
// Two accounts are equal iff both fields are equal, so plain == is the comparison.
type Account struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// IsZero reports whether no account is set.
func (a Account) IsZero() bool {
	return a == Account{}
}
