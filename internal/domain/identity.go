package domain

// Identity is the administrator identity issued by a successful login.
//
// The three fields are persisted together and cleared together; a
// partially populated identity is never stored.
type Identity struct {
	Token    string
	Username string
	Role     string
}

// Valid reports whether the identity carries a token. Username and role
// are informational; the token is what authenticates.
func (i Identity) Valid() bool {
	return i.Token != ""
}
