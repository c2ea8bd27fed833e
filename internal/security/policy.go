package security

// WritePolicy decides whether an actor may mutate transaction records.
// The service evaluates it before every create, edit, and delete, so
// tightening access is a matter of swapping the implementation wired in
// at startup.
type WritePolicy interface {
	AuthorizeWrite(actor string) error
}

// AllowAll admits every actor, including the system account. This is the
// policy currently in force: write restrictions have not been switched
// on in any environment.
type AllowAll struct{}

func (AllowAll) AuthorizeWrite(string) error { return nil }
