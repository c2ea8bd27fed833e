package cqrs

// CreateTransactionCommand inserts a new transaction record. Actor is the
// authenticated caller's login, or empty when the request is anonymous.
type CreateTransactionCommand struct {
	Account   string
	ToAccount string
	Amount    float64
	Currency  string
	Actor     string
}

// EditTransactionCommand replaces the whole record identified by ID.
// Every persisted field is recomputed; nothing is carried over from the
// previously stored version except the id itself.
type EditTransactionCommand struct {
	ID        int64
	Account   string
	ToAccount string
	Amount    float64
	Currency  string
	Actor     string
}

type DeleteTransactionCommand struct {
	ID    int64
	Actor string
}
