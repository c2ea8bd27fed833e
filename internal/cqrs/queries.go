package cqrs

// ListTransactionsQuery fetches one page of transactions. Page is
// zero-based.
type ListTransactionsQuery struct {
	Page int
	Size int
}
