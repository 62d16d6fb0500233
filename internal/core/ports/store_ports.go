package ports

import "context"

// Repositories gives access to every repository bound to the same
// connection or transaction.
type Repositories interface {
	Users() UserRepository
	RefreshTokens() AuthRepository
	Questions() QuestionRepository
	Choices() ChoiceRepository
	Votes() VoteRepository
}

// Store is the persistence boundary. Atomic runs fn inside a single
// transaction: fn's error rolls everything back, nil commits.
type Store interface {
	Repositories
	Atomic(ctx context.Context, fn func(r Repositories) error) error
}
