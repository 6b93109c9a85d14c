package ports

import "context"

// Ledger is the account substrate the delegation directory writes to.
// Accounts are raw byte blobs at 32-byte derived addresses. Mutations on a
// given address are atomic and totally ordered relative to each other,
// mirroring the transaction guarantees of the external chain.
type Ledger interface {
	// Fetch reads the account at addr. The second return is false if no
	// account exists there.
	Fetch(ctx context.Context, addr [32]byte) ([]byte, bool, error)

	// Mutate applies fn to the account at addr under the ledger's
	// per-address ordering. fn receives the current contents (nil, false
	// if absent) and returns the new contents; returning nil deletes the
	// account. An error from fn aborts the mutation with no state change.
	Mutate(ctx context.Context, addr [32]byte, fn func(data []byte, exists bool) ([]byte, error)) error
}
