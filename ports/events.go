package ports

import "context"

// EventPublisher notifies other components about completed logins and
// directory changes.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, localpart, userID string) error
	PublishDelegationChanged(ctx context.Context, ownerAddress, endpoint string, removed bool) error
}
