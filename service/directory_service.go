package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fedwallet/walletgate/address"
	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/ports"
	"github.com/fedwallet/walletgate/sig"
	"github.com/fedwallet/walletgate/wire"
)

// DirectoryService executes delegation directory instructions against the
// ledger. Writes require a signature from the owning wallet over the exact
// instruction bytes; reads are open to anyone since the record address is
// derivable from the owner key alone.
type DirectoryService struct {
	ledger   ports.Ledger
	eventPub ports.EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(ledger ports.Ledger, eventPub ports.EventPublisher, logger *slog.Logger) *DirectoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryService{
		ledger:   ledger,
		eventPub: eventPub,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *DirectoryService) WithClock(now func() time.Time) *DirectoryService {
	s.now = now
	return s
}

// Register creates or overwrites the caller's delegation record. The
// signature must cover wire.EncodeRegisterInstruction(owner, endpoint).
func (s *DirectoryService) Register(ctx context.Context, ownerAddr, endpoint string, signature []byte) error {
	owner, err := address.Decode(ownerAddr)
	if err != nil {
		return err
	}

	if err := validateEndpoint(endpoint); err != nil {
		return err
	}

	instruction := wire.EncodeRegisterInstruction(owner, endpoint)
	if !sig.Verify(owner[:], instruction, signature) {
		return core.ErrUnauthorized
	}

	recordAddr := wire.DeriveRecordAddress(owner)
	err = s.ledger.Mutate(ctx, recordAddr, func(data []byte, exists bool) ([]byte, error) {
		if exists {
			// The address derivation already ties the record to the owner;
			// the check guards against substrate corruption.
			existing, err := wire.DecodeRecord(data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode existing record: %w", err)
			}
			if existing.Owner != owner {
				return nil, core.ErrUnauthorized
			}
		}
		return wire.EncodeRecord(core.DelegationRecord{
			Owner:     owner,
			Endpoint:  endpoint,
			UpdatedAt: s.now(),
			Bump:      wire.RecordBump,
		}), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("delegation registered", "owner", ownerAddr, "endpoint", endpoint)

	if err := s.eventPub.PublishDelegationChanged(ctx, ownerAddr, endpoint, false); err != nil {
		s.logger.Warn("failed to publish delegation event", "error", err)
	}
	return nil
}

// Unregister removes the caller's delegation record and reports the
// reclaimed storage cost in record bytes. The signature must cover
// wire.EncodeUnregisterInstruction(owner).
func (s *DirectoryService) Unregister(ctx context.Context, ownerAddr string, signature []byte) (reclaimed int, err error) {
	owner, err := address.Decode(ownerAddr)
	if err != nil {
		return 0, err
	}

	instruction := wire.EncodeUnregisterInstruction(owner)
	if !sig.Verify(owner[:], instruction, signature) {
		return 0, core.ErrUnauthorized
	}

	recordAddr := wire.DeriveRecordAddress(owner)
	err = s.ledger.Mutate(ctx, recordAddr, func(data []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, core.ErrNotFound
		}
		existing, err := wire.DecodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode existing record: %w", err)
		}
		if existing.Owner != owner {
			return nil, core.ErrUnauthorized
		}
		reclaimed = len(data)
		return nil, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("delegation removed", "owner", ownerAddr, "reclaimed_bytes", reclaimed)

	if err := s.eventPub.PublishDelegationChanged(ctx, ownerAddr, "", true); err != nil {
		s.logger.Warn("failed to publish delegation event", "error", err)
	}
	return reclaimed, nil
}

// Lookup reads the delegation record for an owner address. No signature
// required.
func (s *DirectoryService) Lookup(ctx context.Context, ownerAddr string) (*core.DelegationRecord, error) {
	owner, err := address.Decode(ownerAddr)
	if err != nil {
		return nil, err
	}

	data, exists, err := s.ledger.Fetch(ctx, wire.DeriveRecordAddress(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record: %w", err)
	}
	if !exists {
		return nil, core.ErrNotFound
	}

	record, err := wire.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

// validateEndpoint applies the directory's hostname shape checks: at least
// one dot, no whitespace, no protocol prefix, hostname characters only,
// at most 253 bytes.
func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return core.ErrEmptyEndpoint
	}
	if len(endpoint) > core.MaxEndpointLen {
		return core.ErrEndpointTooLong
	}
	if !isValidHostname(endpoint) {
		return core.ErrInvalidEndpoint
	}
	return nil
}

func isValidHostname(hostname string) bool {
	hasDot := false
	for i := 0; i < len(hostname); i++ {
		c := hostname[i]
		switch {
		case c == '.':
			hasDot = true
		case c == '-' || c == ':':
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	// "://" is already excluded by the character set ('/' is not allowed),
	// so a scheme prefix can never pass.
	return hasDot
}
