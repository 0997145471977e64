package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrEmptyCustomerName) ||
		errors.Is(err, domain.ErrEmptyCustomerContact) ||
		errors.Is(err, domain.ErrEmptyMerchantRef) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrEmptySource) ||
		errors.Is(err, domain.ErrSourceTooLong) ||
		errors.Is(err, domain.ErrInvalidFilter) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrLedgerClosed) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidTransition, err)
	}
	return err
}
