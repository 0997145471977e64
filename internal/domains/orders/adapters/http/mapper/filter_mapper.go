package mapper

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

const dateLayout = "2006-01-02"

// Query parameter names understood by the list endpoint.
const (
	QueryStatus        = "status"
	QueryMerchant      = "merchant"
	QueryCustomer      = "customer"
	QueryCreatedAfter  = "created_after"
	QueryCreatedBefore = "created_before"
)

// FilterFromQuery parses list query parameters. Blank values are treated as absent.
// Dates may be YYYY-MM-DD or RFC 3339; a date-only upper bound covers the whole day.
func FilterFromQuery(values url.Values) (domain.Filter, error) {
	var f domain.Filter
	if v := strings.TrimSpace(values.Get(QueryStatus)); v != "" {
		status := domain.Status(v)
		f.Status = &status
	}
	if v := strings.TrimSpace(values.Get(QueryMerchant)); v != "" {
		f.Merchant = &v
	}
	if v := strings.TrimSpace(values.Get(QueryCustomer)); v != "" {
		f.Customer = &v
	}
	after, err := parseBound(values.Get(QueryCreatedAfter), false)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidFilter, QueryCreatedAfter, err)
	}
	before, err := parseBound(values.Get(QueryCreatedBefore), true)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidFilter, QueryCreatedBefore, err)
	}
	f.CreatedAfter, f.CreatedBefore = after, before
	return f, nil
}

// FilterToQuery is the inverse of FilterFromQuery, used by HTTP clients.
func FilterToQuery(f domain.Filter) url.Values {
	values := url.Values{}
	f = f.Normalize()
	if f.Status != nil {
		values.Set(QueryStatus, string(*f.Status))
	}
	if f.Merchant != nil {
		values.Set(QueryMerchant, *f.Merchant)
	}
	if f.Customer != nil {
		values.Set(QueryCustomer, *f.Customer)
	}
	if f.CreatedAfter != nil {
		values.Set(QueryCreatedAfter, f.CreatedAfter.UTC().Format(time.RFC3339Nano))
	}
	if f.CreatedBefore != nil {
		values.Set(QueryCreatedBefore, f.CreatedBefore.UTC().Format(time.RFC3339Nano))
	}
	return values
}

func parseBound(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", raw)
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}
