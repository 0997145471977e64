package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	ordermapper "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/watcher"
	apierrors "github.com/Apurer/go-shipment-tracker/internal/shared/errors"
)

// ErrTransport wraps failures that say nothing about order state: connection errors,
// 5xx responses and undecodable bodies.
var ErrTransport = errors.New("tracker transport failure")

var (
	_ orderports.Service    = (*Client)(nil)
	_ watcher.ListFetcher   = (*Client)(nil)
	_ watcher.DetailFetcher = (*Client)(nil)
)

// Client talks to the tracker HTTP API. Requests are never retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tracker base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tracker base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// CreateOrder registers a new order.
func (c *Client) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	body := ordermapper.CreateOrder{
		CustomerName:    input.CustomerName,
		CustomerContact: input.CustomerContact,
		MerchantRef:     input.MerchantRef,
	}
	var out ordermapper.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, body, &out); err != nil {
		return nil, err
	}
	return ordermapper.ToDomainOrder(out), nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	path, err := orderPath(id, "")
	if err != nil {
		return nil, err
	}
	var out ordermapper.Order
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return ordermapper.ToDomainOrder(out), nil
}

// ListOrders fetches the orders matching filter, newest first.
func (c *Client) ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error) {
	var out []ordermapper.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/list", ordermapper.FilterToQuery(filter), nil, &out); err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(out))
	for _, o := range out {
		orders = append(orders, ordermapper.ToDomainOrder(o))
	}
	return orders, nil
}

// UpdateStatus requests one transition. A rejected edge comes back as *domain.TransitionError.
func (c *Client) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.StatusUpdateResult, error) {
	path, err := orderPath(input.OrderID, "/status")
	if err != nil {
		return nil, err
	}
	body := ordermapper.StatusUpdate{Status: input.Status, Source: input.Source, Metadata: input.Metadata}
	var out ordermapper.StatusUpdateResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &ordertypes.StatusUpdateResult{
		Order:        ordermapper.ToDomainOrder(out.Order),
		FromStatus:   domain.Status(out.PreviousStatus),
		Notification: ordertypes.Notification(out.EmailSimulation),
	}, nil
}

// History fetches the chronological ledger of an order.
func (c *Client) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	path, err := orderPath(id, "/history")
	if err != nil {
		return nil, err
	}
	var out []ordermapper.HistoryEntry
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return ordermapper.ToHistory(out), nil
}

// Transitions fetches the statuses an order may move to next.
func (c *Client) Transitions(ctx context.Context, id string) (ordermapper.Transitions, error) {
	path, err := orderPath(id, "/transitions")
	if err != nil {
		return ordermapper.Transitions{}, err
	}
	var out ordermapper.Transitions
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return ordermapper.Transitions{}, err
	}
	return out, nil
}

func orderPath(id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: order id is required", orderports.ErrNotFound)
	}
	param, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("encode order id: %w", err)
	}
	return "/api/orders/" + param + suffix, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil || c.httpClient == nil || c.baseURL == nil {
		return errors.New("tracker client not configured")
	}
	target := c.baseURL.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}

func responseError(resp *http.Response, raw []byte) error {
	var problem apierrors.ProblemDetail
	if err := json.Unmarshal(raw, &problem); err != nil || problem.Status == 0 {
		problem = apierrors.ProblemDetail{Status: resp.StatusCode, Title: resp.Status}
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", orderports.ErrNotFound, problem.Error())
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", orderports.ErrConflict, problem.Error())
	case resp.StatusCode == http.StatusBadRequest:
		from, to := problem.Extension("from"), problem.Extension("to")
		if from != "" && to != "" {
			return &domain.TransitionError{From: domain.Status(from), To: domain.Status(to)}
		}
		return fmt.Errorf("tracker rejected request: %w", problem)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", ErrTransport, problem)
	default:
		return fmt.Errorf("tracker API unexpected status: %w", problem)
	}
}
