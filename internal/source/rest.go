package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/propdesk/backend/internal/models"
)

// RESTSource reads records from the hosted backend's REST gateway
// (PostgREST style: GET {base}/rest/v1/{table}?select=*). It is read-only.
type RESTSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

const (
	tableTickets = "tickets"
	tableVendors = "vendors"
	tableUnits   = "property_units"
	tableCalls   = "communications"
)

func (r RESTSource) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	var out []models.Ticket
	if err := r.get(ctx, tableTickets, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r RESTSource) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var out []models.Vendor
	if err := r.get(ctx, tableVendors, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r RESTSource) ListPropertyUnits(ctx context.Context) ([]models.PropertyUnit, error) {
	var out []models.PropertyUnit
	if err := r.get(ctx, tableUnits, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r RESTSource) ListCalls(ctx context.Context) ([]models.Call, error) {
	var out []models.Call
	if err := r.get(ctx, tableCalls, url.Values{"type": {"eq.call"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r RESTSource) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	var out []models.Ticket
	if err := r.get(ctx, tableTickets, url.Values{"id": {"eq." + id}}, &out); err != nil {
		return models.Ticket{}, err
	}
	if len(out) == 0 {
		return models.Ticket{}, ErrNotFound
	}
	return out[0], nil
}

func (r RESTSource) GetCall(ctx context.Context, id string) (models.Call, error) {
	var out []models.Call
	if err := r.get(ctx, tableCalls, url.Values{"id": {"eq." + id}}, &out); err != nil {
		return models.Call{}, err
	}
	if len(out) == 0 {
		return models.Call{}, ErrNotFound
	}
	return out[0], nil
}

// Ping asks the gateway for a single ticket id.
func (r RESTSource) Ping(ctx context.Context) error {
	var out []struct {
		ID string `json:"id"`
	}
	return r.get(ctx, tableTickets, url.Values{"select": {"id"}, "limit": {"1"}}, &out)
}

func (r RESTSource) get(ctx context.Context, table string, query url.Values, dst any) error {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if query == nil {
		query = url.Values{}
	}
	if query.Get("select") == "" {
		query.Set("select", "*")
	}

	endpoint := strings.TrimRight(r.BaseURL, "/") + "/rest/v1/" + table + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.APIKey != "" {
		req.Header.Set("apikey", r.APIKey)
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("rest %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rest %s: status %d: %s", table, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("rest %s: decode: %w", table, err)
	}
	return nil
}
