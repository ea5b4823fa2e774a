// Package client is a Go client for the estate service REST API.
package client

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
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// APIError is a non-2xx response. Message is the server's message field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("estate api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Phone             string    `json:"phone,omitempty"`
	ProfilePicture    string    `json:"profilePicture,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
	VisitedProperties []string  `json:"visitedProperties,omitempty"`
	SavedProperties   []string  `json:"savedProperties,omitempty"`
}

type Contact struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// Property is a listing. Agent and Owner are only set by endpoints that
// expand them to contacts.
type Property struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Address     Address   `json:"address"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Area        float64   `json:"area"`
	YearBuilt   *int      `json:"yearBuilt,omitempty"`
	Features    []string  `json:"features"`
	Amenities   []string  `json:"amenities"`
	Images      []string  `json:"images"`
	IsFeatured  bool      `json:"isFeatured"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Agent       *Contact  `json:"-"`
	Owner       *Contact  `json:"-"`
}

func (p *Property) UnmarshalJSON(data []byte) error {
	type plain Property
	var raw struct {
		plain
		Agent json.RawMessage `json:"agent"`
		Owner json.RawMessage `json:"owner"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Property(raw.plain)
	p.Agent = contactOf(raw.Agent)
	p.Owner = contactOf(raw.Owner)
	return nil
}

// contactOf decodes an expanded reference. Bare ids yield a contact with only ID set.
func contactOf(raw json.RawMessage) *Contact {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var c Contact
	if err := json.Unmarshal(raw, &c); err == nil {
		return &c
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return &Contact{ID: id}
	}
	return nil
}

type PropertySummary struct {
	ID       string   `json:"_id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	Type     string   `json:"type"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type PropertyList struct {
	Properties []Property `json:"properties"`
	Pagination Pagination `json:"pagination"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type Mortgage struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Client calls the API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ForgotPassword returns the reset token the server hands back.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp struct {
		ResetToken string `json:"resetToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.ResetToken, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	body := map[string]string{"token": resetToken, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", body, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (string, error) {
	var resp struct {
		Name string `json:"name"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", map[string]string{"name": name}, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

// ListProperties searches listings. filter holds the query parameters, such
// as type, minPrice, sortBy or page.
func (c *Client) ListProperties(ctx context.Context, filter url.Values) (*PropertyList, error) {
	path := "/api/properties"
	if len(filter) > 0 {
		path += "?" + filter.Encode()
	}

	var list PropertyList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) FeaturedProperties(ctx context.Context) ([]Property, error) {
	var props []Property
	if err := c.do(ctx, http.MethodGet, "/api/properties/featured", nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (c *Client) GetProperty(ctx context.Context, id string) (*Property, error) {
	var p Property
	if err := c.do(ctx, http.MethodGet, "/api/properties/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty sends input as the JSON body; any struct or map with the
// listing fields works.
func (c *Client) CreateProperty(ctx context.Context, input any) (*Property, error) {
	var p Property
	if err := c.do(ctx, http.MethodPost, "/api/properties", input, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProperty(ctx context.Context, id string, patch any) (*Property, error) {
	var p Property
	if err := c.do(ctx, http.MethodPut, "/api/properties/"+url.PathEscape(id), patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/properties/"+url.PathEscape(id), nil, nil)
}

func (c *Client) PropertiesByOwner(ctx context.Context, ownerID string) ([]Property, error) {
	var props []Property
	if err := c.do(ctx, http.MethodGet, "/api/properties/owner/"+url.PathEscape(ownerID), nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (c *Client) PropertiesByAgent(ctx context.Context, agentID string) ([]Property, error) {
	var props []Property
	if err := c.do(ctx, http.MethodGet, "/api/properties/agent/"+url.PathEscape(agentID), nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (c *Client) VisitedProperties(ctx context.Context, ids []string) ([]PropertySummary, error) {
	if ids == nil {
		ids = []string{}
	}

	var summaries []PropertySummary
	if err := c.do(ctx, http.MethodPost, "/api/properties/visited", map[string][]string{"ids": ids}, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Mortgage computes a repayment. downPaymentPct and ratePct are percentages.
func (c *Client) Mortgage(ctx context.Context, homePrice, downPaymentPct, ratePct float64, termYears int) (*Mortgage, error) {
	body := map[string]any{
		"homePrice":    homePrice,
		"downPayment":  downPaymentPct,
		"interestRate": ratePct,
		"loanTerm":     termYears,
	}

	var m Mortgage
	if err := c.do(ctx, http.MethodPost, "/api/tools/mortgage", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
