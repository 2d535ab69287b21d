package deploy

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var (
	// ErrMissingSetting is returned when a required configuration value is empty.
	ErrMissingSetting = errors.New("missing deploy setting")
	// ErrNoItemID is returned when the API creates an item without returning its ID.
	ErrNoItemID = errors.New("no item id in response")
)

// HTTPClient sends HTTP requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-success answer from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed with status code %d (%s)", e.StatusCode, e.Body)
}

// Client talks to the workspace API.
type Client struct {
	cfg    Config
	http   HTTPClient
	logger *zap.Logger
}

// NewClient validates cfg and builds a client. A nil hc uses an http.Client bounded by
// cfg.TimeoutSeconds.
func NewClient(cfg Config, hc HTTPClient, logger *zap.Logger) (*Client, error) {
	var missing []string
	for name, v := range map[string]string{
		"base_url":     cfg.BaseURL,
		"workspace_id": cfg.WorkspaceID,
		"token":        cfg.Token,
		"item_name":    cfg.ItemName,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	if hc == nil {
		hc = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: hc, logger: logger}, nil
}

type item struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type,omitempty"`
}

type itemList struct {
	Value []item `json:"value"`
}

type definitionPart struct {
	Path        string `json:"path"`
	Payload     string `json:"payload"`
	PayloadType string `json:"payloadType"`
}

type updateDefinitionRequest struct {
	Definition struct {
		Parts []definitionPart `json:"parts"`
	} `json:"definition"`
}

// FindOrCreateItem returns the ID of the function item named cfg.ItemName, creating the
// item when none exists. created reports whether a new item was made.
func (c *Client) FindOrCreateItem(ctx context.Context) (id string, created bool, err error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("name eq '%s'", odataString(c.cfg.ItemName)))
	q.Set("$select", "id")

	var list itemList
	if _, err := c.do(ctx, http.MethodGet, c.workspaceURL("items")+"?"+q.Encode(), nil, &list); err != nil {
		return "", false, fmt.Errorf("failed to look up item %q: %w", c.cfg.ItemName, err)
	}

	for _, it := range list.Value {
		if it.ID != "" && (it.DisplayName == "" || it.DisplayName == c.cfg.ItemName) {
			c.logger.Info("Function item found", zap.String("item", c.cfg.ItemName), zap.String("id", it.ID))
			return it.ID, false, nil
		}
	}

	c.logger.Info("Function item not found, creating it", zap.String("item", c.cfg.ItemName))

	var out item
	body := item{DisplayName: c.cfg.ItemName, Type: ItemType}
	if _, err := c.do(ctx, http.MethodPost, c.workspaceURL("items"), body, &out); err != nil {
		return "", false, fmt.Errorf("failed to create item %q: %w", c.cfg.ItemName, err)
	}
	if out.ID == "" {
		return "", false, ErrNoItemID
	}

	c.logger.Info("Function item created", zap.String("item", c.cfg.ItemName), zap.String("id", out.ID))
	return out.ID, true, nil
}

// odataString escapes a value for a single-quoted OData string literal.
func odataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// UpdateDefinition uploads def as the definition of the item.
func (c *Client) UpdateDefinition(ctx context.Context, itemID string, def Definition) error {
	encoded, err := jsoniter.ConfigFastest.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}

	var req updateDefinitionRequest
	req.Definition.Parts = []definitionPart{{
		Path:        def.Properties.MainFile,
		Payload:     base64.StdEncoding.EncodeToString(encoded),
		PayloadType: "InlineBase64",
	}}

	status, err := c.do(ctx, http.MethodPost, c.workspaceURL("userDataFunctions", itemID, "updateDefinition"), req, nil)
	if err != nil {
		return fmt.Errorf("failed to update definition of %s: %w", itemID, err)
	}

	if status == http.StatusAccepted {
		c.logger.Info("Definition update accepted", zap.String("id", itemID))
	} else {
		c.logger.Info("Definition updated", zap.String("id", itemID), zap.Int("status", status))
	}
	return nil
}

// Deploy finds or creates the item and uploads the definition. It returns the item ID.
func (c *Client) Deploy(ctx context.Context, def Definition) (string, error) {
	id, _, err := c.FindOrCreateItem(ctx)
	if err != nil {
		return "", err
	}
	if err := c.UpdateDefinition(ctx, id, def); err != nil {
		return id, err
	}
	return id, nil
}

func (c *Client) workspaceURL(elem ...string) string {
	parts := append([]string{c.cfg.BaseURL, "workspaces", url.PathEscape(c.cfg.WorkspaceID)}, elem...)
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) (int, error) {
	var r io.Reader
	if body != nil {
		data, err := jsoniter.ConfigFastest.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal json: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return 0, fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := jsoniter.ConfigFastest.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return resp.StatusCode, nil
}
