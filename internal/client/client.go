// Package client talks to the credential store server on behalf of a UI
// collaborator. Its methods mirror seedstore.Store and return the same
// sentinel errors, so callers can treat a remote store like a local one.
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

	"github.com/atinyakov/seedkeeper/internal/models"
	"github.com/atinyakov/seedkeeper/internal/seedstore"
)

const (
	apiWallet     = "/api/wallet"
	apiIdentities = "/api/identities/"
)

// ErrEmptyIdentity is returned for identity calls with an empty id, which
// cannot be expressed as a path segment.
var ErrEmptyIdentity = errors.New("empty identity id")

// StatusError is returned for responses that do not map onto a store error.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, e.Message)
}

// Client is a credential store API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. hc is usually built with
// LoadClientCertificate; http.DefaultClient is used when it is nil.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type seedBody struct {
	Seed []byte `json:"seed"`
}

type phraseBody struct {
	Phrase string `json:"phrase"`
}

type birthdayBody struct {
	Height models.BlockHeight `json:"height"`
}

type keysBody struct {
	Keys []string `json:"keys"`
}

type wipeBody struct {
	Removed int `json:"removed"`
}

type stateBody struct {
	State models.IdentityState `json:"state"`
}

func (c *Client) ImportSeed(ctx context.Context, seed []byte) error {
	if seed == nil {
		seed = []byte{}
	}
	return c.do(ctx, http.MethodPost, apiWallet+"/seed", seedBody{Seed: seed}, nil)
}

func (c *Client) ExportSeed(ctx context.Context) ([]byte, error) {
	var out seedBody
	if err := c.do(ctx, http.MethodGet, apiWallet+"/seed", nil, &out); err != nil {
		return nil, err
	}
	if out.Seed == nil {
		out.Seed = []byte{}
	}
	return out.Seed, nil
}

func (c *Client) DeleteSeed(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, apiWallet+"/seed", nil, nil)
}

func (c *Client) ImportPhrase(ctx context.Context, phrase string) error {
	return c.do(ctx, http.MethodPost, apiWallet+"/phrase", phraseBody{Phrase: phrase}, nil)
}

func (c *Client) ExportPhrase(ctx context.Context) (string, error) {
	var out phraseBody
	if err := c.do(ctx, http.MethodGet, apiWallet+"/phrase", nil, &out); err != nil {
		return "", err
	}
	return out.Phrase, nil
}

func (c *Client) DeletePhrase(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, apiWallet+"/phrase", nil, nil)
}

func (c *Client) ImportBirthday(ctx context.Context, height models.BlockHeight) error {
	return c.do(ctx, http.MethodPost, apiWallet+"/birthday", birthdayBody{Height: height}, nil)
}

func (c *Client) ExportBirthday(ctx context.Context) (models.BlockHeight, error) {
	var out birthdayBody
	if err := c.do(ctx, http.MethodGet, apiWallet+"/birthday", nil, &out); err != nil {
		return 0, err
	}
	return out.Height, nil
}

func (c *Client) DeleteBirthday(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, apiWallet+"/birthday", nil, nil)
}

// SaveKeys replaces the key list on the server.
func (c *Client) SaveKeys(ctx context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	return c.do(ctx, http.MethodPut, apiWallet+"/keys", keysBody{Keys: keys}, nil)
}

// GetKeys returns the key list; it is empty, not an error, when none was saved.
func (c *Client) GetKeys(ctx context.Context) ([]string, error) {
	var out keysBody
	if err := c.do(ctx, http.MethodGet, apiWallet+"/keys", nil, &out); err != nil {
		return nil, err
	}
	return out.Keys, nil
}

func (c *Client) DeleteKeys(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, apiWallet+"/keys", nil, nil)
}

// WipeAll removes every stored secret. Callers confirm with the user first.
func (c *Client) WipeAll(ctx context.Context) (int, error) {
	var out wipeBody
	if err := c.do(ctx, http.MethodPost, apiWallet+"/wipe", nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

func (c *Client) SaveIdentity(ctx context.Context, id, phrase string, height models.BlockHeight, spendingKey string) error {
	path, err := identityPath(id, "")
	if err != nil {
		return err
	}
	body := models.Identity{Height: height, Phrase: phrase, SpendingKey: spendingKey}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// GetIdentity returns ok=false for absent and partial records alike.
func (c *Client) GetIdentity(ctx context.Context, id string) (models.Identity, bool, error) {
	path, err := identityPath(id, "")
	if err != nil {
		return models.Identity{}, false, err
	}
	var out models.Identity
	err = c.do(ctx, http.MethodGet, path, nil, &out)
	if errors.Is(err, seedstore.ErrUninitialized) {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, err
	}
	return out, true, nil
}

func (c *Client) IdentityState(ctx context.Context, id string) (models.IdentityState, error) {
	path, err := identityPath(id, "/state")
	if err != nil {
		return "", err
	}
	var out stateBody
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.State, nil
}

func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	path, err := identityPath(id, "")
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func identityPath(id, suffix string) (string, error) {
	if id == "" {
		return "", ErrEmptyIdentity
	}
	return apiIdentities + url.PathEscape(id) + suffix, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError turns a failed response back into the store error it was made from.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.TrimSpace(string(data))

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, seedstore.ErrAlreadyImported)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, seedstore.ErrUninitialized)
	case resp.StatusCode == http.StatusInternalServerError && msg == "corrupt secret":
		return fmt.Errorf("%s: %w", msg, seedstore.ErrCorrupt)
	default:
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
}
