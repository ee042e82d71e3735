// Package drive implements the remote storage API against the Google Drive
// v3 REST surface: folder lookup/creation, resumable chunked uploads, and
// quota reporting. Base URLs are injectable so tests can point the client
// at a local server.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/74Thirsty/cloudchain/backend"
)

const (
	DefaultAPIBase    = "https://www.googleapis.com/drive/v3"
	DefaultUploadBase = "https://www.googleapis.com/upload/drive/v3"

	folderMimeType = "application/vnd.google-apps.folder"
)

type Client struct {
	httpClient *http.Client
	apiBase    string
	uploadBase string
	creds      backend.CredentialProvider
	account    string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithAPIBase(api, upload string) Option {
	return func(c *Client) {
		if api != "" {
			c.apiBase = strings.TrimRight(api, "/")
		}
		if upload != "" {
			c.uploadBase = strings.TrimRight(upload, "/")
		}
	}
}

// NewClient builds a drive client scoped to one chain member.
func NewClient(account string, creds backend.CredentialProvider, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		apiBase:    DefaultAPIBase,
		uploadBase: DefaultUploadBase,
		creds:      creds,
		account:    account,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.creds.Token(ctx, c.account)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

type fileResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size string `json:"size,omitempty"`
}

type fileList struct {
	Files []fileResource `json:"files"`
}

// ResolveOrCreateFolder finds the named folder directly under the drive
// root, creating it when absent. Not race-free on the provider side; the
// calling workflow never runs this concurrently for one account.
func (c *Client) ResolveOrCreateFolder(ctx context.Context, name string) (backend.Folder, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and 'root' in parents and trashed=false", name, folderMimeType)
	u := fmt.Sprintf("%s/files?q=%s&fields=files(id,name)", c.apiBase, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return backend.Folder{}, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return backend.Folder{}, err
	}
	var list fileList
	if err := c.doJSON(req, &list); err != nil {
		return backend.Folder{}, fmt.Errorf("list folder %s: %w", name, err)
	}
	if len(list.Files) > 0 {
		return backend.Folder{ID: list.Files[0].ID, Name: list.Files[0].Name}, nil
	}

	body, _ := json.Marshal(map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
		"parents":  []string{"root"},
	})
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/files?fields=id,name", bytes.NewReader(body))
	if err != nil {
		return backend.Folder{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return backend.Folder{}, err
	}
	var created fileResource
	if err := c.doJSON(req, &created); err != nil {
		return backend.Folder{}, fmt.Errorf("create folder %s: %w", name, err)
	}
	return backend.Folder{ID: created.ID, Name: created.Name}, nil
}

// CreateUpload opens a resumable session; the session URL comes back in the
// Location header.
func (c *Client) CreateUpload(ctx context.Context, folder backend.Folder, name string, totalBytes uint64) (backend.UploadSession, error) {
	body, _ := json.Marshal(map[string]any{
		"name":    name,
		"parents": []string{folder.ID},
	})
	u := c.uploadBase + "/files?uploadType=resumable&fields=id,name,size"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatUint(totalBytes, 10))
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("resumable session for %s: missing Location header", name)
	}
	return &resumableSession{
		client:     c,
		url:        location,
		totalBytes: totalBytes,
	}, nil
}

// Quota fetches the account's usage figures. Drive reports them as decimal
// strings.
func (c *Client) Quota(ctx context.Context) (used, limit uint64, err error) {
	u := c.apiBase + "/about?fields=storageQuota"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, 0, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return 0, 0, err
	}
	var about struct {
		StorageQuota struct {
			Usage string `json:"usage"`
			Limit string `json:"limit"`
		} `json:"storageQuota"`
	}
	if err := c.doJSON(req, &about); err != nil {
		return 0, 0, fmt.Errorf("fetch quota: %w", err)
	}
	used, _ = strconv.ParseUint(about.StorageQuota.Usage, 10, 64)
	limit, _ = strconv.ParseUint(about.StorageQuota.Limit, 10, 64)
	return used, limit, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func httpError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("drive API returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
}
