package hfadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/config"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/util"
)

const (
	pathWhoami   = "/api/whoami-v2"
	pathDatasets = "/api/datasets"
	revision     = "main"

	maxErrorBody = 512
)

type treeItem struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	LFS  *struct {
		Size int64 `json:"size"`
	} `json:"lfs"`
}

type datasetItem struct {
	ID           string    `json:"id"`
	Private      bool      `json:"private"`
	LastModified time.Time `json:"lastModified"`
}

// Client talks to the dataset hosting API with one bearer token.
type Client struct {
	cfg   *config.HFConfig
	token string
	hc    *http.Client
	log   *slog.Logger
}

func NewClient(cfg *config.HFConfig, token string, log *slog.Logger) *Client {
	return NewClientWithHTTP(cfg, token, &http.Client{Timeout: cfg.Timeout}, log)
}

func NewClientWithHTTP(cfg *config.HFConfig, token string, hc *http.Client, log *slog.Logger) *Client {
	return &Client{
		cfg:   cfg,
		token: token,
		hc:    hc,
		log:   log.With(slog.String("item", "HFClient")),
	}
}

func (c *Client) Whoami(ctx context.Context) (*entity.Identity, error) {
	var id entity.Identity
	if err := c.getJSON(ctx, c.cfg.BaseURL+pathWhoami, &id); err != nil {
		return nil, fmt.Errorf("cannot get identity: %w", err)
	}

	if id.FullName == "" {
		id.FullName = id.Name
	}

	return &id, nil
}

func (c *Client) ListDatasets(ctx context.Context) ([]*entity.Dataset, error) {
	id, err := c.Whoami(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("author", id.Name)
	q.Set("limit", strconv.Itoa(c.cfg.DatasetLimit))

	var items []datasetItem
	if err := c.getJSON(ctx, c.cfg.BaseURL+pathDatasets+"?"+q.Encode(), &items); err != nil {
		return nil, fmt.Errorf("cannot list datasets: %w", err)
	}

	datasets := make([]*entity.Dataset, 0, len(items))
	for _, item := range items {
		datasets = append(datasets, &entity.Dataset{
			ID:           item.ID,
			Name:         item.ID[strings.LastIndex(item.ID, "/")+1:],
			Private:      item.Private,
			LastModified: item.LastModified,
		})
	}

	return datasets, nil
}

// ListTree returns the direct children of path ("" is the repository root),
// naturally sorted by path.
func (c *Client) ListTree(ctx context.Context, repoID, path string) ([]*entity.RemoteEntry, error) {
	u := fmt.Sprintf("%s%s/%s/tree/%s", c.cfg.BaseURL, pathDatasets, repoID, revision)
	if path != "" {
		u += "/" + url.PathEscape(path)
	}

	var items []treeItem
	if err := c.getJSON(ctx, u, &items); err != nil {
		return nil, fmt.Errorf("cannot list tree %s:%s: %w", repoID, path, err)
	}

	entries := make([]*entity.RemoteEntry, 0, len(items))
	for _, item := range items {
		kind := entity.EntryKindFile
		if item.Type == string(entity.EntryKindDirectory) {
			kind = entity.EntryKindDirectory
		}

		size := item.Size
		if size == 0 && item.LFS != nil {
			size = item.LFS.Size
		}

		entries = append(entries, &entity.RemoteEntry{
			Kind: kind,
			Path: item.Path,
			Name: item.Path[strings.LastIndex(item.Path, "/")+1:],
			Size: size,
		})
	}

	util.SortNatural(entries, func(e *entity.RemoteEntry) string { return e.Path })

	return entries, nil
}

// ResolveURL builds the download URL of a file without any credential in it.
func (c *Client) ResolveURL(repoID, filePath string) string {
	return ResolveURL(c.cfg.BaseURL, repoID, filePath, "")
}

// ResolveURL builds the download URL of a file. The token query parameter is
// only added when token is not empty.
func ResolveURL(baseURL, repoID, filePath, token string) string {
	segments := strings.Split(filePath, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}

	u := fmt.Sprintf("%s/datasets/%s/resolve/%s/%s", baseURL, repoID, revision, strings.Join(segments, "/"))
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}

	return u
}

// WithToken appends the token to an already resolved URL.
func WithToken(resolved, token string) string {
	if token == "" || resolved == "" {
		return resolved
	}

	sep := "?"
	if strings.Contains(resolved, "?") {
		sep = "&"
	}

	return resolved + sep + "token=" + url.QueryEscape(token)
}

// Tokenize adds the client token to a URL that points at the hosting site,
// so that a player can fetch private files. Other URLs are returned unchanged.
func (c *Client) Tokenize(resolved string) string {
	if !strings.HasPrefix(resolved, c.cfg.BaseURL+"/") {
		return resolved
	}

	return WithToken(resolved, c.token)
}

// RefResolver resolves "owner/repo/path/to/file" references without a token.
type RefResolver struct {
	BaseURL string
}

func (r RefResolver) MediaURL(ref string) (string, error) {
	parts := strings.SplitN(strings.Trim(ref, "/"), "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("%w: media reference %q", common.ErrInvalidPath, ref)
	}

	return ResolveURL(r.BaseURL, parts[0]+"/"+parts[1], parts[2], ""), nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	if c.token == "" {
		return common.ErrTokenNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("Request", slog.String("url", u))

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrRemoteRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", common.ErrInvalidCredential, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", common.ErrRemoteNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", common.ErrRemoteRequestFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: cannot decode response: %w", common.ErrRemoteRequestFailed, err)
	}

	return nil
}
