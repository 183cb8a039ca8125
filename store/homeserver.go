package store

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"geostories.app/core/pubky"
	"github.com/carlmjohnson/versioninfo"
)

const listPageSize = 100

// HomeserverStore talks to a pubky homeserver over HTTP. Reads are public;
// writes carry the session cookie of the owning identity.
type HomeserverStore struct {
	base      *url.URL
	client    *http.Client
	userAgent string
	sessions  map[pubky.Key]string
}

type HomeserverOpt func(*HomeserverStore)

func WithHTTPClient(c *http.Client) HomeserverOpt {
	return func(h *HomeserverStore) {
		h.client = c
	}
}

// WithSessionSecret authorises writes to key's namespace.
func WithSessionSecret(key pubky.Key, secret string) HomeserverOpt {
	return func(h *HomeserverStore) {
		h.sessions[key] = secret
	}
}

func DefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			IdleConnTimeout: time.Second,
			MaxIdleConns:    100,
			DialContext: (&net.Dialer{
				Timeout: 3 * time.Second,
			}).DialContext,
		},
	}
}

func NewHomeserverStore(baseURL string, opts ...HomeserverOpt) (*HomeserverStore, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid homeserver url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid homeserver url: unsupported scheme %q", u.Scheme)
	}

	h := &HomeserverStore{
		base:      u,
		client:    DefaultHTTPClient(10 * time.Second),
		userAgent: "geostories/" + versioninfo.Short(),
		sessions:  make(map[pubky.Key]string),
	}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

func (h *HomeserverStore) newRequest(ctx context.Context, method, objURL string, query url.Values, body []byte) (*http.Request, error) {
	key, path, err := pubky.SplitURL(objURL)
	if err != nil {
		return nil, err
	}

	u := *h.base
	u.Path = h.base.Path + path
	u.RawQuery = query.Encode()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("pubky-host", string(key))
	req.Header.Set("User-Agent", h.userAgent)
	if secret, ok := h.sessions[key]; ok {
		req.AddCookie(&http.Cookie{Name: string(key), Value: secret})
	}
	return req, nil
}

func (h *HomeserverStore) do(req *http.Request) (*http.Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("homeserver %s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

func (h *HomeserverStore) List(ctx context.Context, prefix string) ([]string, error) {
	// the homeserver lists directories; narrow to prefix afterwards
	dir := prefix
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i+1]
	}

	var all []string
	cursor := ""
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(listPageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		req, err := h.newRequest(ctx, http.MethodGet, dir, q, nil)
		if err != nil {
			return nil, err
		}
		resp, err := h.do(req)
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		if err != nil {
			return nil, err
		}

		page, err := readLines(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < listPageSize {
			break
		}
		cursor = page[len(page)-1]
	}

	return filterPrefix(all, prefix), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func (h *HomeserverStore) Get(ctx context.Context, objURL string) ([]byte, error) {
	req, err := h.newRequest(ctx, http.MethodGet, objURL, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (h *HomeserverStore) Put(ctx context.Context, objURL string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	req, err := h.newRequest(ctx, http.MethodPut, objURL, nil, data)
	if err != nil {
		return err
	}
	resp, err := h.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (h *HomeserverStore) Delete(ctx context.Context, objURL string) error {
	req, err := h.newRequest(ctx, http.MethodDelete, objURL, nil, nil)
	if err != nil {
		return err
	}
	resp, err := h.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
