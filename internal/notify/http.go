package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// postJSON sends payload to url and maps the response status to an error.
// 4xx responses other than 429 are permanent.
func postJSON(ctx context.Context, client *http.Client, kind, url string, header http.Header, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", kind, err)
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return post(ctx, client, kind, url, header, bytes.NewReader(body))
}

func post(ctx context.Context, client *http.Client, kind, url string, header http.Header, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", kind, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", kind, err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s rate limited (429)", kind)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var statusErr error
		if readErr != nil {
			statusErr = fmt.Errorf("%s returned %d (body unreadable)", kind, resp.StatusCode)
		} else {
			statusErr = fmt.Errorf("%s returned %d: %s", kind, resp.StatusCode, bytes.TrimSpace(respBody))
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, Permanent(statusErr)
		}
		return nil, statusErr
	}

	return respBody, nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// splitListings splits a dispatcher message into one block of lines per
// listing.
func splitListings(message string) [][]string {
	var blocks [][]string
	for _, chunk := range strings.Split(message, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		blocks = append(blocks, strings.Split(chunk, "\n"))
	}
	return blocks
}

func isURL(line string) bool {
	return strings.HasPrefix(line, "https://") || strings.HasPrefix(line, "http://")
}
