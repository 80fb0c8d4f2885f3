package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushbullet_Send(t *testing.T) {
	t.Parallel()

	var got pushbulletNote
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/pushes", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("Access-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewPushbullet("pb", "tok", WithBaseURL(srv.URL))
	require.NoError(t, p.Send(context.Background(), testUser, "Found 2 new gopros from facebook", testMessage))

	assert.Equal(t, "note", got.Type)
	assert.Equal(t, "Found 2 new gopros from facebook", got.Title)
	assert.Equal(t, testMessage, got.Body)
}

func TestPushbullet_UnauthorizedIsPermanent(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Access token is missing or invalid."}}`))
	}))
	defer srv.Close()

	p := NewPushbullet("pb", "bad", WithBaseURL(srv.URL))
	err := Deliver(context.Background(), func(ctx context.Context) error {
		return p.Send(ctx, testUser, "t", "m")
	}, 4, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushbullet returned 401")
	assert.Equal(t, 1, calls)
}

func TestPushbullet_ServerErrorIsRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushbullet("pb", "tok", WithBaseURL(srv.URL))
	err := Deliver(context.Background(), func(ctx context.Context) error {
		return p.Send(ctx, testUser, "t", "m")
	}, 4, 0)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestProxyClient(t *testing.T) {
	t.Parallel()

	c, err := proxyClient(&http.Client{}, "socks5", "127.0.0.1:1080")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://api.pushbullet.com", http.NoBody)
	require.NoError(t, err)

	u, err := c.Transport.(*http.Transport).Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "socks5://127.0.0.1:1080", u.String())
}

func TestPushover_Send(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 2000)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1/messages.json", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "app-token", r.PostForm.Get("token"))
		assert.Equal(t, "user-key", r.PostForm.Get("user"))
		assert.Equal(t, "Found 1 new gopro from facebook", r.PostForm.Get("title"))
		assert.Len(t, []rune(r.PostForm.Get("message")), pushoverMaxMessage)
		assert.True(t, strings.HasSuffix(r.PostForm.Get("message"), "..."))
		_, _ = w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	p := NewPushover("po", "user-key", "app-token", WithBaseURL(srv.URL))
	assert.True(t, p.HasRequiredFields())
	require.NoError(t, p.Send(context.Background(), testUser, "Found 1 new gopro from facebook", long))
}

func TestPushover_RequiredFields(t *testing.T) {
	t.Parallel()

	assert.False(t, NewPushover("po", "", "app-token").HasRequiredFields())
	assert.False(t, NewPushover("po", "user-key", "").HasRequiredFields())
}

func TestTelegram_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   string
		wantErr string
	}{
		{name: "accepted", reply: `{"ok":true}`},
		{name: "rejected", reply: `{"ok":false,"description":"chat not found"}`, wantErr: "chat not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got telegramMessage
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			tg := NewTelegram("tg", "123:abc", "-1001", WithBaseURL(srv.URL))
			err := tg.Send(context.Background(), testUser, "Found 2 new gopros from facebook", testMessage)

			assert.Equal(t, "-1001", got.ChatID)
			assert.True(t, strings.HasPrefix(got.Text, "Found 2 new gopros from facebook\n\n[Good match (4)]"))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTelegram_ErrorHidesToken(t *testing.T) {
	t.Parallel()

	tg := NewTelegram("tg", "secret-token", "1", WithBaseURL("http://127.0.0.1:1"))
	err := tg.Send(context.Background(), testUser, "t", "m")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdefghij", 2))
	assert.Equal(t, "héll...", truncate("héllo wörld", 7))
}
