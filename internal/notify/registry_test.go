package notify

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  Fields
		wantErr string
	}{
		{
			name:   "pushover with retry settings",
			fields: Fields{"type": "pushover", "pushover_user_key": "u", "pushover_api_token": "t", "max_retries": 3, "retry_delay": "30s"},
		},
		{
			name:   "missing required fields are allowed",
			fields: Fields{"type": "telegram"},
		},
		{
			name:   "type is case-insensitive",
			fields: Fields{"type": "Discord", "discord_webhook_url": "https://discord.com/api/webhooks/1/x"},
		},
		{
			name:    "missing type",
			fields:  Fields{"pushover_user_key": "u"},
			wantErr: "type is required",
		},
		{
			name:    "unknown type",
			fields:  Fields{"type": "carrier-pigeon"},
			wantErr: `unknown type "carrier-pigeon"`,
		},
		{
			name:    "field of another type",
			fields:  Fields{"type": "pushbullet", "pushbullet_token": "t", "pushover_user_key": "u"},
			wantErr: `unknown field "pushover_user_key"`,
		},
		{
			name:    "bad retry count",
			fields:  Fields{"type": "log", "max_retries": 0},
			wantErr: "max_retries: must be at least 1",
		},
		{
			name:    "bad retry delay",
			fields:  Fields{"type": "log", "retry_delay": "soon"},
			wantErr: "retry_delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate("n", tt.fields)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	quiet := WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		fields   Fields
		wantType string
		complete bool
	}{
		{Fields{"type": "pushbullet", "pushbullet_token": "t", "pushbullet_proxy_type": "http", "pushbullet_proxy_server": "proxy:3128"}, "pushbullet", true},
		{Fields{"type": "pushover", "pushover_user_key": "u"}, "pushover", false},
		{Fields{"type": "telegram", "telegram_token": "t", "telegram_chat_id": 12345}, "telegram", true},
		{Fields{"type": "discord", "discord_webhook_url": "https://discord.com/api/webhooks/1/x"}, "discord", true},
		{Fields{"type": "email", "smtp_server": "smtp.example.com", "smtp_username": "u", "smtp_password": "p", "smtp_port": 465}, "email", true},
		{Fields{"type": "nats", "nats_url": "nats://localhost:4222"}, "nats", false},
		{Fields{"type": "log"}, "log", true},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			t.Parallel()
			ch, err := Build("chan", tt.fields, quiet)
			require.NoError(t, err)
			assert.Equal(t, "chan", ch.Name())
			assert.Equal(t, tt.wantType, ch.Type())
			assert.Equal(t, tt.complete, ch.HasRequiredFields())
			assert.Equal(t, tt.complete, len(MissingFields(tt.fields)) == 0)
			assert.Equal(t, DefaultPolicy(), ch.Policy())
		})
	}
}

func TestBuild_RetryPolicy(t *testing.T) {
	t.Parallel()

	ch, err := Build("po", Fields{"type": "pushover", "max_retries": "2", "retry_delay": 45})
	require.NoError(t, err)
	assert.Equal(t, RetryPolicy{MaxRetries: 2, RetryDelay: 45 * time.Second}, ch.Policy())
}

func TestBuildAll(t *testing.T) {
	t.Parallel()

	channels, err := BuildAll(map[string]Fields{
		"me":  {"type": "log"},
		"bus": {"type": "nats", "nats_url": "nats://localhost:4222", "nats_subject": "alerts"},
	})
	require.NoError(t, err)
	assert.Len(t, channels, 2)
	require.NoError(t, CloseAll(channels))

	_, err = BuildAll(map[string]Fields{
		"a": {"type": "nope"},
		"b": {"type": "log", "colour": "red"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `notification "a"`)
	assert.Contains(t, err.Error(), `notification "b"`)
}

func TestTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"discord", "email", "log", "nats", "pushbullet", "pushover", "telegram"}, Types())
}
