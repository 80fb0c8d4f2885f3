package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/engine"
	"github.com/donaldgifford/marketplace-monitor/internal/filter"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func writeConfig(t *testing.T, cacheDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`
logging:
  level: error
cache:
  backend: bolt
  dir: %s
marketplace:
  facebook:
    search_city: houston
item:
  drone:
    search_phrases: dji mini
`, cacheDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "marketplace-monitor dev\n", out)
}

func TestCacheCommands(t *testing.T) {
	ctx := context.Background()
	cacheDir := t.TempDir()
	path := writeConfig(t, cacheDir)

	st, err := store.NewBoltStore(cacheDir)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, store.NewKey(store.ListingDetails, "a"), []byte("{}")))
	require.NoError(t, st.Set(ctx, store.NewKey(store.ListingDetails, "b"), []byte("{}")))
	require.NoError(t, st.Set(ctx, store.NewKey(store.UserNotified, "alice", "a"), []byte("{}")))
	require.NoError(t, st.Close())

	out, err := execute(t, "--config", path, "--output", "json", "cache", "stats")
	require.NoError(t, err)
	var stats map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats[string(store.ListingDetails)])
	assert.Equal(t, 1, stats[string(store.UserNotified)])

	out, err = execute(t, "--config", path, "--output", "table", "cache", "clear", "--type", "listing-details")
	require.NoError(t, err)
	assert.Equal(t, "2 listing-details entries removed\n", out)

	out, err = execute(t, "--config", path, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "listing-details")
	assert.Contains(t, out, "total (bolt)")

	_, err = execute(t, "--config", path, "cache", "clear", "--type", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown cache type "bogus"`)

	out, err = execute(t, "--config", path, "cache", "clear", "--type", "")
	require.NoError(t, err)
	assert.Equal(t, "cache cleared\n", out)
}

func TestPickItem(t *testing.T) {
	t.Parallel()

	one := &config.Config{Item: map[string]*domain.Item{"drone": {Name: "drone"}}}
	two := &config.Config{Item: map[string]*domain.Item{
		"drone": {Name: "drone"},
		"bike":  {Name: "bike"},
	}}

	tests := []struct {
		name    string
		cfg     *config.Config
		item    string
		want    string
		wantErr string
	}{
		{"only item", one, "", "drone", ""},
		{"named item", two, "bike", "bike", ""},
		{"ambiguous", two, "", "", "pick one with --for"},
		{"unknown", one, "car", "", `unknown item "car"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := pickItem(tt.cfg, tt.item)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintCheckTable(t *testing.T) {
	t.Parallel()

	results := []engine.CheckResult{
		{
			Ref:       "100",
			Listing:   &domain.Listing{ID: "100", Title: "DJI Mini 3", Price: "$300"},
			Rating:    domain.NewRating(4, "clean"),
			Rated:     true,
			Confirmed: true,
			Users: []engine.UserStatus{
				{User: "bob", Status: domain.Notified},
				{User: "alice", Status: domain.NotNotified},
			},
		},
		{
			Ref:     "200",
			Listing: &domain.Listing{ID: "200", Title: "DJI Mini 2", Price: "$90"},
			Filter:  filter.Result{Reason: filter.ReasonExcludedByDesc, Detail: "broken"},
		},
		{Ref: "300", Err: errors.New("listing is not in the cache")},
	}

	var buf bytes.Buffer
	require.NoError(t, printCheckTable(&buf, results))
	out := buf.String()

	assert.Contains(t, out, "ALICE")
	assert.Contains(t, out, "BOB")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("ALICE")), bytes.Index(buf.Bytes(), []byte("BOB")))
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "not_notified")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "error: listing is not in the cache")

	rows := toCheckRows(results)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Notify)
	assert.Equal(t, "notified", rows[0].Users["bob"])
	assert.False(t, rows[1].Notify)
	assert.False(t, rows[2].Notify)
	assert.Equal(t, "listing is not in the cache", rows[2].Error)
}

func TestOpenStore(t *testing.T) {
	t.Parallel()

	st, err := openStore(context.Background(), config.CacheConfig{Backend: config.CacheBolt, Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, st.Ping(context.Background()))
	require.NoError(t, st.Close())

	_, err = openStore(context.Background(), config.CacheConfig{Backend: "memcached"})
	require.Error(t, err)
}

func TestOpenStore_BoltInUse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	held, err := openStore(context.Background(), config.CacheConfig{Backend: config.CacheBolt, Dir: dir})
	require.NoError(t, err)
	defer held.Close()

	_, err = openStore(context.Background(), config.CacheConfig{Backend: config.CacheBolt, Dir: dir})
	require.ErrorIs(t, err, store.ErrLocked)
}

func TestCacheLockNote_InHelp(t *testing.T) {
	t.Parallel()

	for _, c := range []*cobra.Command{checkCmd(), cacheCmd()} {
		assert.Contains(t, c.Long, cacheLockNote, c.Name())
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
