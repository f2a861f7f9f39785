package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

var t0 = time.Date(2024, 3, 4, 20, 15, 30, 123456000, time.UTC)

func sample(i int, victim string) event.KillEvent {
	return event.KillEvent{
		Timestamp: t0.Add(time.Duration(i) * time.Minute),
		Killer:    "Ponder_OG",
		Victim:    victim,
		Weapon:    "weapon_x",
	}
}

func TestCSVStore_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kill_log.csv")
	s := NewCSV(path)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sample(0, "Vagabondy")))
	require.NoError(t, s.Append(ctx, sample(1, "Other")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,killer,victim,weapon", lines[0])
	assert.Equal(t, "2024-03-04T20:15:30.123456Z,Ponder_OG,Vagabondy,weapon_x", lines[1])
}

func TestCSVStore_AppendToEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill_log.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, NewCSV(path).Append(context.Background(), sample(0, "A")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "timestamp,killer,victim,weapon\n"))
}

func TestCSVStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill_log.csv")
	s := NewCSV(path)
	ctx := context.Background()

	want := []event.KillEvent{
		sample(0, "Vagabondy"),
		sample(1, "Has, Comma"),
		{Timestamp: t0.Add(time.Hour), Killer: "unknown", Victim: "Ponder_OG", Weapon: "unknown"},
	}
	for _, ev := range want {
		require.NoError(t, s.Append(ctx, ev))
	}

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "row %d timestamp", i)
		assert.Equal(t, want[i].Killer, got[i].Killer)
		assert.Equal(t, want[i].Victim, got[i].Victim)
		assert.Equal(t, want[i].Weapon, got[i].Weapon)
	}
}

func TestCSVStore_LoadMissingFile(t *testing.T) {
	s := NewCSV(filepath.Join(t.TempDir(), "absent.csv"))
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVStore_LoadBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill_log.csv")
	require.NoError(t, os.WriteFile(path, []byte("when,who,whom\n2024-03-04T20:00:00Z,a,b\n"), 0o644))

	got, err := NewCSV(path).Load(context.Background())
	assert.Empty(t, got)

	var he *HeaderError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, path, he.Path)
	assert.Equal(t, Columns, he.Missing)
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		victims []string
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "header only",
			input: "timestamp,killer,victim,weapon\n",
		},
		{
			name: "timestamp layouts",
			input: "timestamp,killer,victim,weapon\n" +
				"2024-03-04T20:00:00Z,a,rfc3339,w\n" +
				"2024-03-04T20:00:00.5+02:00,a,offset,w\n" +
				"2024-03-04T20:00:00.123456,a,naive,w\n" +
				"2024-03-04 20:00:00,a,space,w\n",
			victims: []string{"rfc3339", "offset", "naive", "space"},
		},
		{
			name: "bad rows skipped",
			input: "timestamp,killer,victim,weapon\n" +
				"yesterday,a,bad_time,w\n" +
				"2024-03-04T20:00:00Z,a,,w\n" +
				"2024-03-04T20:00:00Z,a\n" +
				"2024-03-04T20:00:00Z,a,good,w\n",
			victims: []string{"good"},
		},
		{
			name: "reordered and extra columns",
			input: "weapon,victim,zone,killer,timestamp\n" +
				"w,reordered,Z,a,2024-03-04T20:00:00Z\n",
			victims: []string{"reordered"},
		},
		{
			name:    "byte order mark and case",
			input:   "\uFEFFTimestamp,Killer,Victim,Weapon\r\n2024-03-04T20:00:00Z,a,bom,w\r\n",
			victims: []string{"bom"},
		},
		{
			name: "fields trimmed",
			input: "timestamp,killer,victim,weapon\n" +
				" 2024-03-04T20:00:00Z , a ,  padded , w \n",
			victims: []string{"padded"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(context.Background(), strings.NewReader(tt.input), nil)
			require.NoError(t, err)
			var victims []string
			for _, ev := range got {
				victims = append(victims, ev.Victim)
			}
			assert.Equal(t, tt.victims, victims)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-04T20:15:30.123456Z", time.Date(2024, 3, 4, 20, 15, 30, 123456000, time.UTC)},
		{"2024-03-04T20:15:30+01:00", time.Date(2024, 3, 4, 19, 15, 30, 0, time.UTC)},
		{"2024-03-04T20:15:30", time.Date(2024, 3, 4, 20, 15, 30, 0, time.Local)},
		{"2024-03-04 20:15:30", time.Date(2024, 3, 4, 20, 15, 30, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	for _, bad := range []string{"", "now", "2024-13-01T00:00:00Z", "04/03/2024"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendCSV, false},
		{"csv", BackendCSV, false},
		{" SQLite ", BackendSQLite, false},
		{"postgres", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownBackend)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("postgres", filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestCSVStore_AppendRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	err := NewCSV(dir).Append(context.Background(), sample(0, "A"))
	assert.Error(t, err)
}

func TestCSVStore_AppendCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill_log.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewCSV(path).Append(ctx, sample(0, "A")), context.Canceled)
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRow(t *testing.T) {
	ev, err := ParseRow(`2024-03-04T20:15:30.123456Z,Ponder_OG,"Has, Comma",weapon_x`)
	require.NoError(t, err)
	assert.Equal(t, "Has, Comma", ev.Victim)
	assert.True(t, ev.Timestamp.Equal(t0))

	_, err = ParseRow("timestamp,killer,victim,weapon")
	assert.ErrorIs(t, err, ErrHeaderRow)

	for _, bad := range []string{"", "2024-03-04T20:15:30Z,a,b", "nope,a,b,c", "2024-03-04T20:15:30Z,a, ,c"} {
		_, err := ParseRow(bad)
		assert.Error(t, err, bad)
	}
}
