package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foglomon/FSAR/internal/core/domain"
)

func TestDefaultSettings(t *testing.T) {
	s := domain.DefaultSettings("/proj")

	assert.Equal(t, "/proj", s.Root)
	assert.Equal(t, domain.DefaultMaxDepth, s.MaxDepth)
	assert.Equal(t, domain.BackendAuto, s.Backend)
	assert.Equal(t, 300*time.Millisecond, s.DebounceWindow)
	assert.Equal(t, 250*time.Millisecond, s.RenderTick)
	assert.Equal(t, "auto", s.OutputMode)
	require.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Settings)
		wantErr error
	}{
		{name: "defaults", mutate: nil, wantErr: nil},
		{name: "tree output", mutate: func(s *domain.Settings) { s.OutputMode = "tree" }, wantErr: nil},
		{name: "linear output", mutate: func(s *domain.Settings) { s.OutputMode = "linear" }, wantErr: nil},
		{name: "unlimited depth", mutate: func(s *domain.Settings) { s.MaxDepth = 0 }, wantErr: nil},
		{name: "empty root", mutate: func(s *domain.Settings) { s.Root = "" }, wantErr: domain.ErrInvalidConfig},
		{name: "negative depth", mutate: func(s *domain.Settings) { s.MaxDepth = -1 }, wantErr: domain.ErrInvalidConfig},
		{name: "zero poll interval", mutate: func(s *domain.Settings) { s.PollInterval = 0 }, wantErr: domain.ErrInvalidConfig},
		{name: "zero debounce", mutate: func(s *domain.Settings) { s.DebounceWindow = 0 }, wantErr: domain.ErrInvalidConfig},
		{name: "zero queue", mutate: func(s *domain.Settings) { s.QueueSize = 0 }, wantErr: domain.ErrInvalidConfig},
		{name: "zero tick", mutate: func(s *domain.Settings) { s.RenderTick = 0 }, wantErr: domain.ErrInvalidConfig},
		{name: "ci is a flag alias, not a mode", mutate: func(s *domain.Settings) { s.OutputMode = "ci" }, wantErr: domain.ErrUnknownOutputMode},
		{name: "unknown output mode", mutate: func(s *domain.Settings) { s.OutputMode = "fancy" }, wantErr: domain.ErrUnknownOutputMode},
		{name: "broken thresholds", mutate: func(s *domain.Settings) { s.Thresholds.DeletedHold = 0 }, wantErr: domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings("/proj")
			if tt.mutate != nil {
				tt.mutate(&s)
			}

			err := s.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseWatchBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.WatchBackend
		wantErr bool
	}{
		{in: "", want: domain.BackendAuto},
		{in: "auto", want: domain.BackendAuto},
		{in: "fsnotify", want: domain.BackendFSNotify},
		{in: "poll", want: domain.BackendPoll},
		{in: "inotify", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("value "+tt.in, func(t *testing.T) {
			got, err := domain.ParseWatchBackend(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseBackend(t, got.String()), "String round-trips")
		})
	}
}

func mustParseBackend(t *testing.T, s string) domain.WatchBackend {
	t.Helper()
	b, err := domain.ParseWatchBackend(s)
	require.NoError(t, err)
	return b
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.OverflowPolicy
		wantErr bool
	}{
		{in: "", want: domain.OverflowCoalesce},
		{in: "coalesce", want: domain.OverflowCoalesce},
		{in: "block", want: domain.OverflowBlock},
		{in: "drop", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("value "+tt.in, func(t *testing.T) {
			got, err := domain.ParseOverflowPolicy(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownOverflowPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
