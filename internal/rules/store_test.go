package rules

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finpal/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu      sync.Mutex
	stored  *core.RuleSet
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeBackend) Load(context.Context) (*core.RuleSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.stored == nil {
		return nil, ErrNoRules
	}
	return f.stored.Clone(), nil
}

func (f *fakeBackend) Save(_ context.Context, rs *core.RuleSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.stored = rs.Clone()
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, c Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return r.err
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing persisted yields defaults", func(t *testing.T) {
		s := NewStore(&fakeBackend{})
		require.NoError(t, s.Load(ctx))
		assert.Equal(t, []string{core.Uncategorized}, s.Categories())
	})

	t.Run("persisted rules replace defaults", func(t *testing.T) {
		rs := core.NewRuleSet()
		rs.AddCategory("Food")
		rs.AddKeyword("Food", "diner")
		s := NewStore(&fakeBackend{stored: rs})

		require.NoError(t, s.Load(ctx))
		assert.Equal(t, []string{core.Uncategorized, "Food"}, s.Categories())
		assert.Equal(t, []string{"diner"}, s.Snapshot().Keywords("Food"))
	})

	t.Run("broken backend falls back with a config error", func(t *testing.T) {
		s := NewStore(&fakeBackend{loadErr: errors.New("disk on fire")})
		err := s.Load(ctx)

		var cfgErr *core.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{core.Uncategorized}, s.Categories())
	})
}

func TestStoreAddCategory(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	notifier := &recordingNotifier{}
	s := NewStore(backend, WithNotifier(notifier))

	added, err := s.AddCategory(ctx, "  Travel ")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.Has("Travel"))
	assert.Equal(t, 1, backend.saves)

	added, err = s.AddCategory(ctx, "Travel")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, backend.saves, "duplicate must not persist")

	_, err = s.AddCategory(ctx, "   ")
	assert.ErrorIs(t, err, core.ErrEmptyCategoryName)

	require.Len(t, notifier.changes, 1)
	assert.Equal(t, CategoryAdded, notifier.changes[0].Kind)
	assert.Equal(t, "Travel", notifier.changes[0].Category)
	assert.False(t, notifier.changes[0].At.IsZero())
}

func TestStoreAddKeyword(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	s := NewStore(backend)
	_, err := s.AddCategory(ctx, "Food")
	require.NoError(t, err)

	tests := []struct {
		name     string
		category string
		keyword  string
		want     bool
		wantErr  error
	}{
		{name: "new keyword", category: "Food", keyword: " local diner ", want: true},
		{name: "duplicate", category: "Food", keyword: "local diner", want: false},
		{name: "empty", category: "Food", keyword: "  ", want: false},
		{name: "uncategorized is never learned", category: core.Uncategorized, keyword: "x", want: false},
		{name: "unknown category", category: "Nope", keyword: "x", wantErr: core.ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.AddKeyword(ctx, tt.category, tt.keyword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"local diner"}, backend.stored.Keywords("Food"))
}

func TestStoreFailedSaveLeavesRulesUnchanged(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{saveErr: errors.New("read-only")}
	notifier := &recordingNotifier{}
	s := NewStore(backend, WithNotifier(notifier))

	added, err := s.AddCategory(ctx, "Food")
	require.Error(t, err)
	assert.False(t, added)
	assert.False(t, s.Has("Food"))
	assert.Empty(t, notifier.changes)
}

func TestStoreNotifierFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeBackend{}, WithNotifier(&recordingNotifier{err: errors.New("broker down")}))

	added, err := s.AddCategory(ctx, "Food")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore(&fakeBackend{})
	snap := s.Snapshot()
	snap.AddCategory("Sneaky")
	assert.False(t, s.Has("Sneaky"))
}

func TestStoreConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeBackend{})
	_, err := s.AddCategory(ctx, "Food")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddKeyword(ctx, "Food", "diner")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"diner"}, s.Snapshot().Keywords("Food"))
}
