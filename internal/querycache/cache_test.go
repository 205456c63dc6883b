package querycache_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoboard/internal/model"
	"github.com/idilsaglam/todoboard/internal/querycache"
)

func todo(id string, s model.Status) model.Todo {
	return model.Todo{ID: id, Title: id, Type: s}
}

func Test_Begin_FetchesOnce_When_NotInvalidated(t *testing.T) {
	t.Parallel()

	c := querycache.New()
	gen, ok := c.Begin(model.Done)
	require.True(t, ok)
	assert.Equal(t, querycache.Loading, c.Entry(model.Done).State)

	_, ok = c.Begin(model.Done)
	assert.False(t, ok, "second begin while loading")

	require.True(t, c.Resolve(model.Done, gen, []model.Todo{todo("1", model.Done)}, nil))
	_, ok = c.Begin(model.Done)
	assert.False(t, ok, "begin after ready without invalidation")

	e := c.Entry(model.Done)
	assert.Equal(t, querycache.Ready, e.State)
	assert.Len(t, e.Items, 1)
}

func Test_Invalidate_AllowsRefetchAndKeepsItemsVisible(t *testing.T) {
	t.Parallel()

	c := querycache.New()
	gen, _ := c.Begin(model.NotStarted)
	c.Resolve(model.NotStarted, gen, []model.Todo{todo("1", model.NotStarted)}, nil)

	got := c.Invalidate(model.NotStarted)
	assert.Equal(t, []model.Status{model.NotStarted}, got)

	gen2, ok := c.Begin(model.NotStarted)
	require.True(t, ok)
	assert.Greater(t, gen2, gen)

	e := c.Entry(model.NotStarted)
	assert.Equal(t, querycache.Ready, e.State)
	assert.True(t, e.Fetching)
	assert.Len(t, e.Items, 1)
}

func Test_Resolve_DropsStaleGeneration(t *testing.T) {
	t.Parallel()

	c := querycache.New()
	first, _ := c.Begin(model.InProgress)
	c.Invalidate(model.InProgress)
	second, ok := c.Begin(model.InProgress)
	require.True(t, ok)

	assert.True(t, c.Resolve(model.InProgress, second, []model.Todo{todo("new", model.InProgress)}, nil))
	assert.False(t, c.Resolve(model.InProgress, first, []model.Todo{todo("old", model.InProgress)}, nil))

	e := c.Entry(model.InProgress)
	require.Len(t, e.Items, 1)
	assert.Equal(t, "new", e.Items[0].ID)
}

func Test_Resolve_RecordsFailure(t *testing.T) {
	t.Parallel()

	c := querycache.New()
	gen, _ := c.Begin(model.Done)
	boom := errors.New("boom")
	c.Resolve(model.Done, gen, nil, boom)

	e := c.Entry(model.Done)
	assert.Equal(t, querycache.Failed, e.State)
	assert.ErrorIs(t, e.Err, boom)

	_, ok := c.Begin(model.Done)
	assert.False(t, ok, "failed lists wait for invalidation like loaded ones")
}

func Test_Invalidate_DedupesAndIgnoresUnknown(t *testing.T) {
	t.Parallel()

	c := querycache.New()
	got := c.Invalidate(model.Done, "", model.NotStarted, model.Done, "archived")
	assert.Equal(t, []model.Status{model.NotStarted, model.Done}, got)
}

func Test_Cache_IsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	c := querycache.New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, s := range model.Statuses {
				if gen, ok := c.Begin(s); ok {
					c.Resolve(s, gen, nil, nil)
				}
				c.Invalidate(s)
				_ = c.Entry(s)
			}
		}()
	}
	wg.Wait()
}
