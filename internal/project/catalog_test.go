package project

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

// flakyGateway wraps a Gateway and fails deletes on demand.
type flakyGateway struct {
	Gateway
	failDelete bool
}

func (f *flakyGateway) Delete(ctx context.Context, id string) error {
	if f.failDelete {
		return editerr.Network("fake.delete", errors.New("offline"))
	}
	return f.Gateway.Delete(ctx, id)
}

func (f *flakyGateway) DeleteAllByOwner(ctx context.Context, owner string) (int, error) {
	if f.failDelete {
		return 0, editerr.Network("fake.delete_all", errors.New("offline"))
	}
	return f.Gateway.DeleteAllByOwner(ctx, owner)
}

func TestCatalog(t *testing.T) {
	s, _ := newStore(t, "u1")
	ctx := context.Background()
	a, err := s.Save(ctx, "u1", NoID, "https://img.example/a.jpg")
	require.NoError(t, err)
	b, err := s.Save(ctx, "u1", NoID, "https://img.example/b.jpg")
	require.NoError(t, err)

	gw := &flakyGateway{Gateway: s}
	c := NewCatalog(gw)

	items, err := c.Refresh(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b, items[0].ID)

	t.Run("failed delete keeps list", func(t *testing.T) {
		gw.failDelete = true
		defer func() { gw.failDelete = false }()

		assert.ErrorIs(t, c.Delete(ctx, a), editerr.ErrNetwork)
		assert.Len(t, c.Items(), 2)
		_, err := c.Clear(ctx, "u1")
		assert.ErrorIs(t, err, editerr.ErrNetwork)
		assert.Len(t, c.Items(), 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Delete(ctx, a))
		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, b, items[0].ID)
	})

	t.Run("clear", func(t *testing.T) {
		n, err := c.Clear(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Empty(t, c.Items())
	})
}

// errGateway fails every List.
type errGateway struct{ Gateway }

func (errGateway) List(context.Context, string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		yield(Record{}, editerr.IO("fake.list", errors.New("boom")))
	}
}

func TestCatalog_RefreshErrorKeepsList(t *testing.T) {
	s, _ := newStore(t, "u1")
	ctx := context.Background()
	_, err := s.Save(ctx, "u1", NoID, "https://img.example/a.jpg")
	require.NoError(t, err)

	c := NewCatalog(s)
	_, err = c.Refresh(ctx, "u1")
	require.NoError(t, err)

	c.gw = errGateway{s}
	items, err := c.Refresh(ctx, "u1")
	assert.ErrorIs(t, err, editerr.ErrIO)
	assert.Len(t, items, 1)
	assert.Len(t, c.Items(), 1)
}
