package wssender

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	got []any
	err error
}

func (c *recordingClient) WriteJSON(v any) error {
	if c.err != nil {
		return c.err
	}
	c.got = append(c.got, v)
	return nil
}

func newTestRepo() *Repo {
	return NewRepo(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRepoSend(t *testing.T) {
	r := newTestRepo()
	c := &recordingClient{}

	require.NoError(t, r.Add("a", c))
	assert.ErrorIs(t, r.Add("a", c), ErrAlreadyExists)
	assert.Equal(t, 1, r.Length())

	require.NoError(t, r.Send("a", "hello"))
	assert.Equal(t, []any{"hello"}, c.got)

	assert.ErrorIs(t, r.Send("b", "hello"), ErrNotFound)
}

func TestRepoSendPropagatesClientError(t *testing.T) {
	r := newTestRepo()
	require.NoError(t, r.Add("a", &recordingClient{err: ErrBackpressure}))

	assert.ErrorIs(t, r.Send("a", "hello"), ErrBackpressure)
}

func TestRepoRemove(t *testing.T) {
	r := newTestRepo()
	require.NoError(t, r.Add("a", &recordingClient{}))

	require.NoError(t, r.Remove("a"))
	assert.ErrorIs(t, r.Remove("a"), ErrNotFound)
	assert.ErrorIs(t, r.Send("a", "hello"), ErrNotFound)
	assert.Zero(t, r.Length())
}
