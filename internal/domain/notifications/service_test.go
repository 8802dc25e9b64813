package notifications

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/platform/logger"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[string]Notification
}

func newFakeRepo() *fakeRepo { return &fakeRepo{items: map[string]Notification{}} }

func (f *fakeRepo) Create(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[n.ID] = n
	return nil
}

func (f *fakeRepo) Update(_ context.Context, n Notification) error {
	return f.Create(context.Background(), n)
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string) ([]Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Notification{}
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	items, _ := f.ListByUser(ctx, userID)
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	got []Notification
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, ns []Notification) error {
	p.got = append(p.got, ns...)
	return p.err
}

var t0 = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func TestNotifyPersistsAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, logger.Nop())
	ctx := context.Background()

	older := New("ana", "pet-1", "first", t0)
	newer := New("ana", "", "second", t0.Add(time.Minute))
	require.NoError(t, svc.Notify(ctx, older, newer))

	items, err := svc.ListByUser(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)
	assert.Len(t, pub.got, 2)
}

func TestNotifyRejectsEmptyRecipient(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	err := svc.Notify(context.Background(), New(" ", "", "hola", t0))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDispatchSwallowsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(newFakeRepo(), pub, logger.Nop())

	assert.NotPanics(t, func() {
		svc.Dispatch(context.Background(), []Notification{New("ana", "", "x", t0)})
	})
	assert.Len(t, pub.got, 1)
}

func TestMarkAsRead(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, logger.Nop())
	ctx := context.Background()
	n := New("ana", "", "hola", t0)
	require.NoError(t, svc.Notify(ctx, n))

	_, err := svc.MarkAsRead(ctx, n.ID, "luis")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.MarkAsRead(ctx, "missing", "ana")
	assert.ErrorIs(t, err, ErrNotFound)

	unread, err := svc.UnreadCount(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	for i := 0; i < 2; i++ {
		got, err := svc.MarkAsRead(ctx, n.ID, "ana")
		require.NoError(t, err)
		assert.True(t, got.IsRead)
	}

	unread, err = svc.UnreadCount(ctx, "ana")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
