package repository

import (
	"context"
	"io"
	"testing"

	"bankdemo/internal/infrastructure/database"
	"bankdemo/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutbox(t *testing.T) *OutboxRepository {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard
	db, err := database.OpenMemory(log)
	require.NoError(t, err)
	return NewOutboxRepository(db)
}

func seedOutbox(t *testing.T, r *OutboxRepository, n int) []*model.Notification {
	t.Helper()
	out := make([]*model.Notification, 0, n)
	for i := 0; i < n; i++ {
		msg := &model.Notification{Event: model.EventTransactionPosted, Level: model.LevelSuccess, Message: "ok"}
		require.NoError(t, r.Create(context.Background(), msg))
		out = append(out, msg)
	}
	return out
}

func TestOutboxCreateAssignsIDsAndPending(t *testing.T) {
	r := newTestOutbox(t)
	msgs := seedOutbox(t, r, 3)

	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, int64(3), msgs[2].ID)
	assert.Equal(t, model.OutboxStatusPending, msgs[0].Status)
	assert.False(t, msgs[0].CreatedAt.IsZero())

	pending, err := r.GetPendingMessages(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(2), pending[1].ID)
}

func TestOutboxStatusTransitions(t *testing.T) {
	ctx := context.Background()
	r := newTestOutbox(t)
	msgs := seedOutbox(t, r, 3)

	require.NoError(t, r.UpdateStatus(ctx, msgs[0].ID, model.OutboxStatusSent))
	require.NoError(t, r.IncrementRetryCount(ctx, msgs[1].ID))
	require.NoError(t, r.MarkAsFailed(ctx, msgs[2].ID))

	pending, err := r.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)

	failed, err := r.GetFailedMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, msgs[2].ID, failed[0].ID)
	assert.Equal(t, 1, failed[0].RetryCount)

	assert.ErrorIs(t, r.UpdateStatus(ctx, 99, model.OutboxStatusSent), ErrNotificationNotFound)
}

func TestOutboxReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := newTestOutbox(t)
	seedOutbox(t, r, 1)

	pending, err := r.GetPendingMessages(ctx, 1)
	require.NoError(t, err)
	pending[0].Status = model.OutboxStatusSent

	pending, err = r.GetPendingMessages(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestOutboxRecentAndPurge(t *testing.T) {
	ctx := context.Background()
	r := newTestOutbox(t)
	msgs := seedOutbox(t, r, 5)
	for _, m := range msgs[:4] {
		require.NoError(t, r.UpdateStatus(ctx, m.ID, model.OutboxStatusSent))
	}

	recent, err := r.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(5), recent[0].ID)
	assert.Equal(t, int64(4), recent[1].ID)

	removed, err := r.Purge(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	all, err := r.GetRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(5), all[0].ID)
	assert.Equal(t, int64(4), all[1].ID)
}

func TestOutboxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestOutbox(t)
	assert.ErrorIs(t, r.Create(ctx, &model.Notification{}), context.Canceled)
	_, err := r.GetPendingMessages(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutboxPurgeWithNegativeKeepRemovesAllSent(t *testing.T) {
	ctx := context.Background()
	r := newTestOutbox(t)
	msgs := seedOutbox(t, r, 2)
	require.NoError(t, r.UpdateStatus(ctx, msgs[0].ID, model.OutboxStatusSent))

	removed, err := r.Purge(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := r.GetRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, msgs[1].ID, all[0].ID)
}

func TestOutboxPurgeKeepsFailedAndPending(t *testing.T) {
	ctx := context.Background()
	r := newTestOutbox(t)
	msgs := seedOutbox(t, r, 3)
	require.NoError(t, r.MarkAsFailed(ctx, msgs[0].ID))
	require.NoError(t, r.UpdateStatus(ctx, msgs[1].ID, model.OutboxStatusSent))

	removed, err := r.Purge(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	failed, err := r.GetFailedMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
	pending, err := r.GetPendingMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
