package repository

import (
	"context"

	"bankdemo/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Create(ctx context.Context, msg *model.Notification) error {
	if msg.Status == "" {
		msg.Status = model.OutboxStatusPending
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *OutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*model.Notification, error) {
	return r.listByStatus(ctx, model.OutboxStatusPending, limit)
}

func (r *OutboxRepository) GetFailedMessages(ctx context.Context, limit int) ([]*model.Notification, error) {
	return r.listByStatus(ctx, model.OutboxStatusFailed, limit)
}

// GetRecent 按创建顺序倒序返回最近的通知，limit <= 0 时返回全部
func (r *OutboxRepository) GetRecent(ctx context.Context, limit int) ([]*model.Notification, error) {
	var messages []*model.Notification
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("status", status))
}

func (r *OutboxRepository) IncrementRetryCount(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("retry_count", gorm.Expr("retry_count + 1")))
}

func (r *OutboxRepository) MarkAsFailed(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.OutboxStatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
		}))
}

// Purge 删除已发送的通知，只保留最近 keep 条，返回删除数量
func (r *OutboxRepository) Purge(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("status = ?", model.OutboxStatusSent).
		Order("id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) <= keep {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("id IN ?", ids[keep:]).
		Delete(&model.Notification{})
	return int(res.RowsAffected), res.Error
}

func (r *OutboxRepository) listByStatus(ctx context.Context, status string, limit int) ([]*model.Notification, error) {
	var messages []*model.Notification
	q := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
