package mongo

import (
	"context"
	"time"

	"chama-ledger/internal/domain/notification"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct{ coll *mongo.Collection }

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(notificationsCollection)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, n)
	if mongo.IsDuplicateKeyError(err) {
		return notification.ErrDuplicate
	}
	return err
}

func (r *NotificationRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]notification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, bson.M{"member_id": memberID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[notification.Notification](ctx, cur)
}
