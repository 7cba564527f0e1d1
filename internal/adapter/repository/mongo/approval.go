package mongo

import (
	"context"
	"errors"

	approvalDomain "chama-ledger/internal/domain/approval"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ApprovalRepository struct{ coll *mongo.Collection }

func NewApprovalRepository(db *mongo.Database) *ApprovalRepository {
	return &ApprovalRepository{coll: db.Collection(decisionsCollection)}
}

// Create relies on the unique loan_id index for one decision per loan.
func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	_, err := r.coll.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return approvalDomain.ErrAlreadyDecided
	}
	return err
}

func (r *ApprovalRepository) GetByLoanID(ctx context.Context, loanID string) (*approvalDomain.Approval, error) {
	return r.findOne(ctx, bson.M{"loan_id": loanID})
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	return r.findOne(ctx, bson.M{"_id": approvalID})
}

func (r *ApprovalRepository) findOne(ctx context.Context, filter bson.M) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	err := r.coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, approvalDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
