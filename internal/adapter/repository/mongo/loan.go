package mongo

import (
	"context"
	"errors"
	"time"

	loanDomain "chama-ledger/internal/domain/loan"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LoanRepository keeps each loan as one document with its repayments embedded.
// There are no row locks; Save's revision filter is the only write guard.
type LoanRepository struct{ coll *mongo.Collection }

func NewLoanRepository(db *mongo.Database) *LoanRepository {
	return &LoanRepository{coll: db.Collection(loansCollection)}
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Repayments == nil {
		l.Repayments = []loanDomain.Repayment{}
	}
	if l.Guarantors == nil {
		l.Guarantors = []loanDomain.Guarantor{}
	}
	_, err := r.coll.InsertOne(ctx, l)
	if mongo.IsDuplicateKeyError(err) {
		return loanDomain.Wrap("create", l.LoanID, loanDomain.ErrConflict)
	}
	return err
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.coll.FindOne(ctx, bson.M{"_id": loanID}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, loanDomain.Wrap("get", loanID, loanDomain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByLoanIDForUpdate is a plain read; the later Save detects interleaved writers.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *LoanRepository) ListByMember(ctx context.Context, memberID string) ([]loanDomain.Loan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "application_date", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"member_id": memberID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[loanDomain.Loan](ctx, cur)
}

func (r *LoanRepository) List(ctx context.Context, memberID string) ([]loanDomain.Loan, error) {
	filter := bson.M{}
	if memberID != "" {
		filter["member_id"] = memberID
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll[loanDomain.Loan](ctx, cur)
}

func (r *LoanRepository) ListDue(ctx context.Context, cutoff time.Time) ([]loanDomain.Loan, error) {
	filter := bson.M{
		"status":            loanDomain.StatusActive,
		"next_payment_date": bson.M{"$lte": cutoff},
	}
	opts := options.Find().SetSort(bson.D{{Key: "next_payment_date", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[loanDomain.Loan](ctx, cur)
}

// Save replaces the document only if its stored revision still equals l.Revision.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	next := *l
	next.Revision = l.Revision + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": l.LoanID, "revision": l.Revision}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return loanDomain.Wrap("save", l.LoanID, loanDomain.ErrConflict)
	}
	l.Revision, l.UpdatedAt = next.Revision, next.UpdatedAt
	return nil
}
