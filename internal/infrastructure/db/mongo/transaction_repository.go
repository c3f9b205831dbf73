package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const transactionsCollection = "transactions"

// TransactionRepository persists transactions and owns the atomic transfer
// unit: debit, credit and insert run inside one session transaction, and both
// balance mutations are $inc relative deltas, never read-then-write-back.
type TransactionRepository struct {
	client       *mongo.Client
	transactions *mongo.Collection
	accounts     *mongo.Collection
}

func NewTransactionRepository(client *mongo.Client, db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{
		client:       client,
		transactions: db.Collection(transactionsCollection),
		accounts:     db.Collection(accountsCollection),
	}
}

type mongoTransaction struct {
	TransactionID     string `bson:"_id"`
	IdempotencyKey    string `bson:"idempotency_key,omitempty"`
	SenderAccountID   string `bson:"sender_account_id"`
	ReceiverAccountID string `bson:"receiver_account_id"`
	AmountCents       int64  `bson:"amount_cents"`
	Type              string `bson:"transaction_type"`
	Description       string `bson:"description,omitempty"`
	Status            string `bson:"status"`
	CreatedAt         int64  `bson:"created_at"`
}

func (m mongoTransaction) toDomain() *domain.Transaction {
	return &domain.Transaction{
		TransactionID:     m.TransactionID,
		IdempotencyKey:    m.IdempotencyKey,
		SenderAccountID:   m.SenderAccountID,
		ReceiverAccountID: m.ReceiverAccountID,
		Amount:            centsToDecimal(m.AmountCents),
		Type:              domain.TransactionType(m.Type),
		Description:       m.Description,
		Status:            domain.TransactionStatus(m.Status),
		CreatedAt:         unixToTime(m.CreatedAt),
	}
}

// Execute applies the transfer atomically. The debit filter re-checks status
// and balance so a concurrent transfer can never drive the sender negative:
// when the guarded update matches nothing the whole transaction aborts with
// zero mutation.
func (r *TransactionRepository) Execute(ctx context.Context, t *domain.Transaction) error {
	amountCents := decimalToCents(t.Amount)
	now := time.Now().UTC().Unix()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		debit, err := r.accounts.UpdateOne(sc,
			bson.M{
				"_id":           t.SenderAccountID,
				"status":        string(domain.AccountActive),
				"balance_cents": bson.M{"$gte": amountCents},
			},
			bson.M{
				"$inc": bson.M{"balance_cents": -amountCents},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("debit sender: %w", err)
		}
		if debit.MatchedCount == 0 {
			return nil, domain.ErrInsufficientBalance
		}

		credit, err := r.accounts.UpdateOne(sc,
			bson.M{"_id": t.ReceiverAccountID, "status": string(domain.AccountActive)},
			bson.M{
				"$inc": bson.M{"balance_cents": amountCents},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("credit receiver: %w", err)
		}
		if credit.MatchedCount == 0 {
			return nil, domain.ErrAccountNotActive
		}

		doc := mongoTransaction{
			TransactionID:     t.TransactionID,
			IdempotencyKey:    t.IdempotencyKey,
			SenderAccountID:   t.SenderAccountID,
			ReceiverAccountID: t.ReceiverAccountID,
			AmountCents:       amountCents,
			Type:              string(t.Type),
			Description:       t.Description,
			Status:            string(t.Status),
			CreatedAt:         t.CreatedAt.Unix(),
		}
		if _, err := r.transactions.InsertOne(sc, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrDuplicateKey
			}
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		return nil, nil
	})
	return err
}

func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var mt mongoTransaction
	if err := r.transactions.FindOne(ctx, bson.M{"_id": transactionID}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, domain.ErrEntryNotFound)
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TransactionRepository) List(ctx context.Context, filter ports.ListTransactionsFilter) ([]*domain.Transaction, error) {
	query := bson.M{}
	if filter.OwnerUserID != "" {
		ids, err := r.accountIDsForOwner(ctx, filter.OwnerUserID)
		if err != nil {
			return nil, err
		}
		query["$or"] = bson.A{
			bson.M{"sender_account_id": bson.M{"$in": ids}},
			bson.M{"receiver_account_id": bson.M{"$in": ids}},
		}
	}
	if filter.Type != "" {
		query["transaction_type"] = string(filter.Type)
	}

	created := bson.M{}
	if !filter.DateFrom.IsZero() {
		created["$gte"] = filter.DateFrom.Unix()
	}
	if !filter.DateTo.IsZero() {
		created["$lte"] = filter.DateTo.Unix()
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	amount := bson.M{}
	if filter.MinAmount.IsPositive() {
		amount["$gte"] = decimalToCents(filter.MinAmount)
	}
	if filter.MaxAmount.IsPositive() {
		amount["$lte"] = decimalToCents(filter.MaxAmount)
	}
	if len(amount) > 0 {
		query["amount_cents"] = amount
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cur, err := r.transactions.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Transaction
	for cur.Next(ctx) {
		var mt mongoTransaction
		if err := cur.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		out = append(out, mt.toDomain())
	}
	return out, cur.Err()
}

func (r *TransactionRepository) accountIDsForOwner(ctx context.Context, userID string) ([]string, error) {
	cur, err := r.accounts.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("owner accounts: %w", err)
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// EnsureIndexes creates the unique idempotency key index. The index is
// sparse so transactions without a key are unconstrained.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.transactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "sender_account_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
