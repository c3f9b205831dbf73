package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

const accountsCollection = "accounts"

// AccountRepository persists accounts. Balances are stored as int64 cents so
// the transfer path can apply them as atomic $inc relative deltas; this
// repository never writes balances itself.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

type mongoAccount struct {
	ID            string `bson:"_id"`
	AccountNumber string `bson:"account_number"`
	UserID        string `bson:"user_id"`
	Type          string `bson:"account_type"`
	BalanceCents  int64  `bson:"balance_cents"`
	Status        string `bson:"status"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func (m mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:            m.ID,
		AccountNumber: m.AccountNumber,
		UserID:        m.UserID,
		Type:          domain.AccountType(m.Type),
		Balance:       centsToDecimal(m.BalanceCents),
		Status:        domain.AccountStatus(m.Status),
		CreatedAt:     unixToTime(m.CreatedAt),
		UpdatedAt:     unixToTime(m.UpdatedAt),
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	doc := mongoAccount{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
		Type:          string(account.Type),
		BalanceCents:  decimalToCents(account.Balance),
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt.Unix(),
		UpdatedAt:     account.UpdatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert account: duplicate account number: %w", err)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"account_number": accountNumber})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Account, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *AccountRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	return r.list(ctx, bson.M{})
}

func (r *AccountRepository) list(ctx context.Context, filter bson.M) ([]*domain.Account, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*domain.Account
	for cur.Next(ctx) {
		var ma mongoAccount
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, ma.toDomain())
	}
	return accounts, cur.Err()
}

func (r *AccountRepository) NumberExists(ctx context.Context, accountNumber string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"account_number": accountNumber}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count account number: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique account number index and the owner index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	return err
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func decimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}
