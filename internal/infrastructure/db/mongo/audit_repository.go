package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const (
	auditCollection    = "audit_logs"
	countersCollection = "counters"
	auditCounterID     = "audit_log_id"
)

// AuditRepository persists audit ledger rows. Monotonic ids come from a
// findOneAndUpdate $inc on the counters collection; the hash field is written
// exactly twice, placeholder at insert then the final digest, and no other
// update path exists.
type AuditRepository struct {
	logs     *mongo.Collection
	counters *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		logs:     db.Collection(auditCollection),
		counters: db.Collection(countersCollection),
	}
}

type mongoAuditEntry struct {
	ID           int64   `bson:"_id"`
	ActorID      *string `bson:"user_id"`
	Action       string  `bson:"action"`
	ResourceType string  `bson:"resource_type,omitempty"`
	ResourceID   string  `bson:"resource_id,omitempty"`
	IPAddress    string  `bson:"ip_address,omitempty"`
	UserAgent    string  `bson:"user_agent,omitempty"`
	Details      string  `bson:"details,omitempty"`
	Severity     string  `bson:"severity"`
	Hash         string  `bson:"log_hash"`
	CreatedAt    int64   `bson:"created_at"`
}

func (m mongoAuditEntry) toDomain() *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:           m.ID,
		ActorID:      m.ActorID,
		Action:       m.Action,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		Details:      m.Details,
		Severity:     m.Severity,
		Hash:         m.Hash,
		CreatedAt:    unixToTime(m.CreatedAt),
	}
}

// Insert stores the entry with an empty hash and assigns the next monotonic
// id onto entry.ID.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	entry.ID = id

	doc := mongoAuditEntry{
		ID:           entry.ID,
		ActorID:      entry.ActorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Details:      entry.Details,
		Severity:     entry.Severity,
		Hash:         "",
		CreatedAt:    entry.CreatedAt.Unix(),
	}
	if _, err := r.logs.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// SetHash finalises the row. It only ever fills the placeholder; a row whose
// hash is already set is left untouched.
func (r *AuditRepository) SetHash(ctx context.Context, id int64, hash string) error {
	res, err := r.logs.UpdateOne(ctx,
		bson.M{"_id": id, "log_hash": ""},
		bson.M{"$set": bson.M{"log_hash": hash}},
	)
	if err != nil {
		return fmt.Errorf("set audit hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set audit hash: entry %d missing or already finalised", id)
	}
	return nil
}

func (r *AuditRepository) FindByID(ctx context.Context, id int64) (*domain.AuditEntry, error) {
	var me mongoAuditEntry
	if err := r.logs.FindOne(ctx, bson.M{"_id": id}).Decode(&me); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("find audit entry: %w", err)
	}
	return me.toDomain(), nil
}

func (r *AuditRepository) List(ctx context.Context, filter ports.ListAuditFilter) ([]*domain.AuditEntry, error) {
	query := bson.M{}
	if filter.ActorID != "" {
		query["user_id"] = filter.ActorID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
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

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cur, err := r.logs.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.AuditEntry
	for cur.Next(ctx) {
		var me mongoAuditEntry
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		out = append(out, me.toDomain())
	}
	return out, cur.Err()
}

// nextID atomically increments and returns the audit id counter.
func (r *AuditRepository) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": auditCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next audit id: %w", err)
	}
	return doc.Seq, nil
}
