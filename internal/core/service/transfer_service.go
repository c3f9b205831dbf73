package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/api/metrics"
	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const (
	idempotencyTTL      = time.Hour
	rapidWindow         = 10 * time.Minute
	maxRapidTransfers   = 5
	transactionIDLength = 16
	maxListLimit        = 100
)

var suspiciousAmount = decimal.NewFromInt(10000)

const transactionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TransferService executes balance-conserving transfers. Idempotency records
// and per-sender activity counters live in the expiring cache; the atomic
// debit/credit/insert unit lives in the transaction repository.
type TransferService struct {
	accounts     ports.AccountRepository
	transactions ports.TransactionRepository
	cache        ports.ExpiringCache
	audit        ports.AuditEmitter
	logger       zerolog.Logger
}

func NewTransferService(accounts ports.AccountRepository, transactions ports.TransactionRepository, cache ports.ExpiringCache, audit ports.AuditEmitter, logger zerolog.Logger) *TransferService {
	return &TransferService{
		accounts:     accounts,
		transactions: transactions,
		cache:        cache,
		audit:        audit,
		logger:       logger,
	}
}

// InternalTransfer moves funds between two accounts owned by the actor.
func (s *TransferService) InternalTransfer(ctx context.Context, input ports.InternalTransferInput) (*ports.TransferResult, error) {
	sender, err := s.ownedAccount(ctx, input.SenderAccountID, input.ActorID)
	if err != nil {
		return nil, fmt.Errorf("internal transfer: source: %w", err)
	}
	receiver, err := s.ownedAccount(ctx, input.ReceiverAccountID, input.ActorID)
	if err != nil {
		return nil, fmt.Errorf("internal transfer: destination: %w", err)
	}

	return s.execute(ctx, transferRequest{
		actorID:        input.ActorID,
		sender:         sender,
		receiver:       receiver,
		amount:         input.Amount,
		description:    defaultString(input.Description, "Internal transfer"),
		transferType:   domain.TransferInternal,
		idempotencyKey: input.IdempotencyKey,
		ip:             input.IP,
		userAgent:      input.UserAgent,
	})
}

// ExternalTransfer moves funds from the actor's account to any account,
// addressed by its account number.
func (s *TransferService) ExternalTransfer(ctx context.Context, input ports.ExternalTransferInput) (*ports.TransferResult, error) {
	sender, err := s.ownedAccount(ctx, input.SenderAccountID, input.ActorID)
	if err != nil {
		return nil, fmt.Errorf("external transfer: source: %w", err)
	}
	receiver, err := s.accounts.FindByNumber(ctx, input.ReceiverAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("external transfer: destination: %w", err)
	}

	return s.execute(ctx, transferRequest{
		actorID:        input.ActorID,
		sender:         sender,
		receiver:       receiver,
		amount:         input.Amount,
		description:    defaultString(input.Description, "External transfer"),
		transferType:   domain.TransferExternal,
		idempotencyKey: input.IdempotencyKey,
		ip:             input.IP,
		userAgent:      input.UserAgent,
	})
}

type transferRequest struct {
	actorID        string
	sender         *domain.Account
	receiver       *domain.Account
	amount         decimal.Decimal
	description    string
	transferType   domain.TransactionType
	idempotencyKey string
	ip             string
	userAgent      string
}

// execute runs the transfer engine proper. Order matters: the idempotency
// replay check comes first and short-circuits without touching balances; the
// preconditions each abort with zero mutation; the debit, credit and
// transaction insert form one atomic unit.
func (s *TransferService) execute(ctx context.Context, req transferRequest) (*ports.TransferResult, error) {
	if len(req.idempotencyKey) > domain.MaxIdempotencyKeyLength {
		return nil, fmt.Errorf("execute transfer: idempotency key exceeds %d characters", domain.MaxIdempotencyKeyLength)
	}

	if req.idempotencyKey != "" {
		if cached, found := s.cachedTransaction(ctx, req.idempotencyKey); found {
			s.logger.Info().Str("idempotency_key", req.idempotencyKey).Str("transaction_id", cached).Msg("idempotent replay")
			return &ports.TransferResult{
				TransactionID: cached,
				Amount:        req.amount,
				Type:          req.transferType,
				Status:        domain.TransactionCompleted,
				Replayed:      true,
			}, nil
		}
	}

	if req.sender.ID == req.receiver.ID {
		return nil, fmt.Errorf("execute transfer: %w", domain.ErrSameAccount)
	}
	if req.sender.Status != domain.AccountActive || req.receiver.Status != domain.AccountActive {
		return nil, fmt.Errorf("execute transfer: %w", domain.ErrAccountNotActive)
	}
	if !req.amount.IsPositive() {
		return nil, fmt.Errorf("execute transfer: %w", domain.ErrInvalidAmount)
	}
	if req.sender.Balance.LessThan(req.amount) {
		return nil, fmt.Errorf("execute transfer: %w", domain.ErrInsufficientBalance)
	}

	transactionID, err := randomTransactionID()
	if err != nil {
		return nil, fmt.Errorf("execute transfer: %w", err)
	}

	t := &domain.Transaction{
		TransactionID:     transactionID,
		IdempotencyKey:    req.idempotencyKey,
		SenderAccountID:   req.sender.ID,
		ReceiverAccountID: req.receiver.ID,
		Amount:            req.amount.Round(2),
		Type:              req.transferType,
		Description:       req.description,
		Status:            domain.TransactionCompleted,
		CreatedAt:         time.Now().UTC(),
	}

	start := time.Now()
	if err := s.transactions.Execute(ctx, t); err != nil {
		metrics.TransfersTotal.WithLabelValues(string(req.transferType), "failed").Inc()
		return nil, fmt.Errorf("execute transfer: %w", err)
	}
	metrics.TransfersTotal.WithLabelValues(string(req.transferType), "completed").Inc()
	metrics.TransferDuration.WithLabelValues(string(req.transferType)).Observe(time.Since(start).Seconds())

	// The idempotency record is written only after the commit. A crash in
	// between leaves at most one duplicate execution on retry; the unique
	// index on idempotency_key turns that duplicate into a conflict.
	if req.idempotencyKey != "" {
		if err := s.cache.SetWithTTL(ctx, idempotencyKey(req.idempotencyKey), transactionID, idempotencyTTL); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", req.idempotencyKey).Msg("failed to store idempotency record")
		}
	}

	suspicious := s.flagIfSuspicious(ctx, req, transactionID)

	s.audit.Emit(ports.AuditEvent{
		ActorID:      &req.actorID,
		Action:       string(req.transferType),
		ResourceType: "transaction",
		ResourceID:   transactionID,
		IPAddress:    req.ip,
		UserAgent:    req.userAgent,
		Details:      fmt.Sprintf("%s of %s from %s to %s", req.transferType, req.amount.StringFixed(2), req.sender.ID, req.receiver.ID),
		Severity:     domain.SeverityInfo,
	})

	s.logger.Info().
		Str("transaction_id", transactionID).
		Str("type", string(req.transferType)).
		Str("amount", req.amount.StringFixed(2)).
		Bool("suspicious", suspicious).
		Msg("transfer completed")

	return &ports.TransferResult{
		TransactionID: transactionID,
		Amount:        t.Amount,
		Type:          req.transferType,
		Status:        domain.TransactionCompleted,
		Suspicious:    suspicious,
	}, nil
}

// flagIfSuspicious applies the advisory fraud heuristic: a large amount, or
// five or more transfers from the same sender inside the ten-minute cache
// window. Flagged transfers still complete; they only emit an audit event,
// warning for internal and critical for external transfers.
func (s *TransferService) flagIfSuspicious(ctx context.Context, req transferRequest, transactionID string) bool {
	count, err := s.cache.Increment(ctx, activityKey(req.sender.ID), rapidWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to track sender activity")
	}

	suspicious := req.amount.GreaterThanOrEqual(suspiciousAmount) || count >= maxRapidTransfers
	if !suspicious {
		return false
	}

	severity := domain.SeverityWarning
	action := "suspicious_transfer_internal"
	if req.transferType == domain.TransferExternal {
		severity = domain.SeverityCritical
		action = "suspicious_transfer_external"
	}

	metrics.SuspiciousTransfersTotal.WithLabelValues(string(req.transferType)).Inc()
	s.audit.Emit(ports.AuditEvent{
		ActorID:      &req.actorID,
		Action:       action,
		ResourceType: "transaction",
		ResourceID:   transactionID,
		IPAddress:    req.ip,
		UserAgent:    req.userAgent,
		Details:      fmt.Sprintf("suspicious %s of %s from account %s", req.transferType, req.amount.StringFixed(2), req.sender.ID),
		Severity:     severity,
	})
	return true
}

// ListTransactions returns transactions visible to the actor, with optional
// type, date and amount filters.
func (s *TransferService) ListTransactions(ctx context.Context, input ports.ListTransactionsInput) ([]*domain.Transaction, error) {
	filter := ports.ListTransactionsFilter{
		Type:      input.Type,
		MinAmount: input.MinAmount,
		MaxAmount: input.MaxAmount,
		Limit:     input.Limit,
	}
	if !domain.StaffRole(input.ActorRole) {
		filter.OwnerUserID = input.ActorID
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if input.DateFrom != "" {
		from, err := time.Parse(time.RFC3339, input.DateFrom)
		if err != nil {
			return nil, fmt.Errorf("list transactions: invalid date_from: %w", err)
		}
		filter.DateFrom = from
	}
	if input.DateTo != "" {
		to, err := time.Parse(time.RFC3339, input.DateTo)
		if err != nil {
			return nil, fmt.Errorf("list transactions: invalid date_to: %w", err)
		}
		filter.DateTo = to
	}
	return s.transactions.List(ctx, filter)
}

func (s *TransferService) ownedAccount(ctx context.Context, accountID, actorID string) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != actorID {
		return nil, domain.ErrAccountNotOwned
	}
	return account, nil
}

func (s *TransferService) cachedTransaction(ctx context.Context, key string) (string, bool) {
	val, found, err := s.cache.Get(ctx, idempotencyKey(key))
	if err != nil {
		s.logger.Warn().Err(err).Msg("idempotency check failed, executing anyway")
		return "", false
	}
	return val, found
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}

func activityKey(accountID string) string {
	return "transfer_activity:" + accountID
}

func randomTransactionID() (string, error) {
	b := make([]byte, transactionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	for i, v := range b {
		b[i] = transactionIDAlphabet[int(v)%len(transactionIDAlphabet)]
	}
	return string(b), nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
