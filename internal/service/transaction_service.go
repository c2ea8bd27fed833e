package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xbank/transaction-service/internal/cqrs"
	"github.com/xbank/transaction-service/internal/events"
	"github.com/xbank/transaction-service/internal/models"
	"github.com/xbank/transaction-service/internal/repository"
	"github.com/xbank/transaction-service/internal/security"
)

// TransactionStore is the persistence surface the service needs. The
// postgres repository implements it.
type TransactionStore interface {
	Insert(t *models.Transaction) error
	Update(t *models.Transaction) error
	FindByID(id int64) (*models.Transaction, error)
	Delete(id int64) error
	Count() (int64, error)
	FindPage(page, size int) ([]models.Transaction, error)
}

// EventPublisher appends a domain event to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransactionService assembles transaction records from incoming
// commands, persists them, and announces successful writes on the event
// stream.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	policy    security.WritePolicy
}

func NewTransactionService(store TransactionStore, publisher EventPublisher, policy security.WritePolicy) *TransactionService {
	return &TransactionService{store: store, publisher: publisher, policy: policy}
}

// CreateTransaction inserts a new record built from the command and
// publishes ITEM_CREATED once the insert has succeeded.
func (s *TransactionService) CreateTransaction(cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	actor := resolveActor(cmd.Actor)
	if err := s.policy.AuthorizeWrite(actor); err != nil {
		return nil, err
	}
	transaction := buildRecord(0, cmd.Account, cmd.ToAccount, cmd.Amount, cmd.Currency, actor)
	logrus.WithField("account", cmd.Account).Info("Insert data Transaction")
	if err := s.store.Insert(transaction); err != nil {
		return nil, err
	}
	s.publishEvent(events.ItemCreated, transaction)
	return transaction, nil
}

// EditTransaction replaces the whole record identified by cmd.ID. Every
// field is recomputed exactly as on create; the edit reuses the
// ITEM_CREATED tag, matching what subscribers have always received.
func (s *TransactionService) EditTransaction(cmd cqrs.EditTransactionCommand) (*models.Transaction, error) {
	actor := resolveActor(cmd.Actor)
	if err := s.policy.AuthorizeWrite(actor); err != nil {
		return nil, err
	}
	transaction := buildRecord(cmd.ID, cmd.Account, cmd.ToAccount, cmd.Amount, cmd.Currency, actor)
	logrus.WithField("id", cmd.ID).Info("Edit data Transaction")
	if err := s.store.Update(transaction); err != nil {
		return nil, err
	}
	s.publishEvent(events.ItemCreated, transaction)
	return transaction, nil
}

// DeleteTransaction removes the record with the given id. A missing id is
// not an error: the delete completes without a store write and without an
// event.
func (s *TransactionService) DeleteTransaction(cmd cqrs.DeleteTransactionCommand) error {
	if err := s.policy.AuthorizeWrite(resolveActor(cmd.Actor)); err != nil {
		return err
	}
	transaction, err := s.store.FindByID(cmd.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Delete(transaction.ID); err != nil {
		return err
	}
	logrus.WithField("id", transaction.ID).Debug("Deleted transaction")
	return nil
}

// CountTransactions returns the total number of persisted records.
func (s *TransactionService) CountTransactions() (int64, error) {
	return s.store.Count()
}

// GetAllTransactions returns one page of records.
func (s *TransactionService) GetAllTransactions(q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	return s.store.FindPage(q.Page, q.Size)
}

// buildRecord is the single field-construction path shared by create and
// edit. id is zero for an insert and the client-supplied id for a
// replace. The timestamp, status fields, and audit actor are always set
// here, never taken from client input.
func buildRecord(id int64, account, toAccount string, amount float64, currency, actor string) *models.Transaction {
	return &models.Transaction{
		ID:             id,
		Owner:          account,
		Account:        account,
		ToAccount:      toAccount,
		Amount:         amount,
		Currency:       currency,
		Action:         models.ActionTransfer,
		TransactAt:     time.Now().UTC(),
		Result:         models.ResultSuccess,
		Error:          models.NoError,
		CreatedBy:      actor,
		LastModifiedBy: actor,
	}
}

// resolveActor substitutes the system account for anonymous callers.
// Resolution runs independently on every call; nothing is cached.
func resolveActor(actor string) string {
	if actor == "" {
		return models.SystemAccount
	}
	return actor
}

// publishEvent announces a persisted record. Publication rides on the
// success of the write: a failed publish is logged and swallowed, never
// rolled into the operation's result.
func (s *TransactionService) publishEvent(eventType string, transaction *models.Transaction) {
	err := s.publisher.Publish(context.Background(), events.TransactionStream, eventType, transaction)
	if err != nil {
		logrus.WithField("id", transaction.ID).Errorf("failed to publish %s event: %v", eventType, err)
	}
}
