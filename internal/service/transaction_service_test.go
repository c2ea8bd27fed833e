package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xbank/transaction-service/internal/cqrs"
	"github.com/xbank/transaction-service/internal/events"
	"github.com/xbank/transaction-service/internal/models"
	"github.com/xbank/transaction-service/internal/repository"
	"github.com/xbank/transaction-service/internal/security"
)

// ---- fakes ----

type fakeStore struct {
	insertErr error
	updateErr error
	deleteErr error
	findErr   error
	found     *models.Transaction
	countVal  int64
	page      []models.Transaction

	inserted []*models.Transaction
	updated  []*models.Transaction
	deleted  []int64
	nextID   int64
}

func (f *fakeStore) Insert(t *models.Transaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	t.ID = f.nextID
	f.inserted = append(f.inserted, t)
	return nil
}

func (f *fakeStore) Update(t *models.Transaction) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, t)
	return nil
}

func (f *fakeStore) FindByID(id int64) (*models.Transaction, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.found == nil {
		return nil, repository.ErrNotFound
	}
	return f.found, nil
}

func (f *fakeStore) Delete(id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) Count() (int64, error) { return f.countVal, nil }

func (f *fakeStore) FindPage(page, size int) ([]models.Transaction, error) { return f.page, nil }

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type fakePublisher struct {
	err       error
	published []publishedEvent
}

func (f *fakePublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{stream: stream, eventType: eventType, data: data})
	return nil
}

type denyAllPolicy struct{}

func (denyAllPolicy) AuthorizeWrite(string) error { return errors.New("write access denied") }

func newTestService(store *fakeStore, publisher *fakePublisher) *TransactionService {
	return NewTransactionService(store, publisher, security.AllowAll{})
}

func createCmd() cqrs.CreateTransactionCommand {
	return cqrs.CreateTransactionCommand{
		Account: "ACC-1", ToAccount: "ACC-2", Amount: 100, Currency: "USD", Actor: "admin",
	}
}

// ---- create ----

func TestCreateTransactionDefaults(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakePublisher{})

	before := time.Now().UTC()
	tx, err := svc.CreateTransaction(createCmd())
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.Action != models.ActionTransfer {
		t.Errorf("expected action %d, got %d", models.ActionTransfer, tx.Action)
	}
	if tx.Result != models.ResultSuccess {
		t.Errorf("expected result %d, got %d", models.ResultSuccess, tx.Result)
	}
	if tx.Error != models.NoError {
		t.Errorf("expected error field %q, got %q", models.NoError, tx.Error)
	}
	if tx.Owner != "ACC-1" || tx.Account != "ACC-1" {
		t.Errorf("expected owner and account ACC-1, got %q and %q", tx.Owner, tx.Account)
	}
	if tx.CreatedBy != "admin" || tx.LastModifiedBy != "admin" {
		t.Errorf("expected audit actor admin, got %q / %q", tx.CreatedBy, tx.LastModifiedBy)
	}
	if tx.TransactAt.Before(before) || tx.TransactAt.After(after) {
		t.Errorf("transactAt %v outside call bounds [%v, %v]", tx.TransactAt, before, after)
	}
	if tx.ID == 0 {
		t.Error("expected store-assigned id")
	}
}

func TestCreateTransactionSystemActor(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakePublisher{})

	cmd := createCmd()
	cmd.Actor = ""
	tx, err := svc.CreateTransaction(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.CreatedBy != models.SystemAccount {
		t.Errorf("expected createdBy %q for anonymous caller, got %q", models.SystemAccount, tx.CreatedBy)
	}
	if tx.LastModifiedBy != models.SystemAccount {
		t.Errorf("expected lastModifiedBy %q, got %q", models.SystemAccount, tx.LastModifiedBy)
	}
}

func TestCreateTransactionPublishesAfterSave(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := newTestService(store, publisher)

	tx, err := svc.CreateTransaction(createCmd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.stream != events.TransactionStream {
		t.Errorf("expected stream %q, got %q", events.TransactionStream, event.stream)
	}
	if event.eventType != events.ItemCreated {
		t.Errorf("expected event type %q, got %q", events.ItemCreated, event.eventType)
	}
	if event.data != tx {
		t.Error("expected the persisted record as event payload")
	}
}

func TestCreateTransactionStoreFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("connection refused")}
	publisher := &fakePublisher{}
	svc := newTestService(store, publisher)

	if _, err := svc.CreateTransaction(createCmd()); err == nil {
		t.Fatal("expected error from failed insert")
	}
	if len(publisher.published) != 0 {
		t.Error("no event may be published when the write fails")
	}
}

func TestCreateTransactionPublishFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{err: errors.New("stream unavailable")}
	svc := newTestService(store, publisher)

	if _, err := svc.CreateTransaction(createCmd()); err != nil {
		t.Errorf("publish failure must not fail the write, got %v", err)
	}
	if len(store.inserted) != 1 {
		t.Error("expected the row to be persisted")
	}
}

func TestCreateTransactionPolicyDenied(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := NewTransactionService(store, publisher, denyAllPolicy{})

	if _, err := svc.CreateTransaction(createCmd()); err == nil {
		t.Fatal("expected policy denial")
	}
	if len(store.inserted) != 0 || len(publisher.published) != 0 {
		t.Error("denied write must not touch the store or the stream")
	}
}

// ---- edit ----

func TestEditTransactionReplacesRecord(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := newTestService(store, publisher)

	before := time.Now().UTC()
	tx, err := svc.EditTransaction(cqrs.EditTransactionCommand{
		ID: 42, Account: "ACC-9", ToAccount: "ACC-2", Amount: 55, Currency: "EUR", Actor: "bob",
	})
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.ID != 42 {
		t.Errorf("expected the client-supplied id to be carried forward, got %d", tx.ID)
	}
	if len(store.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(store.updated))
	}
	// every field recomputed, none preserved from the stored version
	if tx.Owner != "ACC-9" || tx.CreatedBy != "bob" || tx.LastModifiedBy != "bob" {
		t.Errorf("expected recomputed fields, got %+v", tx)
	}
	if tx.Action != models.ActionTransfer || tx.Result != models.ResultSuccess || tx.Error != models.NoError {
		t.Errorf("expected default status fields on edit, got %+v", tx)
	}
	if tx.TransactAt.Before(before) || tx.TransactAt.After(after) {
		t.Errorf("transactAt %v outside call bounds", tx.TransactAt)
	}
	if len(publisher.published) != 1 || publisher.published[0].eventType != events.ItemCreated {
		t.Error("edit publishes the creation event tag")
	}
}

// ---- delete ----

func TestDeleteTransaction(t *testing.T) {
	store := &fakeStore{found: &models.Transaction{ID: 42}}
	svc := newTestService(store, &fakePublisher{})

	if err := svc.DeleteTransaction(cqrs.DeleteTransactionCommand{ID: 42, Actor: "admin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 42 {
		t.Errorf("expected delete of id 42, got %v", store.deleted)
	}
}

func TestDeleteTransactionMissingIDIsNoOp(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := newTestService(store, publisher)

	// two deletes of an id that never existed both complete cleanly
	for i := 0; i < 2; i++ {
		if err := svc.DeleteTransaction(cqrs.DeleteTransactionCommand{ID: 999}); err != nil {
			t.Fatalf("delete of missing id must not error, got %v", err)
		}
	}
	if len(store.deleted) != 0 {
		t.Error("missing id must not reach the store's delete")
	}
	if len(publisher.published) != 0 {
		t.Error("missing id must not publish an event")
	}
}

func TestDeleteTransactionStoreFailure(t *testing.T) {
	store := &fakeStore{found: &models.Transaction{ID: 42}, deleteErr: errors.New("connection refused")}
	svc := newTestService(store, &fakePublisher{})

	if err := svc.DeleteTransaction(cqrs.DeleteTransactionCommand{ID: 42}); err == nil {
		t.Fatal("expected store failure to propagate")
	}
}

// ---- reads ----

func TestCountTransactions(t *testing.T) {
	store := &fakeStore{countVal: 7}
	svc := newTestService(store, &fakePublisher{})

	total, err := svc.CountTransactions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("expected count 7, got %d", total)
	}
}

func TestGetAllTransactions(t *testing.T) {
	store := &fakeStore{page: []models.Transaction{{ID: 1}, {ID: 2}}}
	svc := newTestService(store, &fakePublisher{})

	page, err := svc.GetAllTransactions(cqrs.ListTransactionsQuery{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 records, got %d", len(page))
	}
}

func TestGetAllTransactionsPastTheEnd(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakePublisher{})

	page, err := svc.GetAllTransactions(cqrs.ListTransactionsQuery{Page: 99, Size: 20})
	if err != nil {
		t.Fatalf("page past the end must not error, got %v", err)
	}
	if len(page) != 0 {
		t.Errorf("expected empty page, got %d records", len(page))
	}
}
