package controller

import (
	"financial-ledger/internal/domain"
	"financial-ledger/internal/service"
)

// ServiceBackend drives the controller straight against the services. The
// in-process path is trusted, so the credential is accepted but not checked;
// a transport-backed implementation would attach it to every request.
type ServiceBackend struct {
	Transactions *service.TransactionService
}

var (
	_ Querier = (*ServiceBackend)(nil)
	_ Mutator = (*ServiceBackend)(nil)
)

func (b *ServiceBackend) List(_ Credential, p service.ListParams) ([]*domain.Transaction, int, error) {
	return b.Transactions.List(p)
}

func (b *ServiceBackend) BulkUpdateStatus(_ Credential, ids []string, status domain.TransactionStatus) (*service.BulkResult, error) {
	return b.Transactions.BulkUpdateStatus(ids, status)
}

func (b *ServiceBackend) BulkSoftDelete(_ Credential, ids []string) (*service.BulkResult, error) {
	return b.Transactions.BulkSoftDelete(ids)
}
