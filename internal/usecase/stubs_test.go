package usecase_test

import (
	"context"
	"errors"
	"time"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

// fakeAccountRepo is an in-memory AccountRepository for service tests.
type fakeAccountRepo struct {
	byID map[string]*domain.Account

	failLastLogin bool
	lastLogin     map[string]time.Time
	passwords     map[string]string
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{
		byID:      make(map[string]*domain.Account),
		lastLogin: make(map[string]time.Time),
		passwords: make(map[string]string),
	}
	for _, account := range accounts {
		repo.byID[account.ID] = account
	}
	return repo
}

func (r *fakeAccountRepo) Create(_ context.Context, account domain.Account) error {
	if _, ok := r.byID[account.ID]; ok {
		return repository.ErrDuplicate
	}
	r.byID[account.ID] = &account
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	if account, ok := r.byID[id]; ok {
		copy := *account
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	for _, account := range r.byID {
		if account.Username == username {
			copy := *account
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range r.byID {
		if account.Email == email {
			copy := *account
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, account domain.Account) error {
	if _, ok := r.byID[account.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[account.ID] = &account
	return nil
}

func (r *fakeAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	account, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.IsActive = active
	return nil
}

func (r *fakeAccountRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if r.failLastLogin {
		return errors.New("write failed")
	}
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	r.lastLogin[id] = at
	return nil
}

func (r *fakeAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string, _ time.Time) error {
	account, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	r.passwords[id] = passwordHash
	return nil
}

func (r *fakeAccountRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	account, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.ResetTokenHash = &tokenHash
	account.ResetTokenExpiresAt = &expiresAt
	account.ResetTokenUsedAt = nil
	return nil
}

func (r *fakeAccountRepo) GetByResetTokenHash(_ context.Context, tokenHash string) (*domain.Account, error) {
	for _, account := range r.byID {
		if account.ResetTokenHash != nil && *account.ResetTokenHash == tokenHash {
			copy := *account
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) MarkResetTokenUsed(_ context.Context, id string, usedAt time.Time) error {
	account, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if account.ResetTokenUsedAt != nil {
		return repository.ErrNotFound
	}
	account.ResetTokenUsedAt = &usedAt
	return nil
}

func (r *fakeAccountRepo) List(_ context.Context, _ port.AccountFilter) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(r.byID))
	for _, account := range r.byID {
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

func (r *fakeAccountRepo) Count(_ context.Context, _ port.AccountFilter) (int, error) {
	return len(r.byID), nil
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	sessions map[string]domain.Session
	saveErr  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *fakeSessionStore) Save(_ context.Context, session domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	if session, ok := s.sessions[id]; ok {
		return &session, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *fakeSessionStore) DeleteByAccount(_ context.Context, accountID string) error {
	for id, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// fakeEventPublisher counts published audit events.
type fakeEventPublisher struct {
	logins          int
	logouts         int
	passwordChanges int
	accountChanges  int
	certificates    int
	stealthAccesses int
}

func (p *fakeEventPublisher) PublishLogin(_ context.Context, _ domain.LoginEvent) error {
	p.logins++
	return nil
}

func (p *fakeEventPublisher) PublishLogout(_ context.Context, _ domain.LogoutEvent) error {
	p.logouts++
	return nil
}

func (p *fakeEventPublisher) PublishPasswordChanged(_ context.Context, _ domain.PasswordChangedEvent) error {
	p.passwordChanges++
	return nil
}

func (p *fakeEventPublisher) PublishAccountChanged(_ context.Context, _ domain.AccountChangedEvent) error {
	p.accountChanges++
	return nil
}

func (p *fakeEventPublisher) PublishCertificateIssued(_ context.Context, _ domain.CertificateIssuedEvent) error {
	p.certificates++
	return nil
}

func (p *fakeEventPublisher) PublishStealthAccess(_ context.Context, _ domain.StealthAccessEvent) error {
	p.stealthAccesses++
	return nil
}

// fakePatientRepo tracks patient existence only.
type fakePatientRepo struct {
	byID map[string]*domain.Patient
}

func newFakePatientRepo(patients ...*domain.Patient) *fakePatientRepo {
	repo := &fakePatientRepo{byID: make(map[string]*domain.Patient)}
	for _, patient := range patients {
		repo.byID[patient.ID] = patient
	}
	return repo
}

func (r *fakePatientRepo) Create(_ context.Context, patient domain.Patient) error {
	r.byID[patient.ID] = &patient
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id string) (*domain.Patient, error) {
	if patient, ok := r.byID[id]; ok {
		copy := *patient
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakePatientRepo) GetByAMKA(_ context.Context, amka string) (*domain.Patient, error) {
	for _, patient := range r.byID {
		if patient.AMKA == amka {
			copy := *patient
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePatientRepo) Update(_ context.Context, patient domain.Patient) error {
	if _, ok := r.byID[patient.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[patient.ID] = &patient
	return nil
}

func (r *fakePatientRepo) SoftDelete(_ context.Context, id string) error {
	patient, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	patient.IsActive = false
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, _ port.PatientFilter) ([]domain.Patient, error) {
	patients := make([]domain.Patient, 0, len(r.byID))
	for _, patient := range r.byID {
		patients = append(patients, *patient)
	}
	return patients, nil
}

func (r *fakePatientRepo) Count(_ context.Context, _ port.PatientFilter) (int, error) {
	return len(r.byID), nil
}

// fakeServiceRepo is an in-memory price list.
type fakeServiceRepo struct {
	byID map[string]*domain.ServiceItem
}

func newFakeServiceRepo(items ...*domain.ServiceItem) *fakeServiceRepo {
	repo := &fakeServiceRepo{byID: make(map[string]*domain.ServiceItem)}
	for _, item := range items {
		repo.byID[item.ID] = item
	}
	return repo
}

func (r *fakeServiceRepo) Create(_ context.Context, item domain.ServiceItem) error {
	r.byID[item.ID] = &item
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.ServiceItem, error) {
	if item, ok := r.byID[id]; ok {
		copy := *item
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeServiceRepo) Update(_ context.Context, item domain.ServiceItem) error {
	if _, ok := r.byID[item.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[item.ID] = &item
	return nil
}

func (r *fakeServiceRepo) List(_ context.Context, activeOnly bool) ([]domain.ServiceItem, error) {
	items := make([]domain.ServiceItem, 0, len(r.byID))
	for _, item := range r.byID {
		if activeOnly && !item.IsActive {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

// fakeInvoiceRepo is an in-memory invoice store with duplicate-number
// detection, mirroring the unique constraint the real table carries.
type fakeInvoiceRepo struct {
	byID      map[string]domain.Invoice
	byNumber  map[string]string
	dupesLeft int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		byID:     make(map[string]domain.Invoice),
		byNumber: make(map[string]string),
	}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, invoice domain.Invoice) error {
	if r.dupesLeft > 0 {
		r.dupesLeft--
		return repository.ErrDuplicate
	}
	if _, ok := r.byNumber[invoice.Number]; ok {
		return repository.ErrDuplicate
	}
	r.byID[invoice.ID] = invoice
	r.byNumber[invoice.Number] = invoice.ID
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	if invoice, ok := r.byID[id]; ok {
		return &invoice, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInvoiceRepo) GetByNumber(_ context.Context, number string) (*domain.Invoice, error) {
	if id, ok := r.byNumber[number]; ok {
		invoice := r.byID[id]
		return &invoice, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInvoiceRepo) UpdatePayment(_ context.Context, invoice domain.Invoice) error {
	if _, ok := r.byID[invoice.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) List(_ context.Context, _ port.InvoiceFilter) ([]domain.Invoice, error) {
	invoices := make([]domain.Invoice, 0, len(r.byID))
	for _, invoice := range r.byID {
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}
