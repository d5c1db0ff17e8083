//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

// --- Mock Repositories (Ports) ---

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type mockPaymentRepo struct {
	repository.PaymentRepository // Embed interface for forward compatibility
	mu                           sync.Mutex
	attempts                     map[string]*model.PaymentAttempt // keyed by order id
	SaveError                    error
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{attempts: make(map[string]*model.PaymentAttempt)}
}

func (m *mockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentAttempt) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.attempts[p.OrderID] = &cp
	return nil
}

func (m *mockPaymentRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.attempts[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.attempts {
		if p.PaymentID != nil && *p.PaymentID == paymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentAttempt
	for _, p := range m.attempts {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) ListAll(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentAttempt
	for _, p := range m.attempts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.attempts[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	m.apply(p, status, paymentID, completedAt, meta)
	return nil
}

func (m *mockPaymentRepo) UpdateStatusIfNotTerminal(ctx context.Context, tx repository.Tx, orderID string, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.attempts[orderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status.IsTerminal() {
		return false, nil
	}
	m.apply(p, status, paymentID, completedAt, meta)
	return true, nil
}

func (m *mockPaymentRepo) apply(p *model.PaymentAttempt, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) {
	p.Status = status
	if paymentID != nil {
		p.PaymentID = paymentID
	}
	if completedAt != nil {
		p.CompletedAt = completedAt
	}
	if p.Meta == nil {
		p.Meta = map[string]interface{}{}
	}
	for k, v := range meta {
		p.Meta[k] = v
	}
	p.UpdatedAt = time.Now()
}

func (m *mockPaymentRepo) MergeMeta(ctx context.Context, tx repository.Tx, orderID string, meta map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.attempts[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Meta == nil {
		p.Meta = map[string]interface{}{}
	}
	for k, v := range meta {
		p.Meta[k] = v
	}
	return nil
}

type mockEntitlementRepo struct {
	repository.EntitlementRepository
	mu     sync.Mutex
	grants []*model.Entitlement
}

func (m *mockEntitlementRepo) GrantIfAbsent(ctx context.Context, tx repository.Tx, e *model.Entitlement) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, g := range m.grants {
		if g.UserID == e.UserID && g.CourseID == e.CourseID && g.ExpiresAt.After(now) {
			return false, nil
		}
		// Unique cycle key (user, course, expires_at), as in the store.
		if g.UserID == e.UserID && g.CourseID == e.CourseID && g.ExpiresAt.Equal(e.ExpiresAt) {
			return false, nil
		}
	}
	cp := *e
	m.grants = append(m.grants, &cp)
	return true, nil
}

func (m *mockEntitlementRepo) FindLive(ctx context.Context, tx repository.Tx, userID, courseID string, now time.Time) (*model.Entitlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.grants {
		if g.UserID == userID && g.CourseID == courseID && g.ExpiresAt.After(now) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockEntitlementRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Entitlement
	for _, g := range m.grants {
		if g.UserID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockEntitlementRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grants)
}

type mockInquiryRepo struct {
	repository.InquiryRepository
	mu        sync.Mutex
	inquiries map[string]*model.Inquiry
	paid      []string // "userID/courseID" markers from MarkPaid
}

func newMockInquiryRepo() *mockInquiryRepo {
	return &mockInquiryRepo{inquiries: make(map[string]*model.Inquiry)}
}

func (m *mockInquiryRepo) Save(ctx context.Context, tx repository.Tx, i *model.Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *i
	m.inquiries[i.ID] = &cp
	return nil
}

func (m *mockInquiryRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.inquiries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (m *mockInquiryRepo) FindOpenByUser(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.inquiries {
		if i.UserID != nil && *i.UserID == userID && i.CourseID == courseID &&
			(i.Status == model.InquiryStatusPending || i.Status == model.InquiryStatusApproved) {
			cp := *i
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInquiryRepo) FindOpenByPhone(ctx context.Context, tx repository.Tx, phone, courseID string) (*model.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.inquiries {
		if i.PhoneNumber == phone && i.CourseID == courseID &&
			(i.Status == model.InquiryStatusPending || i.Status == model.InquiryStatusApproved) {
			cp := *i
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInquiryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Inquiry
	for _, i := range m.inquiries {
		if i.UserID != nil && *i.UserID == userID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockInquiryRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.InquiryStatus) ([]*model.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Inquiry
	for _, i := range m.inquiries {
		if i.Status == status {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockInquiryRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.InquiryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.inquiries[id]
	if !ok {
		return domain.ErrNotFound
	}
	i.Status = status
	return nil
}

func (m *mockInquiryRepo) SetUser(ctx context.Context, tx repository.Tx, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.inquiries[id]
	if !ok {
		return domain.ErrNotFound
	}
	i.UserID = &userID
	return nil
}

func (m *mockInquiryRepo) MarkPaid(ctx context.Context, tx repository.Tx, userID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paid = append(m.paid, userID+"/"+courseID)
	for _, i := range m.inquiries {
		if i.UserID != nil && *i.UserID == userID && i.CourseID == courseID && i.Status == model.InquiryStatusApproved {
			i.Status = model.InquiryStatusPaid
		}
	}
	return nil
}

func (m *mockInquiryRepo) FindApproved(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.inquiries {
		if i.UserID != nil && *i.UserID == userID && i.CourseID == courseID && i.Status == model.InquiryStatusApproved {
			cp := *i
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockBankTransferRepo struct {
	repository.BankTransferRepository
	mu       sync.Mutex
	requests map[string]*model.BankTransferRequest
}

func newMockBankTransferRepo() *mockBankTransferRepo {
	return &mockBankTransferRepo{requests: make(map[string]*model.BankTransferRequest)}
}

func (m *mockBankTransferRepo) Save(ctx context.Context, tx repository.Tx, r *model.BankTransferRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockBankTransferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BankTransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockBankTransferRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.BankTransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BankTransferRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockBankTransferRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.BankTransferStatus) ([]*model.BankTransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BankTransferRequest
	for _, r := range m.requests {
		if r.Status == status {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockBankTransferRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.BankTransferStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.Status != model.BankTransferStatusPending {
		return false, nil
	}
	r.Status = status
	return true, nil
}

type mockShopOrderRepo struct {
	repository.ShopOrderRepository
	mu     sync.Mutex
	orders map[string]*model.ShopOrder
}

func newMockShopOrderRepo() *mockShopOrderRepo {
	return &mockShopOrderRepo{orders: make(map[string]*model.ShopOrder)}
}

func (m *mockShopOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.ShopOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.OrderID] = &cp
	return nil
}

func (m *mockShopOrderRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.ShopOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockShopOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.ShopOrderStatus, paymentID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	if paymentID != nil {
		o.PaymentID = paymentID
	}
	return nil
}

type mockUserRepo struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[string]*model.User // keyed by id
}

func newMockUserRepo(users ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) ListAdmins(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Role == model.UserRoleAdmin {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockCourseRepo struct {
	repository.CourseRepository
	courses map[string]*model.Course
}

func newMockCourseRepo(courses ...*model.Course) *mockCourseRepo {
	m := &mockCourseRepo{courses: make(map[string]*model.Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *mockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// --- Mock Adapters ---

type sentMessage struct {
	Phone string
	Text  string
}

type mockNotifier struct {
	mu        sync.Mutex
	sent      []sentMessage
	SendError error
}

func (m *mockNotifier) Send(ctx context.Context, phone, text string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{Phone: phone, Text: text})
	return nil
}

func (m *mockNotifier) Name() string { return "mock" }

func (m *mockNotifier) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

type mockRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	Deny   bool
}

func newMockRateLimiter() *mockRateLimiter {
	return &mockRateLimiter{counts: make(map[string]int)}
}

func (m *mockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.Deny {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

type mockRegStateRepo struct {
	mu     sync.Mutex
	states map[string]*repository.RegistrationState
}

func newMockRegStateRepo() *mockRegStateRepo {
	return &mockRegStateRepo{states: make(map[string]*repository.RegistrationState)}
}

func (m *mockRegStateRepo) SetState(ctx context.Context, phone string, state *repository.RegistrationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	m.states[phone] = &cp
	return nil
}

func (m *mockRegStateRepo) GetState(ctx context.Context, phone string) (*repository.RegistrationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[phone]
	if !ok {
		return nil, domain.ErrOTPNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRegStateRepo) ClearState(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, phone)
	return nil
}
