package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	ledgerRepo "campuspay/database/repository/ledger"
	"campuspay/models"
	"campuspay/services/gateway"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// --- In-memory repository fakes ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.PaymentSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.PaymentSession)}
}

func (r *fakeSessionRepo) Create(s *models.PaymentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(id string) (*models.PaymentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) FindOpen(studentID, invoiceID string, amount float64) (*models.PaymentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.StudentID == studentID && s.InvoiceID == invoiceID && s.Amount == amount && s.Status == models.SessionPending {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) UpdateStatusIf(id string, from []models.SessionStatus, to models.SessionStatus, set bson.M) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			s.UpdatedAt = time.Now()
			if v, ok := set["completedAt"]; ok {
				if ts, ok := v.(time.Time); ok {
					s.CompletedAt = &ts
				}
			}
			return true, nil
		}
	}
	return false, nil
}

type fakeTransactionRepo struct {
	mu    sync.Mutex
	txns  map[string]*models.PaymentTransaction
	order []string
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txns: make(map[string]*models.PaymentTransaction)}
}

func (r *fakeTransactionRepo) Create(t *models.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	copied := *t
	r.txns[t.ID] = &copied
	r.order = append(r.order, t.ID)
	return nil
}

func (r *fakeTransactionRepo) GetByID(id string) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTransactionRepo) GetByProviderRef(provider models.Provider, ref string) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txns {
		if t.Provider == provider && t.ProviderRef != "" && t.ProviderRef == ref {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) ListBySession(sessionID string) ([]models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentTransaction
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.txns[r.order[i]]
		if t.SessionID == sessionID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) UpdateStatusIf(id string, from []models.TransactionStatus, to models.TransactionStatus, set bson.M) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if t.Status == f {
			t.Status = to
			t.UpdatedAt = time.Now()
			if v, ok := set["completedAt"]; ok {
				if ts, ok := v.(time.Time); ok {
					t.CompletedAt = &ts
				}
			}
			if v, ok := set["errorMessage"]; ok {
				if msg, ok := v.(string); ok {
					t.ErrorMessage = msg
				}
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) SetProviderRef(id, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return fmt.Errorf("transaction with id %s not found", id)
	}
	t.ProviderRef = ref
	return nil
}

func (r *fakeTransactionRepo) LinkPayment(id, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return fmt.Errorf("transaction with id %s not found", id)
	}
	t.PaymentID = paymentID
	return nil
}

func (r *fakeTransactionRepo) CancelOpenBySession(sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.txns {
		if t.SessionID == sessionID && (t.Status == models.TxnPending || t.Status == models.TxnProcessing) {
			t.Status = models.TxnCancelled
			n++
		}
	}
	return n, nil
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	byTxn   map[string]*models.Payment
	entries []*models.Payment
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{byTxn: make(map[string]*models.Payment)}
}

func (r *fakeLedgerRepo) Create(p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTxn[p.TransactionID]; exists {
		return ledgerRepo.ErrDuplicate
	}
	p.CreatedAt = time.Now()
	copied := *p
	r.byTxn[p.TransactionID] = &copied
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeLedgerRepo) GetByTransactionID(txnID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byTxn[txnID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeLedgerRepo) SumByInvoice(invoiceID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, p := range r.entries {
		if p.InvoiceID == invoiceID {
			total += p.Amount
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) ListByStudent(studentID string) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].StudentID == studentID {
			out = append(out, *r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountByYear(year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *fakeLedgerRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*models.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[string]*models.Invoice)}
}

func (r *fakeInvoiceRepo) GetByID(id string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (r *fakeInvoiceRepo) ApplyLedgerTotals(id string, amountPaid, balance float64, status models.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return fmt.Errorf("invoice with id %s not found", id)
	}
	inv.AmountPaid = amountPaid
	inv.Balance = balance
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

type fakeStudentRepo struct {
	students map[string]*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*models.Student)}
}

func (r *fakeStudentRepo) GetByID(id string) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudentRepo) GetByPhone(phone string) (*models.Student, error) {
	for _, s := range r.students {
		if s.Phone == phone {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

// --- Gateway fake ---

type fakeGateway struct {
	name         models.Provider
	chargeResult *gateway.ChargeResult
	chargeErr    error
	statusResult models.TransactionStatus
	statusErr    error
	chargeCalls  int
	statusCalls  int
}

func (g *fakeGateway) Name() models.Provider {
	return g.name
}

func (g *fakeGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.chargeCalls++
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.chargeResult, nil
}

func (g *fakeGateway) CheckStatus(ctx context.Context, providerRef string) (models.TransactionStatus, error) {
	g.statusCalls++
	if g.statusErr != nil {
		return "", g.statusErr
	}
	return g.statusResult, nil
}

// --- Notifier fake ---

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []models.ReceiptNotification
}

func (n *recordingNotifier) SendPaymentReceipt(ctx context.Context, receipt models.ReceiptNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, receipt)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.receipts)
}

// --- Receipt generator fake ---

type seqReceipts struct {
	mu  sync.Mutex
	seq int
}

func (r *seqReceipts) Next() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("RCPT-TEST-%06d", r.seq), nil
}

// --- Test harness ---

type testEnv struct {
	svc      *DefaultPaymentService
	sessions *fakeSessionRepo
	txns     *fakeTransactionRepo
	ledger   *fakeLedgerRepo
	invoices *fakeInvoiceRepo
	students *fakeStudentRepo
	gateway  *fakeGateway
	notifier *recordingNotifier
}

func newTestEnv() *testEnv {
	env := &testEnv{
		sessions: newFakeSessionRepo(),
		txns:     newFakeTransactionRepo(),
		ledger:   newFakeLedgerRepo(),
		invoices: newFakeInvoiceRepo(),
		students: newFakeStudentRepo(),
		gateway: &fakeGateway{
			name:         models.ProviderHormuud,
			chargeResult: &gateway.ChargeResult{Accepted: true, ProviderRef: "WAAFI-001"},
			statusResult: models.TxnProcessing,
		},
		notifier: &recordingNotifier{},
	}

	registry := gateway.NewRegistry()
	registry.Register(env.gateway)

	env.students.students["stu-1"] = &models.Student{
		ID: "stu-1", StudentNo: "U2023-0001", FullName: "Ayaan Warsame", Phone: "+252615551234",
	}
	env.invoices.invoices["inv-1"] = &models.Invoice{
		ID: "inv-1", StudentID: "stu-1", Amount: 100, Balance: 100, Status: models.InvoicePending,
	}

	env.svc = &DefaultPaymentService{
		Sessions:      env.sessions,
		Transactions:  env.txns,
		Ledger:        env.ledger,
		Invoices:      env.invoices,
		Students:      env.students,
		Gateways:      registry,
		Receipts:      &seqReceipts{},
		Notifier:      env.notifier,
		Logger:        zap.NewNop(),
		SessionTTL:    30 * time.Minute,
		WebhookSecret: "test-secret",
		Currency:      "USD",
	}
	return env
}

// expireSession backdates a stored session so the lazy expiry check trips.
func (e *testEnv) expireSession(id string) {
	e.sessions.mu.Lock()
	defer e.sessions.mu.Unlock()
	e.sessions.sessions[id].ExpiresAt = time.Now().Add(-time.Minute)
}
