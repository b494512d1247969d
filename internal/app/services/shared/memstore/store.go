package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"sync"
)

// Store keeps every aggregate in memory. Transactions are serialized on one mutex
// and roll back to a snapshot when fn fails.
type Store struct {
	mu    sync.Mutex
	state *state
}

type txContextKey struct {
	store *Store
}

type state struct {
	sequences      map[string]int64
	users          map[int64]models.User
	availabilities map[int64]models.DoctorAvailability
	templates      map[int64]models.AvailabilityTemplate
	appointments   map[int64]models.Appointment
	invoices       map[int64]models.Invoice
	payments       map[int64]models.Payment
	plans          map[int64]models.PaymentPlan
	orders         map[int64]models.Order
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		sequences:      make(map[string]int64),
		users:          make(map[int64]models.User),
		availabilities: make(map[int64]models.DoctorAvailability),
		templates:      make(map[int64]models.AvailabilityTemplate),
		appointments:   make(map[int64]models.Appointment),
		invoices:       make(map[int64]models.Invoice),
		payments:       make(map[int64]models.Payment),
		plans:          make(map[int64]models.PaymentPlan),
		orders:         make(map[int64]models.Order),
	}
}

func (st *state) next(table string) int64 {
	st.sequences[table]++
	return st.sequences[table]
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.availabilities {
		c.availabilities[k] = v
	}
	for k, v := range st.templates {
		c.templates[k] = v
	}
	for k, v := range st.appointments {
		c.appointments[k] = v
	}
	for k, v := range st.invoices {
		c.invoices[k] = copyInvoice(v)
	}
	for k, v := range st.payments {
		c.payments[k] = v
	}
	for k, v := range st.plans {
		c.plans[k] = copyPlan(v)
	}
	for k, v := range st.orders {
		c.orders[k] = copyOrder(v)
	}
	return c
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTransaction(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txContextKey{store: s}, true)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) inTransaction(ctx context.Context) bool {
	inTx, _ := ctx.Value(txContextKey{store: s}).(bool)
	return inTx
}

// do runs fn against the state, taking the lock unless ctx already holds it.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if s.inTransaction(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Availabilities() *AvailabilityRepository {
	return &AvailabilityRepository{store: s}
}

func (s *Store) Appointments() *AppointmentRepository {
	return &AppointmentRepository{store: s}
}

func (s *Store) Invoices() *InvoiceRepository {
	return &InvoiceRepository{store: s}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{store: s}
}

func (s *Store) PaymentPlans() *PaymentPlanRepository {
	return &PaymentPlanRepository{store: s}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{store: s}
}

func copyInvoice(inv models.Invoice) models.Invoice {
	inv.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return inv
}

func copyPlan(plan models.PaymentPlan) models.PaymentPlan {
	plan.Installments = append([]models.PaymentPlanInstallment(nil), plan.Installments...)
	return plan
}

func copyOrder(order models.Order) models.Order {
	order.Lines = append([]models.OrderLine(nil), order.Lines...)
	return order
}
