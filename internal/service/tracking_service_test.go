package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- stubs ---

type stubOrderRepo struct {
	orders map[string]*model.CustomerOrder
}

func newStubOrderRepo(orders ...*model.CustomerOrder) *stubOrderRepo {
	m := make(map[string]*model.CustomerOrder)
	for _, o := range orders {
		m[o.PONumber] = o
	}
	return &stubOrderRepo{orders: m}
}

func (s *stubOrderRepo) Create(_ context.Context, o *model.CustomerOrder) error {
	o.ID = uuid.New()
	s.orders[o.PONumber] = o
	return nil
}

func (s *stubOrderRepo) FindByPONumber(_ context.Context, po string) (*model.CustomerOrder, error) {
	if o, ok := s.orders[po]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("record not found")
}

func (s *stubOrderRepo) List(_ context.Context, _ string, _, _ int) ([]model.CustomerOrder, int64, error) {
	var out []model.CustomerOrder
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *stubOrderRepo) Update(_ context.Context, o *model.CustomerOrder) error {
	s.orders[o.PONumber] = o
	return nil
}

func (s *stubOrderRepo) SumTotalValue(_ context.Context) (float64, error) {
	var sum float64
	for _, o := range s.orders {
		f, _ := o.TotalValue.Float64()
		sum += f
	}
	return sum, nil
}

func (s *stubOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.orders)), nil
}

type stubPaymentRepo struct {
	created []*model.Payment
	swept   int
}

func (s *stubPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	p.ID = uuid.New()
	s.created = append(s.created, p)
	return nil
}

func (s *stubPaymentRepo) List(_ context.Context, _ string, _, _ int) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range s.created {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (s *stubPaymentRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, p := range s.created {
		if p.Status == model.PaymentPending && p.ETAPayment.Before(now) {
			p.Status = model.PaymentOverdue
			n++
		}
	}
	s.swept++
	return n, nil
}

// --- helpers ---

func newTestTrackingService(t *testing.T, orders *stubOrderRepo, payments *stubPaymentRepo) TrackingService {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	return NewTrackingService(orders, payments, stubTxManager{}, blobs, nil)
}

func testOrder(status string) *model.CustomerOrder {
	return &model.CustomerOrder{
		ID:           uuid.New(),
		PONumber:     "POC-20260801-120000",
		CustomerName: "EVN Hanoi",
		TotalValue:   decimal.NewFromInt(125000000),
		Status:       status,
	}
}

// --- tests ---

func TestUpdateStatusForwardOnly(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"received to shipping", model.OrderStatusReceived, model.OrderStatusShipping, false},
		{"shipping to arrived", model.OrderStatusShipping, model.OrderStatusArrived, false},
		{"arrived to delivered", model.OrderStatusArrived, model.OrderStatusDelivered, false},
		{"skip a step", model.OrderStatusReceived, model.OrderStatusDelivered, true},
		{"backwards", model.OrderStatusArrived, model.OrderStatusShipping, true},
		{"past the end", model.OrderStatusDelivered, model.OrderStatusDelivered, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder(tt.from)
			svc := newTestTrackingService(t, newStubOrderRepo(order), &stubPaymentRepo{})

			_, err := svc.UpdateStatus(context.Background(), order.PONumber, UpdateTrackingRequest{Status: tt.to})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected transition %s -> %s to fail", tt.from, tt.to)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if order.Status != tt.to {
				t.Errorf("order status = %s, want %s", order.Status, tt.to)
			}
		})
	}
}

func TestDeliveredOpensPayment(t *testing.T) {
	order := testOrder(model.OrderStatusArrived)
	payments := &stubPaymentRepo{}
	svc := newTestTrackingService(t, newStubOrderRepo(order), payments)

	before := time.Now()
	if _, err := svc.UpdateStatus(context.Background(), order.PONumber, UpdateTrackingRequest{Status: model.OrderStatusDelivered}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if len(payments.created) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments.created))
	}
	p := payments.created[0]
	if p.PONumber != order.PONumber {
		t.Errorf("payment bound to %q, want %q", p.PONumber, order.PONumber)
	}
	if !p.Amount.Equal(order.TotalValue) {
		t.Errorf("payment amount %s, want %s", p.Amount, order.TotalValue)
	}
	if p.Status != model.PaymentPending {
		t.Errorf("payment status %s, want PENDING", p.Status)
	}

	wantETA := before.AddDate(0, 0, paymentTermDays)
	if p.ETAPayment.Before(wantETA.Add(-time.Minute)) || p.ETAPayment.After(wantETA.Add(time.Minute)) {
		t.Errorf("payment ETA %v not ~%d days out", p.ETAPayment, paymentTermDays)
	}
}

func TestNonDeliveredStepsOpenNoPayment(t *testing.T) {
	order := testOrder(model.OrderStatusReceived)
	payments := &stubPaymentRepo{}
	svc := newTestTrackingService(t, newStubOrderRepo(order), payments)

	if _, err := svc.UpdateStatus(context.Background(), order.PONumber, UpdateTrackingRequest{Status: model.OrderStatusShipping}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(payments.created) != 0 {
		t.Errorf("expected no payments, got %d", len(payments.created))
	}
}

func TestSweepOverduePayments(t *testing.T) {
	payments := &stubPaymentRepo{
		created: []*model.Payment{
			{PONumber: "POC-1", Status: model.PaymentPending, ETAPayment: time.Now().AddDate(0, 0, -1)},
			{PONumber: "POC-2", Status: model.PaymentPending, ETAPayment: time.Now().AddDate(0, 0, 5)},
			{PONumber: "POC-3", Status: model.PaymentPaid, ETAPayment: time.Now().AddDate(0, 0, -10)},
		},
	}
	svc := newTestTrackingService(t, newStubOrderRepo(), payments)

	flipped, err := svc.SweepOverduePayments(context.Background())
	if err != nil {
		t.Fatalf("SweepOverduePayments: %v", err)
	}
	if flipped != 1 {
		t.Errorf("expected 1 flipped payment, got %d", flipped)
	}
	if payments.created[0].Status != model.PaymentOverdue {
		t.Errorf("expired PENDING payment not flipped: %s", payments.created[0].Status)
	}
	if payments.created[1].Status != model.PaymentPending {
		t.Errorf("future payment should stay PENDING: %s", payments.created[1].Status)
	}
	if payments.created[2].Status != model.PaymentPaid {
		t.Errorf("PAID payment should stay PAID: %s", payments.created[2].Status)
	}
}

func TestUploadProofLinksOrder(t *testing.T) {
	order := testOrder(model.OrderStatusDelivered)
	svc := newTestTrackingService(t, newStubOrderRepo(order), &stubPaymentRepo{})

	resp, err := svc.UploadProof(context.Background(), order.PONumber, "proof.jpg", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("UploadProof: %v", err)
	}
	if resp.ProofRef == "" {
		t.Fatal("expected a proof ref")
	}
	if order.ProofRef != resp.ProofRef {
		t.Errorf("order not linked to proof: %q vs %q", order.ProofRef, resp.ProofRef)
	}
}
