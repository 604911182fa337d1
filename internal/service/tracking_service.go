package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/storage"
	"crm-backend/internal/websocket"
)

// paymentTermDays is the default payment term opened when an order is
// delivered.
const paymentTermDays = 30

// validTransitions is the forward-only tracking ladder.
var validTransitions = map[string]string{
	model.OrderStatusReceived: model.OrderStatusShipping,
	model.OrderStatusShipping: model.OrderStatusArrived,
	model.OrderStatusArrived:  model.OrderStatusDelivered,
}

// --- DTOs ---

type UpdateTrackingRequest struct {
	Status string `json:"status" binding:"required,oneof=SHIPPING ARRIVED DELIVERED"`
}

// --- Interface ---

type TrackingService interface {
	// UpdateStatus advances an order one step along the tracking
	// ladder. Reaching DELIVERED opens a PENDING payment with a
	// 30-day ETA.
	UpdateStatus(ctx context.Context, poNumber string, req UpdateTrackingRequest) (CustomerOrderResponse, error)
	// UploadProof archives a delivery proof image under TRACKING_PROOF
	// and links it to the order.
	UploadProof(ctx context.Context, poNumber, filename string, file io.Reader) (CustomerOrderResponse, error)
	ListPayments(ctx context.Context, status string, page, limit int) ([]model.Payment, int64, error)
	// SweepOverduePayments flips PENDING payments past their ETA to
	// OVERDUE. Wired to the daily scheduler.
	SweepOverduePayments(ctx context.Context) (int64, error)
}

type trackingService struct {
	orderRepo   repository.CustomerOrderRepository
	paymentRepo repository.PaymentRepository
	txManager   repository.TransactionManager
	blobs       storage.BlobStore
	hub         *websocket.Hub
}

func NewTrackingService(
	orderRepo repository.CustomerOrderRepository,
	paymentRepo repository.PaymentRepository,
	txManager repository.TransactionManager,
	blobs storage.BlobStore,
	hub *websocket.Hub,
) TrackingService {
	return &trackingService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		blobs:       blobs,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *trackingService) UpdateStatus(ctx context.Context, poNumber string, req UpdateTrackingRequest) (CustomerOrderResponse, error) {
	var order *model.CustomerOrder
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		order, findErr = s.orderRepo.FindByPONumber(txCtx, poNumber)
		if findErr != nil {
			return fmt.Errorf("order not found: %w", findErr)
		}

		if validTransitions[order.Status] != req.Status {
			return fmt.Errorf("cannot move order from %s to %s", order.Status, req.Status)
		}

		order.Status = req.Status
		if updateErr := s.orderRepo.Update(txCtx, order); updateErr != nil {
			return fmt.Errorf("failed to update order: %w", updateErr)
		}

		if req.Status == model.OrderStatusDelivered {
			payment := model.Payment{
				PONumber:   order.PONumber,
				Amount:     order.TotalValue,
				Status:     model.PaymentPending,
				ETAPayment: time.Now().AddDate(0, 0, paymentTermDays),
			}
			if payErr := s.paymentRepo.Create(txCtx, &payment); payErr != nil {
				return fmt.Errorf("failed to open payment: %w", payErr)
			}
		}
		return nil
	})
	if err != nil {
		return CustomerOrderResponse{}, err
	}

	if s.hub != nil {
		s.hub.Notify(websocket.EventOrderStatusChanged, map[string]interface{}{
			"po_number": order.PONumber,
			"status":    order.Status,
		})
	}
	return toCustomerOrderResponse(*order), nil
}

func (s *trackingService) UploadProof(ctx context.Context, poNumber, filename string, file io.Reader) (CustomerOrderResponse, error) {
	order, err := s.orderRepo.FindByPONumber(ctx, poNumber)
	if err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("order not found: %w", err)
	}

	folder, err := s.blobs.EnsureFolder(storage.FolderTrackingProof, time.Now().Format("2006"))
	if err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("failed to prepare proof folder: %w", err)
	}
	ref, err := s.blobs.Upload(folder, order.PONumber+"_proof"+filepath.Ext(filename), file)
	if err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("failed to store proof: %w", err)
	}

	order.ProofRef = ref
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("failed to link proof: %w", err)
	}
	return toCustomerOrderResponse(*order), nil
}

func (s *trackingService) ListPayments(ctx context.Context, status string, page, limit int) ([]model.Payment, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	payments, total, err := s.paymentRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, total, nil
}

func (s *trackingService) SweepOverduePayments(ctx context.Context) (int64, error) {
	flipped, err := s.paymentRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep payments: %w", err)
	}
	if flipped > 0 {
		log.Printf("payment sweep: %d payment(s) marked OVERDUE", flipped)
	}
	return flipped, nil
}
