package service

import (
	"fmt"
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AlertService interface {
	// NotifyQueryRaised surfaces critical and high-priority queries on the
	// destination branch dashboard.
	NotifyQueryRaised(query *model.StockTransferQuery, transfer *model.StockTransfer)
	// SweepOverdueTransfers raises one alert per dispatched transfer past
	// its expected delivery. Safe to call repeatedly.
	SweepOverdueTransfers() (int, error)
	ListAlerts(branchID uuid.UUID, unresolvedOnly bool) ([]model.StockAlert, error)
	MarkRead(id uuid.UUID, user *model.User) error
	MarkResolved(id uuid.UUID, user *model.User) error
}

type alertService struct {
	alertRepo    repository.AlertRepository
	transferRepo repository.TransferRepository
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewAlertService(alertRepo repository.AlertRepository, transferRepo repository.TransferRepository, hub *ws.Hub, log *logrus.Logger) AlertService {
	return &alertService{
		alertRepo:    alertRepo,
		transferRepo: transferRepo,
		wsHub:        hub,
		log:          log,
	}
}

func (s *alertService) NotifyQueryRaised(query *model.StockTransferQuery, transfer *model.StockTransfer) {
	var alertType model.AlertType
	var severity model.AlertSeverity

	switch {
	case query.Priority == model.PriorityCritical:
		alertType = model.AlertCriticalQuery
		severity = model.SeverityCritical
	case query.Priority == model.PriorityHigh:
		alertType = model.AlertLargeDiscrepancy
		severity = model.SeverityWarning
	default:
		return
	}

	queryID := query.ID
	transferID := transfer.ID
	alert := &model.StockAlert{
		BranchID:   transfer.ToBranchID,
		AlertType:  alertType,
		Severity:   severity,
		Title:      query.Title,
		Message:    fmt.Sprintf("%s raised on transfer %s: %s", query.QueryNumber, transfer.TransferNumber, query.Description),
		TransferID: &transferID,
		QueryID:    &queryID,
	}
	alert.CreatedBy = query.CreatedBy
	alert.UpdatedBy = query.CreatedBy

	if err := s.alertRepo.Create(alert); err != nil {
		s.log.WithError(err).Warn("failed to create query alert")
		return
	}

	s.wsHub.Publish(ws.Event{
		Type:    "stock_alert",
		Action:  string(alertType),
		Data:    alert,
		Message: alert.Title,
	})
}

func (s *alertService) SweepOverdueTransfers() (int, error) {
	overdue, err := s.transferRepo.FindOverdue(time.Now())
	if err != nil {
		return 0, err
	}

	created := 0
	for _, transfer := range overdue {
		exists, err := s.alertRepo.UnresolvedExists(transfer.ID, model.AlertTransferOverdue)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		transferID := transfer.ID
		alert := &model.StockAlert{
			BranchID:   transfer.ToBranchID,
			AlertType:  model.AlertTransferOverdue,
			Severity:   model.SeverityWarning,
			Title:      fmt.Sprintf("Transfer %s is overdue", transfer.TransferNumber),
			Message:    fmt.Sprintf("Expected delivery was %s", transfer.ExpectedDelivery.Format("2006-01-02")),
			TransferID: &transferID,
		}
		alert.CreatedBy = "system"
		alert.UpdatedBy = "system"

		if err := s.alertRepo.Create(alert); err != nil {
			return created, err
		}
		created++

		s.wsHub.Publish(ws.Event{
			Type:    "stock_alert",
			Action:  string(model.AlertTransferOverdue),
			Data:    alert,
			Message: alert.Title,
		})
	}

	if created > 0 {
		s.log.WithField("alerts", created).Info("overdue transfer sweep raised alerts")
	}
	return created, nil
}

func (s *alertService) ListAlerts(branchID uuid.UUID, unresolvedOnly bool) ([]model.StockAlert, error) {
	return s.alertRepo.FindByBranch(branchID, unresolvedOnly)
}

func (s *alertService) MarkRead(id uuid.UUID, user *model.User) error {
	if _, err := s.alertRepo.FindByID(id); err != nil {
		return fmt.Errorf("alert not found")
	}
	return s.alertRepo.MarkRead(id, user.ID.String())
}

func (s *alertService) MarkResolved(id uuid.UUID, user *model.User) error {
	if _, err := s.alertRepo.FindByID(id); err != nil {
		return fmt.Errorf("alert not found")
	}
	return s.alertRepo.MarkResolved(id, user.ID.String())
}
