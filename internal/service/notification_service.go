package service

import (
	"encoding/json"
	"fmt"

	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/internal/ws"
)

type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.PushToUser(userID, map[string]interface{}{
			"type":  notifType,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
	return nil
}

func (s *NotificationService) NotifyDepositConfirmed(userID uint, amountCents int64, reference string) error {
	return s.Notify(userID, "DEPOSIT_CONFIRMED", "Deposit confirmed",
		fmt.Sprintf("%s has been added to your wallet.", formatCents(amountCents)),
		map[string]interface{}{"amount_cents": amountCents, "reference": reference})
}

func (s *NotificationService) NotifySubmissionApproved(clipperID uint, submissionID uint, payoutCents int64) error {
	return s.Notify(clipperID, "SUBMISSION_APPROVED", "Clip approved",
		fmt.Sprintf("Your clip earned %s.", formatCents(payoutCents)),
		map[string]interface{}{"submission_id": submissionID, "payout_cents": payoutCents})
}

func (s *NotificationService) NotifySubmissionRejected(clipperID uint, submissionID uint) error {
	return s.Notify(clipperID, "SUBMISSION_REJECTED", "Clip rejected",
		"Your clip submission was not approved.",
		map[string]interface{}{"submission_id": submissionID})
}

func (s *NotificationService) NotifyWithdrawalCompleted(userID uint, amountCents int64, orderID string) error {
	return s.Notify(userID, "WITHDRAWAL_COMPLETED", "Withdrawal sent",
		fmt.Sprintf("%s is on its way to your payout account.", formatCents(amountCents)),
		map[string]interface{}{"amount_cents": amountCents, "order_id": orderID})
}

func (s *NotificationService) NotifyWithdrawalFailed(userID uint, amountCents int64, orderID string) error {
	return s.Notify(userID, "WITHDRAWAL_FAILED", "Withdrawal failed",
		fmt.Sprintf("Your withdrawal of %s failed and the funds were returned to your wallet.", formatCents(amountCents)),
		map[string]interface{}{"amount_cents": amountCents, "order_id": orderID})
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
