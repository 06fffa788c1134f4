// Package notify implements the notification dispatcher: append-only
// delivery records with a recipient-guarded read flag. There is no external
// push; persistence is the whole contract.
package notify

import (
	"cleancity/backend/internal/config"
	"cleancity/backend/internal/models"
)

// Store is the slice of the storage surface the dispatcher needs. The full
// storage service satisfies it, and so does a transaction-scoped one.
type Store interface {
	CreateNotification(n *models.Notification) error
	ListNotifications(recipientID string, limit int) ([]models.Notification, error)
	CountUnreadNotifications(recipientID string) (int64, error)
	MarkNotificationRead(id uint, recipientID string) error
	MarkAllNotificationsRead(recipientID string) error
}

// Message describes one notification to append.
type Message struct {
	RecipientID string
	SenderID    string
	Title       string
	Description string
	ComplaintID *string
	ActionID    *uint
}

// Dispatch appends one unread notification through the given store. Passing
// a transaction-scoped storage makes the append part of the surrounding
// workflow transition's atomic write set.
func Dispatch(st Store, msg Message) error {
	return st.CreateNotification(&models.Notification{
		RecipientID: msg.RecipientID,
		SenderID:    msg.SenderID,
		Title:       msg.Title,
		Description: msg.Description,
		ComplaintID: msg.ComplaintID,
		ActionID:    msg.ActionID,
	})
}

// Service exposes the caller-facing notification reads and mutations. Every
// operation is scoped to the caller's own notifications.
type Service struct {
	Store Store
}

func NewService(st Store) *Service {
	return &Service{Store: st}
}

func (s *Service) List(callerID string) ([]models.Notification, error) {
	return s.Store.ListNotifications(callerID, config.NotificationListLimit)
}

func (s *Service) UnreadCount(callerID string) (int64, error) {
	return s.Store.CountUnreadNotifications(callerID)
}

// MarkRead flips the read flag when the notification belongs to the caller.
// A foreign or unknown id is a silent no-op.
func (s *Service) MarkRead(callerID string, id uint) error {
	return s.Store.MarkNotificationRead(id, callerID)
}

func (s *Service) MarkAllRead(callerID string) error {
	return s.Store.MarkAllNotificationsRead(callerID)
}
