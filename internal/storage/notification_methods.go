package storage

import "cleancity/backend/internal/models"

func (s *Service) CreateNotification(n *models.Notification) error {
	if err := s.DB.Create(n).Error; err != nil {
		s.Log.WithError(err).WithField("recipient_id", n.RecipientID).Error("failed to create notification")
		return err
	}
	return nil
}

// ListNotifications returns the recipient's newest notifications.
func (s *Service) ListNotifications(recipientID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Where("recipient_id = ?", recipientID).
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// CountUnreadNotifications derives the unread count; it is never stored.
func (s *Service) CountUnreadNotifications(recipientID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead flips the read flag only when the notification belongs
// to recipientID; anyone else's id is a no-op.
func (s *Service) MarkNotificationRead(id uint, recipientID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true).Error
}

func (s *Service) MarkAllNotificationsRead(recipientID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}
