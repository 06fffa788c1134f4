package storage

import (
	"context"
	"errors"
	"time"

	"cleancity/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Storage is the persistence surface consumed by the workflow and the
// handlers. Transact hands the callback a Storage scoped to one database
// transaction: every write made through it commits atomically or not at all.
type Storage interface {
	Transact(fn func(Storage) error) error

	// Users
	GetUserByID(id string) (*models.User, error)
	SaveUser(user *models.User) error
	UpdateUserRole(id string, role models.Role) error
	SearchUsers(query string, role models.Role, limit int) ([]models.User, error)

	// Complaints
	SaveComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	ListComplaintsByReporter(reporterID string) ([]models.Complaint, error)
	ListAllComplaints() ([]models.Complaint, error)
	UpdateComplaintFields(id string, fields map[string]interface{}) error
	UpdateComplaintStatusIfNot(id string, not models.ComplaintStatus, fields map[string]interface{}) (bool, error)
	DeleteComplaint(id string) error

	// Actions
	CreateAction(action *models.Action) error
	CreateActionIfNoneLive(action *models.Action) (bool, error)
	GetActionByID(id uint) (*models.Action, error)
	GetLiveActionForComplaint(complaintID string) (*models.Action, error)
	ListActionsForWorker(workerID string) ([]models.Action, error)
	UpdateActionStatusIf(id uint, from, to models.ActionStatus, fields map[string]interface{}) (bool, error)

	// Reward ledger
	CreditRewardPoints(userID string, points int) error
	GetRewardPoints(userID string) (int, error)

	// Notifications
	CreateNotification(n *models.Notification) error
	ListNotifications(recipientID string, limit int) ([]models.Notification, error)
	CountUnreadNotifications(recipientID string) (int64, error)
	MarkNotificationRead(id uint, recipientID string) error
	MarkAllNotificationsRead(recipientID string) error

	// Revocation cache
	IsUserRevoked(userID string) (bool, error)
	RevokeUser(userID string, duration time.Duration) error
	RestoreUser(userID string) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
	Log   *logrus.Logger
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
		Log:   log,
	}
}

// Transact runs fn against a transaction-scoped copy of the service. Any
// error returned by fn rolls back every write made inside it.
func (s *Service) Transact(fn func(Storage) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis, Ctx: s.Ctx, Log: s.Log})
	})
}

// GetUserByID returns the user record, or nil without error when absent.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// UpdateUserRole sets the role column only; any other profile mutation goes
// through SaveUser.
func (s *Service) UpdateUserRole(id string, role models.Role) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// SearchUsers matches name or email case-insensitively. An empty role matches
// every role.
func (s *Service) SearchUsers(query string, role models.Role, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	q := s.DB.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Limit(limit).Find(&users).Error; err != nil {
		s.Log.WithError(err).Error("user search failed")
		return nil, err
	}
	return users, nil
}
