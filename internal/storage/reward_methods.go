package storage

import (
	"errors"

	"cleancity/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditRewardPoints adds points to the user's balance as one atomic
// upsert/increment. Two resolutions crediting the same user concurrently both
// land: there is no read-then-branch window where an increment can be lost or
// a duplicate row attempted.
func (s *Service) CreditRewardPoints(userID string, points int) error {
	account := models.RewardAccount{UserID: userID, Points: points}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("reward_accounts.points + ?", points),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&account).Error
	if err != nil {
		s.Log.WithError(err).WithField("user_id", userID).Error("failed to credit reward points")
	}
	return err
}

// GetRewardPoints returns the balance, zero when no account row exists yet.
func (s *Service) GetRewardPoints(userID string) (int, error) {
	var account models.RewardAccount
	err := s.DB.First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Points, nil
}
