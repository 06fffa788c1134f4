package storage

import (
	"errors"

	"cleancity/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = models.ComplaintOpen
	}
	if err := s.DB.Save(complaint).Error; err != nil {
		s.Log.WithError(err).WithField("complaint_id", complaint.ID).Error("failed to save complaint")
		return err
	}
	return nil
}

// GetComplaintByID returns the complaint, or nil without error when absent.
func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ListComplaintsByReporter returns the reporter's own complaints, newest first.
func (s *Service) ListComplaintsByReporter(reporterID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("reporter_id = ?", reporterID).
		Order("created_at desc").
		Preload("Reporter").
		Find(&complaints).Error
	return complaints, err
}

// ListAllComplaints returns every complaint with its full action history and
// the assigned workers, newest first. Admin-only view.
func (s *Service) ListAllComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Order("created_at desc").
		Preload("Reporter").
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("actions.created_at desc")
		}).
		Preload("Actions.Worker").
		Find(&complaints).Error
	return complaints, err
}

// UpdateComplaintFields applies a partial column update.
func (s *Service) UpdateComplaintFields(id string, fields map[string]interface{}) error {
	return s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateComplaintStatusIfNot applies the column updates only when the
// complaint's current status differs from `not`, as one conditional
// statement. Of two concurrent direct resolves exactly one observes true;
// the other's row is already resolved and nothing changes.
func (s *Service) UpdateComplaintStatusIfNot(id string, not models.ComplaintStatus, fields map[string]interface{}) (bool, error) {
	result := s.DB.Model(&models.Complaint{}).
		Where("id = ? AND status <> ?", id, not).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteComplaint removes the complaint together with its action history and
// linked notifications. Callers delete the associated blob separately;
// blob removal is best-effort and never blocks this transaction.
func (s *Service) DeleteComplaint(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&models.Action{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Complaint{}, "id = ?", id).Error
	})
}

func (s *Service) CreateAction(action *models.Action) error {
	if action.Status == "" {
		action.Status = models.ActionInProgress
	}
	if err := s.DB.Create(action).Error; err != nil {
		s.Log.WithError(err).WithField("complaint_id", action.ComplaintID).Error("failed to create action")
		return err
	}
	return nil
}

// CreateActionIfNoneLive inserts the action only when the complaint has no
// in_progress or under_review action, as a single conditional statement. A
// racing insert that slips past the NOT EXISTS hits the partial unique index
// on live actions instead; both outcomes report false so the caller sees one
// winner and one InvalidState.
func (s *Service) CreateActionIfNoneLive(action *models.Action) (bool, error) {
	if action.Status == "" {
		action.Status = models.ActionInProgress
	}
	result := s.DB.Raw(`
		INSERT INTO actions (complaint_id, assigned_worker_id, status, admin_notes, evidence_key, created_at, updated_at)
		SELECT ?, ?, ?, ?, '', NOW(), NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM actions
			WHERE complaint_id = ? AND status IN ('in_progress', 'under_review')
		)
		RETURNING id`,
		action.ComplaintID, action.AssignedWorkerID, action.Status, action.AdminNotes, action.ComplaintID,
	).Scan(&action.ID)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		s.Log.WithError(result.Error).WithField("complaint_id", action.ComplaintID).Error("failed to create action")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetActionByID returns the action with its parent complaint preloaded, or
// nil without error when absent.
func (s *Service) GetActionByID(id uint) (*models.Action, error) {
	var action models.Action
	err := s.DB.Preload("Complaint").First(&action, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// GetLiveActionForComplaint returns the latest in_progress/under_review
// action for the complaint, or nil when every attempt is finished. Liveness
// is derived from the rows; there is no separate pointer to keep in sync.
func (s *Service) GetLiveActionForComplaint(complaintID string) (*models.Action, error) {
	var action models.Action
	err := s.DB.Where("complaint_id = ? AND status IN ?", complaintID,
		[]models.ActionStatus{models.ActionInProgress, models.ActionUnderReview}).
		Order("created_at desc").
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// ListActionsForWorker returns the worker's assignments with complaint
// context, newest first.
func (s *Service) ListActionsForWorker(workerID string) ([]models.Action, error) {
	var actions []models.Action
	err := s.DB.Where("assigned_worker_id = ?", workerID).
		Order("created_at desc").
		Preload("Complaint").
		Preload("Complaint.Reporter").
		Find(&actions).Error
	return actions, err
}

// UpdateActionStatusIf transitions the action from one status to another as a
// single conditional update, optionally setting extra columns in the same
// statement. It reports false when the action was not in the expected status,
// which is how a lost review race surfaces: only one of two concurrent
// reviewers observes true.
func (s *Service) UpdateActionStatusIf(id uint, from, to models.ActionStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := s.DB.Model(&models.Action{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
