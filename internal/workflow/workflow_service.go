// Package workflow implements the complaint/action lifecycle state machine.
// Every transition runs its full effect set — entity mutations, ledger
// credit, notification appends — inside one storage transaction: either all
// of it commits or none of it does.
package workflow

import (
	"fmt"
	"time"

	"cleancity/backend/internal/apperr"
	"cleancity/backend/internal/blob"
	"cleancity/backend/internal/config"
	"cleancity/backend/internal/metrics"
	"cleancity/backend/internal/models"
	"cleancity/backend/internal/notify"
	"cleancity/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Caller is the identity resolved by the auth middleware for one request.
// Role gates run before any workflow call; the workflow still receives the
// caller because transitions record who acted.
type Caller struct {
	ID   string
	Role models.Role
}

// Service drives all complaint/action transitions.
type Service struct {
	Storage storage.Storage
	Blobs   blob.Store
	Log     *logrus.Logger
}

func NewService(st storage.Storage, blobs blob.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{Storage: st, Blobs: blobs, Log: log}
}

// FileComplaintInput carries a new complaint from the reporting citizen.
type FileComplaintInput struct {
	Title       string
	Description string
	Category    string
	Latitude    float64
	Longitude   float64
	Image       []byte
}

// FileComplaint stores a new open complaint. The optional photo goes to the
// blob store first; only its opaque key is persisted. If the save then fails
// the orphaned blob is removed best-effort.
func (s *Service) FileComplaint(caller Caller, in FileComplaintInput) (*models.Complaint, error) {
	if in.Title == "" || !models.ValidCategory(in.Category) {
		return nil, apperr.ErrValidation
	}

	complaint := &models.Complaint{
		ReporterID:  caller.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Status:      models.ComplaintOpen,
	}
	if len(in.Image) > 0 {
		key := config.ComplaintKeyPrefix + caller.ID + "-" + uuid.New().String()
		if err := s.Blobs.Put(key, in.Image); err != nil {
			return nil, fmt.Errorf("failed to store complaint image: %w", err)
		}
		complaint.ImageKey = key
	}

	if err := s.Storage.SaveComplaint(complaint); err != nil {
		if complaint.ImageKey != "" {
			if delErr := s.Blobs.Delete(complaint.ImageKey); delErr != nil {
				s.Log.WithError(delErr).WithField("key", complaint.ImageKey).Warn("failed to remove orphaned complaint image blob")
			}
		}
		return nil, err
	}
	return complaint, nil
}

// ListComplaints returns the caller's own complaints, or every complaint with
// full action history for administrators.
func (s *Service) ListComplaints(caller Caller) ([]models.Complaint, error) {
	if caller.Role.CanAdminister() {
		return s.Storage.ListAllComplaints()
	}
	return s.Storage.ListComplaintsByReporter(caller.ID)
}

// AssignWorker creates a new in_progress action for the complaint, moves the
// complaint to in_progress and notifies the worker. The complaint must exist,
// the target must hold the worker role, and no other action for the
// complaint may still be live. The liveness rule is enforced by a conditional
// insert inside the transaction; the check before it is only a fast path, so
// two concurrent assigns yield one action and one InvalidState.
func (s *Service) AssignWorker(caller Caller, complaintID, workerID string) (actionID uint, err error) {
	defer func() { metrics.ObserveTransition("assign", err) }()

	complaint, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return 0, err
	}
	if complaint == nil {
		return 0, apperr.ErrNotFound
	}

	worker, err := s.Storage.GetUserByID(workerID)
	if err != nil {
		return 0, err
	}
	if worker == nil {
		return 0, apperr.ErrNotFound
	}
	if !worker.Role.CanWork() {
		return 0, apperr.ErrInvalidTarget
	}

	live, err := s.Storage.GetLiveActionForComplaint(complaintID)
	if err != nil {
		return 0, err
	}
	if live != nil {
		return 0, apperr.ErrInvalidState
	}

	err = s.Storage.Transact(func(tx storage.Storage) error {
		action := &models.Action{
			ComplaintID:      complaintID,
			AssignedWorkerID: workerID,
			Status:           models.ActionInProgress,
		}
		ok, err := tx.CreateActionIfNoneLive(action)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrInvalidState
		}
		actionID = action.ID

		if err := tx.UpdateComplaintFields(complaintID, map[string]interface{}{
			"status": models.ComplaintInProgress,
		}); err != nil {
			return err
		}

		return notify.Dispatch(tx, notify.Message{
			RecipientID: workerID,
			SenderID:    caller.ID,
			Title:       "New Task Assigned",
			Description: fmt.Sprintf("You have been assigned to complaint: %q. Please take action and submit evidence.", complaint.Title),
			ComplaintID: &complaintID,
			ActionID:    &action.ID,
		})
	})
	if err != nil {
		return 0, err
	}
	return actionID, nil
}

// SubmitEvidence attaches the worker's evidence image to their in_progress
// action and moves it to under_review. The blob is written before the
// transaction; if the transition then fails the orphaned blob is removed
// best-effort.
func (s *Service) SubmitEvidence(caller Caller, actionID uint, image []byte) (key string, err error) {
	defer func() { metrics.ObserveTransition("submit_evidence", err) }()

	if len(image) == 0 {
		return "", apperr.ErrValidation
	}

	action, err := s.Storage.GetActionByID(actionID)
	if err != nil {
		return "", err
	}
	if action == nil || action.AssignedWorkerID != caller.ID {
		return "", apperr.ErrNotFound
	}
	if action.Status != models.ActionInProgress {
		return "", apperr.ErrInvalidState
	}

	key = config.EvidenceKeyPrefix + caller.ID + "-" + uuid.New().String()
	if err = s.Blobs.Put(key, image); err != nil {
		return "", fmt.Errorf("failed to store evidence image: %w", err)
	}

	err = s.Storage.Transact(func(tx storage.Storage) error {
		ok, err := tx.UpdateActionStatusIf(actionID, models.ActionInProgress, models.ActionUnderReview,
			map[string]interface{}{"evidence_key": key})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrInvalidState
		}
		return nil
	})
	if err != nil {
		if delErr := s.Blobs.Delete(key); delErr != nil {
			s.Log.WithError(delErr).WithField("key", key).Warn("failed to remove orphaned evidence blob")
		}
		return "", err
	}
	return key, nil
}

// ReviewAction settles an under_review action. Approval resolves the action
// and its complaint, credits the reporter and notifies both parties.
// Rejection closes the attempt and appends a fresh in_progress action for the
// same worker, carrying the reviewer's notes forward, so the retry chain
// stays auditable. The under_review check is re-run as a conditional update
// inside the transaction: of two concurrent reviewers exactly one wins, the
// other gets ErrInvalidState with zero writes.
func (s *Service) ReviewAction(caller Caller, actionID uint, approved bool, notes *string) (err error) {
	defer func() { metrics.ObserveTransition("review", err) }()

	action, err := s.Storage.GetActionByID(actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return apperr.ErrNotFound
	}
	if action.Status != models.ActionUnderReview {
		return apperr.ErrInvalidState
	}
	complaint := action.Complaint
	if complaint == nil {
		return apperr.ErrNotFound
	}

	if approved {
		err = s.approve(caller, action, complaint)
	} else {
		err = s.reject(caller, action, complaint, notes)
	}
	return err
}

func (s *Service) approve(caller Caller, action *models.Action, complaint *models.Complaint) error {
	err := s.Storage.Transact(func(tx storage.Storage) error {
		ok, err := tx.UpdateActionStatusIf(action.ID, models.ActionUnderReview, models.ActionResolved, nil)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrInvalidState
		}

		now := time.Now()
		if err := tx.UpdateComplaintFields(complaint.ID, map[string]interface{}{
			"status":      models.ComplaintResolved,
			"resolved_at": now,
			"resolved_by": caller.ID,
		}); err != nil {
			return err
		}

		if err := tx.CreditRewardPoints(complaint.ReporterID, config.ResolvedRewardPoints); err != nil {
			return err
		}

		if err := notify.Dispatch(tx, notify.Message{
			RecipientID: complaint.ReporterID,
			SenderID:    caller.ID,
			Title:       "Complaint Resolved",
			Description: fmt.Sprintf("Your complaint %q has been resolved.", complaint.Title),
			ComplaintID: &complaint.ID,
			ActionID:    &action.ID,
		}); err != nil {
			return err
		}
		return notify.Dispatch(tx, notify.Message{
			RecipientID: action.AssignedWorkerID,
			SenderID:    caller.ID,
			Title:       "Action Approved",
			Description: fmt.Sprintf("Your work on %q has been approved. Great job!", complaint.Title),
			ComplaintID: &complaint.ID,
			ActionID:    &action.ID,
		})
	})
	if err == nil {
		metrics.RewardPointsCredited.Add(config.ResolvedRewardPoints)
	}
	return err
}

func (s *Service) reject(caller Caller, action *models.Action, complaint *models.Complaint, notes *string) error {
	return s.Storage.Transact(func(tx storage.Storage) error {
		ok, err := tx.UpdateActionStatusIf(action.ID, models.ActionUnderReview, models.ActionClosed,
			map[string]interface{}{"admin_notes": notes})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrInvalidState
		}

		retry := &models.Action{
			ComplaintID:      action.ComplaintID,
			AssignedWorkerID: action.AssignedWorkerID,
			Status:           models.ActionInProgress,
			AdminNotes:       notes,
		}
		if err := tx.CreateAction(retry); err != nil {
			return err
		}

		description := fmt.Sprintf("Your submission for %q was rejected. Please try again.", complaint.Title)
		if notes != nil && *notes != "" {
			description = fmt.Sprintf("Your submission for %q was rejected. Admin notes: %s", complaint.Title, *notes)
		}
		return notify.Dispatch(tx, notify.Message{
			RecipientID: action.AssignedWorkerID,
			SenderID:    caller.ID,
			Title:       "Action Rejected — Retry Required",
			Description: description,
			ComplaintID: &action.ComplaintID,
			ActionID:    &retry.ID,
		})
	})
}

// UpdateComplaintStatus is the admin override that sets a complaint's status
// directly, outside the action path. A missing complaint is an explicit
// NotFound. Moving to resolved is a conditional update that only fires when
// the complaint was not already resolved; the credit and the notification
// ride on it actually changing the row, so the award stays
// one-per-resolution-event even under concurrent resolves. Re-resolving an
// already resolved complaint is a no-op. Any other status clears the
// resolution stamp to keep it consistent with the status.
func (s *Service) UpdateComplaintStatus(caller Caller, complaintID string, status models.ComplaintStatus) (err error) {
	defer func() { metrics.ObserveTransition("direct_status_update", err) }()

	if !status.Valid() {
		return apperr.ErrValidation
	}

	return s.Storage.Transact(func(tx storage.Storage) error {
		complaint, err := tx.GetComplaintByID(complaintID)
		if err != nil {
			return err
		}
		if complaint == nil {
			return apperr.ErrNotFound
		}

		if status == models.ComplaintResolved {
			changed, err := tx.UpdateComplaintStatusIfNot(complaintID, models.ComplaintResolved, map[string]interface{}{
				"status":      status,
				"resolved_at": time.Now(),
				"resolved_by": caller.ID,
			})
			if err != nil {
				return err
			}
			if !changed {
				return nil
			}
			if err := tx.CreditRewardPoints(complaint.ReporterID, config.ResolvedRewardPoints); err != nil {
				return err
			}
			return notify.Dispatch(tx, notify.Message{
				RecipientID: complaint.ReporterID,
				SenderID:    caller.ID,
				Title:       "Complaint Resolved",
				Description: fmt.Sprintf("Your complaint %q has been marked as resolved.", complaint.Title),
				ComplaintID: &complaintID,
			})
		}

		fields := map[string]interface{}{
			"status":      status,
			"resolved_at": nil,
			"resolved_by": nil,
		}
		if err := tx.UpdateComplaintFields(complaintID, fields); err != nil {
			return err
		}

		if status == models.ComplaintClosed {
			return notify.Dispatch(tx, notify.Message{
				RecipientID: complaint.ReporterID,
				SenderID:    caller.ID,
				Title:       "Complaint Closed",
				Description: fmt.Sprintf("Your complaint %q has been marked as closed.", complaint.Title),
				ComplaintID: &complaintID,
			})
		}
		return nil
	})
}

// DeleteComplaint removes the complaint with its action history and linked
// notifications, then deletes the stored photo. The blob delete is
// best-effort: a storage hiccup there never resurrects the entities.
func (s *Service) DeleteComplaint(caller Caller, complaintID string) (err error) {
	defer func() { metrics.ObserveTransition("delete", err) }()

	complaint, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return err
	}
	if complaint == nil {
		return apperr.ErrNotFound
	}

	if err = s.Storage.DeleteComplaint(complaintID); err != nil {
		return err
	}

	if complaint.ImageKey != "" {
		if delErr := s.Blobs.Delete(complaint.ImageKey); delErr != nil {
			s.Log.WithError(delErr).WithField("key", complaint.ImageKey).Warn("failed to delete complaint image blob")
		}
	}
	return nil
}

// ListActions returns the caller's own assignments with complaint context.
func (s *Service) ListActions(caller Caller) ([]models.Action, error) {
	return s.Storage.ListActionsForWorker(caller.ID)
}

// EvidenceImage returns the raw evidence blob for an action. Only the
// assigned worker and administrators may read it.
func (s *Service) EvidenceImage(caller Caller, actionID uint) ([]byte, error) {
	action, err := s.Storage.GetActionByID(actionID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, apperr.ErrNotFound
	}
	if !caller.Role.CanAdminister() && caller.ID != action.AssignedWorkerID {
		return nil, apperr.ErrForbidden
	}
	if action.EvidenceKey == "" {
		return nil, apperr.ErrNotFound
	}
	data, err := s.Blobs.Get(action.EvidenceKey)
	if err == blob.ErrNotFound {
		return nil, apperr.ErrNotFound
	}
	return data, err
}

// RewardBalance returns the caller's point balance, zero when no account row
// exists yet.
func (s *Service) RewardBalance(caller Caller) (int, error) {
	return s.Storage.GetRewardPoints(caller.ID)
}
