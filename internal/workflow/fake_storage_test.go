package workflow_test

import (
	"errors"
	"sync"
	"time"

	"cleancity/backend/internal/blob"
	"cleancity/backend/internal/models"
	"cleancity/backend/internal/storage"

	"github.com/google/uuid"
)

// fakeCore holds in-memory state with no synchronization of its own.
type fakeCore struct {
	users         map[string]*models.User
	complaints    map[string]*models.Complaint
	actions       map[uint]*models.Action
	accounts      map[string]*models.RewardAccount
	notifications []*models.Notification

	nextActionID       uint
	nextNotificationID uint

	failNotifications bool
}

func newFakeCore() *fakeCore {
	return &fakeCore{
		users:      make(map[string]*models.User),
		complaints: make(map[string]*models.Complaint),
		actions:    make(map[uint]*models.Action),
		accounts:   make(map[string]*models.RewardAccount),
	}
}

func (f *fakeCore) snapshot() *fakeCore {
	snap := newFakeCore()
	for k, v := range f.users {
		u := *v
		snap.users[k] = &u
	}
	for k, v := range f.complaints {
		c := *v
		snap.complaints[k] = &c
	}
	for k, v := range f.actions {
		a := *v
		snap.actions[k] = &a
	}
	for k, v := range f.accounts {
		acc := *v
		snap.accounts[k] = &acc
	}
	for _, n := range f.notifications {
		c := *n
		snap.notifications = append(snap.notifications, &c)
	}
	snap.nextActionID = f.nextActionID
	snap.nextNotificationID = f.nextNotificationID
	snap.failNotifications = f.failNotifications
	return snap
}

func (f *fakeCore) restore(snap *fakeCore) {
	f.users = snap.users
	f.complaints = snap.complaints
	f.actions = snap.actions
	f.accounts = snap.accounts
	f.notifications = snap.notifications
	f.nextActionID = snap.nextActionID
	f.nextNotificationID = snap.nextNotificationID
}

func (f *fakeCore) getUserByID(id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *fakeCore) saveUser(user *models.User) error {
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeCore) updateUserRole(id string, role models.Role) error {
	if u, ok := f.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (f *fakeCore) searchUsers(query string, role models.Role, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCore) saveComplaint(complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	c := *complaint
	f.complaints[complaint.ID] = &c
	return nil
}

func (f *fakeCore) getComplaintByID(id string) (*models.Complaint, error) {
	c, ok := f.complaints[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCore) listComplaintsByReporter(reporterID string) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range f.complaints {
		if c.ReporterID == reporterID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCore) listAllComplaints() ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range f.complaints {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCore) updateComplaintFields(id string, fields map[string]interface{}) error {
	c, ok := f.complaints[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			c.Status = v.(models.ComplaintStatus)
		case "resolved_at":
			if v == nil {
				c.ResolvedAt = nil
			} else {
				t := v.(time.Time)
				c.ResolvedAt = &t
			}
		case "resolved_by":
			if v == nil {
				c.ResolvedBy = nil
			} else {
				s := v.(string)
				c.ResolvedBy = &s
			}
		}
	}
	return nil
}

func (f *fakeCore) updateComplaintStatusIfNot(id string, not models.ComplaintStatus, fields map[string]interface{}) (bool, error) {
	c, ok := f.complaints[id]
	if !ok || c.Status == not {
		return false, nil
	}
	return true, f.updateComplaintFields(id, fields)
}

func (f *fakeCore) deleteComplaint(id string) error {
	delete(f.complaints, id)
	for aid, a := range f.actions {
		if a.ComplaintID == id {
			delete(f.actions, aid)
		}
	}
	return nil
}

func (f *fakeCore) createActionIfNoneLive(action *models.Action) (bool, error) {
	for _, a := range f.actions {
		if a.ComplaintID == action.ComplaintID && a.Status.Live() {
			return false, nil
		}
	}
	if err := f.createAction(action); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeCore) createAction(action *models.Action) error {
	f.nextActionID++
	action.ID = f.nextActionID
	action.CreatedAt = time.Now()
	c := *action
	f.actions[action.ID] = &c
	return nil
}

func (f *fakeCore) getActionByID(id uint) (*models.Action, error) {
	a, ok := f.actions[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	if c, ok := f.complaints[a.ComplaintID]; ok {
		cc := *c
		cp.Complaint = &cc
	}
	return &cp, nil
}

func (f *fakeCore) getLiveActionForComplaint(complaintID string) (*models.Action, error) {
	var latest *models.Action
	for _, a := range f.actions {
		if a.ComplaintID != complaintID || !a.Status.Live() {
			continue
		}
		if latest == nil || a.ID > latest.ID {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeCore) listActionsForWorker(workerID string) ([]models.Action, error) {
	var out []models.Action
	for _, a := range f.actions {
		if a.AssignedWorkerID == workerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeCore) updateActionStatusIf(id uint, from, to models.ActionStatus, fields map[string]interface{}) (bool, error) {
	a, ok := f.actions[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	for k, v := range fields {
		switch k {
		case "evidence_key":
			a.EvidenceKey = v.(string)
		case "admin_notes":
			a.AdminNotes = v.(*string)
		}
	}
	return true, nil
}

func (f *fakeCore) creditRewardPoints(userID string, points int) error {
	acc, ok := f.accounts[userID]
	if !ok {
		f.accounts[userID] = &models.RewardAccount{UserID: userID, Points: points}
		return nil
	}
	acc.Points += points
	return nil
}

func (f *fakeCore) getRewardPoints(userID string) (int, error) {
	if acc, ok := f.accounts[userID]; ok {
		return acc.Points, nil
	}
	return 0, nil
}

func (f *fakeCore) createNotification(n *models.Notification) error {
	if f.failNotifications {
		return errors.New("notification insert failed")
	}
	f.nextNotificationID++
	n.ID = f.nextNotificationID
	n.CreatedAt = time.Now()
	c := *n
	f.notifications = append(f.notifications, &c)
	return nil
}

func (f *fakeCore) listNotifications(recipientID string, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].RecipientID == recipientID {
			out = append(out, *f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeCore) countUnreadNotifications(recipientID string) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

// fakeStorage is an in-memory transactional store. Transact takes the single
// store-wide lock, snapshots all state and restores it when the callback
// fails, so the atomicity of a transition's full effect set can be exercised
// without a database. The lock also serializes concurrent transitions the way
// the real store's row locking does.
type fakeStorage struct {
	mu   sync.Mutex
	core *fakeCore
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{core: newFakeCore()}
}

func (f *fakeStorage) Transact(fn func(storage.Storage) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.core.snapshot()
	if err := fn(&fakeTx{core: f.core}); err != nil {
		f.core.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStorage) GetUserByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.getUserByID(id)
}

func (f *fakeStorage) SaveUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.saveUser(user)
}

func (f *fakeStorage) UpdateUserRole(id string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.updateUserRole(id, role)
}

func (f *fakeStorage) SearchUsers(query string, role models.Role, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.searchUsers(query, role, limit)
}

func (f *fakeStorage) SaveComplaint(complaint *models.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.saveComplaint(complaint)
}

func (f *fakeStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.getComplaintByID(id)
}

func (f *fakeStorage) ListComplaintsByReporter(reporterID string) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.listComplaintsByReporter(reporterID)
}

func (f *fakeStorage) ListAllComplaints() ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.listAllComplaints()
}

func (f *fakeStorage) UpdateComplaintFields(id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.updateComplaintFields(id, fields)
}

func (f *fakeStorage) UpdateComplaintStatusIfNot(id string, not models.ComplaintStatus, fields map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.updateComplaintStatusIfNot(id, not, fields)
}

func (f *fakeStorage) DeleteComplaint(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.deleteComplaint(id)
}

func (f *fakeStorage) CreateAction(action *models.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.createAction(action)
}

func (f *fakeStorage) CreateActionIfNoneLive(action *models.Action) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.createActionIfNoneLive(action)
}

func (f *fakeStorage) GetActionByID(id uint) (*models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.getActionByID(id)
}

func (f *fakeStorage) GetLiveActionForComplaint(complaintID string) (*models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.getLiveActionForComplaint(complaintID)
}

func (f *fakeStorage) ListActionsForWorker(workerID string) ([]models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.listActionsForWorker(workerID)
}

func (f *fakeStorage) UpdateActionStatusIf(id uint, from, to models.ActionStatus, fields map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.updateActionStatusIf(id, from, to, fields)
}

func (f *fakeStorage) CreditRewardPoints(userID string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.creditRewardPoints(userID, points)
}

func (f *fakeStorage) GetRewardPoints(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.getRewardPoints(userID)
}

func (f *fakeStorage) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.createNotification(n)
}

func (f *fakeStorage) ListNotifications(recipientID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.listNotifications(recipientID, limit)
}

func (f *fakeStorage) CountUnreadNotifications(recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.core.countUnreadNotifications(recipientID)
}

func (f *fakeStorage) MarkNotificationRead(id uint, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.core.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeStorage) MarkAllNotificationsRead(recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.core.notifications {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeStorage) IsUserRevoked(userID string) (bool, error) { return false, nil }

func (f *fakeStorage) RevokeUser(userID string, duration time.Duration) error { return nil }

func (f *fakeStorage) RestoreUser(userID string) error { return nil }

// fakeTx is the transaction-scoped view: the Transact caller already holds
// the store lock, so it delegates straight to the core.
type fakeTx struct {
	core *fakeCore
}

func (t *fakeTx) Transact(fn func(storage.Storage) error) error { return fn(t) }

func (t *fakeTx) GetUserByID(id string) (*models.User, error) { return t.core.getUserByID(id) }

func (t *fakeTx) SaveUser(user *models.User) error { return t.core.saveUser(user) }

func (t *fakeTx) UpdateUserRole(id string, role models.Role) error {
	return t.core.updateUserRole(id, role)
}

func (t *fakeTx) SearchUsers(query string, role models.Role, limit int) ([]models.User, error) {
	return t.core.searchUsers(query, role, limit)
}

func (t *fakeTx) SaveComplaint(complaint *models.Complaint) error {
	return t.core.saveComplaint(complaint)
}

func (t *fakeTx) GetComplaintByID(id string) (*models.Complaint, error) {
	return t.core.getComplaintByID(id)
}

func (t *fakeTx) ListComplaintsByReporter(reporterID string) ([]models.Complaint, error) {
	return t.core.listComplaintsByReporter(reporterID)
}

func (t *fakeTx) ListAllComplaints() ([]models.Complaint, error) {
	return t.core.listAllComplaints()
}

func (t *fakeTx) UpdateComplaintFields(id string, fields map[string]interface{}) error {
	return t.core.updateComplaintFields(id, fields)
}

func (t *fakeTx) UpdateComplaintStatusIfNot(id string, not models.ComplaintStatus, fields map[string]interface{}) (bool, error) {
	return t.core.updateComplaintStatusIfNot(id, not, fields)
}

func (t *fakeTx) DeleteComplaint(id string) error { return t.core.deleteComplaint(id) }

func (t *fakeTx) CreateAction(action *models.Action) error { return t.core.createAction(action) }

func (t *fakeTx) CreateActionIfNoneLive(action *models.Action) (bool, error) {
	return t.core.createActionIfNoneLive(action)
}

func (t *fakeTx) GetActionByID(id uint) (*models.Action, error) { return t.core.getActionByID(id) }

func (t *fakeTx) GetLiveActionForComplaint(complaintID string) (*models.Action, error) {
	return t.core.getLiveActionForComplaint(complaintID)
}

func (t *fakeTx) ListActionsForWorker(workerID string) ([]models.Action, error) {
	return t.core.listActionsForWorker(workerID)
}

func (t *fakeTx) UpdateActionStatusIf(id uint, from, to models.ActionStatus, fields map[string]interface{}) (bool, error) {
	return t.core.updateActionStatusIf(id, from, to, fields)
}

func (t *fakeTx) CreditRewardPoints(userID string, points int) error {
	return t.core.creditRewardPoints(userID, points)
}

func (t *fakeTx) GetRewardPoints(userID string) (int, error) { return t.core.getRewardPoints(userID) }

func (t *fakeTx) CreateNotification(n *models.Notification) error {
	return t.core.createNotification(n)
}

func (t *fakeTx) ListNotifications(recipientID string, limit int) ([]models.Notification, error) {
	return t.core.listNotifications(recipientID, limit)
}

func (t *fakeTx) CountUnreadNotifications(recipientID string) (int64, error) {
	return t.core.countUnreadNotifications(recipientID)
}

func (t *fakeTx) MarkNotificationRead(id uint, recipientID string) error { return nil }

func (t *fakeTx) MarkAllNotificationsRead(recipientID string) error { return nil }

func (t *fakeTx) IsUserRevoked(userID string) (bool, error) { return false, nil }

func (t *fakeTx) RevokeUser(userID string, duration time.Duration) error { return nil }

func (t *fakeTx) RestoreUser(userID string) error { return nil }

// fakeBlobStore keeps blobs in a map.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	return nil
}

func (f *fakeBlobStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}
