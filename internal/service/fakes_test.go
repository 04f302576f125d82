package service

import (
	"context"
	"sync"
	"time"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// In-memory repository fakes. They mirror the storage-layer guarantees
// the services lean on: receipt inserts are conflict-free no-ops, member
// inserts refuse a second active row per identity, and the read
// watermark only ever moves forward.

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*model.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*model.Project)}
}

func (f *fakeProjectRepo) Create(_ context.Context, project *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeProjectRepo) FindByID(_ context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	copied := *project
	return &copied, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*model.Message
	order    []string
	receipts map[model.MessageReceipt]bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string]*model.Message),
		receipts: make(map[model.MessageReceipt]bool),
	}
}

func (f *fakeMessageRepo) Create(_ context.Context, message *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	copied := *message
	f.messages[message.ID] = &copied
	f.order = append(f.order, message.ID)
	return nil
}

func (f *fakeMessageRepo) FindByID(_ context.Context, id string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	copied := *message
	return &copied, nil
}

func (f *fakeMessageRepo) ListByProject(_ context.Context, projectID string, limit int, beforeID string) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var cutoff *time.Time
	if beforeID != "" {
		if anchor, ok := f.messages[beforeID]; ok {
			at := anchor.CreatedAt
			cutoff = &at
		}
	}

	var out []*model.Message
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		message := f.messages[f.order[i]]
		if message.ProjectID != projectID {
			continue
		}
		if cutoff != nil && !message.CreatedAt.Before(*cutoff) {
			continue
		}
		copied := *message
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMessageRepo) AddReceipt(_ context.Context, receipt *model.MessageReceipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := model.MessageReceipt{
		MessageID:     receipt.MessageID,
		ParticipantID: receipt.ParticipantID,
		State:         receipt.State,
	}
	f.receipts[key] = true
	return nil
}

func (f *fakeMessageRepo) Receipts(_ context.Context, messageID string) ([]model.MessageReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MessageReceipt
	for receipt := range f.receipts {
		if receipt.MessageID == messageID {
			out = append(out, receipt)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) UpdateStatus(_ context.Context, messageID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message, ok := f.messages[messageID]; ok {
		message.Status = status
	}
	return nil
}

func (f *fakeMessageRepo) CountAfter(_ context.Context, projectID string, after *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, message := range f.messages {
		if message.ProjectID != projectID {
			continue
		}
		if after != nil && !message.CreatedAt.After(*after) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeMessageRepo) LatestByProject(_ context.Context, projectID string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.order) - 1; i >= 0; i-- {
		message := f.messages[f.order[i]]
		if message.ProjectID == projectID {
			copied := *message
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]*model.ChatMember
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*model.ChatMember)}
}

func (f *fakeMemberRepo) Insert(_ context.Context, member *model.ChatMember) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.IsActive &&
			existing.ProjectID == member.ProjectID &&
			existing.Identity.ParticipantID() == member.Identity.ParticipantID() {
			return false, nil
		}
	}
	copied := *member
	f.members[member.ID] = &copied
	return true, nil
}

func (f *fakeMemberRepo) FindByID(_ context.Context, id string) (*model.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[id]
	if !ok {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberRepo) FindActive(_ context.Context, projectID string, identity model.Identity) (*model.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, member := range f.members {
		if member.IsActive &&
			member.ProjectID == projectID &&
			member.Identity.ParticipantID() == identity.ParticipantID() {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberRepo) ListActiveByProject(_ context.Context, projectID string) ([]*model.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ChatMember
	for _, member := range f.members {
		if member.IsActive && member.ProjectID == projectID {
			copied := *member
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) ListActiveByUser(_ context.Context, userID string) ([]*model.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ChatMember
	for _, member := range f.members {
		if member.IsActive && member.Identity.UserID == userID {
			copied := *member
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) Deactivate(_ context.Context, id, removedBy string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member, ok := f.members[id]; ok {
		member.IsActive = false
		member.RemovedBy = removedBy
		member.RemovedAt = &at
	}
	return nil
}

func (f *fakeMemberRepo) TouchLastSeen(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member, ok := f.members[id]; ok {
		member.LastSeenAt = &at
	}
	return nil
}

type fakeShareRepo struct {
	mu     sync.Mutex
	shares map[string]*model.ShareLink
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: make(map[string]*model.ShareLink)}
}

func (f *fakeShareRepo) Create(_ context.Context, share *model.ShareLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *share
	f.shares[share.ID] = &copied
	return nil
}

func (f *fakeShareRepo) FindByID(_ context.Context, id string) (*model.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	share, ok := f.shares[id]
	if !ok {
		return nil, nil
	}
	copied := *share
	return &copied, nil
}

func (f *fakeShareRepo) FindByToken(_ context.Context, token string) (*model.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.ShareToken == token {
			copied := *share
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeShareRepo) ListByProject(_ context.Context, projectID string) ([]*model.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ShareLink
	for _, share := range f.shares {
		if share.ProjectID == projectID {
			copied := *share
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeShareRepo) Revoke(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if share, ok := f.shares[id]; ok {
		share.IsActive = false
		share.UpdatedAt = at
	}
	return nil
}

type fakeJoinRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.JoinRequest
}

func newFakeJoinRequestRepo() *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{requests: make(map[string]*model.JoinRequest)}
}

func (f *fakeJoinRequestRepo) Create(_ context.Context, request *model.JoinRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeJoinRequestRepo) FindByID(_ context.Context, id string) (*model.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *request
	return &copied, nil
}

func (f *fakeJoinRequestRepo) FindPending(_ context.Context, projectID string, identity model.Identity) (*model.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, request := range f.requests {
		if request.Status == model.JoinRequestPending &&
			request.ProjectID == projectID &&
			request.Identity.ParticipantID() == identity.ParticipantID() {
			copied := *request
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeJoinRequestRepo) ListPendingByProject(_ context.Context, projectID string) ([]*model.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.JoinRequest
	for _, request := range f.requests {
		if request.Status == model.JoinRequestPending && request.ProjectID == projectID {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeJoinRequestRepo) MarkResponded(_ context.Context, id, status, responderID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok || request.Status != model.JoinRequestPending {
		return false, nil
	}
	request.Status = status
	request.RespondedBy = responderID
	request.RespondedAt = &at
	return true, nil
}

type fakeLastReadRepo struct {
	mu         sync.Mutex
	watermarks map[string]*model.LastRead
}

func newFakeLastReadRepo() *fakeLastReadRepo {
	return &fakeLastReadRepo{watermarks: make(map[string]*model.LastRead)}
}

func (f *fakeLastReadRepo) Upsert(_ context.Context, projectID, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := projectID + "/" + userID
	if existing, ok := f.watermarks[key]; ok {
		if at.After(existing.LastReadAt) {
			existing.LastReadAt = at
		}
		return nil
	}
	f.watermarks[key] = &model.LastRead{
		ID:         key,
		ProjectID:  projectID,
		UserID:     userID,
		LastReadAt: at,
	}
	return nil
}

func (f *fakeLastReadRepo) Find(_ context.Context, projectID, userID string) (*model.LastRead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	watermark, ok := f.watermarks[projectID+"/"+userID]
	if !ok {
		return nil, nil
	}
	copied := *watermark
	return &copied, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(_ context.Context, _ string, event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}
