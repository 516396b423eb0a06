// Package usecasetest holds in-memory collaborators for use case tests.
package usecasetest

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
)

// ErrInjected is returned by collaborators configured to fail.
var ErrInjected = errors.New("injected failure")

type Accounts struct {
	mu   sync.Mutex
	byID map[string]*domain.Account
	// FailUpdate makes UpdateDisplayName fail for this name.
	FailUpdate string
}

func NewAccounts() *Accounts {
	return &Accounts{byID: map[string]*domain.Account{}}
}

func (a *Accounts) Create(_ context.Context, account *domain.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.byID {
		if strings.EqualFold(existing.Email, account.Email) {
			return domain.ErrAccountExists
		}
	}
	copied := *account
	a.byID[account.UID] = &copied
	return nil
}

func (a *Accounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.byID {
		if strings.EqualFold(existing.Email, email) {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (a *Accounts) GetByUID(_ context.Context, uid string) (*domain.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	existing, ok := a.byID[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *existing
	return &copied, nil
}

func (a *Accounts) UpdateDisplayName(_ context.Context, uid, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailUpdate != "" && name == a.FailUpdate {
		return ErrInjected
	}
	existing, ok := a.byID[uid]
	if !ok {
		return domain.ErrNotFound
	}
	existing.DisplayName = name
	return nil
}

type Participants struct {
	mu   sync.Mutex
	byID map[string]*domain.Participant
	// Requests, when set, is renamed together with the participant.
	Requests   *SongRequests
	FailRename bool
}

func NewParticipants() *Participants {
	return &Participants{byID: map[string]*domain.Participant{}}
}

func (p *Participants) Upsert(_ context.Context, participant *domain.Participant) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[participant.ID]; ok {
		return nil
	}
	copied := *participant
	p.byID[participant.ID] = &copied
	return nil
}

func (p *Participants) GetByID(_ context.Context, id string) (*domain.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	existing, ok := p.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *existing
	return &copied, nil
}

func (p *Participants) List(_ context.Context) ([]domain.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Participant, 0, len(p.byID))
	for _, v := range p.byID {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b domain.Participant) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (p *Participants) SetDisabled(_ context.Context, id string, disabled bool) (*domain.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	existing, ok := p.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	existing.Disabled = disabled
	copied := *existing
	return &copied, nil
}

func (p *Participants) RenameWithRequests(_ context.Context, id, name string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailRename {
		return 0, ErrInjected
	}
	existing, ok := p.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	existing.Name = name
	if p.Requests == nil {
		return 0, nil
	}
	return p.Requests.renameOwner(id, name), nil
}

type SongRequests struct {
	mu          sync.Mutex
	items       map[string]*domain.SongRequest
	FailReorder bool
}

func NewSongRequests() *SongRequests {
	return &SongRequests{items: map[string]*domain.SongRequest{}}
}

func (s *SongRequests) renameOwner(id, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.items {
		if r.ParticipantID == id {
			r.RequesterName = name
			n++
		}
	}
	return n
}

func (s *SongRequests) Create(_ context.Context, request *domain.SongRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 0
	for _, r := range s.items {
		if r.Order >= next {
			next = r.Order + 1
		}
	}
	request.Order = next
	copied := *request
	s.items[request.ID] = &copied
	return nil
}

func (s *SongRequests) GetByID(_ context.Context, id string) (*domain.SongRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

// List honours the ParticipantID filter and Order/SubmittedAt sorts.
func (s *SongRequests) List(_ context.Context, f filter.DynamicFilter) ([]domain.SongRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SongRequest, 0, len(s.items))
	for _, r := range s.items {
		if pf, ok := f.Filter["ParticipantID"]; ok && r.ParticipantID != pf.From {
			continue
		}
		out = append(out, *r)
	}

	slices.SortStableFunc(out, func(a, b domain.SongRequest) int {
		for _, srt := range f.Sort {
			var c int
			switch srt.ColID {
			case "Order":
				c = cmp.Compare(a.Order, b.Order)
			case "SubmittedAt":
				c = a.SubmittedAt.Compare(b.SubmittedAt)
			}
			if srt.Sort == filter.SortDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *SongRequests) Update(_ context.Context, id string, patch domain.SongRequestPatch) (*domain.SongRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.SongTitle != nil {
		r.SongTitle = *patch.SongTitle
	}
	if patch.SongURL != nil {
		r.SongURL = *patch.SongURL
	}
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	if patch.Order != nil {
		r.Order = *patch.Order
	}
	r.UpdatedAt = time.Now().UTC()
	copied := *r
	return &copied, nil
}

func (s *SongRequests) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *SongRequests) Reorder(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReorder {
		return ErrInjected
	}
	if err := domain.ValidateReorder(ids); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			return domain.ErrInvalidReorder
		}
	}
	listed := make(map[string]bool, len(ids))
	for i, id := range ids {
		s.items[id].Order = i
		listed[id] = true
	}
	var rest []*domain.SongRequest
	for id, r := range s.items {
		if !listed[id] {
			rest = append(rest, r)
		}
	}
	slices.SortFunc(rest, func(a, b *domain.SongRequest) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), a.SubmittedAt.Compare(b.SubmittedAt))
	})
	for i, r := range rest {
		r.Order = len(ids) + i
	}
	return nil
}

type Notifications struct {
	mu    sync.Mutex
	items []*domain.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (n *Notifications) Create(_ context.Context, notification *domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	copied := *notification
	n.items = append(n.items, &copied)
	return nil
}

func (n *Notifications) List(_ context.Context, to string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for i := len(n.items) - 1; i >= 0; i-- {
		item := n.items[i]
		if item.To != to || (unreadOnly && item.Read) {
			continue
		}
		out = append(out, *item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (n *Notifications) ListUnreadBetween(_ context.Context, to string, since, until time.Time) ([]domain.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, item := range n.items {
		if item.To == to && !item.Read && item.CreatedAt.After(since) && !item.CreatedAt.After(until) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (n *Notifications) MarkRead(_ context.Context, id string) (*domain.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, item := range n.items {
		if item.ID == id {
			item.Read = true
			copied := *item
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Audit collects recorded entries.
type Audit struct {
	mu      sync.Mutex
	Entries []*domain.AuditLog
}

func (a *Audit) Record(_ context.Context, entry *domain.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
}

func (a *Audit) Actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}

// Notifier records change notifications and terminations.
type Notifier struct {
	mu                 sync.Mutex
	Changes            []string
	Terminated         []string
	TerminatedSessions []string
}

func (n *Notifier) Notify(_ context.Context, table, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Changes = append(n.Changes, table+":"+id)
}

func (n *Notifier) TerminateUser(_ context.Context, uid string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Terminated = append(n.Terminated, uid)
}

func (n *Notifier) TerminateSession(_ context.Context, sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.TerminatedSessions = append(n.TerminatedSessions, sessionID)
}
