package models

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrAlreadyMember is returned when an invite targets someone who already belongs to the space.
var ErrAlreadyMember = errors.New("email already belongs to a space member")

// Member is a user that belongs to a space.
type Member struct {
	AccountID string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      SpaceRole `json:"role"`
}

// Space is a shared encrypted workspace with members and pending invites.
type Space struct {
	ID      string     `json:"id"`
	Title   string     `json:"title,omitempty"`
	Key     []byte     `json:"-"`
	Members *MemberSet `json:"-"`
	Invites *InviteSet `json:"-"`
}

// NewSpace builds a space with empty collections.
func NewSpace(id string, key []byte) *Space {
	return &Space{
		ID:      id,
		Key:     key,
		Members: NewMemberSet(),
		Invites: NewInviteSet(),
	}
}

// HasMember reports whether email belongs to a current member.
func (s *Space) HasMember(email string) bool {
	return s.Members.Contains(email)
}

// HasInvite reports whether email already has a pending invite.
func (s *Space) HasInvite(email string) bool {
	email = NormalizeEmail(email)
	_, ok := s.Invites.Find(func(i Invite) bool { return NormalizeEmail(i.ToUser) == email })
	return ok
}

// AddInvite upserts a sanitized copy of invite. It refuses invites for current members so an
// email never sits in both collections.
func (s *Space) AddInvite(invite Invite) error {
	if s.HasMember(invite.ToUser) {
		return ErrAlreadyMember
	}
	s.Invites.Upsert(invite.Sanitized())
	return nil
}

// MemberSet is an ordered collection of members, unique by account.
type MemberSet struct {
	mu      sync.RWMutex
	members []Member
}

func NewMemberSet(members ...Member) *MemberSet {
	set := &MemberSet{}
	for _, m := range members {
		set.Add(m)
	}
	return set
}

// Add appends m, replacing any member with the same account in place.
func (s *MemberSet) Add(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.members {
		if existing.AccountID == m.AccountID {
			s.members[i] = m
			return
		}
	}
	s.members = append(s.members, m)
}

func (s *MemberSet) Find(pred func(Member) bool) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if pred(m) {
			return m, true
		}
	}
	return Member{}, false
}

// Contains reports whether any member has email, compared case-insensitively.
func (s *MemberSet) Contains(email string) bool {
	email = NormalizeEmail(email)
	_, ok := s.Find(func(m Member) bool { return NormalizeEmail(m.Email) == email })
	return ok
}

func (s *MemberSet) List() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Member(nil), s.members...)
}

func (s *MemberSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// InviteSet holds pending invites keyed by normalized recipient email.
type InviteSet struct {
	mu      sync.RWMutex
	invites map[string]Invite
}

func NewInviteSet(invites ...Invite) *InviteSet {
	set := &InviteSet{invites: make(map[string]Invite, len(invites))}
	for _, inv := range invites {
		set.Upsert(inv)
	}
	return set
}

// Upsert inserts invite or replaces the one already held for the same email.
func (s *InviteSet) Upsert(invite Invite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invites[NormalizeEmail(invite.ToUser)] = invite
}

func (s *InviteSet) Get(email string) (Invite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invites[NormalizeEmail(email)]
	return inv, ok
}

func (s *InviteSet) Find(pred func(Invite) bool) (Invite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invites {
		if pred(inv) {
			return inv, true
		}
	}
	return Invite{}, false
}

func (s *InviteSet) List() []Invite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Invite, 0, len(s.invites))
	for _, inv := range s.invites {
		out = append(out, inv)
	}
	return out
}

func (s *InviteSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invites)
}

// SpaceSnapshot is the wire form of a space. It never carries the space key.
type SpaceSnapshot struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Members []Member `json:"members"`
	Invites []Invite `json:"invites"`
}

// Snapshot captures the current members and invites.
func (s *Space) Snapshot() SpaceSnapshot {
	snap := SpaceSnapshot{ID: s.ID, Title: s.Title, Members: s.Members.List(), Invites: s.Invites.List()}
	for i := range snap.Invites {
		snap.Invites[i] = snap.Invites[i].Sanitized()
	}
	return snap
}

// Space rebuilds a live space from the snapshot, attaching the locally held key.
func (s SpaceSnapshot) Space(key []byte) *Space {
	space := NewSpace(s.ID, key)
	space.Title = s.Title
	for _, m := range s.Members {
		space.Members.Add(m)
	}
	for _, inv := range s.Invites {
		space.Invites.Upsert(inv)
	}
	return space
}
