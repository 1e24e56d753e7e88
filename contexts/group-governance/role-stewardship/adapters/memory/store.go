package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/ports"
	"stewardship/internal/platform/keylock"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type expressionKey struct {
	trustorID string
	trusteeID string
}

// Store keeps every port in process memory. Role transactions work on a
// private copy of the role's rows and publish it on success, so a failed
// callback leaves nothing behind.
type Store struct {
	mu sync.RWMutex

	groups      map[string]entities.Group
	roles       map[string]entities.Role
	holders     map[string]map[string]entities.RoleHolder
	expressions map[string]map[expressionKey]entities.TrustExpression
	candidacies map[string]map[string]entities.Candidacy
	outbox      map[string]outboxRecord
	outboxOrder []string

	memberships map[string]map[string]entities.Membership
	external    map[string]map[string][]string

	*CapabilityCache

	roleLocks *keylock.Locker
	clock     func() time.Time
}

func NewStore() *Store {
	return &Store{
		groups:      make(map[string]entities.Group),
		roles:       make(map[string]entities.Role),
		holders:     make(map[string]map[string]entities.RoleHolder),
		expressions: make(map[string]map[expressionKey]entities.TrustExpression),
		candidacies: make(map[string]map[string]entities.Candidacy),
		outbox:      make(map[string]outboxRecord),
		memberships: make(map[string]map[string]entities.Membership),
		external:    make(map[string]map[string][]string),

		CapabilityCache: NewCapabilityCache(),
		roleLocks:       keylock.New(),
	}
}

// SetClock overrides the store clock, mainly for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
}

// AddMember seeds the membership directory.
func (s *Store) AddMember(membership entities.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putMemberLocked(membership)
}

func (s *Store) putMemberLocked(membership entities.Membership) {
	groupID := strings.TrimSpace(membership.GroupID)
	if s.memberships[groupID] == nil {
		s.memberships[groupID] = make(map[string]entities.Membership)
	}
	membership.GroupID = groupID
	membership.UserID = strings.TrimSpace(membership.UserID)
	s.memberships[groupID][membership.UserID] = membership
}

func (s *Store) RemoveMember(groupID string, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships[strings.TrimSpace(groupID)], strings.TrimSpace(userID))
}

// GrantExternal seeds responsibilities granted outside the engine.
func (s *Store) GrantExternal(userID string, groupID string, responsibilities ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groupID = strings.TrimSpace(groupID)
	if s.external[groupID] == nil {
		s.external[groupID] = make(map[string][]string)
	}
	userID = strings.TrimSpace(userID)
	s.external[groupID][userID] = append(s.external[groupID][userID], responsibilities...)
}

func (s *Store) UpsertMembership(_ context.Context, membership entities.Membership) error {
	s.AddMember(membership)
	return nil
}

func (s *Store) DeleteMembership(_ context.Context, groupID string, userID string) error {
	s.RemoveMember(groupID, userID)
	return nil
}

func (s *Store) ReplaceExternalResponsibilities(_ context.Context, userID string, groupID string, responsibilities []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	groupID = strings.TrimSpace(groupID)
	if s.external[groupID] == nil {
		s.external[groupID] = make(map[string][]string)
	}
	s.external[groupID][strings.TrimSpace(userID)] = entities.NormalizeResponsibilities(responsibilities)
	return nil
}

func (s *Store) CreateGroup(_ context.Context, group entities.Group, founders ...entities.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[group.GroupID]; exists {
		return domainerrors.ErrConflict
	}
	s.groups[group.GroupID] = group
	for _, founder := range founders {
		founder.GroupID = group.GroupID
		s.putMemberLocked(founder)
	}
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID string) (entities.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[strings.TrimSpace(groupID)]
	if !ok {
		return entities.Group{}, domainerrors.ErrGroupNotFound
	}
	return group, nil
}

func (s *Store) UpdateGroup(_ context.Context, group entities.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.GroupID]; !ok {
		return domainerrors.ErrGroupNotFound
	}
	s.groups[group.GroupID] = group
	return nil
}

func (s *Store) CreateRole(_ context.Context, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[role.GroupID]; !ok {
		return domainerrors.ErrGroupNotFound
	}
	if _, exists := s.roles[role.RoleID]; exists {
		return domainerrors.ErrConflict
	}
	role.Responsibilities = append([]string(nil), role.Responsibilities...)
	s.roles[role.RoleID] = role
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[strings.TrimSpace(roleID)]
	if !ok {
		return entities.Role{}, domainerrors.ErrRoleNotFound
	}
	return cloneRole(role), nil
}

func (s *Store) ListRolesByGroup(_ context.Context, groupID string) ([]entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Role, 0)
	for _, role := range s.roles {
		if role.GroupID == strings.TrimSpace(groupID) {
			items = append(items, cloneRole(role))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].RoleID < items[j].RoleID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ListHolders(_ context.Context, roleID string) ([]entities.RoleHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedHolders(s.holders[strings.TrimSpace(roleID)]), nil
}

func (s *Store) ListExpressions(_ context.Context, roleID string) ([]entities.TrustExpression, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedExpressions(s.expressions[strings.TrimSpace(roleID)]), nil
}

func (s *Store) ListCandidacies(_ context.Context, roleID string) ([]entities.Candidacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCandidacies(s.candidacies[strings.TrimSpace(roleID)]), nil
}

func (s *Store) ListHeldResponsibilities(_ context.Context, userID string, groupID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []string
	for roleID, holders := range s.holders {
		if _, ok := holders[userID]; !ok {
			continue
		}
		role, ok := s.roles[roleID]
		if !ok || role.GroupID != groupID {
			continue
		}
		items = append(items, role.Responsibilities...)
	}
	return entities.NormalizeResponsibilities(items), nil
}

// WithinRoleTx serializes on the role id and publishes the working copy only
// when fn succeeds.
func (s *Store) WithinRoleTx(ctx context.Context, roleID string, fn func(ctx context.Context, tx ports.RoleTx) error) error {
	roleID = strings.TrimSpace(roleID)
	release, err := s.roleLocks.Acquire(ctx, roleID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domainerrors.ErrRoleBusy
		}
		return err
	}
	defer release()

	s.mu.RLock()
	role, ok := s.roles[roleID]
	if !ok {
		s.mu.RUnlock()
		return domainerrors.ErrRoleNotFound
	}
	tx := &roleTx{
		role:        cloneRole(role),
		holders:     make(map[string]entities.RoleHolder, len(s.holders[roleID])),
		expressions: make(map[expressionKey]entities.TrustExpression, len(s.expressions[roleID])),
		candidacies: make(map[string]entities.Candidacy, len(s.candidacies[roleID])),
	}
	for key, value := range s.holders[roleID] {
		tx.holders[key] = value
	}
	for key, value := range s.expressions[roleID] {
		tx.expressions[key] = value
	}
	for key, value := range s.candidacies[roleID] {
		tx.candidacies[key] = value
	}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[roleID] = tx.role
	s.holders[roleID] = tx.holders
	s.expressions[roleID] = tx.expressions
	s.candidacies[roleID] = tx.candidacies
	for _, message := range tx.outbox {
		s.outbox[message.OutboxID] = outboxRecord{message: message}
		s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	}
	return nil
}

func (s *Store) GetMembership(_ context.Context, groupID string, userID string) (entities.Membership, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	membership, ok := s.memberships[strings.TrimSpace(groupID)][strings.TrimSpace(userID)]
	return membership, ok, nil
}

func (s *Store) ListExternalResponsibilities(_ context.Context, userID string, groupID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.external[strings.TrimSpace(groupID)][strings.TrimSpace(userID)]...), nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		record := s.outbox[id]
		if record.published {
			continue
		}
		message := record.message
		message.Payload = append([]byte(nil), message.Payload...)
		items = append(items, message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrConflict
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

// OutboxEventTypes lists every recorded event type in append order.
func (s *Store) OutboxEventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		items = append(items, s.outbox[id].message.EventType)
	}
	return items
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	clock := s.clock
	s.mu.RUnlock()
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type roleTx struct {
	role        entities.Role
	holders     map[string]entities.RoleHolder
	expressions map[expressionKey]entities.TrustExpression
	candidacies map[string]entities.Candidacy
	outbox      []ports.OutboxMessage
}

func (t *roleTx) Role(context.Context) (entities.Role, error) {
	return cloneRole(t.role), nil
}

func (t *roleTx) SaveRole(_ context.Context, role entities.Role) error {
	if role.RoleID != t.role.RoleID {
		return domainerrors.ErrConflict
	}
	t.role = cloneRole(role)
	return nil
}

func (t *roleTx) ListHolders(context.Context) ([]entities.RoleHolder, error) {
	return sortedHolders(t.holders), nil
}

func (t *roleTx) AddHolder(_ context.Context, holder entities.RoleHolder) error {
	if _, exists := t.holders[holder.UserID]; exists {
		return domainerrors.ErrAlreadyHolder
	}
	holder.RoleID = t.role.RoleID
	t.holders[holder.UserID] = holder
	return nil
}

func (t *roleTx) RemoveHolder(_ context.Context, userID string) (bool, error) {
	if _, exists := t.holders[userID]; !exists {
		return false, nil
	}
	delete(t.holders, userID)
	return true, nil
}

func (t *roleTx) GetExpression(_ context.Context, trustorID string, trusteeID string) (entities.TrustExpression, bool, error) {
	expression, ok := t.expressions[expressionKey{trustorID: trustorID, trusteeID: trusteeID}]
	return expression, ok, nil
}

func (t *roleTx) PutExpression(_ context.Context, expression entities.TrustExpression) error {
	expression.RoleID = t.role.RoleID
	t.expressions[expressionKey{trustorID: expression.TrustorID, trusteeID: expression.TrusteeID}] = expression
	return nil
}

func (t *roleTx) RemoveExpression(_ context.Context, trustorID string, trusteeID string) (bool, error) {
	key := expressionKey{trustorID: trustorID, trusteeID: trusteeID}
	if _, ok := t.expressions[key]; !ok {
		return false, nil
	}
	delete(t.expressions, key)
	return true, nil
}

func (t *roleTx) ListExpressions(context.Context) ([]entities.TrustExpression, error) {
	return sortedExpressions(t.expressions), nil
}

func (t *roleTx) DeclareCandidacy(_ context.Context, candidacy entities.Candidacy) (bool, error) {
	if _, exists := t.candidacies[candidacy.UserID]; exists {
		return false, nil
	}
	candidacy.RoleID = t.role.RoleID
	t.candidacies[candidacy.UserID] = candidacy
	return true, nil
}

func (t *roleTx) WithdrawCandidacy(_ context.Context, userID string) (bool, error) {
	if _, exists := t.candidacies[userID]; !exists {
		return false, nil
	}
	delete(t.candidacies, userID)
	return true, nil
}

func (t *roleTx) ListCandidacies(context.Context) ([]entities.Candidacy, error) {
	return sortedCandidacies(t.candidacies), nil
}

func (t *roleTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	t.outbox = append(t.outbox, ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	})
	return nil
}

func cloneRole(role entities.Role) entities.Role {
	role.Responsibilities = append([]string(nil), role.Responsibilities...)
	return role
}

func sortedHolders(items map[string]entities.RoleHolder) []entities.RoleHolder {
	out := make([]entities.RoleHolder, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].GrantedAt.Before(out[j].GrantedAt)
	})
	return out
}

func sortedExpressions(items map[expressionKey]entities.TrustExpression) []entities.TrustExpression {
	out := make([]entities.TrustExpression, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if out[i].TrusteeID != out[j].TrusteeID {
			return out[i].TrusteeID < out[j].TrusteeID
		}
		return out[i].TrustorID < out[j].TrustorID
	})
	return out
}

func sortedCandidacies(items map[string]entities.Candidacy) []entities.Candidacy {
	out := make([]entities.Candidacy, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeclaredAt.Equal(out[j].DeclaredAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].DeclaredAt.Before(out[j].DeclaredAt)
	})
	return out
}

var _ ports.Repository = (*Store)(nil)
var _ ports.MembershipDirectory = (*Store)(nil)
var _ ports.ExternalResponsibilities = (*Store)(nil)
var _ ports.MembershipProjection = (*Store)(nil)
var _ ports.CapabilityCache = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
