package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	application "stewardship/contexts/group-governance/role-stewardship/application"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/domain/services"
	"stewardship/contexts/group-governance/role-stewardship/ports"
	contractsv1 "stewardship/contracts/gen/events/v1"
	"stewardship/internal/platform/keylock"
)

const (
	moduleName         = "group-governance/role-stewardship"
	defaultLockTimeout = 2 * time.Second
)

var tracer = otel.Tracer("stewardship/role-stewardship/commands")

// CapabilityChecker answers responsibility questions for admin gating.
type CapabilityChecker interface {
	HasResponsibility(ctx context.Context, userID string, groupID string, responsibility string) (bool, error)
}

// RoleActivationCoordinator is the single entry point for role mutations.
// Every operation runs under the role's lock inside one repository
// transaction; no operation ever holds two role locks.
type RoleActivationCoordinator struct {
	Repository   ports.Repository
	Members      ports.MembershipDirectory
	Projection   ports.MembershipProjection
	Cache        ports.CapabilityCache
	Capabilities CapabilityChecker
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Locks        *keylock.Locker
	LockTimeout  time.Duration
	StateMachine services.RoleStateMachine
	Ledger       TrustLedger
	Metrics      ports.Metrics
	Logger       *slog.Logger
}

// roleSession carries the state one operation builds up inside its role
// transaction.
type roleSession struct {
	tx        ports.RoleTx
	role      entities.Role
	roleDirty bool
	now       time.Time
	affected  map[string]struct{}
	excluded  map[string]struct{}
	roleFull  bool
	activated int
	revoked   int
}

func (s *roleSession) touch(userID string) {
	if s.affected == nil {
		s.affected = make(map[string]struct{})
	}
	s.affected[userID] = struct{}{}
}

// exclude keeps userID out of activation for the settle that closes this session.
func (s *roleSession) exclude(userID string) {
	if s.excluded == nil {
		s.excluded = make(map[string]struct{})
	}
	s.excluded[userID] = struct{}{}
}

// withRole acquires the role lock, opens the role transaction, runs fn and
// then settles the role through the state machine before commit.
func (c RoleActivationCoordinator) withRole(
	ctx context.Context,
	operation string,
	roleID string,
	fn func(ctx context.Context, session *roleSession) error,
) (entities.RoleOutcome, error) {
	logger := application.ResolveLogger(c.Logger)
	started := time.Now()
	ctx, span := tracer.Start(ctx, "coordinator."+operation, trace.WithAttributes(
		attribute.String("role_id", roleID),
	))
	defer span.End()

	var (
		outcome entities.RoleOutcome
		session *roleSession
	)
	err := c.lockKey(ctx, roleLockKey(roleID), func() error {
		return c.Repository.WithinRoleTx(ctx, roleID, func(ctx context.Context, tx ports.RoleTx) error {
			role, err := tx.Role(ctx)
			if err != nil {
				return err
			}
			session = &roleSession{tx: tx, role: role, now: c.now()}
			if err := fn(ctx, session); err != nil {
				return err
			}
			outcome, err = c.settle(ctx, session)
			return err
		})
	})

	c.metrics().ObserveOperation(operation, outcomeLabel(err), time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelWarn
		if !domainerrors.IsDomain(err) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "role operation failed",
			"event", "stewardship_role_operation_failed",
			"module", moduleName,
			"layer", "application",
			"operation", operation,
			"role_id", roleID,
			"retryable", domainerrors.IsRetryable(err),
			"error", err.Error(),
		)
		return entities.RoleOutcome{}, err
	}

	for i := 0; i < session.activated; i++ {
		c.metrics().RecordTransition("activated")
	}
	for i := 0; i < session.revoked; i++ {
		c.metrics().RecordTransition("revoked")
	}
	c.invalidate(ctx, session.role.GroupID, session.affected)
	span.SetAttributes(
		attribute.String("status", string(outcome.Status)),
		attribute.Int("holders", len(outcome.Holders)),
	)
	logger.Info("role operation committed",
		"event", "stewardship_role_operation_committed",
		"module", moduleName,
		"layer", "application",
		"operation", operation,
		"role_id", roleID,
		"group_id", outcome.GroupID,
		"status", string(outcome.Status),
		"threshold_current", outcome.ThresholdCurrent,
		"threshold_required", outcome.ThresholdRequired,
		"holder_count", len(outcome.Holders),
	)
	return outcome, nil
}

// settle runs the state machine over the transaction's current ledger and
// writes the resulting holder changes, role fields and events.
func (c RoleActivationCoordinator) settle(ctx context.Context, session *roleSession) (entities.RoleOutcome, error) {
	holders, err := session.tx.ListHolders(ctx)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	expressions, err := c.Ledger.ListForRole(ctx, session.tx)
	if err != nil {
		return entities.RoleOutcome{}, err
	}

	role := session.role
	evaluation := c.StateMachine.Evaluate(services.EvaluationInput{
		Role:        role,
		Holders:     holders,
		Expressions: expressions,
		Excluded:    session.excluded,
		Now:         session.now,
	})

	for _, holder := range evaluation.Revoked {
		if _, err := session.tx.RemoveHolder(ctx, holder.UserID); err != nil {
			return entities.RoleOutcome{}, err
		}
		score, _ := services.ScoreOf(evaluation.Scores, holder.UserID)
		if err := c.emit(ctx, session, contractsv1.EventRoleRevoked, map[string]any{
			"role_id":            role.RoleID,
			"group_id":           role.GroupID,
			"user_id":            holder.UserID,
			"granted_via":        string(holder.GrantedVia),
			"reason":             "trust_below_hysteresis",
			"score":              score.Score,
			"threshold_required": role.ThresholdRequired,
		}); err != nil {
			return entities.RoleOutcome{}, err
		}
		session.touch(holder.UserID)
		session.revoked++
	}
	for _, holder := range evaluation.Activated {
		if err := session.tx.AddHolder(ctx, holder); err != nil {
			return entities.RoleOutcome{}, err
		}
		score, _ := services.ScoreOf(evaluation.Scores, holder.UserID)
		if err := c.emit(ctx, session, contractsv1.EventRoleActivated, map[string]any{
			"role_id":            role.RoleID,
			"group_id":           role.GroupID,
			"user_id":            holder.UserID,
			"granted_via":        string(holder.GrantedVia),
			"score":              score.Score,
			"threshold_required": role.ThresholdRequired,
		}); err != nil {
			return entities.RoleOutcome{}, err
		}
		session.touch(holder.UserID)
		session.activated++
	}

	previousStatus := role.Status
	if evaluation.Changed(role) || session.roleDirty {
		role.Status = evaluation.Status
		role.ThresholdCurrent = evaluation.ThresholdCurrent
		role.UpdatedAt = session.now
		if err := session.tx.SaveRole(ctx, role); err != nil {
			return entities.RoleOutcome{}, err
		}
		session.role = role
	}
	if previousStatus != role.Status {
		if err := c.emit(ctx, session, contractsv1.EventStatusChanged, map[string]any{
			"role_id":     role.RoleID,
			"group_id":    role.GroupID,
			"from_status": string(previousStatus),
			"to_status":   string(role.Status),
		}); err != nil {
			return entities.RoleOutcome{}, err
		}
	}

	return entities.RoleOutcome{
		RoleID:            role.RoleID,
		GroupID:           role.GroupID,
		Status:            role.Status,
		ThresholdCurrent:  role.ThresholdCurrent,
		ThresholdRequired: role.ThresholdRequired,
		Capacity:          role.Capacity,
		Holders:           entities.HolderIDs(evaluation.Holders),
		RoleFull:          session.roleFull,
	}, nil
}

// lockKey bounds lock acquisition by LockTimeout. A timeout surfaces as
// ErrRoleBusy; cancellation of the caller's context is returned as is.
func (c RoleActivationCoordinator) lockKey(ctx context.Context, key string, fn func() error) error {
	if c.Locks == nil {
		return fn()
	}
	timeout := c.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	release, err := c.Locks.Acquire(lockCtx, key)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domainerrors.ErrRoleBusy
	}
	defer release()
	return fn()
}

func (c RoleActivationCoordinator) emit(ctx context.Context, session *roleSession, eventType string, data map[string]any) error {
	eventID, err := c.IDGenerator.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newStewardshipEnvelope(eventID, eventType, session.role.RoleID, session.now, data)
	if err != nil {
		return err
	}
	return session.tx.AppendOutbox(ctx, envelope)
}

func (c RoleActivationCoordinator) invalidate(ctx context.Context, groupID string, users map[string]struct{}) {
	if c.Cache == nil {
		return
	}
	for userID := range users {
		if err := c.Cache.Invalidate(ctx, userID, groupID); err != nil {
			application.ResolveLogger(c.Logger).Warn("capability cache invalidation failed",
				"event", "stewardship_capability_invalidate_failed",
				"module", moduleName,
				"layer", "application",
				"user_id", userID,
				"group_id", groupID,
				"error", err.Error(),
			)
		}
	}
}

// requireMember returns the directory entry or ErrNotAMember.
func (c RoleActivationCoordinator) requireMember(ctx context.Context, groupID string, userID string) (entities.Membership, error) {
	membership, ok, err := c.Members.GetMembership(ctx, groupID, userID)
	if err != nil {
		return entities.Membership{}, err
	}
	if !ok {
		return entities.Membership{}, domainerrors.ErrNotAMember
	}
	return membership, nil
}

// requireAdmin accepts directory admins and holders of the Administration
// responsibility.
func (c RoleActivationCoordinator) requireAdmin(ctx context.Context, groupID string, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domainerrors.ErrForbidden
	}
	membership, ok, err := c.Members.GetMembership(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrForbidden
	}
	if membership.IsAdmin {
		return nil
	}
	if c.Capabilities != nil {
		allowed, err := c.Capabilities.HasResponsibility(ctx, actorID, groupID, entities.ResponsibilityAdministration)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	return domainerrors.ErrForbidden
}

func (c RoleActivationCoordinator) loadRole(ctx context.Context, roleID string) (entities.Role, error) {
	if strings.TrimSpace(roleID) == "" {
		return entities.Role{}, domainerrors.ErrInvalidInput
	}
	return c.Repository.GetRole(ctx, roleID)
}

func (c RoleActivationCoordinator) metrics() ports.Metrics {
	if c.Metrics == nil {
		return ports.NopMetrics{}
	}
	return c.Metrics
}

func (c RoleActivationCoordinator) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func roleLockKey(roleID string) string {
	return "role:" + roleID
}

func groupLockKey(groupID string) string {
	return "group:" + groupID
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domainerrors.ErrRoleBusy):
		return "busy"
	case domainerrors.IsDomain(err):
		return "rejected"
	default:
		return "error"
	}
}

func (c RoleActivationCoordinator) logger() *slog.Logger {
	return application.ResolveLogger(c.Logger)
}
