package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	dialectPostgres = "postgres"
)

// Repository implements the stewardship storage ports on gorm. Role
// transactions lock the role row with SELECT ... FOR UPDATE on postgres; on
// sqlite the single-connection pool serializes writers.
type Repository struct {
	db          *gorm.DB
	lockTimeout time.Duration
	logger      *slog.Logger
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.MembershipDirectory = (*Repository)(nil)
var _ ports.MembershipProjection = (*Repository)(nil)
var _ ports.ExternalResponsibilities = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB, lockTimeout time.Duration, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:          db,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// CreateGroup inserts the group and its founding memberships in one
// transaction, so a group never exists without the members it was created with.
func (r *Repository) CreateGroup(ctx context.Context, group entities.Group, founders ...entities.Membership) error {
	row := groupModelFromEntity(group)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, founder := range founders {
			member := membershipModelFromEntity(founder)
			member.GroupID = row.GroupID
			if err := tx.Clauses(membershipUpsert).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("stewardship_group_create_failed", err, "group_id", row.GroupID)
	}
	return nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID string) (entities.Group, error) {
	var row groupModel
	err := r.db.WithContext(ctx).
		Where("group_id = ?", strings.TrimSpace(groupID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Group{}, domainerrors.ErrGroupNotFound
		}
		return entities.Group{}, r.logError("stewardship_group_get_failed", err, "group_id", groupID)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateGroup(ctx context.Context, group entities.Group) error {
	row := groupModelFromEntity(group)
	result := r.db.WithContext(ctx).
		Model(&groupModel{}).
		Where("group_id = ?", row.GroupID).
		Updates(map[string]any{
			"name":                   row.Name,
			"mode":                   row.Mode,
			"min_member_age_days":    row.MinMemberAgeDays,
			"trust_rate_limit_hours": row.TrustRateLimitHours,
			"updated_at":             row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("stewardship_group_update_failed", result.Error, "group_id", row.GroupID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrGroupNotFound
	}
	return nil
}

func (r *Repository) CreateRole(ctx context.Context, role entities.Role) error {
	if _, err := r.GetGroup(ctx, role.GroupID); err != nil {
		return err
	}
	row := roleModelFromEntity(role)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("stewardship_role_create_failed", err, "role_id", row.RoleID, "group_id", row.GroupID)
	}
	return nil
}

func (r *Repository) GetRole(ctx context.Context, roleID string) (entities.Role, error) {
	var row roleModel
	err := r.db.WithContext(ctx).
		Where("role_id = ?", strings.TrimSpace(roleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Role{}, domainerrors.ErrRoleNotFound
		}
		return entities.Role{}, r.logError("stewardship_role_get_failed", err, "role_id", roleID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRolesByGroup(ctx context.Context, groupID string) ([]entities.Role, error) {
	var rows []roleModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", strings.TrimSpace(groupID)).
		Order("created_at ASC, role_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("stewardship_roles_list_failed", err, "group_id", groupID)
	}
	items := make([]entities.Role, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListHolders(ctx context.Context, roleID string) ([]entities.RoleHolder, error) {
	return listHolders(r.db.WithContext(ctx), strings.TrimSpace(roleID))
}

func (r *Repository) ListExpressions(ctx context.Context, roleID string) ([]entities.TrustExpression, error) {
	return listExpressions(r.db.WithContext(ctx), strings.TrimSpace(roleID))
}

func (r *Repository) ListCandidacies(ctx context.Context, roleID string) ([]entities.Candidacy, error) {
	return listCandidacies(r.db.WithContext(ctx), strings.TrimSpace(roleID))
}

func (r *Repository) ListHeldResponsibilities(ctx context.Context, userID string, groupID string) ([]string, error) {
	var rows []roleModel
	err := r.db.WithContext(ctx).
		Model(&roleModel{}).
		Joins("JOIN stewardship_role_holders h ON h.role_id = stewardship_roles.role_id").
		Where("h.user_id = ? AND stewardship_roles.group_id = ?", strings.TrimSpace(userID), strings.TrimSpace(groupID)).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("stewardship_held_responsibilities_failed", err, "user_id", userID, "group_id", groupID)
	}
	var items []string
	for _, row := range rows {
		items = append(items, row.Responsibilities...)
	}
	return entities.NormalizeResponsibilities(items), nil
}

// WithinRoleTx opens a transaction, locks the role row and hands fn a RoleTx
// bound to that transaction. A lock wait longer than lockTimeout surfaces as
// ErrRoleBusy.
func (r *Repository) WithinRoleTx(ctx context.Context, roleID string, fn func(ctx context.Context, tx ports.RoleTx) error) error {
	roleID = strings.TrimSpace(roleID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == dialectPostgres {
			if r.lockTimeout > 0 {
				if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())).Error; err != nil {
					return err
				}
			}
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var row roleModel
		if err := query.Where("role_id = ?", roleID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRoleNotFound
			}
			return err
		}
		role := row.toEntity()
		return fn(ctx, &roleTx{db: tx, role: role})
	})
	switch {
	case err == nil:
		return nil
	case isLockNotAvailable(err):
		return domainerrors.ErrRoleBusy
	case errors.Is(err, context.DeadlineExceeded):
		return domainerrors.ErrRoleBusy
	case domainerrors.IsDomain(err), errors.Is(err, context.Canceled):
		return err
	default:
		return r.logError("stewardship_role_tx_failed", err, "role_id", roleID)
	}
}

func (r *Repository) GetMembership(ctx context.Context, groupID string, userID string) (entities.Membership, bool, error) {
	var row membershipModel
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", strings.TrimSpace(groupID), strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Membership{}, false, nil
		}
		return entities.Membership{}, false, r.logError("stewardship_membership_get_failed", err, "group_id", groupID, "user_id", userID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpsertMembership(ctx context.Context, membership entities.Membership) error {
	row := membershipModelFromEntity(membership)
	if err := r.db.WithContext(ctx).Clauses(membershipUpsert).Create(&row).Error; err != nil {
		return r.logError("stewardship_membership_upsert_failed", err, "group_id", row.GroupID, "user_id", row.UserID)
	}
	return nil
}

func (r *Repository) DeleteMembership(ctx context.Context, groupID string, userID string) error {
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", strings.TrimSpace(groupID), strings.TrimSpace(userID)).
		Delete(&membershipModel{}).
		Error
	if err != nil {
		return r.logError("stewardship_membership_delete_failed", err, "group_id", groupID, "user_id", userID)
	}
	return nil
}

func (r *Repository) ListExternalResponsibilities(ctx context.Context, userID string, groupID string) ([]string, error) {
	var items []string
	err := r.db.WithContext(ctx).
		Model(&externalResponsibilityModel{}).
		Where("group_id = ? AND user_id = ?", strings.TrimSpace(groupID), strings.TrimSpace(userID)).
		Order("responsibility ASC").
		Pluck("responsibility", &items).
		Error
	if err != nil {
		return nil, r.logError("stewardship_external_responsibilities_failed", err, "group_id", groupID, "user_id", userID)
	}
	return items, nil
}

func (r *Repository) ReplaceExternalResponsibilities(ctx context.Context, userID string, groupID string, responsibilities []string) error {
	groupID = strings.TrimSpace(groupID)
	userID = strings.TrimSpace(userID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&externalResponsibilityModel{}).
			Error; err != nil {
			return err
		}
		items := entities.NormalizeResponsibilities(responsibilities)
		if len(items) == 0 {
			return nil
		}
		rows := make([]externalResponsibilityModel, 0, len(items))
		for _, item := range items {
			rows = append(rows, externalResponsibilityModel{GroupID: groupID, UserID: userID, Responsibility: item})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return r.logError("stewardship_external_responsibilities_replace_failed", err, "group_id", groupID, "user_id", userID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC, outbox_id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("stewardship_outbox_list_failed", err)
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	publishedAt = publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ? AND status = ?", strings.TrimSpace(outboxID), outboxStatusPending).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &publishedAt,
		})
	if result.Error != nil {
		return r.logError("stewardship_outbox_mark_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "group-governance/role-stewardship",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("stewardship repository operation failed", fields...)
	return err
}

// roleTx is the RoleTx view of one open gorm transaction.
type roleTx struct {
	db   *gorm.DB
	role entities.Role
}

func (t *roleTx) Role(context.Context) (entities.Role, error) {
	role := t.role
	role.Responsibilities = append([]string(nil), role.Responsibilities...)
	return role, nil
}

func (t *roleTx) SaveRole(ctx context.Context, role entities.Role) error {
	if role.RoleID != t.role.RoleID {
		return domainerrors.ErrConflict
	}
	row := roleModelFromEntity(role)
	err := t.db.WithContext(ctx).
		Model(&roleModel{}).
		Where("role_id = ?", row.RoleID).
		Updates(map[string]any{
			"name":               row.Name,
			"responsibilities":   row.Responsibilities,
			"assignment":         row.Assignment,
			"status":             row.Status,
			"threshold_current":  row.ThresholdCurrent,
			"threshold_required": row.ThresholdRequired,
			"bootstrap":          row.Bootstrap,
			"capacity":           row.Capacity,
			"updated_at":         row.UpdatedAt,
		}).
		Error
	if err != nil {
		return err
	}
	t.role = role
	return nil
}

func (t *roleTx) ListHolders(ctx context.Context) ([]entities.RoleHolder, error) {
	return listHolders(t.db.WithContext(ctx), t.role.RoleID)
}

func (t *roleTx) AddHolder(ctx context.Context, holder entities.RoleHolder) error {
	row := roleHolderModel{
		RoleID:     t.role.RoleID,
		UserID:     strings.TrimSpace(holder.UserID),
		GroupID:    t.role.GroupID,
		GrantedAt:  holder.GrantedAt.UTC(),
		GrantedVia: string(holder.GrantedVia),
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyHolder
		}
		return err
	}
	return nil
}

func (t *roleTx) RemoveHolder(ctx context.Context, userID string) (bool, error) {
	result := t.db.WithContext(ctx).
		Where("role_id = ? AND user_id = ?", t.role.RoleID, strings.TrimSpace(userID)).
		Delete(&roleHolderModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *roleTx) GetExpression(ctx context.Context, trustorID string, trusteeID string) (entities.TrustExpression, bool, error) {
	var row trustExpressionModel
	err := t.db.WithContext(ctx).
		Where("role_id = ? AND trustor_id = ? AND trustee_id = ?", t.role.RoleID, trustorID, trusteeID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.TrustExpression{}, false, nil
		}
		return entities.TrustExpression{}, false, err
	}
	return row.toEntity(), true, nil
}

// PutExpression upserts on (role_id, trustor_id, trustee_id); created_at of
// an existing row is preserved.
func (t *roleTx) PutExpression(ctx context.Context, expression entities.TrustExpression) error {
	row := trustExpressionModel{
		RoleID:    t.role.RoleID,
		TrustorID: expression.TrustorID,
		TrusteeID: expression.TrusteeID,
		GroupID:   t.role.GroupID,
		Weight:    expression.Weight,
		CreatedAt: expression.CreatedAt.UTC(),
		UpdatedAt: expression.UpdatedAt.UTC(),
	}
	return t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}, {Name: "trustor_id"}, {Name: "trustee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weight", "updated_at"}),
		}).
		Create(&row).
		Error
}

func (t *roleTx) RemoveExpression(ctx context.Context, trustorID string, trusteeID string) (bool, error) {
	result := t.db.WithContext(ctx).
		Where("role_id = ? AND trustor_id = ? AND trustee_id = ?", t.role.RoleID, trustorID, trusteeID).
		Delete(&trustExpressionModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *roleTx) ListExpressions(ctx context.Context) ([]entities.TrustExpression, error) {
	return listExpressions(t.db.WithContext(ctx), t.role.RoleID)
}

func (t *roleTx) DeclareCandidacy(ctx context.Context, candidacy entities.Candidacy) (bool, error) {
	row := candidacyModel{
		RoleID:      t.role.RoleID,
		UserID:      strings.TrimSpace(candidacy.UserID),
		NominatedBy: strings.TrimSpace(candidacy.NominatedBy),
		DeclaredAt:  candidacy.DeclaredAt.UTC(),
	}
	result := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *roleTx) WithdrawCandidacy(ctx context.Context, userID string) (bool, error) {
	result := t.db.WithContext(ctx).
		Where("role_id = ? AND user_id = ?", t.role.RoleID, strings.TrimSpace(userID)).
		Delete(&candidacyModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *roleTx) ListCandidacies(ctx context.Context) ([]entities.Candidacy, error) {
	return listCandidacies(t.db.WithContext(ctx), t.role.RoleID)
}

func (t *roleTx) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return t.db.WithContext(ctx).Create(&row).Error
}

func listHolders(db *gorm.DB, roleID string) ([]entities.RoleHolder, error) {
	var rows []roleHolderModel
	if err := db.Where("role_id = ?", roleID).
		Order("granted_at ASC, user_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.RoleHolder, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.RoleHolder{
			RoleID:     row.RoleID,
			UserID:     row.UserID,
			GrantedAt:  row.GrantedAt.UTC(),
			GrantedVia: entities.GrantSource(row.GrantedVia),
		})
	}
	return items, nil
}

func listExpressions(db *gorm.DB, roleID string) ([]entities.TrustExpression, error) {
	var rows []trustExpressionModel
	if err := db.Where("role_id = ?", roleID).
		Order("created_at ASC, trustee_id ASC, trustor_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.TrustExpression, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func listCandidacies(db *gorm.DB, roleID string) ([]entities.Candidacy, error) {
	var rows []candidacyModel
	if err := db.Where("role_id = ?", roleID).
		Order("declared_at ASC, user_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Candidacy, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Candidacy{
			RoleID:      row.RoleID,
			UserID:      row.UserID,
			NominatedBy: row.NominatedBy,
			DeclaredAt:  row.DeclaredAt.UTC(),
		})
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isLockNotAvailable matches postgres lock_timeout expiry (55P03).
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}

type groupModel struct {
	GroupID             string    `gorm:"column:group_id;primaryKey"`
	Name                string    `gorm:"column:name"`
	Mode                string    `gorm:"column:mode"`
	MinMemberAgeDays    int       `gorm:"column:min_member_age_days"`
	TrustRateLimitHours int       `gorm:"column:trust_rate_limit_hours"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (groupModel) TableName() string {
	return "stewardship_groups"
}

func groupModelFromEntity(item entities.Group) groupModel {
	return groupModel{
		GroupID:             strings.TrimSpace(item.GroupID),
		Name:                strings.TrimSpace(item.Name),
		Mode:                string(item.Mode),
		MinMemberAgeDays:    item.Settings.MinMemberAgeDays,
		TrustRateLimitHours: item.Settings.TrustRateLimitHours,
		CreatedAt:           item.CreatedAt.UTC(),
		UpdatedAt:           item.UpdatedAt.UTC(),
	}
}

func (m groupModel) toEntity() entities.Group {
	return entities.Group{
		GroupID: m.GroupID,
		Name:    m.Name,
		Mode:    entities.GroupMode(m.Mode),
		Settings: entities.GroupSettings{
			MinMemberAgeDays:    m.MinMemberAgeDays,
			TrustRateLimitHours: m.TrustRateLimitHours,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type roleModel struct {
	RoleID            string                      `gorm:"column:role_id;primaryKey"`
	GroupID           string                      `gorm:"column:group_id"`
	Name              string                      `gorm:"column:name"`
	Responsibilities  datatypes.JSONSlice[string] `gorm:"column:responsibilities"`
	Assignment        string                      `gorm:"column:assignment"`
	Status            string                      `gorm:"column:status"`
	ThresholdCurrent  int                         `gorm:"column:threshold_current"`
	ThresholdRequired int                         `gorm:"column:threshold_required"`
	Bootstrap         bool                        `gorm:"column:bootstrap"`
	Capacity          int                         `gorm:"column:capacity"`
	CreatedAt         time.Time                   `gorm:"column:created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at"`
}

func (roleModel) TableName() string {
	return "stewardship_roles"
}

func roleModelFromEntity(item entities.Role) roleModel {
	responsibilities := item.Responsibilities
	if responsibilities == nil {
		responsibilities = []string{}
	}
	return roleModel{
		RoleID:            strings.TrimSpace(item.RoleID),
		GroupID:           strings.TrimSpace(item.GroupID),
		Name:              strings.TrimSpace(item.Name),
		Responsibilities:  datatypes.NewJSONSlice(responsibilities),
		Assignment:        string(item.Assignment),
		Status:            string(item.Status),
		ThresholdCurrent:  item.ThresholdCurrent,
		ThresholdRequired: item.ThresholdRequired,
		Bootstrap:         item.Bootstrap,
		Capacity:          item.Capacity,
		CreatedAt:         item.CreatedAt.UTC(),
		UpdatedAt:         item.UpdatedAt.UTC(),
	}
}

func (m roleModel) toEntity() entities.Role {
	return entities.Role{
		RoleID:            m.RoleID,
		GroupID:           m.GroupID,
		Name:              m.Name,
		Responsibilities:  []string(m.Responsibilities),
		Assignment:        entities.AssignmentMode(m.Assignment),
		Status:            entities.RoleStatus(m.Status),
		ThresholdCurrent:  m.ThresholdCurrent,
		ThresholdRequired: m.ThresholdRequired,
		Bootstrap:         m.Bootstrap,
		Capacity:          m.Capacity,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type roleHolderModel struct {
	RoleID     string    `gorm:"column:role_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;primaryKey"`
	GroupID    string    `gorm:"column:group_id"`
	GrantedAt  time.Time `gorm:"column:granted_at"`
	GrantedVia string    `gorm:"column:granted_via"`
}

func (roleHolderModel) TableName() string {
	return "stewardship_role_holders"
}

type trustExpressionModel struct {
	RoleID    string    `gorm:"column:role_id;primaryKey"`
	TrustorID string    `gorm:"column:trustor_id;primaryKey"`
	TrusteeID string    `gorm:"column:trustee_id;primaryKey"`
	GroupID   string    `gorm:"column:group_id"`
	Weight    int       `gorm:"column:weight"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (trustExpressionModel) TableName() string {
	return "stewardship_trust_expressions"
}

func (m trustExpressionModel) toEntity() entities.TrustExpression {
	return entities.TrustExpression{
		GroupID:   m.GroupID,
		RoleID:    m.RoleID,
		TrustorID: m.TrustorID,
		TrusteeID: m.TrusteeID,
		Weight:    m.Weight,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type candidacyModel struct {
	RoleID      string    `gorm:"column:role_id;primaryKey"`
	UserID      string    `gorm:"column:user_id;primaryKey"`
	NominatedBy string    `gorm:"column:nominated_by"`
	DeclaredAt  time.Time `gorm:"column:declared_at"`
}

func (candidacyModel) TableName() string {
	return "stewardship_candidacies"
}

type membershipModel struct {
	GroupID  string    `gorm:"column:group_id;primaryKey"`
	UserID   string    `gorm:"column:user_id;primaryKey"`
	JoinedAt time.Time `gorm:"column:joined_at"`
	IsAdmin  bool      `gorm:"column:is_admin"`
}

func (membershipModel) TableName() string {
	return "stewardship_group_memberships"
}

var membershipUpsert = clause.OnConflict{
	Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"joined_at", "is_admin"}),
}

func membershipModelFromEntity(item entities.Membership) membershipModel {
	return membershipModel{
		GroupID:  strings.TrimSpace(item.GroupID),
		UserID:   strings.TrimSpace(item.UserID),
		JoinedAt: item.JoinedAt.UTC(),
		IsAdmin:  item.IsAdmin,
	}
}

func (m membershipModel) toEntity() entities.Membership {
	return entities.Membership{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt.UTC(),
		IsAdmin:  m.IsAdmin,
	}
}

type externalResponsibilityModel struct {
	GroupID        string `gorm:"column:group_id;primaryKey"`
	UserID         string `gorm:"column:user_id;primaryKey"`
	Responsibility string `gorm:"column:responsibility;primaryKey"`
}

func (externalResponsibilityModel) TableName() string {
	return "stewardship_external_responsibilities"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "stewardship_outbox"
}
