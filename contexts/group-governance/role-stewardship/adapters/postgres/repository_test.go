package postgresadapter

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/ports"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

func openTestRepository(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stewardship.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepository(db, time.Second, nil)
}

var testNow = time.Date(2026, time.April, 4, 10, 0, 0, 0, time.UTC)

func seedRole(t *testing.T, repo *Repository) entities.Role {
	t.Helper()
	ctx := context.Background()
	if err := repo.CreateGroup(ctx, entities.Group{
		GroupID:   "g-1",
		Name:      "allotment",
		Mode:      entities.GroupModeLeaderless,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	role := entities.Role{
		RoleID:            "r-1",
		GroupID:           "g-1",
		Name:              "treasurer",
		Responsibilities:  []string{"Finances", "Reporting"},
		Assignment:        entities.AssignmentTrustActivated,
		Status:            entities.RoleStatusVacant,
		ThresholdRequired: 50,
		Capacity:          1,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
	if err := repo.CreateRole(ctx, role); err != nil {
		t.Fatalf("create role: %v", err)
	}
	return role
}

func TestRepositoryGroupsAndRoles(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	seedRole(t, repo)

	if err := repo.CreateGroup(ctx, entities.Group{GroupID: "g-1", Name: "dup", Mode: entities.GroupModeLeaderless, CreatedAt: testNow, UpdatedAt: testNow}); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate group, got %v", err)
	}
	if err := repo.CreateRole(ctx, entities.Role{RoleID: "r-x", GroupID: "missing", Name: "x", ThresholdRequired: 50, Capacity: 1}); !errors.Is(err, domainerrors.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	role, err := repo.GetRole(ctx, "r-1")
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if len(role.Responsibilities) != 2 || role.Responsibilities[0] != "Finances" {
		t.Fatalf("unexpected responsibilities: %v", role.Responsibilities)
	}
	if _, err := repo.GetRole(ctx, "nope"); !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	group, err := repo.GetGroup(ctx, "g-1")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	group.Settings.TrustRateLimitHours = 24
	if err := repo.UpdateGroup(ctx, group); err != nil {
		t.Fatalf("update group: %v", err)
	}
	group, _ = repo.GetGroup(ctx, "g-1")
	if group.Settings.TrustRateLimitHours != 24 {
		t.Fatalf("expected updated settings, got %+v", group.Settings)
	}

	roles, err := repo.ListRolesByGroup(ctx, "g-1")
	if err != nil || len(roles) != 1 {
		t.Fatalf("expected one role, got %d (%v)", len(roles), err)
	}
}

func TestRepositoryRoleTxCommitsLedger(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	seedRole(t, repo)

	err := repo.WithinRoleTx(ctx, "r-1", func(ctx context.Context, tx ports.RoleTx) error {
		created, err := tx.DeclareCandidacy(ctx, entities.Candidacy{UserID: "u-2", DeclaredAt: testNow})
		if err != nil || !created {
			t.Fatalf("declare: created=%v err=%v", created, err)
		}
		again, err := tx.DeclareCandidacy(ctx, entities.Candidacy{UserID: "u-2", DeclaredAt: testNow})
		if err != nil || again {
			t.Fatalf("expected duplicate declaration to be a no-op, got %v %v", again, err)
		}
		if err := tx.PutExpression(ctx, entities.TrustExpression{TrustorID: "u-1", TrusteeID: "u-2", Weight: 40, CreatedAt: testNow, UpdatedAt: testNow}); err != nil {
			return err
		}
		if err := tx.PutExpression(ctx, entities.TrustExpression{TrustorID: "u-1", TrusteeID: "u-2", Weight: 70, CreatedAt: testNow.Add(time.Hour), UpdatedAt: testNow.Add(time.Hour)}); err != nil {
			return err
		}
		if err := tx.AddHolder(ctx, entities.RoleHolder{UserID: "u-2", GrantedAt: testNow, GrantedVia: entities.GrantedViaTrust}); err != nil {
			return err
		}
		if err := tx.AddHolder(ctx, entities.RoleHolder{UserID: "u-2", GrantedAt: testNow, GrantedVia: entities.GrantedViaTrust}); !errors.Is(err, domainerrors.ErrAlreadyHolder) {
			t.Fatalf("expected ErrAlreadyHolder, got %v", err)
		}
		role, err := tx.Role(ctx)
		if err != nil {
			return err
		}
		role.Status = entities.RoleStatusActive
		role.ThresholdCurrent = 0
		if err := tx.SaveRole(ctx, role); err != nil {
			return err
		}
		return tx.AppendOutbox(ctx, contractsv1.Envelope{
			EventID:      "evt-1",
			EventType:    contractsv1.EventRoleActivated,
			OccurredAt:   testNow,
			PartitionKey: "r-1",
			Data:         []byte(`{"user_id":"u-2"}`),
		})
	})
	if err != nil {
		t.Fatalf("role tx: %v", err)
	}

	expressions, err := repo.ListExpressions(ctx, "r-1")
	if err != nil || len(expressions) != 1 {
		t.Fatalf("expected one expression, got %d (%v)", len(expressions), err)
	}
	if expressions[0].Weight != 70 || !expressions[0].CreatedAt.Equal(testNow) {
		t.Fatalf("expected upserted weight with original created_at, got %+v", expressions[0])
	}
	holders, _ := repo.ListHolders(ctx, "r-1")
	if len(holders) != 1 || holders[0].GrantedVia != entities.GrantedViaTrust {
		t.Fatalf("unexpected holders: %+v", holders)
	}
	role, _ := repo.GetRole(ctx, "r-1")
	if role.Status != entities.RoleStatusActive {
		t.Fatalf("expected active role, got %s", role.Status)
	}
	held, err := repo.ListHeldResponsibilities(ctx, "u-2", "g-1")
	if err != nil || len(held) != 2 {
		t.Fatalf("expected held responsibilities, got %v (%v)", held, err)
	}

	pending, err := repo.ListPendingOutbox(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending outbox row, got %d (%v)", len(pending), err)
	}
	if err := repo.MarkOutboxPublished(ctx, pending[0].OutboxID, testNow); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	if err := repo.MarkOutboxPublished(ctx, pending[0].OutboxID, testNow); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict on second publish, got %v", err)
	}
	pending, _ = repo.ListPendingOutbox(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox, got %d", len(pending))
	}
}

func TestRepositoryCreateGroupStoresFounders(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	group := entities.Group{GroupID: "g-2", Name: "orchard", Mode: entities.GroupModeLeaderless, CreatedAt: testNow, UpdatedAt: testNow}
	founder := entities.Membership{GroupID: "g-2", UserID: "founder", JoinedAt: testNow, IsAdmin: true}
	if err := repo.CreateGroup(ctx, group, founder); err != nil {
		t.Fatalf("create group: %v", err)
	}
	membership, ok, err := repo.GetMembership(ctx, "g-2", "founder")
	if err != nil || !ok || !membership.IsAdmin {
		t.Fatalf("expected admin founder, got %+v ok=%v err=%v", membership, ok, err)
	}

	// A rejected duplicate must not grant its caller membership.
	intruder := entities.Membership{GroupID: "g-2", UserID: "intruder", JoinedAt: testNow, IsAdmin: true}
	if err := repo.CreateGroup(ctx, group, intruder); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, ok, _ := repo.GetMembership(ctx, "g-2", "intruder"); ok {
		t.Fatalf("expected duplicate registration to roll back its founder")
	}
}

func TestRepositoryCandidacyKeepsNominator(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	seedRole(t, repo)

	err := repo.WithinRoleTx(ctx, "r-1", func(ctx context.Context, tx ports.RoleTx) error {
		_, err := tx.DeclareCandidacy(ctx, entities.Candidacy{UserID: "u-3", NominatedBy: "u-1", DeclaredAt: testNow})
		return err
	})
	if err != nil {
		t.Fatalf("role tx: %v", err)
	}
	candidacies, err := repo.ListCandidacies(ctx, "r-1")
	if err != nil || len(candidacies) != 1 {
		t.Fatalf("expected one candidacy, got %d (%v)", len(candidacies), err)
	}
	if candidacies[0].NominatedBy != "u-1" {
		t.Fatalf("expected nominator u-1, got %+v", candidacies[0])
	}
}

func TestRepositoryRoleTxRollsBackOnError(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	seedRole(t, repo)

	boom := errors.New("boom")
	err := repo.WithinRoleTx(ctx, "r-1", func(ctx context.Context, tx ports.RoleTx) error {
		if err := tx.AddHolder(ctx, entities.RoleHolder{UserID: "u-9", GrantedAt: testNow, GrantedVia: entities.GrantedViaAdmin}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	holders, _ := repo.ListHolders(ctx, "r-1")
	if len(holders) != 0 {
		t.Fatalf("expected rollback, got %+v", holders)
	}

	err = repo.WithinRoleTx(ctx, "r-1", func(context.Context, ports.RoleTx) error {
		return domainerrors.ErrRoleFull
	})
	if !errors.Is(err, domainerrors.ErrRoleFull) {
		t.Fatalf("expected domain error to pass through, got %v", err)
	}
	if err := repo.WithinRoleTx(ctx, "missing", func(context.Context, ports.RoleTx) error { return nil }); !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestRepositoryMembershipProjection(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()

	if err := repo.UpsertMembership(ctx, entities.Membership{GroupID: "g-1", UserID: "u-1", JoinedAt: testNow}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertMembership(ctx, entities.Membership{GroupID: "g-1", UserID: "u-1", JoinedAt: testNow, IsAdmin: true}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	membership, ok, err := repo.GetMembership(ctx, "g-1", "u-1")
	if err != nil || !ok || !membership.IsAdmin {
		t.Fatalf("expected admin membership, got %+v ok=%v err=%v", membership, ok, err)
	}

	if err := repo.ReplaceExternalResponsibilities(ctx, "u-1", "g-1", []string{"Outreach", "Events", "Events"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.ReplaceExternalResponsibilities(ctx, "u-1", "g-1", []string{"Events"}); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	items, err := repo.ListExternalResponsibilities(ctx, "u-1", "g-1")
	if err != nil || len(items) != 1 || items[0] != "Events" {
		t.Fatalf("expected replaced responsibilities, got %v (%v)", items, err)
	}

	if err := repo.DeleteMembership(ctx, "g-1", "u-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.GetMembership(ctx, "g-1", "u-1"); ok {
		t.Fatalf("expected membership removed")
	}
}
