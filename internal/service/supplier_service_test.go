package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"

	"github.com/google/uuid"
)

func TestSupplierListsFilteredAndUnfiltered(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tech, _ := f.addUser("tech@lab.test", model.RoleUser, model.UserActive)
	_, admin := f.addUser("admin@lab.test", model.RoleAdmin, model.UserActive)
	svc := NewSupplierService(f.suppliers, f.users, f.notifier)

	active, err := svc.CreateSupplier(ctx, admin, &SupplierRequest{CompanyName: "Acme Scientific"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	inactive, _ := svc.CreateSupplier(ctx, admin, &SupplierRequest{CompanyName: "Old Labs"})
	if _, err := svc.UpdateSupplier(ctx, admin, inactive.ID, &UpdateSupplierRequest{Status: strPtr("Inactive"), Version: 1}); err != nil {
		t.Fatalf("Expected deactivation to succeed, got %v", err)
	}
	f.suppliers.Create(ctx, &model.Supplier{LaboratoryID: f.labs.labs[1].ID, CompanyName: "Elsewhere", Status: model.SupplierActive})

	all, _ := svc.ListForUser(ctx, tech.ID, false)
	if len(all) != 2 {
		t.Errorf("Expected 2 suppliers in the user's laboratory, got %d", len(all))
	}
	filtered, _ := svc.ListForUser(ctx, tech.ID, true)
	if len(filtered) != 1 || filtered[0].ID != active.ID {
		t.Errorf("Expected only the active supplier, got %+v", filtered)
	}

	if _, err := svc.ListForUser(ctx, uuid.New(), true); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateSupplierVersionAndScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, admin := f.addUser("admin@lab.test", model.RoleAdmin, model.UserActive)
	svc := NewSupplierService(f.suppliers, f.users, f.notifier)

	s, _ := svc.CreateSupplier(ctx, admin, &SupplierRequest{CompanyName: "Acme"})
	if _, err := svc.UpdateSupplier(ctx, admin, s.ID, &UpdateSupplierRequest{CompanyName: strPtr("Acme Inc"), Version: 1}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.UpdateSupplier(ctx, admin, s.ID, &UpdateSupplierRequest{CompanyName: strPtr("Acme Ltd"), Version: 1}); !errors.Is(err, repository.ErrStaleVersion) {
		t.Errorf("Expected ErrStaleVersion, got %v", err)
	}

	foreign := Actor{ID: uuid.New(), RoleCode: model.RoleAdmin, LaboratoryID: f.labs.labs[2].ID}
	if _, err := svc.UpdateSupplier(ctx, foreign, s.ID, &UpdateSupplierRequest{CompanyName: strPtr("x"), Version: 2}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden across laboratories, got %v", err)
	}
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, admin := f.addUser("admin@lab.test", model.RoleAdmin, model.UserActive)
	svc := NewCategoryService(f.categories, f.labs)

	if _, err := svc.CreateCategory(ctx, admin, &CategoryRequest{ShortName: "Radioactive"}); err == nil {
		t.Error("Expected unknown category name to fail validation")
	}
	if _, err := svc.CreateCategory(ctx, admin, &CategoryRequest{ShortName: model.CategoryReagent, Subcategory1: "Stains"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	cats, _ := svc.ListCategories(ctx)
	if len(cats) != len(model.DefaultCategories)+1 {
		t.Errorf("Expected %d categories, got %d", len(model.DefaultCategories)+1, len(cats))
	}
	labs, _ := svc.ListLaboratories(ctx)
	if len(labs) != 3 {
		t.Errorf("Expected 3 laboratories, got %d", len(labs))
	}
}

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := NewDashboardService(f.logs).(*dashboardService)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	tests := []struct {
		days, want int
	}{
		{0, defaultMovementDays},
		{30, 30},
		{1000, maxMovementDays},
	}
	for _, tt := range tests {
		svc.GetStockMovement(ctx, tt.days)
		if got := int(f.logs.gotEnd.Sub(f.logs.gotStart).Hours() / 24); got != tt.want {
			t.Errorf("days=%d: expected a %d day window, got %d", tt.days, tt.want, got)
		}
	}

	lab := uuid.New()
	svc.GetDashboardStats(ctx, Actor{RoleCode: model.RoleAdmin, LaboratoryID: lab})
	if f.logs.gotLab != lab {
		t.Error("Expected admin stats to be scoped to their laboratory")
	}
	svc.GetDashboardStats(ctx, Actor{RoleCode: model.RoleSuperAdmin, LaboratoryID: lab})
	if f.logs.gotLab != uuid.Nil {
		t.Error("Expected superadmin stats to cover every laboratory")
	}
}
