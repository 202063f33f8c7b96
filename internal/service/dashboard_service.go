package service

import (
	"context"
	"time"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultMovementDays = 7
	maxMovementDays     = 365
	expiryWindow        = 30 * 24 * time.Hour
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, actor Actor) (*repository.DashboardStats, error)
}

type dashboardService struct {
	logRepo repository.InventoryLogRepository
	now     func() time.Time
}

func NewDashboardService(logRepo repository.InventoryLogRepository) DashboardService {
	return &dashboardService{logRepo: logRepo, now: time.Now}
}

// MovementPeriod clamps a requested chart period into [1, 365] days, using 7 for unset values.
func MovementPeriod(days int) int {
	if days <= 0 {
		return defaultMovementDays
	}
	if days > maxMovementDays {
		return maxMovementDays
	}
	return days
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	days = MovementPeriod(days)
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.logRepo.GetStockMovement(ctx, startDate, endDate)
}

// GetDashboardStats is scoped to the actor's laboratory except for superadmins.
func (s *dashboardService) GetDashboardStats(ctx context.Context, actor Actor) (*repository.DashboardStats, error) {
	labID := actor.LaboratoryID
	if actor.RoleCode == model.RoleSuperAdmin {
		labID = uuid.Nil
	}
	return s.logRepo.GetDashboardStats(ctx, labID, s.now().Add(expiryWindow))
}
