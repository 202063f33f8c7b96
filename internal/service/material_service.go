package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/events"
	"lab-inventory/pkg/logger"
	"lab-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MaterialService interface {
	ListMaterials(ctx context.Context, query repository.MaterialFilter) ([]model.Material, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error)
	CreateMaterial(ctx context.Context, actor Actor, req *MaterialRequest) (*model.Material, error)
	UpdateMaterial(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateMaterialRequest) (*model.Material, error)
	AdjustStock(ctx context.Context, actor Actor, req *AdjustmentRequest) (*model.InventoryLog, error)
	ListLogs(ctx context.Context, filter repository.LogFilter) ([]model.InventoryLog, error)
}

type MaterialRequest struct {
	LaboratoryID      uuid.UUID       `json:"laboratoryId"`
	CategoryID        uuid.UUID       `json:"categoryId" validate:"uuid_required"`
	SupplierID        *uuid.UUID      `json:"supplierId"`
	ItemCode          string          `json:"itemCode" validate:"max=64"`
	ItemName          string          `json:"itemName" validate:"required,max=255"`
	Description       string          `json:"description"`
	Unit              string          `json:"unit" validate:"max=32"`
	Location          string          `json:"location"`
	ExpiryDate        *time.Time      `json:"expiryDate"`
	Cost              decimal.Decimal `json:"cost"`
	QuantityAvailable int             `json:"quantityAvailable" validate:"min=0"`
	ReorderThreshold  int             `json:"reorderThreshold" validate:"min=0"`
	MaxThreshold      int             `json:"maxThreshold" validate:"min=0"`
	LotNo             string          `json:"lotNo"`
	QtyPerContainer   int             `json:"qtyPerContainer" validate:"min=0"`
	TotalNoContainers int             `json:"totalNoContainers" validate:"min=0"`
	Notes             string          `json:"notes"`
}

// UpdateMaterialRequest is a partial patch guarded by Version.
type UpdateMaterialRequest struct {
	CategoryID        *uuid.UUID       `json:"categoryId"`
	SupplierID        *uuid.UUID       `json:"supplierId"`
	ItemCode          *string          `json:"itemCode" validate:"omitempty,max=64"`
	ItemName          *string          `json:"itemName" validate:"omitempty,min=1,max=255"`
	Description       *string          `json:"description"`
	Unit              *string          `json:"unit" validate:"omitempty,max=32"`
	Location          *string          `json:"location"`
	ExpiryDate        *time.Time       `json:"expiryDate"`
	Cost              *decimal.Decimal `json:"cost"`
	QuantityAvailable *int             `json:"quantityAvailable" validate:"omitempty,min=0"`
	ReorderThreshold  *int             `json:"reorderThreshold" validate:"omitempty,min=0"`
	MaxThreshold      *int             `json:"maxThreshold" validate:"omitempty,min=0"`
	LotNo             *string          `json:"lotNo"`
	QtyPerContainer   *int             `json:"qtyPerContainer" validate:"omitempty,min=0"`
	TotalNoContainers *int             `json:"totalNoContainers" validate:"omitempty,min=0"`
	Notes             *string          `json:"notes"`
	Status            *string          `json:"status" validate:"omitempty,oneof=Active Deleted"`
	Remarks           string           `json:"remarks"`
	Version           int              `json:"version" validate:"required,min=1"`
}

// AdjustmentRequest is a manual signed stock correction.
type AdjustmentRequest struct {
	MaterialID uuid.UUID `json:"materialId" validate:"uuid_required"`
	Quantity   int       `json:"quantity" validate:"required"`
	Remarks    string    `json:"remarks" validate:"required"`
}

type materialService struct {
	materialRepo repository.MaterialRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	labRepo      repository.LaboratoryRepository
	stockRepo    repository.StockRepository
	logRepo      repository.InventoryLogRepository
	notifier     Notifier
}

func NewMaterialService(
	materialRepo repository.MaterialRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	labRepo repository.LaboratoryRepository,
	stockRepo repository.StockRepository,
	logRepo repository.InventoryLogRepository,
	notifier Notifier,
) MaterialService {
	return &materialService{
		materialRepo: materialRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		labRepo:      labRepo,
		stockRepo:    stockRepo,
		logRepo:      logRepo,
		notifier:     notifierOrNoop(notifier),
	}
}

func (s *materialService) ListMaterials(ctx context.Context, query repository.MaterialFilter) ([]model.Material, error) {
	return s.materialRepo.FindAll(ctx, query)
}

func (s *materialService) GetMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return material, nil
}

func (s *materialService) CreateMaterial(ctx context.Context, actor Actor, req *MaterialRequest) (*model.Material, error) {
	if req.LaboratoryID == uuid.Nil {
		req.LaboratoryID = actor.LaboratoryID
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost must not be negative", ErrBadRequest)
	}
	if err := s.checkReferences(ctx, req.LaboratoryID, &req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}

	material := &model.Material{
		LaboratoryID:      req.LaboratoryID,
		CategoryID:        req.CategoryID,
		SupplierID:        req.SupplierID,
		ItemCode:          strings.TrimSpace(req.ItemCode),
		ItemName:          strings.TrimSpace(req.ItemName),
		Description:       req.Description,
		Unit:              req.Unit,
		Location:          req.Location,
		ExpiryDate:        req.ExpiryDate,
		Cost:              req.Cost,
		QuantityAvailable: req.QuantityAvailable,
		ReorderThreshold:  req.ReorderThreshold,
		MaxThreshold:      req.MaxThreshold,
		LotNo:             req.LotNo,
		QtyPerContainer:   req.QtyPerContainer,
		TotalNoContainers: req.TotalNoContainers,
		Notes:             req.Notes,
		Status:            model.MaterialActive,
		Version:           1,
	}
	material.CreatedBy = actor.ID.String()
	material.UpdatedBy = actor.ID.String()

	if err := s.materialRepo.Create(ctx, material, repository.Audit{UserID: actor.ID, Remarks: "Initial stock"}); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, events.New(events.TypeStockUpdate, "material_created", material.ID.String(),
		materialPayload(material, material.QuantityAvailable, model.SourceCreate), actor.event()))
	logger.Info(ctx).Str("material_id", material.ID.String()).Msg("Material created")
	return material, nil
}

func (s *materialService) checkReferences(ctx context.Context, labID uuid.UUID, categoryID, supplierID *uuid.UUID) error {
	if labID != uuid.Nil {
		if _, err := s.labRepo.FindByID(ctx, labID); err != nil {
			return notFound(err, fmt.Errorf("%w: laboratory", ErrUnknownReference))
		}
	}
	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			return notFound(err, fmt.Errorf("%w: category", ErrUnknownReference))
		}
	}
	if supplierID != nil && *supplierID != uuid.Nil {
		supplier, err := s.supplierRepo.FindByID(ctx, *supplierID)
		if err != nil {
			return notFound(err, fmt.Errorf("%w: supplier", ErrUnknownReference))
		}
		if labID != uuid.Nil && supplier.LaboratoryID != labID {
			return fmt.Errorf("%w: supplier belongs to another laboratory", ErrBadRequest)
		}
	}
	return nil
}

func (s *materialService) UpdateMaterial(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateMaterialRequest) (*model.Material, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Cost != nil && req.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost must not be negative", ErrBadRequest)
	}

	current, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	if err := s.checkReferences(ctx, current.LaboratoryID, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"updated_by": actor.ID.String()}
	setString := func(col string, v *string) {
		if v != nil {
			changes[col] = strings.TrimSpace(*v)
		}
	}
	setInt := func(col string, v *int) {
		if v != nil {
			changes[col] = *v
		}
	}
	if req.CategoryID != nil {
		changes["category_id"] = *req.CategoryID
	}
	if req.SupplierID != nil {
		if *req.SupplierID == uuid.Nil {
			changes["supplier_id"] = nil
		} else {
			changes["supplier_id"] = *req.SupplierID
		}
	}
	setString("item_code", req.ItemCode)
	setString("item_name", req.ItemName)
	setString("description", req.Description)
	setString("unit", req.Unit)
	setString("location", req.Location)
	setString("lot_no", req.LotNo)
	setString("notes", req.Notes)
	setString("status", req.Status)
	if req.ExpiryDate != nil {
		changes["expiry_date"] = *req.ExpiryDate
	}
	if req.Cost != nil {
		changes["cost"] = *req.Cost
	}
	setInt("quantity_available", req.QuantityAvailable)
	setInt("reorder_threshold", req.ReorderThreshold)
	setInt("max_threshold", req.MaxThreshold)
	setInt("qty_per_container", req.QtyPerContainer)
	setInt("total_no_containers", req.TotalNoContainers)

	updated, err := s.materialRepo.Update(ctx, id, req.Version, changes, repository.Audit{UserID: actor.ID, Remarks: req.Remarks})
	if err != nil {
		return nil, mapWriteError(err)
	}

	delta := updated.QuantityAvailable - current.QuantityAvailable
	s.notifier.Notify(ctx, events.New(events.TypeStockUpdate, "material_updated", updated.ID.String(),
		materialPayload(updated, delta, model.SourceEdit), actor.event()))
	return updated, nil
}

func (s *materialService) AdjustStock(ctx context.Context, actor Actor, req *AdjustmentRequest) (*model.InventoryLog, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	result, err := s.stockRepo.Move(ctx, repository.StockMovement{
		MaterialID: req.MaterialID,
		Delta:      req.Quantity,
		UserID:     actor.ID,
		Source:     model.SourceAdjustment,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	s.notifier.Notify(ctx, events.New(events.TypeStockUpdate, "adjustment", result.Material.ID.String(),
		materialPayload(&result.Material, req.Quantity, model.SourceAdjustment), actor.event()))
	return &result.Log, nil
}

func (s *materialService) ListLogs(ctx context.Context, filter repository.LogFilter) ([]model.InventoryLog, error) {
	return s.logRepo.FindAll(ctx, filter)
}

func materialPayload(m *model.Material, delta int, source string) map[string]interface{} {
	return map[string]interface{}{
		"materialId":        m.ID,
		"itemName":          m.ItemName,
		"laboratoryId":      m.LaboratoryID,
		"quantityAvailable": m.QuantityAvailable,
		"delta":             delta,
		"source":            source,
		"lowStock":          m.IsLowStock(),
	}
}
