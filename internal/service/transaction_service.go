package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/events"
	"lab-inventory/pkg/logger"
	"lab-inventory/pkg/storage"
	"lab-inventory/pkg/validator"

	"github.com/google/uuid"
)

type TransactionService interface {
	Borrow(ctx context.Context, actor Actor, req *BorrowRequest) (*model.Borrow, error)
	ReturnBorrow(ctx context.Context, actor Actor, id uuid.UUID, req *ReturnRequest) (*model.Borrow, error)
	Dispose(ctx context.Context, actor Actor, req *DisposalRequest) (*model.Disposition, error)
	Dispense(ctx context.Context, actor Actor, req *DispenseRequest) (*model.ReagentDispense, error)
	Calibrate(ctx context.Context, actor Actor, req *CalibrationRequest) (*model.Calibration, error)
	ReportIncident(ctx context.Context, actor Actor, req *IncidentRequest, uploads []Upload) (*model.IncidentForm, error)

	ListBorrows(ctx context.Context, userID uuid.UUID) ([]model.Borrow, error)
	ListDispositions(ctx context.Context, userID uuid.UUID) ([]model.Disposition, error)
	ListCalibrations(ctx context.Context, materialID uuid.UUID) ([]model.Calibration, error)
	ListDispenses(ctx context.Context, userID uuid.UUID) ([]model.ReagentDispense, error)
	ListIncidents(ctx context.Context, userID uuid.UUID) ([]model.IncidentForm, error)
}

type BorrowRequest struct {
	MaterialID       uuid.UUID  `json:"materialId" validate:"uuid_required"`
	UserID           *uuid.UUID `json:"userId"`
	Department       string     `json:"department"`
	DateBorrowed     *time.Time `json:"dateBorrowed"`
	QuantityBorrowed int        `json:"quantityBorrowed" validate:"required,gt=0"`
	Remarks          string     `json:"remarks"`
}

type ReturnRequest struct {
	QuantityReturned int    `json:"quantityReturned" validate:"min=0"`
	Remarks          string `json:"remarks"`
}

type DisposalRequest struct {
	MaterialID        uuid.UUID  `json:"materialId" validate:"uuid_required"`
	UserID            *uuid.UUID `json:"userId"`
	ItemDescription   string     `json:"itemDescription"`
	QuantityDisposed  int        `json:"quantityDisposed" validate:"required,gt=0"`
	ReasonForDisposal string     `json:"reasonForDisposal" validate:"required"`
	MethodOfDisposal  string     `json:"methodOfDisposal"`
	DisposedBy        string     `json:"disposedBy"`
	DateDisposed      *time.Time `json:"dateDisposed"`
	Comments          string     `json:"comments"`
}

type DispenseRequest struct {
	MaterialID        uuid.UUID  `json:"materialId" validate:"uuid_required"`
	UserID            *uuid.UUID `json:"userId"`
	Date              *time.Time `json:"date"`
	TotalNoContainers int        `json:"totalNoContainers" validate:"min=0"`
	LotNo             string     `json:"lotNo"`
	QuantityDispensed int        `json:"quantityDispensed" validate:"required,gt=0"`
	Remarks           string     `json:"remarks"`
}

type CalibrationRequest struct {
	MaterialID          uuid.UUID  `json:"materialId" validate:"uuid_required"`
	UserID              *uuid.UUID `json:"userId"`
	CalibrationDate     *time.Time `json:"calibrationDate"`
	NextCalibrationDate *time.Time `json:"nextCalibrationDate"`
	CalibratedBy        string     `json:"calibratedBy"`
	Result              string     `json:"result"`
	Notes               string     `json:"notes"`
}

type IncidentRequest struct {
	UserID           *uuid.UUID  `json:"userId"`
	NatureOfIncident string      `json:"natureOfIncident" validate:"required"`
	Date             *time.Time  `json:"date"`
	Time             string      `json:"time" validate:"omitempty,datetime=15:04"`
	Area             string      `json:"area"`
	Equipment        string      `json:"equipment"`
	MaterialIDs      []uuid.UUID `json:"materialIds"`
	PersonnelIDs     []uuid.UUID `json:"personnelIds"`
	Description      string      `json:"description"`
}

// Upload is a file attached to an incident report.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

type transactionService struct {
	materialRepo repository.MaterialRepository
	userRepo     repository.UserRepository
	stockRepo    repository.StockRepository
	recordRepo   repository.RecordRepository
	files        storage.Store
	notifier     Notifier
	now          func() time.Time
}

func NewTransactionService(
	materialRepo repository.MaterialRepository,
	userRepo repository.UserRepository,
	stockRepo repository.StockRepository,
	recordRepo repository.RecordRepository,
	files storage.Store,
	notifier Notifier,
) TransactionService {
	return &transactionService{
		materialRepo: materialRepo,
		userRepo:     userRepo,
		stockRepo:    stockRepo,
		recordRepo:   recordRepo,
		files:        files,
		notifier:     notifierOrNoop(notifier),
		now:          time.Now,
	}
}

// recordOwner resolves the user a form is filed for. Only administrators
// may file on behalf of someone else.
func (s *transactionService) recordOwner(ctx context.Context, actor Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == uuid.Nil || *requested == actor.ID {
		return actor.ID, nil
	}
	if !model.IsAdminRole(actor.RoleCode) {
		return uuid.Nil, ErrForbidden
	}
	if _, err := s.userRepo.FindByID(ctx, *requested); err != nil {
		return uuid.Nil, notFound(err, fmt.Errorf("%w: user", ErrUnknownReference))
	}
	return *requested, nil
}

func (s *transactionService) activeMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	if material.Status == model.MaterialDeleted {
		return nil, ErrMaterialDeleted
	}
	return material, nil
}

func (s *transactionService) dateOrNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.now()
	}
	return *t
}

// withdraw runs the movement and emits the stock event on commit.
func (s *transactionService) withdraw(ctx context.Context, actor Actor, action string, m repository.StockMovement) error {
	result, err := s.stockRepo.Move(ctx, m)
	if err != nil {
		return mapWriteError(err)
	}
	s.notifier.Notify(ctx, events.New(events.TypeStockUpdate, action, result.Material.ID.String(),
		materialPayload(&result.Material, m.Delta, m.Source), actor.event()))
	logger.Info(ctx).
		Str("material_id", result.Material.ID.String()).
		Str("source", m.Source).
		Int("delta", m.Delta).
		Int("balance", result.Material.QuantityAvailable).
		Msg("Stock moved")
	return nil
}

func (s *transactionService) Borrow(ctx context.Context, actor Actor, req *BorrowRequest) (*model.Borrow, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	owner, err := s.recordOwner(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.activeMaterial(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	borrow := &model.Borrow{
		UserID:           owner,
		MaterialID:       req.MaterialID,
		Department:       req.Department,
		DateBorrowed:     s.dateOrNow(req.DateBorrowed),
		QuantityBorrowed: req.QuantityBorrowed,
		Status:           model.BorrowOpen,
		Remarks:          req.Remarks,
	}
	borrow.CreatedBy = actor.ID.String()

	err = s.withdraw(ctx, actor, "borrow", repository.StockMovement{
		MaterialID: req.MaterialID,
		Delta:      -req.QuantityBorrowed,
		UserID:     owner,
		Source:     model.SourceBorrow,
		Remarks:    req.Remarks,
		Record:     borrow,
	})
	if err != nil {
		return nil, err
	}
	return borrow, nil
}

func (s *transactionService) ReturnBorrow(ctx context.Context, actor Actor, id uuid.UUID, req *ReturnRequest) (*model.Borrow, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	existing, err := s.recordRepo.FindBorrowByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	if existing.UserID != actor.ID && !model.IsAdminRole(actor.RoleCode) {
		return nil, ErrForbidden
	}

	borrow, result, err := s.stockRepo.ReturnBorrow(ctx, id, req.QuantityReturned, actor.ID, req.Remarks)
	if err != nil {
		return nil, mapWriteError(err)
	}
	s.notifier.Notify(ctx, events.New(events.TypeStockUpdate, "return", result.Material.ID.String(),
		materialPayload(&result.Material, req.QuantityReturned, model.SourceReturn), actor.event()))
	return borrow, nil
}

func (s *transactionService) Dispose(ctx context.Context, actor Actor, req *DisposalRequest) (*model.Disposition, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	owner, err := s.recordOwner(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	material, err := s.activeMaterial(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}

	record := &model.Disposition{
		UserID:            owner,
		MaterialID:        req.MaterialID,
		ItemDescription:   req.ItemDescription,
		QuantityDisposed:  req.QuantityDisposed,
		ReasonForDisposal: req.ReasonForDisposal,
		MethodOfDisposal:  req.MethodOfDisposal,
		DisposedBy:        req.DisposedBy,
		DateDisposed:      s.dateOrNow(req.DateDisposed),
		Comments:          req.Comments,
	}
	if record.ItemDescription == "" {
		record.ItemDescription = material.ItemName
	}
	record.CreatedBy = actor.ID.String()

	err = s.withdraw(ctx, actor, "dispose", repository.StockMovement{
		MaterialID: req.MaterialID,
		Delta:      -req.QuantityDisposed,
		UserID:     owner,
		Source:     model.SourceDisposal,
		Remarks:    req.ReasonForDisposal,
		Record:     record,
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *transactionService) Dispense(ctx context.Context, actor Actor, req *DispenseRequest) (*model.ReagentDispense, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	owner, err := s.recordOwner(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	material, err := s.activeMaterial(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if material.Category == nil || material.Category.ShortName != model.CategoryReagent {
		return nil, ErrNotReagent
	}

	record := &model.ReagentDispense{
		UserID:            owner,
		MaterialID:        req.MaterialID,
		Date:              s.dateOrNow(req.Date),
		TotalNoContainers: req.TotalNoContainers,
		LotNo:             req.LotNo,
		QuantityDispensed: req.QuantityDispensed,
		Remarks:           req.Remarks,
	}
	if record.LotNo == "" {
		record.LotNo = material.LotNo
	}
	record.CreatedBy = actor.ID.String()

	err = s.withdraw(ctx, actor, "dispense", repository.StockMovement{
		MaterialID: req.MaterialID,
		Delta:      -req.QuantityDispensed,
		UserID:     owner,
		Source:     model.SourceDispense,
		Remarks:    req.Remarks,
		Record:     record,
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Calibrate leaves the quantity untouched; the log row is an annotation.
func (s *transactionService) Calibrate(ctx context.Context, actor Actor, req *CalibrationRequest) (*model.Calibration, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	owner, err := s.recordOwner(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.activeMaterial(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	record := &model.Calibration{
		UserID:              owner,
		MaterialID:          req.MaterialID,
		CalibrationDate:     s.dateOrNow(req.CalibrationDate),
		NextCalibrationDate: req.NextCalibrationDate,
		CalibratedBy:        req.CalibratedBy,
		Result:              req.Result,
		Notes:               req.Notes,
	}
	if record.NextCalibrationDate != nil && record.NextCalibrationDate.Before(record.CalibrationDate) {
		return nil, fmt.Errorf("%w: next calibration date precedes calibration date", ErrBadRequest)
	}
	record.CreatedBy = actor.ID.String()

	_, err = s.stockRepo.Move(ctx, repository.StockMovement{
		MaterialID: req.MaterialID,
		Delta:      0,
		UserID:     owner,
		Source:     model.SourceCalibration,
		Remarks:    req.Result,
		Record:     record,
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return record, nil
}

func (s *transactionService) ReportIncident(ctx context.Context, actor Actor, req *IncidentRequest, uploads []Upload) (*model.IncidentForm, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	owner, err := s.recordOwner(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}

	materialIDs := uniqueIDs(req.MaterialIDs)
	materials, err := s.materialRepo.FindByIDs(ctx, materialIDs)
	if err != nil {
		return nil, err
	}
	if len(materials) != len(materialIDs) {
		return nil, fmt.Errorf("%w: material", ErrUnknownReference)
	}
	personnelIDs := uniqueIDs(req.PersonnelIDs)
	personnel, err := s.userRepo.FindByIDs(ctx, personnelIDs)
	if err != nil {
		return nil, err
	}
	if len(personnel) != len(personnelIDs) {
		return nil, fmt.Errorf("%w: personnel", ErrUnknownReference)
	}

	attachments := make([]string, 0, len(uploads))
	for _, u := range uploads {
		stored, err := s.saveUpload(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("save attachment %q: %w", u.Filename, err)
		}
		attachments = append(attachments, stored)
	}

	incident := &model.IncidentForm{
		UserID:           owner,
		NatureOfIncident: strings.TrimSpace(req.NatureOfIncident),
		Date:             s.dateOrNow(req.Date),
		Time:             req.Time,
		Area:             req.Area,
		Equipment:        req.Equipment,
		MaterialIDs:      materialIDs,
		PersonnelIDs:     personnelIDs,
		Description:      req.Description,
		Attachments:      attachments,
	}
	incident.CreatedBy = actor.ID.String()
	if err := s.recordRepo.CreateIncident(ctx, incident); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, events.New(events.TypeIncidentReported, "incident_created", incident.ID.String(), map[string]interface{}{
		"incidentId":       incident.ID,
		"natureOfIncident": incident.NatureOfIncident,
		"materialIds":      incident.MaterialIDs,
	}, actor.event()))
	return incident, nil
}

func (s *transactionService) saveUpload(ctx context.Context, u Upload) (string, error) {
	if s.files == nil {
		return "", fmt.Errorf("%w: attachments are not accepted", ErrBadRequest)
	}
	rc, err := u.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.files.Save(ctx, u.Filename, rc)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *transactionService) ListBorrows(ctx context.Context, userID uuid.UUID) ([]model.Borrow, error) {
	return s.recordRepo.FindBorrows(ctx, userID)
}

func (s *transactionService) ListDispositions(ctx context.Context, userID uuid.UUID) ([]model.Disposition, error) {
	return s.recordRepo.FindDispositions(ctx, userID)
}

func (s *transactionService) ListCalibrations(ctx context.Context, materialID uuid.UUID) ([]model.Calibration, error) {
	return s.recordRepo.FindCalibrations(ctx, materialID)
}

func (s *transactionService) ListDispenses(ctx context.Context, userID uuid.UUID) ([]model.ReagentDispense, error) {
	return s.recordRepo.FindDispenses(ctx, userID)
}

func (s *transactionService) ListIncidents(ctx context.Context, userID uuid.UUID) ([]model.IncidentForm, error) {
	return s.recordRepo.FindIncidents(ctx, userID)
}
