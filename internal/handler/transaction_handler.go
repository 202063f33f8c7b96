package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler serves the laboratory forms: borrow, return,
// disposal, reagent dispense, calibration and incident reports.
type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// Borrow withdraws stock against a borrow slip
// POST /api/v1/borrow
func (h *TransactionHandler) Borrow(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	borrow, err := h.service.Borrow(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to record borrow")
	}
	return created(c, "Borrow recorded", borrow)
}

// ReturnBorrow closes a borrow slip and restores stock
// PUT /api/v1/borrow/:id/return
func (h *TransactionHandler) ReturnBorrow(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid borrow ID")
	}

	var req service.ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	borrow, err := h.service.ReturnBorrow(c.UserContext(), caller, id, &req)
	if err != nil {
		return fail(c, err, "Failed to record return")
	}
	return success(c, "Return recorded", borrow)
}

// Dispose withdraws stock that leaves the laboratory for good
// POST /api/v1/disposal/create
func (h *TransactionHandler) Dispose(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.DisposalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	record, err := h.service.Dispose(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to record disposal")
	}
	return created(c, "Disposal recorded", record)
}

// Dispense withdraws a reagent
// POST /api/v1/reagents-dispense
func (h *TransactionHandler) Dispense(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.DispenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	record, err := h.service.Dispense(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to record dispense")
	}
	return created(c, "Dispense recorded", record)
}

// Calibrate records an equipment calibration
// POST /api/v1/calibration
func (h *TransactionHandler) Calibrate(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.CalibrationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	record, err := h.service.Calibrate(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to record calibration")
	}
	return created(c, "Calibration recorded", record)
}

// ReportIncident files an incident report. Multipart requests carry the
// record as JSON in the "incident" field and files under "attachments";
// plain JSON bodies are accepted for reports without attachments.
// POST /api/v1/incident-forms
func (h *TransactionHandler) ReportIncident(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var (
		req     service.IncidentRequest
		uploads []service.Upload
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(c, "Invalid multipart form")
		}
		raw := form.Value["incident"]
		if len(raw) == 0 {
			return badRequest(c, "Field 'incident' is required")
		}
		if err := json.Unmarshal([]byte(raw[0]), &req); err != nil {
			return badRequest(c, "Field 'incident' must be a JSON object")
		}
		for _, fh := range form.File["attachments"] {
			uploads = append(uploads, upload(fh))
		}
	} else if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	record, err := h.service.ReportIncident(c.UserContext(), caller, &req, uploads)
	if err != nil {
		return fail(c, err, "Failed to file incident report")
	}
	return created(c, "Incident reported", record)
}

func upload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// GetBorrows GET /api/v1/borrow?userId=
func (h *TransactionHandler) GetBorrows(c *fiber.Ctx) error {
	userID, ok := queryID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	records, err := h.service.ListBorrows(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch borrows")
	}
	return c.JSON(records)
}

// GetDispositions GET /api/v1/disposal?userId=
func (h *TransactionHandler) GetDispositions(c *fiber.Ctx) error {
	userID, ok := queryID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	records, err := h.service.ListDispositions(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch disposals")
	}
	return c.JSON(records)
}

// GetDispenses GET /api/v1/reagents-dispense?userId=
func (h *TransactionHandler) GetDispenses(c *fiber.Ctx) error {
	userID, ok := queryID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	records, err := h.service.ListDispenses(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch dispenses")
	}
	return c.JSON(records)
}

// GetCalibrations GET /api/v1/calibration?materialId=
func (h *TransactionHandler) GetCalibrations(c *fiber.Ctx) error {
	materialID, ok := queryID(c, "materialId")
	if !ok {
		return badRequest(c, "Invalid material ID")
	}
	records, err := h.service.ListCalibrations(c.UserContext(), materialID)
	if err != nil {
		return fail(c, err, "Failed to fetch calibrations")
	}
	return c.JSON(records)
}

// GetIncidents GET /api/v1/incident-forms?userId=
func (h *TransactionHandler) GetIncidents(c *fiber.Ctx) error {
	userID, ok := queryID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	records, err := h.service.ListIncidents(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch incident reports")
	}
	return c.JSON(records)
}
