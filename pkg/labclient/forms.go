package labclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNothingToSubmit is returned when a clamped quantity ends up zero.
var ErrNothingToSubmit = errors.New("quantity must be greater than zero")

// ClampQuantity bounds qty into [0, available].
func ClampQuantity(qty, available int) int {
	if available < 0 {
		available = 0
	}
	if qty < 0 {
		return 0
	}
	if qty > available {
		return available
	}
	return qty
}

// FormReferences are the collections a transaction form offers for selection.
type FormReferences struct {
	Personnel []User
	Materials []Material
}

// LoadReferences fetches laboratory personnel and the Active materials of
// category (all categories when empty).
func (c *Client) LoadReferences(ctx context.Context, category string) (*FormReferences, error) {
	users, err := c.Users(ctx, UserQuery{Role: RoleUser, Status: StatusActive})
	if err != nil {
		return nil, err
	}
	materials, err := c.Materials(ctx, MaterialQuery{Category: category})
	if err != nil {
		return nil, err
	}
	return &FormReferences{Personnel: users, Materials: materials}, nil
}

// BorrowForm is filled from a material picked out of FormReferences.
type BorrowForm struct {
	Material   Material
	UserID     uuid.UUID
	Quantity   int
	Department string
	Remarks    string
}

// Borrow clamps the quantity to what the material showed when it was
// fetched and submits exactly one request.
func (c *Client) Borrow(ctx context.Context, form BorrowForm) (*Borrow, error) {
	qty := ClampQuantity(form.Quantity, form.Material.QuantityAvailable)
	if qty == 0 {
		return nil, ErrNothingToSubmit
	}
	return write[Borrow](ctx, c, http.MethodPost, "/borrow", map[string]interface{}{
		"materialId":       form.Material.ID,
		"userId":           form.UserID,
		"quantityBorrowed": qty,
		"department":       form.Department,
		"dateBorrowed":     time.Now().UTC(),
		"remarks":          form.Remarks,
	})
}

// ReturnBorrow closes a borrow slip.
func (c *Client) ReturnBorrow(ctx context.Context, b Borrow, qty int, remarks string) (*Borrow, error) {
	return write[Borrow](ctx, c, http.MethodPut, "/borrow/"+b.ID.String()+"/return", map[string]interface{}{
		"quantityReturned": ClampQuantity(qty, b.QuantityBorrowed),
		"remarks":          remarks,
	})
}

type DisposalForm struct {
	Material          Material
	UserID            uuid.UUID
	Quantity          int
	ReasonForDisposal string
	MethodOfDisposal  string
	DisposedBy        string
	Comments          string
}

func (c *Client) Dispose(ctx context.Context, form DisposalForm) (*Disposition, error) {
	qty := ClampQuantity(form.Quantity, form.Material.QuantityAvailable)
	if qty == 0 {
		return nil, ErrNothingToSubmit
	}
	return write[Disposition](ctx, c, http.MethodPost, "/disposal/create", map[string]interface{}{
		"materialId":        form.Material.ID,
		"userId":            form.UserID,
		"quantityDisposed":  qty,
		"itemDescription":   form.Material.ItemName,
		"reasonForDisposal": form.ReasonForDisposal,
		"methodOfDisposal":  form.MethodOfDisposal,
		"disposedBy":        form.DisposedBy,
		"dateDisposed":      time.Now().UTC(),
		"comments":          form.Comments,
	})
}

type DispenseForm struct {
	Material          Material
	UserID            uuid.UUID
	Quantity          int
	TotalNoContainers int
	Remarks           string
}

func (c *Client) Dispense(ctx context.Context, form DispenseForm) (*ReagentDispense, error) {
	qty := ClampQuantity(form.Quantity, form.Material.QuantityAvailable)
	if qty == 0 {
		return nil, ErrNothingToSubmit
	}
	return write[ReagentDispense](ctx, c, http.MethodPost, "/reagents-dispense", map[string]interface{}{
		"materialId":        form.Material.ID,
		"userId":            form.UserID,
		"quantityDispensed": qty,
		"totalNoContainers": form.TotalNoContainers,
		"lotNo":             form.Material.LotNo,
		"date":              time.Now().UTC(),
		"remarks":           form.Remarks,
	})
}

type CalibrationForm struct {
	MaterialID          uuid.UUID  `json:"materialId"`
	UserID              uuid.UUID  `json:"userId"`
	CalibrationDate     time.Time  `json:"calibrationDate"`
	NextCalibrationDate *time.Time `json:"nextCalibrationDate,omitempty"`
	CalibratedBy        string     `json:"calibratedBy"`
	Result              string     `json:"result"`
	Notes               string     `json:"notes"`
}

func (c *Client) Calibrate(ctx context.Context, form CalibrationForm) (*Calibration, error) {
	return write[Calibration](ctx, c, http.MethodPost, "/calibration", form)
}

// IncidentReport lists every referenced material and person by id.
type IncidentReport struct {
	UserID           uuid.UUID   `json:"userId"`
	NatureOfIncident string      `json:"natureOfIncident"`
	Date             time.Time   `json:"date"`
	Time             string      `json:"time,omitempty"`
	Area             string      `json:"area"`
	Equipment        string      `json:"equipment"`
	MaterialIDs      []uuid.UUID `json:"materialIds"`
	PersonnelIDs     []uuid.UUID `json:"personnelIds"`
	Description      string      `json:"description"`
}

// Attachment is a file uploaded with an incident report.
type Attachment struct {
	Name   string
	Reader io.Reader
}

// ReportIncident submits the report as multipart: the record as JSON in
// the "incident" field and each attachment under "attachments".
func (c *Client) ReportIncident(ctx context.Context, report IncidentReport, attachments ...Attachment) (*IncidentForm, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	req, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}
	req.SetMultipartFormData(map[string]string{"incident": string(payload)})
	for _, a := range attachments {
		req.SetFileReader("attachments", a.Name, a.Reader)
	}

	var out envelope[IncidentForm]
	if err := send(req, http.MethodPost, "/incident-forms", &out); err != nil {
		return nil, err
	}
	return checked(&out.Data)
}
