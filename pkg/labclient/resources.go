package labclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// MaterialQuery filters the material list server side.
type MaterialQuery struct {
	Category       string
	LaboratoryID   uuid.UUID
	Search         string
	IncludeDeleted bool
}

func (c *Client) Materials(ctx context.Context, q MaterialQuery) ([]Material, error) {
	query := map[string]string{"category": q.Category, "q": q.Search}
	if q.LaboratoryID != uuid.Nil {
		query["laboratoryId"] = q.LaboratoryID.String()
	}
	if q.IncludeDeleted {
		query["includeDeleted"] = "true"
	}
	return getList[Material](ctx, c, "/material/all", query)
}

func (c *Client) Material(ctx context.Context, id uuid.UUID) (*Material, error) {
	return getOne[Material](ctx, c, "/material/"+id.String())
}

// UpdateMaterial sends a partial patch. version must be the version the
// caller read; a concurrent edit yields a 409 HTTPError.
func (c *Client) UpdateMaterial(ctx context.Context, id uuid.UUID, version int, patch map[string]interface{}) (*Material, error) {
	body := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		body[k] = v
	}
	body["version"] = version
	return write[Material](ctx, c, http.MethodPut, "/material/update/"+id.String(), body)
}

// UserQuery filters the user table.
type UserQuery struct {
	Role   string
	Status string
	Search string
}

func (c *Client) Users(ctx context.Context, q UserQuery) ([]User, error) {
	return getList[User](ctx, c, "/all-users", map[string]string{"role": q.Role, "status": q.Status, "q": q.Search})
}

func (c *Client) User(ctx context.Context, id uuid.UUID) (*User, error) {
	return getOne[User](ctx, c, "/user/"+id.String())
}

// UpdateUser sends a partial patch guarded by version.
func (c *Client) UpdateUser(ctx context.Context, id uuid.UUID, version int, patch map[string]interface{}) (*User, error) {
	body := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		body[k] = v
	}
	body["version"] = version
	return write[User](ctx, c, http.MethodPut, "/update-user/"+id.String(), body)
}

// DeleteUser soft deletes u by setting its status to Deleted.
func (c *Client) DeleteUser(ctx context.Context, u User) (*User, error) {
	return c.UpdateUser(ctx, u.ID, u.Version, map[string]interface{}{"status": StatusDeleted})
}

func (c *Client) Laboratories(ctx context.Context) ([]Laboratory, error) {
	req, err := c.request(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []Laboratory
	if err := send(req, http.MethodGet, "/laboratories", &out); err != nil {
		return nil, err
	}
	return checkedList(out)
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return getList[Category](ctx, c, "/category/categories", nil)
}

// Suppliers lists the suppliers of the session user's laboratory.
// onlyActive selects the filtered listing.
func (c *Client) Suppliers(ctx context.Context, onlyActive bool) ([]Supplier, error) {
	s, err := c.sessions.Current()
	if err != nil {
		return nil, err
	}
	path := "/supplier/unfiltered/" + s.User.ID.String()
	if onlyActive {
		path = "/filtered-suppliers/" + s.User.ID.String()
	}
	return getList[Supplier](ctx, c, path, nil)
}

// InventoryLogs lists log entries. Nil ids are not filtered on.
func (c *Client) InventoryLogs(ctx context.Context, materialID, userID uuid.UUID) ([]InventoryLog, error) {
	query := map[string]string{}
	if materialID != uuid.Nil {
		query["materialId"] = materialID.String()
	}
	if userID != uuid.Nil {
		query["userId"] = userID.String()
	}
	return getList[InventoryLog](ctx, c, "/inventory-log", query)
}

// Borrows lists borrow slips, optionally for one user.
func (c *Client) Borrows(ctx context.Context, userID uuid.UUID) ([]Borrow, error) {
	query := map[string]string{}
	if userID != uuid.Nil {
		query["userId"] = userID.String()
	}
	return getList[Borrow](ctx, c, "/borrow", query)
}

// StockMovement is one day of the dashboard chart.
type StockMovement struct {
	Date     string `json:"date" validate:"required"`
	Inbound  int    `json:"inbound" validate:"min=0"`
	Outbound int    `json:"outbound" validate:"min=0"`
}

func (c *Client) StockMovement(ctx context.Context, days int) ([]StockMovement, error) {
	req, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}
	var out struct {
		Period int             `json:"period"`
		Data   []StockMovement `json:"data"`
	}
	if err := send(req.SetQueryParam("days", strconv.Itoa(days)), http.MethodGet, "/dashboard/stock-movement", &out); err != nil {
		return nil, err
	}
	return checkedList(out.Data)
}
