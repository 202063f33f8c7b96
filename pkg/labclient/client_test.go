package labclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lab-inventory/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, NewSessionManager(&MemoryStore{})), srv
}

func testToken(t *testing.T, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	token, _, err := jwt.NewManager("test-secret", ttl).GenerateToken(jwt.Identity{UserID: userID, Email: "tech@lab.test"})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func loggedIn(t *testing.T, c *Client) User {
	t.Helper()
	u := User{ID: uuid.New(), FirstName: "Lab", LastName: "Tech", Email: "tech@lab.test", Status: StatusActive}
	if err := c.Sessions().Save(&Session{Token: testToken(t, u.ID, time.Hour), User: u}); err != nil {
		t.Fatal(err)
	}
	return u
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestRegisterRejectsMismatchWithoutRequest(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusCreated)
	}))

	_, err := c.Register(context.Background(), RegisterForm{
		FirstName: "New", LastName: "User", Email: "new@lab.test", LaboratoryID: uuid.New(),
		Password: "secret1", ConfirmPassword: "secret2",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Expected ErrPasswordMismatch, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("Expected no request, got %d", n)
	}
}

func TestVerifyOTPRedirectsOnlyOnSuccess(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantPath string
	}{
		{"verified", http.StatusOK, LoginPath},
		{"no content", http.StatusNoContent, LoginPath},
		{"wrong code", http.StatusBadRequest, ""},
		{"expired code", http.StatusGone, ""},
		{"server error", http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != "/verify" {
					t.Errorf("Expected PUT /verify, got %s %s", r.Method, r.URL.Path)
				}
				gotQuery = r.URL.RawQuery
				if tt.status == http.StatusNoContent {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, map[string]string{"error": "nope", "message": "ok"})
			}))

			path, err := c.VerifyOTP(context.Background(), "a@lab.test", "123456")
			if path != tt.wantPath {
				t.Errorf("Expected path %q, got %q", tt.wantPath, path)
			}
			if tt.wantPath == "" {
				if !errors.Is(err, ErrRequestFailed) {
					t.Errorf("Expected ErrRequestFailed, got %v", err)
				}
				if StatusOf(err) != tt.status {
					t.Errorf("Expected status %d, got %d", tt.status, StatusOf(err))
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !strings.Contains(gotQuery, "otp=123456") || !strings.Contains(gotQuery, "email=a%40lab.test") {
				t.Errorf("Expected email and otp as query parameters, got %q", gotQuery)
			}
		})
	}
}

func TestBorrowSendsOneClampedPost(t *testing.T) {
	var posts int32
	var body map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /borrow", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("Expected bearer token")
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Borrow recorded",
			"data": map[string]interface{}{
				"id":               uuid.NewString(),
				"userId":           body["userId"],
				"materialId":       body["materialId"],
				"quantityBorrowed": body["quantityBorrowed"],
				"status":           "Borrowed",
			},
		})
	})
	c, _ := newTestClient(t, mux)
	user := loggedIn(t, c)

	material := Material{ID: uuid.New(), ItemName: "Ethanol", QuantityAvailable: 4, Status: StatusActive}
	borrow, err := c.Borrow(context.Background(), BorrowForm{Material: material, UserID: user.ID, Quantity: 10})
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}

	if n := atomic.LoadInt32(&posts); n != 1 {
		t.Fatalf("Expected exactly 1 POST, got %d", n)
	}
	if body["materialId"] != material.ID.String() {
		t.Errorf("Expected materialId %s, got %v", material.ID, body["materialId"])
	}
	if body["userId"] != user.ID.String() {
		t.Errorf("Expected userId %s, got %v", user.ID, body["userId"])
	}
	if body["quantityBorrowed"] != float64(4) {
		t.Errorf("Expected quantity clamped to 4, got %v", body["quantityBorrowed"])
	}
	if borrow.QuantityBorrowed != 4 {
		t.Errorf("Expected returned quantity 4, got %d", borrow.QuantityBorrowed)
	}
}

func TestWithdrawalFormsNeverExceedAvailability(t *testing.T) {
	var quantities []float64
	mux := http.NewServeMux()
	record := func(key string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			quantities = append(quantities, body[key].(float64))
			data := map[string]interface{}{
				"id": uuid.NewString(), "userId": body["userId"], "materialId": body["materialId"],
				key: body[key], "reasonForDisposal": "expired",
			}
			writeJSON(w, http.StatusCreated, map[string]interface{}{"data": data})
		}
	}
	mux.HandleFunc("POST /disposal/create", record("quantityDisposed"))
	mux.HandleFunc("POST /reagents-dispense", record("quantityDispensed"))
	c, _ := newTestClient(t, mux)
	user := loggedIn(t, c)

	material := Material{ID: uuid.New(), ItemName: "Buffer", QuantityAvailable: 3, Status: StatusActive}
	if _, err := c.Dispose(context.Background(), DisposalForm{Material: material, UserID: user.ID, Quantity: 7, ReasonForDisposal: "expired"}); err != nil {
		t.Fatalf("Dispose failed: %v", err)
	}
	if _, err := c.Dispense(context.Background(), DispenseForm{Material: material, UserID: user.ID, Quantity: 2}); err != nil {
		t.Fatalf("Dispense failed: %v", err)
	}

	want := []float64{3, 2}
	if !reflect.DeepEqual(quantities, want) {
		t.Errorf("Expected quantities %v, got %v", want, quantities)
	}
}

func TestBorrowZeroQuantityMakesNoRequest(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	user := loggedIn(t, c)

	empty := Material{ID: uuid.New(), ItemName: "Beaker", QuantityAvailable: 0, Status: StatusActive}
	_, err := c.Borrow(context.Background(), BorrowForm{Material: empty, UserID: user.ID, Quantity: 2})
	if !errors.Is(err, ErrNothingToSubmit) {
		t.Errorf("Expected ErrNothingToSubmit, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("Expected no request, got %d", n)
	}
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		qty, available, want int
	}{
		{5, 10, 5},
		{15, 10, 10},
		{-3, 10, 0},
		{4, -1, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := ClampQuantity(tt.qty, tt.available); got != tt.want {
			t.Errorf("ClampQuantity(%d, %d): Expected %d, got %d", tt.qty, tt.available, tt.want, got)
		}
	}
}

func TestInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing item name", `[{"id":"` + uuid.NewString() + `","itemName":"","status":"Active","quantityAvailable":1}]`},
		{"negative quantity", `[{"id":"` + uuid.NewString() + `","itemName":"Ethanol","status":"Active","quantityAvailable":-1}]`},
		{"unknown status", `[{"id":"` + uuid.NewString() + `","itemName":"Ethanol","status":"Gone"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tt.body)
			}))
			loggedIn(t, c)

			if _, err := c.Materials(context.Background(), MaterialQuery{}); !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("Expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestMaterialsQuery(t *testing.T) {
	labID := uuid.New()
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": uuid.NewString(), "itemName": "Ethanol", "status": "Active", "quantityAvailable": 3},
		})
	}))
	loggedIn(t, c)

	materials, err := c.Materials(context.Background(), MaterialQuery{Category: "Chemical", LaboratoryID: labID})
	if err != nil {
		t.Fatal(err)
	}
	if len(materials) != 1 || materials[0].ItemName != "Ethanol" {
		t.Errorf("Expected [Ethanol], got %+v", materials)
	}
	if !strings.Contains(got, "category=Chemical") || !strings.Contains(got, "laboratoryId="+labID.String()) {
		t.Errorf("Expected category and laboratory filters, got %q", got)
	}
	if strings.Contains(got, "q=") {
		t.Errorf("Expected empty search to be omitted, got %q", got)
	}
}

func TestUpdateConflictExposesStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "record was modified by another request"})
	}))
	loggedIn(t, c)

	_, err := c.UpdateMaterial(context.Background(), uuid.New(), 1, map[string]interface{}{"itemName": "X"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("Expected ErrRequestFailed, got %v", err)
	}
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if he.Status != http.StatusConflict || !strings.Contains(he.Message, "modified") {
		t.Errorf("Expected 409 with server message, got %d %q", he.Status, he.Message)
	}
}

func TestCallsWithoutSessionFailEarly(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	if _, err := c.Materials(context.Background(), MaterialQuery{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("Expected no request, got %d", n)
	}
}

func TestLoginStoresSession(t *testing.T) {
	userID := uuid.New()
	token := testToken(t, userID, time.Hour)
	var authHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":     token,
			"expiresAt": time.Now().Add(time.Hour),
			"user": map[string]interface{}{
				"id": userID, "firstName": "Lab", "lastName": "Tech", "email": "tech@lab.test", "status": "Active",
			},
			"role":       map[string]interface{}{"id": 3, "code": "USER"},
			"privileges": []string{"material:view"},
		})
	})
	mux.HandleFunc("POST /auth/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]string{"status": "online"})
	})
	c, _ := newTestClient(t, mux)

	s, err := c.Login(context.Background(), "tech@lab.test", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if s.User.RoleCode() != RoleUser {
		t.Errorf("Expected role USER, got %q", s.User.RoleCode())
	}
	if !s.HasPrivilege("material:view") {
		t.Error("Expected session to carry privileges")
	}

	if err := c.Heartbeat(context.Background()); err != nil {
		t.Fatal(err)
	}
	if authHeader != "Bearer "+token {
		t.Errorf("Expected the stored token on later calls, got %q", authHeader)
	}

	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Sessions().Current(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession after logout, got %v", err)
	}
}

func TestReportIncidentMultipart(t *testing.T) {
	materialIDs := []uuid.UUID{uuid.New(), uuid.New()}
	var (
		gotReport IncidentReport
		gotFile   string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /incident-forms", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart body: %v", err)
		}
		json.Unmarshal([]byte(r.FormValue("incident")), &gotReport)
		if f, _, err := r.FormFile("attachments"); err == nil {
			b, _ := io.ReadAll(f)
			gotFile = string(b)
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": map[string]interface{}{
			"id": uuid.NewString(), "userId": gotReport.UserID, "natureOfIncident": gotReport.NatureOfIncident,
			"materialIds": gotReport.MaterialIDs, "attachments": []string{"uploads/x_photo.jpg"},
		}})
	})
	c, _ := newTestClient(t, mux)
	user := loggedIn(t, c)

	form, err := c.ReportIncident(context.Background(), IncidentReport{
		UserID:           user.ID,
		NatureOfIncident: "Spill, minor",
		MaterialIDs:      materialIDs,
	}, Attachment{Name: "photo.jpg", Reader: strings.NewReader("jpeg")})
	if err != nil {
		t.Fatalf("ReportIncident failed: %v", err)
	}

	if !reflect.DeepEqual(gotReport.MaterialIDs, materialIDs) {
		t.Errorf("Expected material list %v, got %v", materialIDs, gotReport.MaterialIDs)
	}
	if gotReport.NatureOfIncident != "Spill, minor" {
		t.Errorf("Expected commas to survive, got %q", gotReport.NatureOfIncident)
	}
	if gotFile != "jpeg" {
		t.Errorf("Expected attachment content, got %q", gotFile)
	}
	if len(form.Attachments) != 1 {
		t.Errorf("Expected 1 stored attachment, got %d", len(form.Attachments))
	}
}

func TestSuppliersUsesSessionUser(t *testing.T) {
	var paths []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": uuid.NewString(), "companyName": "Acme", "status": "Active"},
		})
	}))
	user := loggedIn(t, c)

	for _, onlyActive := range []bool{false, true} {
		if _, err := c.Suppliers(context.Background(), onlyActive); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"/supplier/unfiltered/" + user.ID.String(), "/filtered-suppliers/" + user.ID.String()}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Expected paths %v, got %v", want, paths)
	}
}

func TestSessionManager(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		m := NewSessionManager(&MemoryStore{})
		if _, err := m.Current(); !errors.Is(err, ErrNoSession) {
			t.Errorf("Expected ErrNoSession, got %v", err)
		}
	})

	t.Run("expiry from token", func(t *testing.T) {
		m := NewSessionManager(&MemoryStore{})
		token := testToken(t, uuid.New(), time.Hour)
		if err := m.Save(&Session{Token: token}); err != nil {
			t.Fatal(err)
		}
		s, err := m.Current()
		if err != nil {
			t.Fatalf("Expected live session, got %v", err)
		}
		if s.ExpiresAt.IsZero() {
			t.Error("Expected expiry to be read from the token")
		}

		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := m.Current(); !errors.Is(err, ErrSessionExpired) {
			t.Errorf("Expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("loads lazily from store", func(t *testing.T) {
		store := &MemoryStore{}
		store.Save(&Session{Token: "persisted", ExpiresAt: time.Now().Add(time.Hour)})
		m := NewSessionManager(store)
		s, err := m.Current()
		if err != nil {
			t.Fatal(err)
		}
		if s.Token != "persisted" {
			t.Errorf("Expected persisted token, got %q", s.Token)
		}
	})
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, "/home/tech/.config/labinv/session.json")

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Expected ErrNoSession for a missing file, got %v", err)
	}

	want := &Session{Token: "abc", ExpiresAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Privileges: []string{"material:view"}}
	if err := store.Save(want); err != nil {
		t.Fatal(err)
	}
	info, err := fs.Stat("/home/tech/.config/labinv/session.json")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != want.Token || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Expected clearing twice to succeed, got %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession after clear, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	t.Run("updates user", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"user": map[string]interface{}{
					"id": uuid.NewString(), "firstName": "Renamed", "lastName": "Tech", "email": "tech@lab.test", "status": "Active",
				},
				"privileges": []string{"log:view"},
			})
		})
		c, _ := newTestClient(t, mux)
		loggedIn(t, c)

		s, err := c.Sessions().Refresh(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if s.User.FirstName != "Renamed" || !s.HasPrivilege("log:view") {
			t.Errorf("Expected refreshed profile, got %+v", s)
		}
	})

	t.Run("rejected token clears session", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session expired (logged in on another device)"})
		}))
		loggedIn(t, c)

		if _, err := c.Sessions().Refresh(context.Background()); !errors.Is(err, ErrSessionExpired) {
			t.Errorf("Expected ErrSessionExpired, got %v", err)
		}
		if _, err := c.Sessions().Current(); !errors.Is(err, ErrNoSession) {
			t.Errorf("Expected session to be cleared, got %v", err)
		}
	})
}
