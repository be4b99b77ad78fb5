package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memoryRepo "appointly/database/repository/memory"
	"appointly/handlers"
	"appointly/models"
	"appointly/routes"
	"appointly/services/booking"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var testSecret = []byte("handler-test-secret")

const (
	providerID = "prov-1"
	serviceID  = "svc-30"
	monday     = "2030-01-07"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	repo := memoryRepo.NewMemorySchedulerRepo()
	if err := repo.SaveService(ctx, &models.Service{
		ID: serviceID, Name: "Consultation", Duration: 30, BufferTime: 10, Status: models.ServiceStatusActive,
	}); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	for _, id := range []string{providerID, "prov-2"} {
		if err := repo.SaveProvider(ctx, &models.Provider{ID: id, Name: id, IsActive: true, ServiceIDs: []string{serviceID}}); err != nil {
			t.Fatalf("seed provider: %v", err)
		}
	}

	var seq int
	engine := &booking.DefaultSchedulingEngine{
		Repo:     repo,
		Logger:   zap.NewNop(),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
	}
	entries := make([]models.WeeklyScheduleEntry, 7)
	for d := range entries {
		entries[d].DayOfWeek = d
	}
	entries[1] = models.WeeklyScheduleEntry{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true}
	if _, err := engine.UpdateWeeklySchedule(ctx, providerID, entries); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	monitor := utils.NewHealthMonitor(repo)
	hb := handlers.NewHandlerBundle(handlers.NewSchedulingHandler(engine), handlers.HealthHandler(monitor), testSecret, 10000)

	r := gin.New()
	routes.RegisterRoutes(r, hb)
	return r
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, subject, role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func do(r *gin.Engine, method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBooking(t *testing.T, w *httptest.ResponseRecorder) models.Booking {
	t.Helper()
	var resp struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode booking: %v (%s)", err, w.Body.String())
	}
	return resp.Booking
}

func createBooking(t *testing.T, r *gin.Engine, userTok, start string) models.Booking {
	t.Helper()
	w := do(r, http.MethodPost, "/api/bookings", userTok, map[string]string{
		"providerId": providerID, "serviceId": serviceID, "date": monday, "startTime": start,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d body %s", w.Code, w.Body.String())
	}
	return decodeBooking(t, w)
}

func TestGetSlots(t *testing.T) {
	r := newTestRouter(t)
	base := "/api/providers/" + providerID + "/services/" + serviceID + "/slots"

	w := do(r, http.MethodGet, base+"?date="+monday, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("full view: status %d body %s", w.Code, w.Body.String())
	}
	var full models.AvailableSlotsResult
	if err := json.Unmarshal(w.Body.Bytes(), &full); err != nil {
		t.Fatal(err)
	}
	// 09:00-12:00 with a 40 minute step: 09:00, 09:40, 10:20, 11:00.
	if len(full.Slots) != 4 || full.Slots[0].StartTime != "09:00" || full.Slots[3].EndTime != "11:30" {
		t.Fatalf("unexpected grid: %+v", full.Slots)
	}

	w = do(r, http.MethodGet, base+"?date="+monday+"&view=starts", "", nil)
	var starts struct {
		StartTimes []string `json:"startTimes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &starts); err != nil {
		t.Fatal(err)
	}
	if len(starts.StartTimes) != 4 {
		t.Fatalf("starts = %v", starts.StartTimes)
	}

	cases := []struct {
		name string
		path string
		want int
	}{
		{"missing date", base, http.StatusBadRequest},
		{"bad view", base + "?date=" + monday + "&view=grid", http.StatusBadRequest},
		{"malformed date", base + "?date=07-01-2030", http.StatusBadRequest},
		{"unknown provider", "/api/providers/nobody/services/" + serviceID + "/slots?date=" + monday, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(r, http.MethodGet, tc.path, "", nil); w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestCreateBookingAuthAndConflict(t *testing.T) {
	r := newTestRouter(t)
	body := map[string]string{"providerId": providerID, "serviceId": serviceID, "date": monday, "startTime": "09:00"}

	if w := do(r, http.MethodPost, "/api/bookings", "", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/bookings", "not-a-jwt", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/bookings", token(t, providerID, utils.RoleProvider), body); w.Code != http.StatusForbidden {
		t.Fatalf("provider creating booking: status %d", w.Code)
	}

	b := createBooking(t, r, token(t, "user-1", utils.RoleUser), "09:00")
	if b.UserID != "user-1" || b.EndTime != "09:30" || b.Status != models.BookingStatusPending {
		t.Fatalf("unexpected booking: %+v", b)
	}

	w := do(r, http.MethodPost, "/api/bookings", token(t, "user-2", utils.RoleUser), body)
	if w.Code != http.StatusConflict {
		t.Fatalf("double booking: status %d body %s", w.Code, w.Body.String())
	}

	off := map[string]string{"providerId": providerID, "serviceId": serviceID, "date": monday, "startTime": "09:05"}
	if w := do(r, http.MethodPost, "/api/bookings", token(t, "user-2", utils.RoleUser), off); w.Code != http.StatusConflict && w.Code != http.StatusBadRequest {
		t.Fatalf("off-grid start: status %d", w.Code)
	}
}

func TestBookingLifecycleAccess(t *testing.T) {
	r := newTestRouter(t)
	userTok := token(t, "user-1", utils.RoleUser)
	ownerTok := token(t, providerID, utils.RoleProvider)
	b := createBooking(t, r, userTok, "09:40")
	path := "/api/bookings/" + b.ID

	if w := do(r, http.MethodGet, path, token(t, "user-2", utils.RoleUser), nil); w.Code != http.StatusForbidden {
		t.Fatalf("stranger read: status %d", w.Code)
	}
	if w := do(r, http.MethodGet, path, userTok, nil); w.Code != http.StatusOK {
		t.Fatalf("owner read: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, path+"/confirm", userTok, nil); w.Code != http.StatusForbidden {
		t.Fatalf("client confirm: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, path+"/confirm", token(t, "prov-2", utils.RoleProvider), nil); w.Code != http.StatusForbidden {
		t.Fatalf("other provider confirm: status %d", w.Code)
	}

	w := do(r, http.MethodPost, path+"/confirm", ownerTok, nil)
	if w.Code != http.StatusOK || decodeBooking(t, w).Status != models.BookingStatusConfirmed {
		t.Fatalf("confirm: status %d body %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, path+"/complete", ownerTok, nil)
	if w.Code != http.StatusOK || decodeBooking(t, w).Status != models.BookingStatusCompleted {
		t.Fatalf("complete: status %d body %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, path+"/cancel", userTok, map[string]string{"reason": "late"}); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("cancel completed: status %d body %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/api/bookings/missing/confirm", ownerTok, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing booking: status %d", w.Code)
	}
}

func TestRescheduleAndCancel(t *testing.T) {
	r := newTestRouter(t)
	userTok := token(t, "user-1", utils.RoleUser)
	first := createBooking(t, r, userTok, "09:00")
	createBooking(t, r, token(t, "user-2", utils.RoleUser), "10:20")

	path := "/api/bookings/" + first.ID
	if w := do(r, http.MethodPut, path+"/reschedule", userTok, map[string]string{"date": monday, "startTime": "10:20"}); w.Code != http.StatusConflict {
		t.Fatalf("reschedule onto taken slot: status %d", w.Code)
	}
	w := do(r, http.MethodPut, path+"/reschedule", userTok, map[string]string{"date": monday, "startTime": "11:00"})
	if w.Code != http.StatusOK || decodeBooking(t, w).StartTime != "11:00" {
		t.Fatalf("reschedule: status %d body %s", w.Code, w.Body.String())
	}

	// Cancel with no body.
	w = do(r, http.MethodPost, path+"/cancel", userTok, nil)
	if w.Code != http.StatusOK || decodeBooking(t, w).Status != models.BookingStatusCancelled {
		t.Fatalf("cancel: status %d body %s", w.Code, w.Body.String())
	}
	createBooking(t, r, token(t, "user-3", utils.RoleUser), "11:00")
}

func TestListBookingsScopedToCaller(t *testing.T) {
	r := newTestRouter(t)
	createBooking(t, r, token(t, "user-1", utils.RoleUser), "09:00")
	createBooking(t, r, token(t, "user-2", utils.RoleUser), "09:40")

	var resp struct {
		Bookings []models.Booking `json:"bookings"`
		Count    int              `json:"count"`
	}
	w := do(r, http.MethodGet, "/api/bookings?userId=user-2", token(t, "user-1", utils.RoleUser), nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Bookings[0].UserID != "user-1" {
		t.Fatalf("user listing leaked bookings: %+v", resp.Bookings)
	}

	w = do(r, http.MethodGet, "/api/bookings?status=pending", token(t, providerID, utils.RoleProvider), nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Fatalf("provider listing count = %d", resp.Count)
	}

	if w := do(r, http.MethodGet, "/api/bookings?limit=abc", token(t, "user-1", utils.RoleUser), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: status %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/bookings?status=LOST", token(t, "user-1", utils.RoleUser), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: status %d", w.Code)
	}
}

func TestScheduleManagement(t *testing.T) {
	r := newTestRouter(t)
	ownerTok := token(t, providerID, utils.RoleProvider)
	schedulePath := "/api/providers/" + providerID + "/schedule"

	entries := make([]models.WeeklyScheduleEntry, 7)
	for d := range entries {
		entries[d] = models.WeeklyScheduleEntry{DayOfWeek: d, StartTime: "08:00", EndTime: "16:00", IsActive: d >= 1 && d <= 5}
	}
	payload := models.WeeklyScheduleRequest{Entries: entries}

	if w := do(r, http.MethodPut, schedulePath, token(t, "prov-2", utils.RoleProvider), payload); w.Code != http.StatusForbidden {
		t.Fatalf("foreign provider update: status %d", w.Code)
	}
	if w := do(r, http.MethodPut, schedulePath, ownerTok, models.WeeklyScheduleRequest{Entries: entries[:6]}); w.Code != http.StatusBadRequest {
		t.Fatalf("six entries: status %d", w.Code)
	}
	if w := do(r, http.MethodPut, schedulePath, ownerTok, payload); w.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, schedulePath, "", nil); w.Code != http.StatusOK {
		t.Fatalf("public read: status %d", w.Code)
	}

	overridesPath := "/api/providers/" + providerID + "/overrides"
	w := do(r, http.MethodPost, overridesPath, ownerTok, models.CreateOverrideRequest{Date: monday, IsBlocked: true, Reason: "holiday"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create override: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		Override models.ScheduleOverride `json:"override"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	slots := do(r, http.MethodGet, "/api/providers/"+providerID+"/services/"+serviceID+"/slots?date="+monday+"&view=starts", "", nil)
	if !bytes.Contains(slots.Body.Bytes(), []byte(`"startTimes":[]`)) {
		t.Fatalf("blocked day still offers starts: %s", slots.Body.String())
	}

	deletePath := "/api/overrides/" + created.Override.ID
	if w := do(r, http.MethodDelete, deletePath, token(t, "prov-2", utils.RoleProvider), nil); w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: status %d", w.Code)
	}
	if w := do(r, http.MethodDelete, deletePath, ownerTok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	if w := do(r, http.MethodDelete, deletePath, ownerTok, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d", w.Code)
	}
}

func TestStatsAndHealth(t *testing.T) {
	r := newTestRouter(t)
	createBooking(t, r, token(t, "user-1", utils.RoleUser), "09:00")

	w := do(r, http.MethodGet, "/api/providers/"+providerID+"/stats", token(t, utils.RoleAdmin, utils.RoleAdmin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Stats models.BookingStats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stats.Total != 1 || resp.Stats.ByStatus[models.BookingStatusPending] != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
	if w := do(r, http.MethodGet, "/api/providers/"+providerID+"/stats", token(t, "user-1", utils.RoleUser), nil); w.Code != http.StatusForbidden {
		t.Fatalf("user stats: status %d", w.Code)
	}

	if w := do(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: status %d body %s", w.Code, w.Body.String())
	}
}
