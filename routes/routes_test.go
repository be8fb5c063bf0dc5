package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"device-feedback-server/database"
	"device-feedback-server/models"
	"device-feedback-server/repository"
	"device-feedback-server/services"
	"device-feedback-server/utils"
)

const testSecret = "route-test-secret"

type recordingNotifier struct {
	mu       sync.Mutex
	Subjects []string
	To       []string
	Fail     bool
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.To = append(n.To, to)
	n.Subjects = append(n.Subjects, subject)
	return !n.Fail
}

type fakeUploader struct {
	Err      error
	Filename string
}

func (u *fakeUploader) Upload(ctx context.Context, file io.Reader, filename string, employeeID uint) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	u.Filename = filename
	return fmt.Sprintf("https://images.example/%d/%s", employeeID, filename), nil
}

// testServer: admin 1, employee 2, merchant 3, device 9 linked to merchant 3,
// device 5 unlinked, ten catalog questions.
type testServer struct {
	db       *gorm.DB
	router   *gin.Engine
	notifier *recordingNotifier
	uploader *fakeUploader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), logger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	seed := []interface{}{
		&models.Employee{ID: 1, Name: "Ada", Email: "admin@example.com", Phone: "+15550001", PasswordHash: hash, Type: models.EmployeeTypeAdmin},
		&models.Employee{ID: 2, Name: "Dana", Email: "dana@example.com", Phone: "+15550002", PasswordHash: hash},
		&models.Merchant{ID: 3, BusinessName: "Main St Deli", Email: "deli@example.com", Phone: "+15551003"},
		&models.Device{ID: 9, Model: "P9", Manufacturer: "Acme"},
		&models.Device{ID: 5, Model: "P5", Manufacturer: "Acme"},
		&models.MerchantDevice{MerchantID: 3, DeviceID: 9},
	}
	for i := 1; i <= 10; i++ {
		seed = append(seed, &models.Question{ID: uint(i), Description: fmt.Sprintf("Question %d", i)})
	}
	for _, v := range seed {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed %T: %v", v, err)
		}
	}

	employees := repository.NewEmployeeRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	notifier := &recordingNotifier{}
	uploader := &fakeUploader{}

	workflow := services.NewFeedbackWorkflow(
		services.NewValidationPipeline(employees, repository.NewMerchantRepo(db), repository.NewDeviceRepo(db), repository.NewMerchantDeviceRepo(db)),
		services.NewPersistenceCoordinator(feedback, repository.NewQuestionRepo(db)),
		services.NewNotificationDispatcher(notifier),
	)

	router := gin.New()
	RegisterRoutes(router, Deps{
		Workflow:    workflow,
		Reports:     services.NewReportService(feedback),
		Employees:   employees,
		Uploader:    uploader,
		JWTSecret:   testSecret,
		TokenExpiry: time.Hour,
	})

	return &testServer{db: db, router: router, notifier: notifier, uploader: uploader}
}

func (s *testServer) token(t *testing.T, employeeID uint) string {
	t.Helper()
	tok, err := utils.GenerateToken(employeeID, "", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) feedbackCount(t *testing.T) int64 {
	var n int64
	if err := s.db.Model(&models.Feedback{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func submission(deviceID uint) map[string]interface{} {
	answers := make([]map[string]interface{}, 10)
	for i := range answers {
		answers[i] = map[string]interface{}{"question_id": i + 1, "answer": fmt.Sprintf("answer %d", i+1)}
	}
	return map[string]interface{}{
		"merchant_id": 3,
		"device_id":   deviceID,
		"rating":      4,
		"comment":     "works well",
		"answers":     answers,
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
	State      string          `json:"state"`
	FeedbackID uint            `json:"feedback_id"`
	Data       json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "Dana@example.com", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil || data.Token == "" {
		t.Fatalf("no token in response: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response leaks password hash field")
	}

	me := s.do(t, http.MethodGet, "/api/v1/auth/me", data.Token, nil)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), "ROLE_EMPLOYEE") {
		t.Errorf("/me = %d %s", me.Code, me.Body.String())
	}

	bad := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "dana@example.com", "password": "nope"})
	if bad.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", bad.Code)
	}
	unknown := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "password123"})
	if unknown.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d", unknown.Code)
	}
}

func TestSubmitFeedback(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 2), submission(9))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var fb models.Feedback
	if err := json.Unmarshal(decode(t, w).Data, &fb); err != nil {
		t.Fatalf("decode feedback: %v", err)
	}
	if fb.ID == 0 || fb.UUID == "" || fb.EmployeeID != 2 || len(fb.Questions) != 10 {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if len(s.notifier.Subjects) != 1 || s.notifier.Subjects[0] != services.SubjectFeedbackSubmitted || s.notifier.To[0] != "dana@example.com" {
		t.Errorf("notifications = %v to %v", s.notifier.Subjects, s.notifier.To)
	}
}

func TestSubmitFeedbackAuthorization(t *testing.T) {
	s := newTestServer(t)

	body := submission(9)
	body["employee_id"] = 1
	if w := s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 2), body); w.Code != http.StatusForbidden {
		t.Errorf("employee submitting for another: status = %d", w.Code)
	}

	body["employee_id"] = 2
	if w := s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 1), body); w.Code != http.StatusCreated {
		t.Errorf("admin submitting for employee: status = %d %s", w.Code, w.Body.String())
	}

	if w := s.do(t, http.MethodPost, "/api/v1/feedback", "", submission(9)); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d", w.Code)
	}
}

func TestSubmitFeedbackErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      func() map[string]interface{}
		wantCode  int
		wantClass string
	}{
		{
			name:      "unlinked device",
			body:      func() map[string]interface{} { return submission(5) },
			wantCode:  http.StatusUnprocessableEntity,
			wantClass: "business_rule",
		},
		{
			name: "unknown merchant",
			body: func() map[string]interface{} {
				b := submission(9)
				b["merchant_id"] = 77
				return b
			},
			wantCode:  http.StatusNotFound,
			wantClass: "not_found",
		},
		{
			name: "nine answers",
			body: func() map[string]interface{} {
				b := submission(9)
				b["answers"] = b["answers"].([]map[string]interface{})[:9]
				return b
			},
			wantCode:  http.StatusBadRequest,
			wantClass: "validation",
		},
		{
			name: "rating out of range",
			body: func() map[string]interface{} {
				b := submission(9)
				b["rating"] = 6
				return b
			},
			wantCode:  http.StatusBadRequest,
			wantClass: "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 2), tt.body())
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if env := decode(t, w); env.Error != tt.wantClass {
				t.Errorf("error class = %q, want %q", env.Error, tt.wantClass)
			}
			if n := s.feedbackCount(t); n != 0 {
				t.Errorf("expected no feedback rows, got %d", n)
			}
		})
	}
}

func TestSubmitFeedbackUnlinkedSendsFailureNotice(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 2), submission(5))

	if len(s.notifier.Subjects) != 1 || s.notifier.Subjects[0] != services.SubjectFeedbackFailed {
		t.Errorf("notifications = %v", s.notifier.Subjects)
	}
}

func TestSubmitFeedbackNotificationFailure(t *testing.T) {
	s := newTestServer(t)
	s.notifier.Fail = true

	w := s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 2), submission(9))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	env := decode(t, w)
	if env.FeedbackID == 0 || env.State != string(services.StateFailed) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if n := s.feedbackCount(t); n != 1 {
		t.Errorf("feedback should stay persisted, got %d rows", n)
	}
}

func TestListAndGetFeedback(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2)
	for i := 0; i < 2; i++ {
		if w := s.do(t, http.MethodPost, "/api/v1/feedback", tok, submission(9)); w.Code != http.StatusCreated {
			t.Fatalf("seed submit: %d %s", w.Code, w.Body.String())
		}
	}

	var list []models.Feedback
	w := s.do(t, http.MethodGet, "/api/v1/feedback?merchant_id=3&device_id=5", tok, nil)
	if err := json.Unmarshal(decode(t, w).Data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("merchant filter should win over device filter, got %d rows", len(list))
	}

	w = s.do(t, http.MethodGet, "/api/v1/feedback?device_id=5", tok, nil)
	list = nil
	if err := json.Unmarshal(decode(t, w).Data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("device 5 has no feedback, got %d", len(list))
	}

	if w := s.do(t, http.MethodGet, "/api/v1/feedback?rating=abc", tok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad rating status = %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/feedback/1", tok, nil)
	var fb models.Feedback
	if err := json.Unmarshal(decode(t, w).Data, &fb); err != nil || len(fb.Questions) != 10 {
		t.Errorf("get feedback: %v, %d questions", err, len(fb.Questions))
	}

	if w := s.do(t, http.MethodGet, "/api/v1/feedback/999", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing feedback status = %d", w.Code)
	}
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	for _, rating := range []int{4, 2} {
		body := submission(9)
		body["rating"] = rating
		if w := s.do(t, http.MethodPost, "/api/v1/feedback", s.token(t, 2), body); w.Code != http.StatusCreated {
			t.Fatalf("seed submit: %d %s", w.Code, w.Body.String())
		}
	}

	if w := s.do(t, http.MethodGet, "/api/v1/reports/average-rating/devices", s.token(t, 2), nil); w.Code != http.StatusForbidden {
		t.Errorf("employee access status = %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/reports/average-rating/devices", s.token(t, 1), nil)
	var averages []models.DeviceAverageRating
	if err := json.Unmarshal(decode(t, w).Data, &averages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(averages) != 1 || averages[0].DeviceID != 9 || averages[0].AverageRating != 3.0 {
		t.Errorf("averages = %+v", averages)
	}

	w = s.do(t, http.MethodGet, "/api/v1/reports/feedback-count/employees", s.token(t, 1), nil)
	var perEmployee []models.EmployeeFeedbackCount
	if err := json.Unmarshal(decode(t, w).Data, &perEmployee); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(perEmployee) != 1 || perEmployee[0].Email != "dana@example.com" || perEmployee[0].FeedbackCount != 2 {
		t.Errorf("per employee = %+v", perEmployee)
	}

	w = s.do(t, http.MethodGet, "/api/v1/reports/feedback-count/devices", s.token(t, 1), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"feedback_count":2`) {
		t.Errorf("per device = %d %s", w.Code, w.Body.String())
	}
}

func uploadRequest(t *testing.T, filename string, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write(bytes.Repeat([]byte{0xff}, size))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadFeedbackImage(t *testing.T) {
	s := newTestServer(t)

	send := func(filename string) *httptest.ResponseRecorder {
		body, contentType := uploadRequest(t, filename, 128)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback/images", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+s.token(t, 2))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := send("screen.png")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "https://images.example/2/screen.png") {
		t.Errorf("upload = %d %s", w.Code, w.Body.String())
	}

	if w := send("notes.txt"); w.Code != http.StatusBadRequest {
		t.Errorf("non-image status = %d", w.Code)
	}

	s.uploader.Err = errors.New("cloud down")
	if w := send("screen.png"); w.Code != http.StatusBadGateway {
		t.Errorf("failed upload status = %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&services.NotFoundError{Kind: services.EntityDevice, ID: 1}, http.StatusNotFound},
		{&services.BusinessRuleError{}, http.StatusUnprocessableEntity},
		{&services.ValidationError{}, http.StatusBadRequest},
		{&services.PersistenceError{Op: "x", Err: errors.New("db")}, http.StatusInternalServerError},
		{&services.NotificationError{}, http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%T) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
