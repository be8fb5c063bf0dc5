package services

import (
	"context"
	"errors"
	"sync"

	"device-feedback-server/models"
)

var (
	ErrMockStore  = errors.New("mock store error")
	ErrMockLookup = errors.New("mock lookup error")
)

// callLog records the order in which mocks are hit
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type MockEmployeeStore struct {
	Log       *callLog
	Employees map[uint]*models.Employee
	Err       error
	CallCount int
}

func (m *MockEmployeeStore) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	m.CallCount++
	m.Log.add("employee")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Employees[id], nil
}

type MockMerchantStore struct {
	Log       *callLog
	Merchants map[uint]*models.Merchant
	Err       error
	CallCount int
}

func (m *MockMerchantStore) FindByID(ctx context.Context, id uint) (*models.Merchant, error) {
	m.CallCount++
	m.Log.add("merchant")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Merchants[id], nil
}

type MockDeviceStore struct {
	Log       *callLog
	Devices   map[uint]*models.Device
	Err       error
	CallCount int
}

func (m *MockDeviceStore) FindByID(ctx context.Context, id uint) (*models.Device, error) {
	m.CallCount++
	m.Log.add("device")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Devices[id], nil
}

type linkKey struct{ merchantID, deviceID uint }

type MockLinkStore struct {
	Log       *callLog
	Links     map[linkKey]bool
	Err       error
	CallCount int
}

func (m *MockLinkStore) Exists(ctx context.Context, merchantID, deviceID uint) (bool, error) {
	m.CallCount++
	m.Log.add("link")
	if m.Err != nil {
		return false, m.Err
	}
	return m.Links[linkKey{merchantID, deviceID}], nil
}

type MockQuestionCatalog struct {
	Questions []models.Question
	Err       error
	CallCount int
}

func (m *MockQuestionCatalog) ListAll(ctx context.Context) ([]models.Question, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Questions, nil
}

// MockFeedbackStore keeps created rows in memory and assigns sequential ids
type MockFeedbackStore struct {
	mu sync.Mutex

	CreateErr          error
	QuestionFailOnCall int // Fail on Nth association write (0 = never fail)

	Feedback          []*models.Feedback
	Questions         []*models.FeedbackQuestion
	CreateCalls       int
	QuestionCallCount int
}

func (m *MockFeedbackStore) Create(ctx context.Context, feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	feedback.ID = uint(len(m.Feedback) + 1)
	m.Feedback = append(m.Feedback, feedback)
	return nil
}

func (m *MockFeedbackStore) CreateQuestion(ctx context.Context, fq *models.FeedbackQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QuestionCallCount++
	if m.QuestionFailOnCall > 0 && m.QuestionCallCount >= m.QuestionFailOnCall {
		return ErrMockStore
	}
	if err := models.ValidateAnswer(fq.Answer); err != nil {
		return err
	}
	fq.ID = uint(len(m.Questions) + 1)
	m.Questions = append(m.Questions, fq)
	return nil
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// MockNotifier records every send attempt
type MockNotifier struct {
	mu         sync.Mutex
	Sent       []sentMessage
	CallCount  int
	FailOnCall int // Fail on Nth send (0 = never fail)
	FailAll    bool
}

func (m *MockNotifier) Send(ctx context.Context, to, subject, body string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Sent = append(m.Sent, sentMessage{To: to, Subject: subject, Body: body})
	if m.FailAll || (m.FailOnCall > 0 && m.CallCount == m.FailOnCall) {
		return false
	}
	return true
}

// MockFeedbackReader serves canned report rows
type MockFeedbackReader struct {
	Feedback   map[uint]*models.Feedback
	ListResult []models.Feedback
	Employees  []models.EmployeeFeedbackCount
	Averages   []models.DeviceAverageRating
	Counts     []models.DeviceFeedbackCount
	Err        error

	LastFilter models.FeedbackFilter
}

func (m *MockFeedbackReader) FindByID(ctx context.Context, id uint) (*models.Feedback, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Feedback[id], nil
}

func (m *MockFeedbackReader) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ListResult, nil
}

func (m *MockFeedbackReader) CountByEmployee(ctx context.Context) ([]models.EmployeeFeedbackCount, error) {
	return m.Employees, m.Err
}

func (m *MockFeedbackReader) AverageRatingByDevice(ctx context.Context) ([]models.DeviceAverageRating, error) {
	return m.Averages, m.Err
}

func (m *MockFeedbackReader) CountByDevice(ctx context.Context) ([]models.DeviceFeedbackCount, error) {
	return m.Counts, m.Err
}

// fixture is a consistent set of mocks: employee 1, merchant 2, device 3
// linked to merchant 2, device 4 not linked, and a catalog of ten questions.
type fixture struct {
	log       *callLog
	employees *MockEmployeeStore
	merchants *MockMerchantStore
	devices   *MockDeviceStore
	links     *MockLinkStore
	catalog   *MockQuestionCatalog
	store     *MockFeedbackStore
	notifier  *MockNotifier
}

func newFixture() *fixture {
	log := &callLog{}
	questions := make([]models.Question, 10)
	for i := range questions {
		questions[i] = models.Question{ID: uint(i + 1), Description: "Question " + string(rune('A'+i))}
	}
	return &fixture{
		log: log,
		employees: &MockEmployeeStore{Log: log, Employees: map[uint]*models.Employee{
			1: {ID: 1, Name: "Dana", Email: "dana@example.com", Type: models.EmployeeTypeEmployee},
		}},
		merchants: &MockMerchantStore{Log: log, Merchants: map[uint]*models.Merchant{
			2: {ID: 2, BusinessName: "Corner Shop"},
		}},
		devices: &MockDeviceStore{Log: log, Devices: map[uint]*models.Device{
			3: {ID: 3, Model: "T-100", Manufacturer: "Acme"},
			4: {ID: 4, Model: "T-200", Manufacturer: "Acme"},
		}},
		links:    &MockLinkStore{Log: log, Links: map[linkKey]bool{{2, 3}: true}},
		catalog:  &MockQuestionCatalog{Questions: questions},
		store:    &MockFeedbackStore{},
		notifier: &MockNotifier{},
	}
}

func (f *fixture) validator() *ValidationPipeline {
	return NewValidationPipeline(f.employees, f.merchants, f.devices, f.links)
}

func (f *fixture) persister() *PersistenceCoordinator {
	c := NewPersistenceCoordinator(f.store, f.catalog)
	c.newUUID = func() string { return "00000000-0000-0000-0000-000000000001" }
	return c
}

func (f *fixture) workflow() *FeedbackWorkflow {
	return NewFeedbackWorkflow(f.validator(), f.persister(), NewNotificationDispatcher(f.notifier))
}

func tenAnswers() []Answer {
	answers := make([]Answer, 10)
	for i := range answers {
		answers[i] = Answer{QuestionID: uint(i + 1), Text: "answer"}
	}
	return answers
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		EmployeeID: 1,
		MerchantID: 2,
		DeviceID:   3,
		Submission: Submission{Rating: 4, Comment: "works well", Answers: tenAnswers()},
		Principal:  Principal{EmployeeID: 1, Email: "dana@example.com"},
	}
}
