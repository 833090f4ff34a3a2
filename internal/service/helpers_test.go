package service

import (
	"context"
	"io"

	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/pkg/authapi"
	"paper-grading-be/pkg/bitable"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakeRecordClient struct {
	createFn func(ctx context.Context, fields map[string]interface{}) (string, error)
	getFn    func(ctx context.Context, id string) (*bitable.Record, error)
	listFn   func(ctx context.Context, page, pageSize int) ([]bitable.Record, int, error)
	uploadFn func(ctx context.Context, name, contentType string, content io.Reader, size int64) (*bitable.FileUploadResult, error)

	createCalls int
	getCalls    int
	listCalls   int
	uploadCalls int
}

func (f *fakeRecordClient) CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error) {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, fields)
	}
	return "rec-1", nil
}

func (f *fakeRecordClient) GetRecord(ctx context.Context, id string) (*bitable.Record, error) {
	f.getCalls++
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return &bitable.Record{ID: id, Fields: map[string]interface{}{}}, nil
}

func (f *fakeRecordClient) ListRecords(ctx context.Context, page, pageSize int) ([]bitable.Record, int, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (f *fakeRecordClient) UploadFile(ctx context.Context, name, contentType string, content io.Reader, size int64) (*bitable.FileUploadResult, error) {
	f.uploadCalls++
	if f.uploadFn != nil {
		return f.uploadFn(ctx, name, contentType, content, size)
	}
	return &bitable.FileUploadResult{FileToken: "ft-1", URL: "https://files.example/ft-1"}, nil
}

type fakeGateway struct {
	submitFn func(ctx context.Context, req *dto.SubmitPaperRequest) (string, error)
	getFn    func(ctx context.Context, id string) (*entity.Submission, error)

	submitCalls int
	getCalls    int
	lastSubmit  *dto.SubmitPaperRequest
}

func (f *fakeGateway) Submit(ctx context.Context, req *dto.SubmitPaperRequest) (string, error) {
	f.submitCalls++
	f.lastSubmit = req
	if f.submitFn != nil {
		return f.submitFn(ctx, req)
	}
	return "rec-1", nil
}

func (f *fakeGateway) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	f.getCalls++
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeGateway) ListPage(ctx context.Context, page, pageSize int) (*dto.SubmissionListResponse, error) {
	return &dto.SubmissionListResponse{}, nil
}

type fakeEventPublisher struct {
	published []string
}

func (f *fakeEventPublisher) PublishSubmissionCreated(ctx context.Context, attemptID, recordID string) error {
	f.published = append(f.published, attemptID)
	return nil
}

type fakeAuthClient struct {
	loginFn  func(ctx context.Context, username, password string) (*authapi.User, string, error)
	logoutFn func(ctx context.Context, sessionCookie string) error
	meFn     func(ctx context.Context, sessionCookie, bearerToken string) (*authapi.User, error)
}

func (f *fakeAuthClient) Login(ctx context.Context, username, password string) (*authapi.User, string, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, username, password)
	}
	return &authapi.User{ID: "u1", Username: username}, "session=abc; Path=/; HttpOnly", nil
}

func (f *fakeAuthClient) Logout(ctx context.Context, sessionCookie string) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx, sessionCookie)
	}
	return nil
}

func (f *fakeAuthClient) Me(ctx context.Context, sessionCookie, bearerToken string) (*authapi.User, error) {
	if f.meFn != nil {
		return f.meFn(ctx, sessionCookie, bearerToken)
	}
	return &authapi.User{ID: "u1", Username: "alice"}, nil
}

type fakeSessionCache struct {
	user       *entity.SessionUser
	saveErr    error
	loadErr    error
	saveCalls  int
	clearCalls int
}

func (f *fakeSessionCache) Save(ctx context.Context, user *entity.SessionUser) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.user = user
	return nil
}

func (f *fakeSessionCache) Load(ctx context.Context) (*entity.SessionUser, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.user, nil
}

func (f *fakeSessionCache) Clear(ctx context.Context) error {
	f.clearCalls++
	f.user = nil
	return nil
}
