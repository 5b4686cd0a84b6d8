package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usuarios-api/internal/domain"
	"usuarios-api/internal/media"
	"usuarios-api/internal/service"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, f domain.Fields, photoURL *string) (uint, error) {
	args := m.Called(ctx, f, photoURL)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockUserRepository) UpdateByID(ctx context.Context, id uint, u domain.UpdateFields) error {
	args := m.Called(ctx, id, u)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByID(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, p media.Photo) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

type MockOrphans struct {
	mock.Mock
}

func (m *MockOrphans) Record(ctx context.Context, url, reason string) error {
	args := m.Called(ctx, url, reason)
	return args.Error(0)
}

var (
	ana   = domain.Fields{Name: "Ana", Email: "a@x.com", Phone: "555"}
	photo = &media.Photo{Filename: "ana.jpg", Data: []byte("jpeg")}
	ctxT  = mock.Anything
)

func TestCreateWithoutPhotoStoresNilURL(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	repo.On("Insert", ctxT, ana, (*string)(nil)).Return(uint(1), nil)

	svc := service.NewUserService(repo, up, nil)
	res, err := svc.Create(context.Background(), service.CreateInput{Fields: ana})

	require.NoError(t, err)
	assert.Equal(t, uint(1), res.ID)
	assert.Nil(t, res.PhotoURL)
	repo.AssertExpectations(t)
	up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestCreateWithPhotoStoresExactUploadURL(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	const url = "https://host/usuarios/abc.jpg"
	up.On("Upload", ctxT, *photo).Return(url, nil).Once()
	repo.On("Insert", ctxT, ana, mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == url
	})).Return(uint(7), nil).Once()

	svc := service.NewUserService(repo, up, nil)
	res, err := svc.Create(context.Background(), service.CreateInput{Fields: ana, Photo: photo})

	require.NoError(t, err)
	assert.Equal(t, uint(7), res.ID)
	require.NotNil(t, res.PhotoURL)
	assert.Equal(t, url, *res.PhotoURL)
	repo.AssertExpectations(t)
	up.AssertExpectations(t)
}

func TestCreateUploadFailureNeverTouchesStore(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	up.On("Upload", ctxT, *photo).Return("", &domain.UploadError{Err: errors.New("503")})

	svc := service.NewUserService(repo, up, nil)
	_, err := svc.Create(context.Background(), service.CreateInput{Fields: ana, Photo: photo})

	var ue *domain.UploadError
	require.ErrorAs(t, err, &ue)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateStoreFailureAfterUploadLeavesOrphan(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	orphans := new(MockOrphans)
	const url = "https://host/usuarios/orphan.jpg"
	storeErr := &domain.StoreError{Op: "insert", Err: errors.New("Column 'nombre' cannot be null")}

	up.On("Upload", ctxT, *photo).Return(url, nil).Once()
	repo.On("Insert", ctxT, ana, mock.Anything).Return(uint(0), storeErr)
	orphans.On("Record", ctxT, url, "insert failed").Return(nil).Once()

	svc := service.NewUserService(repo, up, nil, service.WithOrphanRecorder(orphans))
	_, err := svc.Create(context.Background(), service.CreateInput{Fields: ana, Photo: photo})

	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	orphans.AssertExpectations(t)
	// 只上传一次，没有任何补偿调用
	up.AssertNumberOfCalls(t, "Upload", 1)
}

func TestUpdateWithoutPhotoUsesWithoutPhotoShape(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	repo.On("UpdateByID", ctxT, uint(5), domain.WithoutPhoto{Fields: ana}).Return(nil).Once()

	svc := service.NewUserService(repo, up, nil)
	res, err := svc.Update(context.Background(), 5, service.UpdateInput{Fields: ana})

	require.NoError(t, err)
	assert.False(t, res.PhotoReplaced)
	repo.AssertExpectations(t)
	up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUpdateWithPhotoOverwritesWithNewURL(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	const url = "https://host/usuarios/new.jpg"
	up.On("Upload", ctxT, *photo).Return(url, nil).Once()
	repo.On("UpdateByID", ctxT, uint(5), domain.WithPhoto{Fields: ana, PhotoURL: url}).Return(nil).Once()

	svc := service.NewUserService(repo, up, nil)
	res, err := svc.Update(context.Background(), 5, service.UpdateInput{Fields: ana, Photo: photo})

	require.NoError(t, err)
	assert.True(t, res.PhotoReplaced)
	repo.AssertExpectations(t)
}

func TestUpdateUploadFailureNeverTouchesStore(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	up.On("Upload", ctxT, *photo).Return("", &domain.TimeoutError{Stage: domain.StageUpload, Err: context.DeadlineExceeded})

	svc := service.NewUserService(repo, up, nil)
	_, err := svc.Update(context.Background(), 5, service.UpdateInput{Fields: ana, Photo: photo})

	var te *domain.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.StageUpload, te.Stage)
	repo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStoreFailureAfterUploadLeavesOrphan(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	orphans := new(MockOrphans)
	lc := &fakeListCache{}
	const url = "https://host/usuarios/replaced.jpg"
	storeErr := &domain.StoreError{Op: "update", Err: errors.New("Data too long for column 'email'")}

	up.On("Upload", ctxT, *photo).Return(url, nil).Once()
	repo.On("UpdateByID", ctxT, uint(5), domain.WithPhoto{Fields: ana, PhotoURL: url}).Return(storeErr).Once()
	orphans.On("Record", ctxT, url, "update failed").Return(nil).Once()

	svc := service.NewUserService(repo, up, nil,
		service.WithOrphanRecorder(orphans), service.WithListCache(lc))
	res, err := svc.Update(context.Background(), 5, service.UpdateInput{Fields: ana, Photo: photo})

	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	assert.False(t, res.PhotoReplaced)
	repo.AssertExpectations(t)
	orphans.AssertExpectations(t)
	up.AssertNumberOfCalls(t, "Upload", 1)
	assert.Equal(t, 0, lc.invalidated)
}

func TestUpdateWithoutPhotoStoreFailureRecordsNothing(t *testing.T) {
	repo := new(MockUserRepository)
	orphans := new(MockOrphans)
	repo.On("UpdateByID", ctxT, uint(5), domain.WithoutPhoto{Fields: ana}).
		Return(&domain.StoreError{Op: "update", Err: errors.New("gone away")})

	svc := service.NewUserService(repo, new(MockUploader), nil, service.WithOrphanRecorder(orphans))
	_, err := svc.Update(context.Background(), 5, service.UpdateInput{Fields: ana})

	assert.Error(t, err)
	orphans.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteNeverCallsUploader(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	repo.On("DeleteByID", ctxT, uint(999)).Return(nil).Once()

	svc := service.NewUserService(repo, up, nil)
	require.NoError(t, svc.Delete(context.Background(), 999))
	repo.AssertExpectations(t)
	assert.Empty(t, up.Calls)
}

type fakeListCache struct {
	loads       int
	invalidated int
	users       []domain.User
}

func (f *fakeListCache) Load(ctx context.Context, load func(context.Context) ([]domain.User, error)) ([]domain.User, error) {
	if f.users != nil {
		return f.users, nil
	}
	f.loads++
	u, err := load(ctx)
	if err == nil {
		f.users = u
	}
	return u, err
}

func (f *fakeListCache) Invalidate(context.Context) error {
	f.invalidated++
	f.users = nil
	return nil
}

func TestListGoesThroughCacheAndWritesInvalidate(t *testing.T) {
	repo := new(MockUserRepository)
	up := new(MockUploader)
	lc := &fakeListCache{}
	rows := []domain.User{{ID: 1, Name: "Ana"}}
	repo.On("ListAll", ctxT).Return(rows, nil)
	repo.On("DeleteByID", ctxT, uint(1)).Return(nil)

	svc := service.NewUserService(repo, up, nil, service.WithListCache(lc))
	for i := 0; i < 3; i++ {
		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	}
	assert.Equal(t, 1, lc.loads)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, 1, lc.invalidated)

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lc.loads)
}

func TestFailedWriteKeepsCache(t *testing.T) {
	repo := new(MockUserRepository)
	lc := &fakeListCache{}
	repo.On("DeleteByID", ctxT, uint(1)).Return(&domain.StoreError{Op: "delete", Err: errors.New("gone away")})

	svc := service.NewUserService(repo, new(MockUploader), nil, service.WithListCache(lc))
	assert.Error(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, 0, lc.invalidated)
}
