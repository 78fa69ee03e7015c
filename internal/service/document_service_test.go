package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

type fakeDocumentRepo struct {
	docs map[string]*models.StudentDocument
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.StudentDocument)}
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *models.StudentDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UploadedAt = time.Now().UTC()
	clone := *doc
	f.docs[doc.ID] = &clone
	return nil
}

func (f *fakeDocumentRepo) FindByID(ctx context.Context, id string) (*models.StudentDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *doc
	return &clone, nil
}

func (f *fakeDocumentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.StudentDocument, error) {
	var docs []models.StudentDocument
	for _, doc := range f.docs {
		if doc.StudentID == studentID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (f *fakeDocumentRepo) ListAll(ctx context.Context, status models.DocumentStatus) ([]models.DocumentDetail, error) {
	var details []models.DocumentDetail
	for _, doc := range f.docs {
		if status != "" && doc.Status != status {
			continue
		}
		details = append(details, models.DocumentDetail{StudentDocument: *doc})
	}
	return details, nil
}

func (f *fakeDocumentRepo) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	doc, ok := f.docs[id]
	if !ok {
		return sql.ErrNoRows
	}
	doc.Status = status
	return nil
}

func TestDocumentServiceUpload(t *testing.T) {
	repo := newFakeDocumentRepo()
	uploader := newFakeUploader()
	svc := NewDocumentService(repo, uploader, 0, nil, nil)

	doc, err := svc.Upload(context.Background(), "student-1", "id_card", Attachment{
		FileName:    "id.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentPending, doc.Status)
	assert.Equal(t, "id_card", doc.DocumentType)
	assert.Contains(t, doc.DocumentURL, "documents/student-1/")
	assert.Len(t, uploader.uploads, 1)
}

func TestDocumentServiceUploadEmptyFile(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), newFakeUploader(), 0, nil, nil)

	_, err := svc.Upload(context.Background(), "student-1", "id_card", Attachment{FileName: "id.jpg"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentServiceUploadTooLarge(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), newFakeUploader(), 4, nil, nil)

	_, err := svc.Upload(context.Background(), "student-1", "id_card", Attachment{
		FileName: "id.jpg",
		Data:     []byte("five!"),
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentServiceUploadMissingType(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), newFakeUploader(), 0, nil, nil)

	_, err := svc.Upload(context.Background(), "student-1", "", Attachment{
		FileName: "id.jpg",
		Data:     []byte("jpeg-bytes"),
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentServiceVerify(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, newFakeUploader(), 0, nil, nil)

	doc, err := svc.Upload(context.Background(), "student-1", "id_card", Attachment{
		FileName: "id.jpg",
		Data:     []byte("jpeg-bytes"),
	})
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), doc.ID, models.DocumentVerified)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentVerified, verified.Status)
}

func TestDocumentServiceVerifyInvalidStatus(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), newFakeUploader(), 0, nil, nil)

	_, err := svc.Verify(context.Background(), uuid.NewString(), models.DocumentPending)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentServiceVerifyMissing(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), newFakeUploader(), 0, nil, nil)

	_, err := svc.Verify(context.Background(), uuid.NewString(), models.DocumentVerified)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDocumentServiceListFiltersByStatus(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, newFakeUploader(), 0, nil, nil)

	doc, err := svc.Upload(context.Background(), "student-1", "id_card", Attachment{
		FileName: "id.jpg", Data: []byte("jpeg-bytes"),
	})
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), "student-2", "fee_receipt", Attachment{
		FileName: "receipt.pdf", Data: []byte("pdf-bytes"),
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), doc.ID, models.DocumentVerified)
	require.NoError(t, err)

	pending, err := svc.List(context.Background(), models.DocumentPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(context.Background(), models.DocumentStatus("Bogus"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
