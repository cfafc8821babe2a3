package enrollment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
)

// MockS3Client is a mock implementation of the storage.S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	args := m.Called(ctx, bucket, key, contentType, body)
	return args.Error(0)
}

func (m *MockS3Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Client) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiration)
	return args.String(0), args.Error(1)
}

func TestS3UploaderStore(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("Upload",
		mock.Anything,
		"enrollment-outputs",
		"generated/9b2f0c3a/acta_compromiso_52804123.pdf",
		"application/pdf",
		mock.Anything,
	).Return(nil)
	mockClient.On("GetPresignedURL",
		mock.Anything,
		"enrollment-outputs",
		"generated/9b2f0c3a/acta_compromiso_52804123.pdf",
		15*time.Minute,
	).Return("https://storage.example/signed/acta", nil)

	uploader := NewS3Uploader(mockClient, "enrollment-outputs", "generated", 15*time.Minute)
	doc := &docgen.DocumentOutput{
		Kind:     docgen.KindActa,
		Filename: "acta_compromiso_52804123.pdf",
		Content:  []byte("%PDF-1.7 content"),
	}

	url, err := uploader.Store(context.Background(), "9b2f0c3a", doc)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/signed/acta", url)
	mockClient.AssertExpectations(t)
}

func TestS3UploaderStoreWithoutLinkTTL(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	uploader := NewS3Uploader(mockClient, "enrollment-outputs", "generated", 0)
	url, err := uploader.Store(context.Background(), "9b2f0c3a", &docgen.DocumentOutput{
		Kind:     docgen.KindActa,
		Filename: "acta_compromiso_52804123.pdf",
	})
	require.NoError(t, err)
	assert.Empty(t, url)
	mockClient.AssertNotCalled(t, "GetPresignedURL",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestS3UploaderStoreWrapsError(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	uploader := NewS3Uploader(mockClient, "enrollment-outputs", "generated", 15*time.Minute)
	_, err := uploader.Store(context.Background(), "9b2f0c3a", &docgen.DocumentOutput{
		Kind:     docgen.KindActa,
		Filename: "acta_compromiso_52804123.pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acta_compromiso")
	assert.NotContains(t, err.Error(), "52804123")
}

func TestS3UploaderStoreLinkFailure(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	mockClient.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	uploader := NewS3Uploader(mockClient, "enrollment-outputs", "generated", 15*time.Minute)
	url, err := uploader.Store(context.Background(), "9b2f0c3a", &docgen.DocumentOutput{
		Kind:     docgen.KindActa,
		Filename: "acta_compromiso_52804123.pdf",
	})
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "acta_compromiso")
	assert.NotContains(t, err.Error(), "52804123")
}
