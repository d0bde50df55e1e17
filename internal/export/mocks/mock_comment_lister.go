package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aconic-ni/customspayapp/internal/request"
)

// MockCommentLister is a testify mock of export.CommentLister.
type MockCommentLister struct {
	mock.Mock
}

func (m *MockCommentLister) ListComments(ctx context.Context, recordID string) ([]request.Comment, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]request.Comment), args.Error(1)
}
