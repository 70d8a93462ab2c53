package mocks

import (
	context "context"
	io "io"

	mock "github.com/stretchr/testify/mock"
)

// AvatarStorage is a mock type for the AvatarStorage type
type AvatarStorage struct {
	mock.Mock
}

type AvatarStorage_Expecter struct {
	mock *mock.Mock
}

func (_m *AvatarStorage) EXPECT() *AvatarStorage_Expecter {
	return &AvatarStorage_Expecter{mock: &_m.Mock}
}

// Store provides a mock function with given fields: ctx, r, size, filename, contentType
func (_m *AvatarStorage) Store(ctx context.Context, r io.Reader, size int64, filename string, contentType string) (string, error) {
	ret := _m.Called(ctx, r, size, filename, contentType)
	return ret.String(0), ret.Error(1)
}

// AvatarStorage_Store_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Store'
type AvatarStorage_Store_Call struct {
	*mock.Call
}

// Store is a helper method to define mock.On call
func (_e *AvatarStorage_Expecter) Store(ctx interface{}, r interface{}, size interface{}, filename interface{}, contentType interface{}) *AvatarStorage_Store_Call {
	return &AvatarStorage_Store_Call{Call: _e.mock.On("Store", ctx, r, size, filename, contentType)}
}

func (_c *AvatarStorage_Store_Call) Return(_a0 string, _a1 error) *AvatarStorage_Store_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// URL provides a mock function with given fields: key
func (_m *AvatarStorage) URL(key string) string {
	ret := _m.Called(key)
	return ret.String(0)
}

// AvatarStorage_URL_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'URL'
type AvatarStorage_URL_Call struct {
	*mock.Call
}

// URL is a helper method to define mock.On call
func (_e *AvatarStorage_Expecter) URL(key interface{}) *AvatarStorage_URL_Call {
	return &AvatarStorage_URL_Call{Call: _e.mock.On("URL", key)}
}

func (_c *AvatarStorage_URL_Call) Return(_a0 string) *AvatarStorage_URL_Call {
	_c.Call.Return(_a0)
	return _c
}

// Remove provides a mock function with given fields: ctx, key
func (_m *AvatarStorage) Remove(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}

// AvatarStorage_Remove_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Remove'
type AvatarStorage_Remove_Call struct {
	*mock.Call
}

// Remove is a helper method to define mock.On call
func (_e *AvatarStorage_Expecter) Remove(ctx interface{}, key interface{}) *AvatarStorage_Remove_Call {
	return &AvatarStorage_Remove_Call{Call: _e.mock.On("Remove", ctx, key)}
}

func (_c *AvatarStorage_Remove_Call) Return(_a0 error) *AvatarStorage_Remove_Call {
	_c.Call.Return(_a0)
	return _c
}

// NewAvatarStorage creates a new instance of AvatarStorage. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewAvatarStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *AvatarStorage {
	m := &AvatarStorage{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
