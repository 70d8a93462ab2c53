// Package mocks содержит моки testify для интерфейсов репозитория, хранилища и сервиса.
// Моки повторяют раскладку mockery с EXPECT() и поддерживаются вручную.
package mocks

import (
	context "context"

	models "github.com/kirangautam45/userprofile/models"
	mock "github.com/stretchr/testify/mock"
)

// AccountService is a mock type for the AccountService type
type AccountService struct {
	mock.Mock
}

type AccountService_Expecter struct {
	mock *mock.Mock
}

func (_m *AccountService) EXPECT() *AccountService_Expecter {
	return &AccountService_Expecter{mock: &_m.Mock}
}

// Register provides a mock function with given fields: ctx, in
func (_m *AccountService) Register(ctx context.Context, in models.RegisterInput) error {
	ret := _m.Called(ctx, in)
	return ret.Error(0)
}

// AccountService_Register_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Register'
type AccountService_Register_Call struct {
	*mock.Call
}

// Register is a helper method to define mock.On call
func (_e *AccountService_Expecter) Register(ctx interface{}, in interface{}) *AccountService_Register_Call {
	return &AccountService_Register_Call{Call: _e.mock.On("Register", ctx, in)}
}

func (_c *AccountService_Register_Call) Return(_a0 error) *AccountService_Register_Call {
	_c.Call.Return(_a0)
	return _c
}

// Login provides a mock function with given fields: ctx, username, password
func (_m *AccountService) Login(ctx context.Context, username string, password string) (*models.User, error) {
	return userResult(_m.Called(ctx, username, password))
}

// AccountService_Login_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Login'
type AccountService_Login_Call struct {
	*mock.Call
}

// Login is a helper method to define mock.On call
func (_e *AccountService_Expecter) Login(ctx interface{}, username interface{}, password interface{}) *AccountService_Login_Call {
	return &AccountService_Login_Call{Call: _e.mock.On("Login", ctx, username, password)}
}

func (_c *AccountService_Login_Call) Return(_a0 *models.User, _a1 error) *AccountService_Login_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// IssueRememberToken provides a mock function with given fields: ctx, user
func (_m *AccountService) IssueRememberToken(ctx context.Context, user *models.User) (string, error) {
	ret := _m.Called(ctx, user)
	return ret.String(0), ret.Error(1)
}

// AccountService_IssueRememberToken_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'IssueRememberToken'
type AccountService_IssueRememberToken_Call struct {
	*mock.Call
}

// IssueRememberToken is a helper method to define mock.On call
func (_e *AccountService_Expecter) IssueRememberToken(ctx interface{}, user interface{}) *AccountService_IssueRememberToken_Call {
	return &AccountService_IssueRememberToken_Call{Call: _e.mock.On("IssueRememberToken", ctx, user)}
}

func (_c *AccountService_IssueRememberToken_Call) Return(_a0 string, _a1 error) *AccountService_IssueRememberToken_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// LoginWithRememberToken provides a mock function with given fields: ctx, token
func (_m *AccountService) LoginWithRememberToken(ctx context.Context, token string) (*models.User, error) {
	return userResult(_m.Called(ctx, token))
}

// AccountService_LoginWithRememberToken_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'LoginWithRememberToken'
type AccountService_LoginWithRememberToken_Call struct {
	*mock.Call
}

// LoginWithRememberToken is a helper method to define mock.On call
func (_e *AccountService_Expecter) LoginWithRememberToken(ctx interface{}, token interface{}) *AccountService_LoginWithRememberToken_Call {
	return &AccountService_LoginWithRememberToken_Call{Call: _e.mock.On("LoginWithRememberToken", ctx, token)}
}

func (_c *AccountService_LoginWithRememberToken_Call) Return(_a0 *models.User, _a1 error) *AccountService_LoginWithRememberToken_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// Logout provides a mock function with given fields: ctx, identity
func (_m *AccountService) Logout(ctx context.Context, identity models.Identity) error {
	ret := _m.Called(ctx, identity)
	return ret.Error(0)
}

// AccountService_Logout_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Logout'
type AccountService_Logout_Call struct {
	*mock.Call
}

// Logout is a helper method to define mock.On call
func (_e *AccountService_Expecter) Logout(ctx interface{}, identity interface{}) *AccountService_Logout_Call {
	return &AccountService_Logout_Call{Call: _e.mock.On("Logout", ctx, identity)}
}

func (_c *AccountService_Logout_Call) Return(_a0 error) *AccountService_Logout_Call {
	_c.Call.Return(_a0)
	return _c
}

// ChangePassword provides a mock function with given fields: ctx, username, in
func (_m *AccountService) ChangePassword(ctx context.Context, username string, in models.ChangePasswordInput) error {
	ret := _m.Called(ctx, username, in)
	return ret.Error(0)
}

// AccountService_ChangePassword_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ChangePassword'
type AccountService_ChangePassword_Call struct {
	*mock.Call
}

// ChangePassword is a helper method to define mock.On call
func (_e *AccountService_Expecter) ChangePassword(ctx interface{}, username interface{}, in interface{}) *AccountService_ChangePassword_Call {
	return &AccountService_ChangePassword_Call{Call: _e.mock.On("ChangePassword", ctx, username, in)}
}

func (_c *AccountService_ChangePassword_Call) Return(_a0 error) *AccountService_ChangePassword_Call {
	_c.Call.Return(_a0)
	return _c
}

// UpdateProfile provides a mock function with given fields: ctx, username, in
func (_m *AccountService) UpdateProfile(ctx context.Context, username string, in models.ProfileInput) (*models.User, error) {
	return userResult(_m.Called(ctx, username, in))
}

// AccountService_UpdateProfile_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'UpdateProfile'
type AccountService_UpdateProfile_Call struct {
	*mock.Call
}

// UpdateProfile is a helper method to define mock.On call
func (_e *AccountService_Expecter) UpdateProfile(ctx interface{}, username interface{}, in interface{}) *AccountService_UpdateProfile_Call {
	return &AccountService_UpdateProfile_Call{Call: _e.mock.On("UpdateProfile", ctx, username, in)}
}

func (_c *AccountService_UpdateProfile_Call) Return(_a0 *models.User, _a1 error) *AccountService_UpdateProfile_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// UpdateAvatar provides a mock function with given fields: ctx, username, upload
func (_m *AccountService) UpdateAvatar(ctx context.Context, username string, upload *models.AvatarUpload) (*models.User, error) {
	return userResult(_m.Called(ctx, username, upload))
}

// AccountService_UpdateAvatar_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'UpdateAvatar'
type AccountService_UpdateAvatar_Call struct {
	*mock.Call
}

// UpdateAvatar is a helper method to define mock.On call
func (_e *AccountService_Expecter) UpdateAvatar(ctx interface{}, username interface{}, upload interface{}) *AccountService_UpdateAvatar_Call {
	return &AccountService_UpdateAvatar_Call{Call: _e.mock.On("UpdateAvatar", ctx, username, upload)}
}

func (_c *AccountService_UpdateAvatar_Call) Return(_a0 *models.User, _a1 error) *AccountService_UpdateAvatar_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// GetUser provides a mock function with given fields: ctx, username
func (_m *AccountService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return userResult(_m.Called(ctx, username))
}

// AccountService_GetUser_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'GetUser'
type AccountService_GetUser_Call struct {
	*mock.Call
}

// GetUser is a helper method to define mock.On call
func (_e *AccountService_Expecter) GetUser(ctx interface{}, username interface{}) *AccountService_GetUser_Call {
	return &AccountService_GetUser_Call{Call: _e.mock.On("GetUser", ctx, username)}
}

func (_c *AccountService_GetUser_Call) Return(_a0 *models.User, _a1 error) *AccountService_GetUser_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// AvatarURL provides a mock function with given fields: user
func (_m *AccountService) AvatarURL(user *models.User) string {
	ret := _m.Called(user)
	return ret.String(0)
}

// AccountService_AvatarURL_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'AvatarURL'
type AccountService_AvatarURL_Call struct {
	*mock.Call
}

// AvatarURL is a helper method to define mock.On call
func (_e *AccountService_Expecter) AvatarURL(user interface{}) *AccountService_AvatarURL_Call {
	return &AccountService_AvatarURL_Call{Call: _e.mock.On("AvatarURL", user)}
}

func (_c *AccountService_AvatarURL_Call) Return(_a0 string) *AccountService_AvatarURL_Call {
	_c.Call.Return(_a0)
	return _c
}

// MaxAvatarSize provides a mock function with no fields
func (_m *AccountService) MaxAvatarSize() int64 {
	ret := _m.Called()
	return ret.Get(0).(int64)
}

// AccountService_MaxAvatarSize_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'MaxAvatarSize'
type AccountService_MaxAvatarSize_Call struct {
	*mock.Call
}

// MaxAvatarSize is a helper method to define mock.On call
func (_e *AccountService_Expecter) MaxAvatarSize() *AccountService_MaxAvatarSize_Call {
	return &AccountService_MaxAvatarSize_Call{Call: _e.mock.On("MaxAvatarSize")}
}

func (_c *AccountService_MaxAvatarSize_Call) Return(_a0 int64) *AccountService_MaxAvatarSize_Call {
	_c.Call.Return(_a0)
	return _c
}

// NewAccountService creates a new instance of AccountService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewAccountService(t interface {
	mock.TestingT
	Cleanup(func())
}) *AccountService {
	m := &AccountService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
