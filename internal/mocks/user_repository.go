package mocks

import (
	context "context"

	models "github.com/kirangautam45/userprofile/models"
	mock "github.com/stretchr/testify/mock"
)

// UserRepository is a mock type for the UserRepository type
type UserRepository struct {
	mock.Mock
}

type UserRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *UserRepository) EXPECT() *UserRepository_Expecter {
	return &UserRepository_Expecter{mock: &_m.Mock}
}

func userResult(ret mock.Arguments) (*models.User, error) {
	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

// FindByUsername provides a mock function with given fields: ctx, username
func (_m *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return userResult(_m.Called(ctx, username))
}

// UserRepository_FindByUsername_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByUsername'
type UserRepository_FindByUsername_Call struct {
	*mock.Call
}

// FindByUsername is a helper method to define mock.On call
func (_e *UserRepository_Expecter) FindByUsername(ctx interface{}, username interface{}) *UserRepository_FindByUsername_Call {
	return &UserRepository_FindByUsername_Call{Call: _e.mock.On("FindByUsername", ctx, username)}
}

func (_c *UserRepository_FindByUsername_Call) Return(_a0 *models.User, _a1 error) *UserRepository_FindByUsername_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// FindByEmail provides a mock function with given fields: ctx, email
func (_m *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return userResult(_m.Called(ctx, email))
}

// UserRepository_FindByEmail_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByEmail'
type UserRepository_FindByEmail_Call struct {
	*mock.Call
}

// FindByEmail is a helper method to define mock.On call
func (_e *UserRepository_Expecter) FindByEmail(ctx interface{}, email interface{}) *UserRepository_FindByEmail_Call {
	return &UserRepository_FindByEmail_Call{Call: _e.mock.On("FindByEmail", ctx, email)}
}

func (_c *UserRepository_FindByEmail_Call) Return(_a0 *models.User, _a1 error) *UserRepository_FindByEmail_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// FindByRememberToken provides a mock function with given fields: ctx, token
func (_m *UserRepository) FindByRememberToken(ctx context.Context, token string) (*models.User, error) {
	return userResult(_m.Called(ctx, token))
}

// UserRepository_FindByRememberToken_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByRememberToken'
type UserRepository_FindByRememberToken_Call struct {
	*mock.Call
}

// FindByRememberToken is a helper method to define mock.On call
func (_e *UserRepository_Expecter) FindByRememberToken(ctx interface{}, token interface{}) *UserRepository_FindByRememberToken_Call {
	return &UserRepository_FindByRememberToken_Call{Call: _e.mock.On("FindByRememberToken", ctx, token)}
}

func (_c *UserRepository_FindByRememberToken_Call) Return(_a0 *models.User, _a1 error) *UserRepository_FindByRememberToken_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// Create provides a mock function with given fields: ctx, user
func (_m *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	ret := _m.Called(ctx, user)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, *models.User) int64); ok {
		r0 = rf(ctx, user)
	} else {
		r0 = ret.Get(0).(int64)
	}
	return r0, ret.Error(1)
}

// UserRepository_Create_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Create'
type UserRepository_Create_Call struct {
	*mock.Call
}

// Create is a helper method to define mock.On call
func (_e *UserRepository_Expecter) Create(ctx interface{}, user interface{}) *UserRepository_Create_Call {
	return &UserRepository_Create_Call{Call: _e.mock.On("Create", ctx, user)}
}

func (_c *UserRepository_Create_Call) Run(run func(ctx context.Context, user *models.User)) *UserRepository_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*models.User))
	})
	return _c
}

func (_c *UserRepository_Create_Call) Return(_a0 int64, _a1 error) *UserRepository_Create_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// Update provides a mock function with given fields: ctx, id, upd
func (_m *UserRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) error {
	ret := _m.Called(ctx, id, upd)
	return ret.Error(0)
}

// UserRepository_Update_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Update'
type UserRepository_Update_Call struct {
	*mock.Call
}

// Update is a helper method to define mock.On call
func (_e *UserRepository_Expecter) Update(ctx interface{}, id interface{}, upd interface{}) *UserRepository_Update_Call {
	return &UserRepository_Update_Call{Call: _e.mock.On("Update", ctx, id, upd)}
}

func (_c *UserRepository_Update_Call) Run(run func(ctx context.Context, id int64, upd models.UserUpdate)) *UserRepository_Update_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64), args[2].(models.UserUpdate))
	})
	return _c
}

func (_c *UserRepository_Update_Call) Return(_a0 error) *UserRepository_Update_Call {
	_c.Call.Return(_a0)
	return _c
}

// NewUserRepository creates a new instance of UserRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserRepository {
	m := &UserRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
