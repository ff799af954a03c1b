package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
)

// Executor mock of builder.Executor
type Executor struct {
	mock.Mock
}

func (_m *Executor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	_ca := []interface{}{ctx, query}
	_ca = append(_ca, args...)
	ret := _m.Called(_ca...)

	var r0 sql.Result
	if rf, ok := ret.Get(0).(func(context.Context, string, ...interface{}) sql.Result); ok {
		r0 = rf(ctx, query, args...)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(sql.Result)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, ...interface{}) error); ok {
		r1 = rf(ctx, query, args...)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
