// Copyright 2026 The flowgate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

type testErrType struct {
	msg string
}

func (e *testErrType) Error() string {
	return e.msg
}

type timeoutErr struct {
	timeout bool
}

func (e timeoutErr) Error() string { return "timeout err" }
func (e timeoutErr) Timeout() bool { return e.timeout }

func TestIsTimeout(t *testing.T) {
	assert.False(t, serrors.IsTimeout(serrors.New("no timeout")))
	assert.True(t, serrors.IsTimeout(serrors.Wrap("wrapped", timeoutErr{timeout: true})))
	assert.False(t, serrors.IsTimeout(serrors.Wrap("wrapped", timeoutErr{})))
}

func TestWrap(t *testing.T) {
	t.Run("Is", func(t *testing.T) {
		err := serrors.New("simple err")
		wrapped := serrors.Wrap("error", err, "someCtx", "someValue")
		assert.ErrorIs(t, wrapped, err)
		assert.ErrorIs(t, wrapped, wrapped)
	})
	t.Run("As", func(t *testing.T) {
		err := &testErrType{msg: "test err"}
		wrapped := serrors.WrapNoStack("error", err, "someCtx", "someVal")
		var errAs *testErrType
		require.True(t, errors.As(wrapped, &errAs))
		assert.Equal(t, err, errAs)
	})
	t.Run("message with sorted context", func(t *testing.T) {
		err := serrors.Wrap("installing rule", errors.New("closed"), "port", 2, "dpid", 1)
		assert.Equal(t, "installing rule {dpid=1; port=2}: closed", err.Error())
	})
}

func TestIsSelf(t *testing.T) {
	cause := errors.New("cause")
	testCases := map[string]error{
		"New":         serrors.New("new", "k", "v"),
		"Wrap":        serrors.Wrap("wrap", cause, "k", "v"),
		"WrapNoStack": serrors.WrapNoStack("wrap", cause, "k", "v"),
		"Join":        serrors.Join(cause, serrors.New("other"), "k", "v"),
		"JoinNoStack": serrors.JoinNoStack(cause, nil, "k", "v"),
		"nested":      serrors.Wrap("outer", serrors.WrapNoStack("inner", cause, "k", 1)),
	}
	for name, err := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, errors.Is(err, err))
		})
	}
}

func TestJoin(t *testing.T) {
	base := errors.New("base")
	cause := serrors.New("cause")
	joined := serrors.Join(base, cause, "k", "v")
	assert.ErrorIs(t, joined, base)
	assert.ErrorIs(t, joined, cause)
	assert.Equal(t, "base {k=v}: cause", joined.Error())
	assert.NoError(t, serrors.Join(nil, nil))
	assert.ErrorIs(t, serrors.JoinNoStack(base, nil), base)
}

func TestStackTrace(t *testing.T) {
	err := serrors.New("with stack")
	var st interface{ StackTrace() serrors.StackTrace }
	require.True(t, errors.As(err, &st))
	assert.NotEmpty(t, st.StackTrace())

	noStack := serrors.WrapNoStack("without stack", errors.New("plain"))
	require.True(t, errors.As(noStack, &st))
	assert.Empty(t, st.StackTrace())
}

func TestList(t *testing.T) {
	var l serrors.List
	assert.NoError(t, l.ToError())
	l = append(l, errors.New("a"), serrors.New("b"))
	assert.Equal(t, "[ a; b ]", l.ToError().Error())

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, enc.AddArray("errs", l))
	assert.Len(t, enc.Fields["errs"], 2)
}
