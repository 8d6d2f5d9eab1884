// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrFormatterNotRegistered("uuid.UUID")
	errors.Wrap(err, "failed to resolve formatter")
	s.ErrorIs(err, ErrFormatterNotRegistered)
	s.Equal(Code(ErrFormatterNotRegistered), Code(err))
	s.Equal(int32(0), Code(nil))
	s.Equal(errUnexpected.errCode, Code(errors.New("short buffer")))

	sameCodeErr := newCodecError("new error", ErrArityMismatch.errCode, false)
	s.True(sameCodeErr.Is(ErrArityMismatch))
}

func (s *ErrSuite) TestWrap() {
	// 解析器相关错误。
	s.ErrorIs(WrapErrFormatterNotRegistered("big.Int"), ErrFormatterNotRegistered)
	s.ErrorIs(WrapErrFormatterRegistryFrozen("big.Int", "register after lookup"), ErrFormatterRegistryFrozen)

	// 格式相关错误。
	s.ErrorIs(WrapErrArityMismatch("complex128", 2, 3), ErrArityMismatch)
	s.ErrorIs(WrapErrTextParse("uuid.UUID", "not-a-uuid", errors.New("invalid UUID length")), ErrTextParse)
	s.ErrorIs(WrapErrValueOutOfRange[int64]("time.Duration", 1<<62, -1<<62, 1<<61), ErrValueOutOfRange)

	// 其它错误。
	s.ErrorIs(WrapErrCompressionFailed("decompress", errors.New("corrupt frame")), ErrCompressionFailed)
	s.ErrorIs(WrapErrParameterInvalid("pointer", "nil"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("target must be a pointer, got %s", "int"), ErrParameterInvalid)
	s.ErrorIs(WrapErrTypeMismatch("*string", "int"), ErrTypeMismatch)
	s.ErrorIs(WrapErrServiceInternal("never throw out"), ErrServiceInternal)
}

func (s *ErrSuite) TestArityMessageNamesType() {
	err := WrapErrArityMismatch("time.Time", 2, 3)
	s.Contains(err.Error(), "type=time.Time")
	s.Contains(err.Error(), "expected=2")
	s.Contains(err.Error(), "actual=3")
}

func (s *ErrSuite) TestTextParseMessage() {
	_, cause := strconv.ParseFloat("1,5", 64)
	err := WrapErrTextParse("decimal.Decimal", "1,5", cause)
	s.Contains(err.Error(), `text="1,5"`)
	s.Contains(err.Error(), "invalid syntax")
}

func (s *ErrSuite) TestIsFormatError() {
	s.True(IsFormatError(WrapErrArityMismatch("complex128", 2, 1)))
	s.True(IsFormatError(WrapErrTextParse("semver.Version", "1.x", nil)))
	s.True(IsFormatError(errors.Wrap(WrapErrValueOutOfRange("time.Duration", 3, 0, 2), "decode")))
	s.False(IsFormatError(WrapErrFormatterNotRegistered("int8")))
	s.False(IsFormatError(errors.New("msgp: too few bytes left to read object")))
	s.False(IsFormatError(nil))
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(InputError, GetErrorType(WrapErrArityMismatch("complex128", 2, 1)))
	s.Equal(SystemError, GetErrorType(WrapErrServiceInternal("boom")))
	s.Equal(SystemError, GetErrorType(errors.New("plain")))
	s.Equal("input_error", InputError.String())
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrTextParse("url.URL", "::", nil), WrapErrArityMismatch("complex128", 2, 0))
	s.Equal(Code(ErrArityMismatch), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
