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
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码，nil 返回 0。
// 非 codecError 的错误（例如底层 msgp 的截断错误）统一归为 errUnexpected。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case codecError:
		return specificErr.code()
	default:
		return errUnexpected.code()
	}
}

// IsFormatError 判断 err 是否为格式错误：数组长度不符、规范文本解析失败或数值越界。
// 截断、类型标记不符等底层原语错误不属于格式错误。
func IsFormatError(err error) bool {
	return errors.Is(err, ErrArityMismatch) ||
		errors.Is(err, ErrTextParse) ||
		errors.Is(err, ErrValueOutOfRange)
}

func GetErrorType(err error) ErrorType {
	if merr, ok := errors.Cause(err).(codecError); ok {
		return merr.errType
	}

	return SystemError
}

// Service related
func WrapErrServiceInternal(reason string, msg ...string) error {
	err := wrapFieldsWithDesc(ErrServiceInternal, reason)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Resolver related
func WrapErrFormatterNotRegistered(typeName string, msg ...string) error {
	err := wrapFields(ErrFormatterNotRegistered, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrFormatterRegistryFrozen(typeName string, msg ...string) error {
	err := wrapFields(ErrFormatterRegistryFrozen, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Format related
func WrapErrArityMismatch(typeName string, expected, actual int) error {
	return wrapFields(ErrArityMismatch,
		value("type", typeName),
		value("expected", expected),
		value("actual", actual),
	)
}

func WrapErrTextParse(typeName string, text string, cause error) error {
	desc := "<nil>"
	if cause != nil {
		desc = cause.Error()
	}
	return wrapFieldsWithDesc(ErrTextParse, desc,
		value("type", typeName),
		value("text", fmt.Sprintf("%q", text)),
	)
}

func WrapErrValueOutOfRange[T any](typeName string, actual, lower, upper T) error {
	return wrapFields(ErrValueOutOfRange,
		value("type", typeName),
		bound("value", actual, lower, upper),
	)
}

// Envelope related
func WrapErrCompressionFailed(op string, err error) error {
	return wrapFieldsWithDesc(ErrCompressionFailed, err.Error(), value("op", op))
}

// Parameter related
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidMsg(fmt string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmt, args...)
}

func WrapErrTypeMismatch(expected, actual string, msg ...string) error {
	err := wrapFields(ErrTypeMismatch,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err codecError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

func wrapFieldsWithDesc(err codecError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

type boundField struct {
	name  string
	value any
	lower any
	upper any
}

func bound(name string, value, lower, upper any) boundField {
	return boundField{
		name,
		value,
		lower,
		upper,
	}
}

func (f boundField) String() string {
	return fmt.Sprintf("%v out of range %v <= %s <= %v", f.value, f.lower, f.name, f.upper)
}
