/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"errors"
	"fmt"

	"github.com/ssgreg/logf"
)

// StringMasker masks secrets in a string.
type StringMasker interface {
	Mask(s string) string
}

// MaskingLogger is a logger that masks secrets in messages, string fields and errors.
// Bearer credentials are passed per request and must never reach log output,
// even when a transport error echoes request details.
type MaskingLogger struct {
	log    FieldLogger
	masker StringMasker
}

// NewMaskingLogger wraps l so every message goes through r.
func NewMaskingLogger(l FieldLogger, r StringMasker) FieldLogger {
	return MaskingLogger{l, r}
}

// With returns a new logger with the given additional fields.
func (l MaskingLogger) With(fs ...Field) FieldLogger {
	return MaskingLogger{l.log.With(l.maskFields(fs)...), l.masker}
}

// Debug logs a message at "debug" level.
func (l MaskingLogger) Debug(text string, fs ...Field) {
	l.log.Debug(l.masker.Mask(text), l.maskFields(fs)...)
}

// Info logs a message at "info" level.
func (l MaskingLogger) Info(text string, fs ...Field) {
	l.log.Info(l.masker.Mask(text), l.maskFields(fs)...)
}

// Warn logs a message at "warn" level.
func (l MaskingLogger) Warn(text string, fs ...Field) {
	l.log.Warn(l.masker.Mask(text), l.maskFields(fs)...)
}

// Error logs a message at "error" level.
func (l MaskingLogger) Error(text string, fs ...Field) {
	l.log.Error(l.masker.Mask(text), l.maskFields(fs)...)
}

// Debugf logs a formatted message at "debug" level.
func (l MaskingLogger) Debugf(format string, args ...interface{}) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at "info" level.
func (l MaskingLogger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at "warn" level.
func (l MaskingLogger) Warnf(format string, args ...interface{}) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at "error" level.
func (l MaskingLogger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// AtLevel calls the given fn if logging a message at the specified level
// is enabled, passing a LogFunc with the bound level.
func (l MaskingLogger) AtLevel(level Level, fn func(logFunc LogFunc)) {
	l.log.AtLevel(level, func(logFunc LogFunc) {
		fn(func(msg string, fs ...Field) {
			logFunc(l.masker.Mask(msg), l.maskFields(fs)...)
		})
	})
}

func (l MaskingLogger) maskFields(fields []Field) []Field {
	var masked []Field
	for i, field := range fields {
		var newField *Field
		switch field.Type {
		case logf.FieldTypeBytesToString:
			s := string(field.Bytes)
			if m := l.masker.Mask(s); m != s {
				f := String(field.Key, m)
				newField = &f
			}
		case logf.FieldTypeError:
			if err, ok := field.Any.(error); ok && err != nil {
				s := err.Error()
				if m := l.masker.Mask(s); m != s {
					f := NamedError(field.Key, errors.New(m))
					newField = &f
				}
			}
		}
		if newField == nil {
			continue
		}
		if masked == nil {
			masked = make([]Field, len(fields))
			copy(masked, fields)
		}
		masked[i] = *newField
	}
	if masked == nil {
		return fields
	}
	return masked
}
