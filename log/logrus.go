package log

import "github.com/sirupsen/logrus"

type logrusLogger struct {
	backend logrus.FieldLogger
}

var _ Logger = (*logrusLogger)(nil)

func (l *logrusLogger) Debug(msg string, fields ...interface{}) {
	l.withFields(fields).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...interface{}) {
	l.withFields(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...interface{}) {
	l.withFields(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...interface{}) {
	l.withFields(fields).Error(msg)
}

func (l *logrusLogger) Fatal(msg string, fields ...interface{}) {
	l.withFields(fields).Fatal(msg)
}

func (l *logrusLogger) Sub(fields ...interface{}) Logger {
	return &logrusLogger{backend: l.withFields(fields)}
}

func (l *logrusLogger) withFields(fields []interface{}) logrus.FieldLogger {
	if len(fields) == 0 {
		return l.backend
	}
	if len(fields)%2 != 0 {
		panic("must specify fields as key/value pairs")
	}

	lFields := make(logrus.Fields)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			panic("field keys must be strings")
		}
		lFields[key] = fields[i+1]
	}
	return l.backend.WithFields(lFields)
}
