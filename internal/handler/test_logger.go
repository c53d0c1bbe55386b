package handler

import "research-news/internal/domain"

// MockHandlerLogger discards everything; handler tests use it where log
// output does not matter.
type MockHandlerLogger struct{}

func NewMockHandlerLogger() domain.Logger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})              {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})             {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})              {}
