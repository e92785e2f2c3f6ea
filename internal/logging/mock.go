package logging

// NopLogger discards every message. Useful as a default and in tests.
type NopLogger struct{}

// NewNopLogger returns a Logger that does nothing.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...Field)               {}
func (NopLogger) Info(string, ...Field)                {}
func (NopLogger) Warn(string, ...Field)                {}
func (NopLogger) Error(string, ...Field)               {}
func (NopLogger) WithError(error) Logger               { return NopLogger{} }
func (NopLogger) WithField(string, interface{}) Logger { return NopLogger{} }
