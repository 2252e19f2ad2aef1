//go:build linux

// Package logger wraps UNIX syslog for ioredir's level-based log calls,
// with a stub on platforms log/syslog doesn't support.
package logger

import (
	sl "log/syslog"
)

// Priority is a syslog priority level.
type Priority = sl.Priority

// Writer is a syslog writer.
type Writer = sl.Writer

// Severity levels, from /usr/include/sys/syslog.h.
const (
	LOG_EMERG Priority = iota
	LOG_ALERT
	LOG_CRIT
	LOG_ERR
	LOG_WARNING
	LOG_NOTICE
	LOG_INFO
	LOG_DEBUG
)

var l *sl.Writer

// Init opens the syslog writer under the given tag. debug additionally
// routes the standard log package's output through it, matching ioredird's
// -d flag.
func Init(tag string, debug bool) error {
	w, err := sl.New(sl.LOG_DAEMON|LOG_INFO, tag)
	if err != nil {
		return err
	}
	l = w
	if debug {
		stdLogSetOutput(w)
	}
	return nil
}

// LogClose closes the underlying syslog writer.
func LogClose() error {
	if l != nil {
		return l.Close()
	}
	return nil
}

// LogCrit logs at CRIT severity.
func LogCrit(s string) error {
	if l != nil {
		return l.Crit(s)
	}
	return nil
}

// LogDebug logs at DEBUG severity.
func LogDebug(s string) error {
	if l != nil {
		return l.Debug(s)
	}
	return nil
}

// LogErr logs at ERR severity.
func LogErr(s string) error {
	if l != nil {
		return l.Err(s)
	}
	return nil
}

// LogInfo logs at INFO severity.
func LogInfo(s string) error {
	if l != nil {
		return l.Info(s)
	}
	return nil
}

// LogNotice logs at NOTICE severity.
func LogNotice(s string) error {
	if l != nil {
		return l.Notice(s)
	}
	return nil
}

// LogWarning logs at WARNING severity.
func LogWarning(s string) error {
	if l != nil {
		return l.Warning(s)
	}
	return nil
}
