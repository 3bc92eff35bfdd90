// SPDX-License-Identifier: MIT

package logq

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Hook forwards every logrus entry into a [Queue] so log output becomes
// retrievable through the instance's pull-based log channel.
type Hook struct {
	queue     *Queue
	formatter logrus.Formatter
}

// NewHook creates a [Hook] feeding the given queue.
func NewHook(queue *Queue) *Hook {
	return &Hook{
		queue: queue,
		formatter: &logrus.TextFormatter{
			DisableColors:    true,
			FullTimestamp:    true,
			TimestampFormat:  "2006-01-02 15:04:05.000",
			DisableSorting:   false,
			QuoteEmptyFields: true,
		},
	}
}

// Levels implements [logrus.Hook].
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements [logrus.Hook].
func (h *Hook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.queue.Push(strings.TrimRight(string(line), "\n"))

	return nil
}
