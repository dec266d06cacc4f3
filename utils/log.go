package utils

import "log/slog"

// ErrAttr puts err under the "error" key.
func ErrAttr(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
