package logger

import "log/slog"

// Error returns a standard attribute for error values.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Component tags a record with the emitting subsystem.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID tags a record with the acting user.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// IP tags a record with the client address.
func IP(ip string) slog.Attr {
	return slog.String("ip", ip)
}
