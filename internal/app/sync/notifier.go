package sync

// Notifier surfaces user-facing messages. Transport errors end up here as
// text, never as raw errors thrown at the view layer.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
