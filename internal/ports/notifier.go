package ports

// Notifier shows transient user-facing messages, like a toast.
type Notifier interface {
	Error(message string)
	Success(message string)
}

type NopNotifier struct{}

func (NopNotifier) Error(string)   {}
func (NopNotifier) Success(string) {}
