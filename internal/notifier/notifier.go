package notifier

import "github.com/rs/zerolog"

// Level classifies an outcome event.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event is a human-readable outcome forwarded to the surrounding
// application, which decides how to render it (toast, log, ...).
type Event struct {
	Level   Level
	Message string
}

// Notifier receives outcome events. Implementations must not block the
// caller; the core never waits on delivery.
type Notifier interface {
	Notify(Event)
}

type logNotifier struct {
	logger *zerolog.Logger
}

// NewLogNotifier creates a Notifier that writes events to a zerolog logger.
func NewLogNotifier(logger *zerolog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(event Event) {
	switch event.Level {
	case LevelError:
		n.logger.Error().Str("level", string(event.Level)).Msg(event.Message)
	default:
		n.logger.Info().Str("level", string(event.Level)).Msg(event.Message)
	}
}
