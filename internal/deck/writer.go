package deck

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// DefaultOutputPath is where the deck is written when no path is configured.
const DefaultOutputPath = "generated_presentation.pptx"

// ErrPersistence marks a deck that could not be written.
var ErrPersistence = eris.New("deck persistence failed")

// Writer saves a finished deck to a fixed path, replacing any earlier file there.
type Writer struct {
	path   string
	logger *logrus.Logger
}

// NewWriter returns a Writer for path, falling back to DefaultOutputPath.
func NewWriter(path string, logger *logrus.Logger) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = DefaultOutputPath
	}
	return &Writer{path: trimmed, logger: logger}
}

// Path is the destination of Finalize.
func (w *Writer) Path() string {
	return w.path
}

// Finalize persists deck and returns the path it was written to.
func (w *Writer) Finalize(deck Deck) (string, error) {
	if deck == nil {
		return "", eris.Wrap(ErrPersistence, "deck is nil")
	}

	if err := deck.Save(w.path); err != nil {
		if w.logger != nil {
			w.logger.WithField("error", err.Error()).WithField("path", w.path).Error("saving deck")
		}
		return "", eris.Wrapf(ErrPersistence, "saving deck to %s: %v", w.path, err)
	}

	if w.logger != nil {
		w.logger.WithField("path", w.path).Info("deck saved")
	}
	return w.path, nil
}
