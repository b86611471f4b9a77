package deck

import (
	"github.com/sirupsen/logrus"

	"pptgen/app/internal/pptx"
)

// Deck is the document slides are appended to and finally saved from.
type Deck interface {
	AddSlide() *pptx.Slide
	Save(path string) error
}

var _ Deck = (*pptx.Presentation)(nil)

// NewPresentation returns an empty pptx deck carrying the given document title.
func NewPresentation(title string) Deck {
	presentation := pptx.New()
	presentation.Title = title
	return presentation
}

// Observer is told about every slide once it has been appended.
type Observer interface {
	SlideAdded(index int, title string, withImage bool)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(index int, title string, withImage bool)

// SlideAdded calls f.
func (f ObserverFunc) SlideAdded(index int, title string, withImage bool) {
	f(index, title, withImage)
}

type logObserver struct {
	logger *logrus.Logger
}

func (o logObserver) SlideAdded(index int, title string, withImage bool) {
	if o.logger == nil {
		return
	}
	o.logger.WithFields(logrus.Fields{
		"slide":      index,
		"title":      title,
		"with_image": withImage,
	}).Info("slide added")
}
