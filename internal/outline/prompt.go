package outline

import (
	"fmt"
	"strings"
)

const promptTemplate = `%s
Create a presentation outline for this.
Format the presentation in yaml so that each slide is its own block with points
underneath it that will be part of the slide.
Number the slides in the yaml. Also add title fields for each slide.
Finally, add an image_prompt field that contains a detailed prompt that can be fed to
an AI model to generate a helpful image for the slide.

The format should be formatted like this:

- slide1:
    title: "title"
    points:
      - "point1"
      - "point2"
      - "point3"
    image_prompt: "image prompt to be fed to AI model"

All fields should be properly sanitized and formatted. There should be no special characters
in the fields like colons.`

// Prompt wraps a topic with the outline format instructions sent to the text model.
func Prompt(topic string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(topic))
}
