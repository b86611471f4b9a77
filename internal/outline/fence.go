package outline

import "strings"

const yamlFence = "```yaml"

// StripCodeFence returns the outline body of generated text. Content after the last ```yaml
// marker and before the next fence wins; otherwise a leading bare fence is unwrapped.
// Text without fences is returned trimmed.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)

	if start := strings.LastIndex(trimmed, yamlFence); start != -1 {
		body := trimmed[start+len(yamlFence):]
		if end := strings.Index(body, "```"); end != -1 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := trimmed[3:]
	newline := strings.IndexByte(body, '\n')
	if newline == -1 {
		return trimmed
	}
	body = body[newline+1:]

	end := strings.Index(body, "```")
	if end == -1 {
		return trimmed
	}

	return strings.TrimSpace(body[:end])
}
