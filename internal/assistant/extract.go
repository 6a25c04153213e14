package assistant

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the first balanced {...} span in text. Braces inside
// JSON string literals, including escaped quotes, do not count.
func ExtractJSON(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// tagList accepts either a JSON array of strings or one comma separated
// string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = strings.Split(joined, ",")
	return nil
}

// actionPayload is the structured command an assistant reply may carry.
type actionPayload struct {
	Action      string  `json:"action"`
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	FolderID    *string `json:"folderId"`
	Folder      string  `json:"folder"`
	Tags        tagList `json:"tags"`
}

func (p actionPayload) action() string {
	return strings.ToLower(strings.TrimSpace(p.Action))
}
