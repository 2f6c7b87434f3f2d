package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// validatable is implemented by every advisory payload type
type validatable interface {
	Validate() error
}

var (
	fencePattern  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

// stripFences removes a surrounding markdown code fence
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}

// decodeJSON unmarshals content into out. When the whole reply is not JSON,
// the outermost {...} block is extracted and decoded once more.
func decodeJSON(content string, out any) error {
	content = stripFences(content)
	if content == "" {
		return errors.New("empty reply")
	}

	err := json.Unmarshal([]byte(content), out)
	if err == nil {
		return nil
	}

	block := objectPattern.FindString(content)
	if block == "" {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("extracted block is not JSON: %w", err)
	}
	return nil
}

// parseReply decodes and validates a provider reply into T
func parseReply[T any, PT interface {
	*T
	validatable
}](content string) (*T, error) {
	var v T
	if err := decodeJSON(content, &v); err != nil {
		return nil, err
	}
	if err := PT(&v).Validate(); err != nil {
		return nil, fmt.Errorf("invalid reply shape: %w", err)
	}
	return &v, nil
}
