package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Engine is the narrow contract this front-end consumes from the document
// QA backend. Implementations must be safe for concurrent Ask calls; the
// handle is constructed once and never reassigned.
type Engine interface {
	// DocumentCount reports the number of indexed documents.
	DocumentCount() int
	// Ask answers a free-text question against the indexed documents.
	Ask(ctx context.Context, question string) (Response, error)
}

// Options configure backend construction. The front-end never triggers
// reindexing: ResetIndex and EnableWatcher are always false here.
type Options struct {
	BaseURL       string
	APIKey        string
	DocumentsDir  string
	ResetIndex    bool
	EnableWatcher bool
}

// Response is the structured answer returned by the backend.
type Response struct {
	Answer      string      `json:"answer"`
	IsInference bool        `json:"is_inference"`
	Confidence  float64     `json:"confidence"`
	Sources     []SourceRef `json:"sources"`
}

// SourceRef is a structured citation supplied by the backend, distinct
// from the free-text "sources" section of the answer.
type SourceRef struct {
	Source string `json:"source"`
	Page   Page   `json:"page"`
}

// Page is a page locator. The backend emits either a JSON number or a
// string (e.g. "ii", "12-14"); both decode into Page.
type Page struct {
	value string
}

// PageOf returns a Page holding the given locator text.
func PageOf(v string) Page {
	return Page{value: v}
}

func (p Page) String() string {
	return p.value
}

// Int returns the page as an integer when the locator is numeric.
func (p Page) Int() (int, bool) {
	n, err := strconv.Atoi(p.value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *Page) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		p.value = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		p.value = str
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("page must be a number or string: %w", err)
	}
	p.value = n.String()
	return nil
}

func (p Page) MarshalJSON() ([]byte, error) {
	if n, ok := p.Int(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(p.value)
}
