package service

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strings"
)

// errNotObject is returned when model output is valid JSON but not an object
var errNotObject = errors.New("model output is not a JSON object")

var quotedPattern = regexp.MustCompile(`"([^"\\]+)"`)

// themeCount is one theme label with its occurrence count
type themeCount struct {
	Label string
	Count int
}

// cleanModelJSON strips markdown code fences and any prose around the JSON payload
func cleanModelJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```") {
		fenceStart := strings.Index(response, "```json")
		if fenceStart == -1 {
			fenceStart = strings.Index(response, "```")
		}
		if fenceStart != -1 {
			// skip the fence line itself
			if nl := strings.Index(response[fenceStart:], "\n"); nl != -1 {
				response = response[fenceStart+nl+1:]
			} else {
				response = strings.TrimPrefix(response[fenceStart:], "```json")
				response = strings.TrimPrefix(response, "```")
			}
		}
		if end := strings.LastIndex(response, "```"); end != -1 {
			response = response[:end]
		}
	}

	response = strings.TrimSpace(response)

	// Arrays are left alone so callers can tell them apart from objects
	if strings.HasPrefix(response, "[") {
		return response
	}
	if !strings.HasPrefix(response, "{") {
		if idx := strings.Index(response, "{"); idx != -1 {
			response = response[idx:]
		}
	}
	if !strings.HasSuffix(response, "}") {
		if idx := strings.LastIndex(response, "}"); idx != -1 {
			response = response[:idx+1]
		}
	}

	return strings.TrimSpace(response)
}

// parseThemeCounts decodes a {"label": count} object preserving key order.
// Labels are trimmed and merged case-insensitively; counts below one become one.
func parseThemeCounts(raw string) ([]themeCount, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	acc := newThemeAccumulator()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		acc.add(label, countFromJSON(value))
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	// trailing garbage after the object
	if _, err := dec.Token(); err != io.EOF {
		return nil, errNotObject
	}

	return acc.themes(), nil
}

// fallbackThemeCounts scans quoted substrings and gives each a count of one
func fallbackThemeCounts(raw string) []themeCount {
	acc := newThemeAccumulator()
	for _, m := range quotedPattern.FindAllStringSubmatch(raw, -1) {
		acc.addOnce(m[1])
	}
	return acc.themes()
}

func countFromJSON(value json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		// "3" as a string is common enough to accept
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return 1
		}
		n = json.Number(strings.TrimSpace(s))
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}

type themeAccumulator struct {
	index  map[string]int
	result []themeCount
}

func newThemeAccumulator() *themeAccumulator {
	return &themeAccumulator{index: make(map[string]int)}
}

func (a *themeAccumulator) add(label string, count int) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	key := strings.ToLower(label)
	if i, ok := a.index[key]; ok {
		a.result[i].Count += count
		return
	}
	a.index[key] = len(a.result)
	a.result = append(a.result, themeCount{Label: label, Count: count})
}

func (a *themeAccumulator) addOnce(label string) {
	label = strings.TrimSpace(label)
	if _, ok := a.index[strings.ToLower(label)]; ok {
		return
	}
	a.add(label, 1)
}

func (a *themeAccumulator) themes() []themeCount {
	if a.result == nil {
		return []themeCount{}
	}
	return a.result
}

// decodeModelJSON cleans model output and decodes it into v
func decodeModelJSON(response string, v interface{}) error {
	cleaned := cleanModelJSON(response)
	if cleaned == "" {
		return errors.New("empty model output")
	}
	return json.Unmarshal([]byte(cleaned), v)
}
