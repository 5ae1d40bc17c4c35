package analyze

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/report"
)

// maxReportedKeys bounds how many top-level object keys a report echoes.
const maxReportedKeys = 10

// JSON walks content as a single JSON document and computes structural
// metrics in one pass. Malformed input returns metrics with
// ParseSuccess=false alongside the parse error; partial counts gathered
// before the failure are kept.
func JSON(path string, content []byte) (*report.JSONMetrics, error) {
	m := &report.JSONMetrics{}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	type frame struct {
		isObject  bool
		expectKey bool
	}
	var stack []frame
	rootSeen := false

	fail := func(err error) (*report.JSONMetrics, error) {
		m.ParseSuccess = false
		m.ParseError = err.Error()
		return m, finerrors.NewParseError(finerrors.StageJSON, path, err)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if !rootSeen {
				return fail(errors.New("unexpected end of JSON input"))
			}
			break
		}
		if err != nil {
			return fail(err)
		}

		if rootSeen && len(stack) == 0 {
			return fail(errors.New("unexpected data after top-level value"))
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				if len(stack) == 0 {
					rootSeen = true
					if t == '{' {
						m.TopLevelType = "object"
					} else {
						m.TopLevelType = "array"
					}
				} else if top := &stack[len(stack)-1]; top.isObject {
					top.expectKey = true
				} else {
					m.ElementCount++
				}
				stack = append(stack, frame{isObject: t == '{', expectKey: t == '{'})
				if len(stack) > m.NestingDepth {
					m.NestingDepth = len(stack)
				}
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		default:
			if len(stack) == 0 {
				rootSeen = true
				m.TopLevelType = scalarType(tok)
				continue
			}
			top := &stack[len(stack)-1]
			switch {
			case top.isObject && top.expectKey:
				m.KeyCount++
				if len(stack) == 1 && len(m.Keys) < maxReportedKeys {
					m.Keys = append(m.Keys, tok.(string))
				}
				top.expectKey = false
			case top.isObject:
				top.expectKey = true
			default:
				m.ElementCount++
			}
		}
	}

	m.ParseSuccess = true
	return m, nil
}

func scalarType(tok json.Token) string {
	switch tok.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return "unknown"
}
