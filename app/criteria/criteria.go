// Package criteria converts between a campaign's stored parameter blob and the
// key/value pairs shown in its criteria tooltip
package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amirphl/orochi-admin/app/form"
	"github.com/amirphl/orochi-admin/models"
)

const (
	idsSuffix       = "_ids"
	searchTermParam = "searchTerm_param"
	searchTermLabel = "searchTerm"
	listSeparator   = ", "
)

// ErrMalformed is wrapped by the ConfigurationError returned for unparseable blobs
var ErrMalformed = errors.New("stored criteria is not a flat JSON object")

// Pair is one displayed criterion
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Parse reads a stored criteria blob in source order. Lookup caches (keys ending in _ids)
// are dropped, searchTerm_param is shown as searchTerm and lists are joined with ", ".
func Parse(blob *string) ([]Pair, error) {
	if blob == nil || strings.TrimSpace(*blob) == "" {
		return []Pair{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(*blob))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, malformed(err)
	}

	pairs := []Pair{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed(fmt.Errorf("unexpected token %v", tok))
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformed(err)
		}
		if strings.HasSuffix(key, idsSuffix) {
			continue
		}
		value, err := displayValue(raw)
		if err != nil {
			return nil, malformed(fmt.Errorf("value of %q: %w", key, err))
		}
		if key == searchTermParam {
			key = searchTermLabel
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(errors.New("trailing data after object"))
	}
	return pairs, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func malformed(err error) error {
	return &form.ConfigurationError{Reason: ErrMalformed.Error(), Err: errors.Join(ErrMalformed, err)}
}

func displayValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, err := scalar(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, listSeparator), nil
	case '{':
		return "", errors.New("nested objects are not supported")
	default:
		return scalar(trimmed)
	}
}

func scalar(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if string(trimmed) == "null" {
		return "", nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	// numbers and booleans are shown as written
	return string(trimmed), nil
}

// Encode serializes a submitted value set in schema order so Parse shows the
// criteria in the order the form presented them. Search fields emit their text
// followed by the lookup fragment.
func Encode(params []models.ParameterDefinition, values form.ValueSet) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, p := range params {
		var err error
		switch p.Type.Normalize() {
		case models.ParameterTypeSearch:
			if _, ok := values[p.ParamKey()]; !ok {
				continue
			}
			if err = write(p.ParamKey(), values.String(p.ParamKey())); err == nil {
				if ids, ok := values[p.IDsKey()]; ok {
					err = write(p.IDsKey(), ids)
				}
			}
		case models.ParameterTypeBoolean:
			if _, ok := values[p.Name]; !ok {
				continue
			}
			err = write(p.Name, values.Bool(p.Name))
		case models.ParameterTypeMultiSelect:
			if _, ok := values[p.Name]; !ok {
				continue
			}
			err = write(p.Name, values.Strings(p.Name))
		default:
			if values.String(p.Name) == "" {
				continue
			}
			err = write(p.Name, values.String(p.Name))
		}
		if err != nil {
			return "", fmt.Errorf("failed to encode %q: %w", p.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.String(), nil
}
