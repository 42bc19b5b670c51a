// Package placeholder sustituye campos con nombre ({name}, {course_name}...)
// en el cuerpo de un email.
//
// Reglas:
//   - "{{" y "}}" producen llaves literales.
//   - Un campo referenciado sin valor es error; valores sobrantes se ignoran.
//   - "{}" vacío, llaves desbalanceadas y campos que no son identificadores
//     (especificadores de formato, índices, atributos) son error.
package placeholder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformed = errors.New("placeholder: malformed template")
	ErrMissing   = errors.New("placeholder: missing value")
)

// Format devuelve body con cada {campo} reemplazado por values[campo].
func Format(body string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(body))
	err := scan(body, &b, func(field string) (string, error) {
		v, ok := values[field]
		if !ok {
			return "", fmt.Errorf("%w: {%s}", ErrMissing, field)
		}
		return v, nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Fields lista los campos referenciados por body, sin repetidos y en orden de aparición.
func Fields(body string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	err := scan(body, nil, func(field string) (string, error) {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
		return "", nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan recorre body. Si w no es nil escribe el resultado ahí.
// Las llaves son ASCII, así que recorrer por bytes no rompe UTF-8.
func scan(body string, w *strings.Builder, field func(string) (string, error)) error {
	write := func(s string) {
		if w != nil {
			w.WriteString(s)
		}
	}

	last := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			write(body[last:i])
			if i+1 < len(body) && body[i+1] == '{' {
				write("{")
				i++
				last = i + 1
				continue
			}
			end := strings.IndexAny(body[i+1:], "{}")
			if end < 0 || body[i+1+end] != '}' {
				return fmt.Errorf("%w: unclosed '{' at offset %d", ErrMalformed, i)
			}
			name := body[i+1 : i+1+end]
			if name == "" {
				return fmt.Errorf("%w: empty field '{}' at offset %d", ErrMalformed, i)
			}
			if !isIdent(name) {
				return fmt.Errorf("%w: unsupported field {%s}", ErrMalformed, name)
			}
			v, err := field(name)
			if err != nil {
				return err
			}
			write(v)
			i += end + 1
			last = i + 1
		case '}':
			write(body[last:i])
			if i+1 < len(body) && body[i+1] == '}' {
				write("}")
				i++
				last = i + 1
				continue
			}
			return fmt.Errorf("%w: single '}' at offset %d", ErrMalformed, i)
		}
	}
	write(body[last:])
	return nil
}

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
