// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cachekey

import (
	"crypto/sha256"
	"encoding"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnkeyable is returned when call arguments have no canonical text form,
// for example when they contain a func or a chan.
var ErrUnkeyable = errors.New("arguments cannot be keyed")

// maxPrefix caps the readable identity prefix of an encoded key.
const maxPrefix = 64

// Identity is the fully qualified name of a wrapped computation.
type Identity struct {
	Namespace string
	Name      string
}

func (i Identity) String() string {
	if i.Namespace == "" {
		return i.Name
	}
	return i.Namespace + "." + i.Name
}

// Args is the positional plus keyword argument shape of a call. Callers with
// their own argument struct don't need it.
type Args struct {
	Positional []any          `yaml:"args"`
	Keyword    map[string]any `yaml:"kwargs"`
}

// Key identifies a single cache entry.
// Clear is the clear-text key; Encoded is the entry file name.
type Key struct {
	Identity Identity
	Clear    string
	Encoded  string
}

// Derive builds the Key for calling id with args.
func Derive(id Identity, args any) (Key, error) {
	canon, err := Canonical(args)
	if err != nil {
		return Key{}, err
	}
	clear := id.String() + ":" + canon
	return Key{
		Identity: id,
		Clear:    clear,
		Encoded:  encodeKey(id, clear),
	}, nil
}

// Canonical renders v as YAML. Map keys are emitted sorted and struct fields
// in declaration order, so equal values always render identically. Values
// held in interfaces also record their dynamic type, so int 1 and float 1.0
// differ. Struct fields that YAML would drop (unexported or tagged "-") make
// v unkeyable, since distinct values would otherwise share a key.
func Canonical(v any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnkeyable, r)
		}
	}()

	w := walker{stack: map[uintptr]bool{}}
	if err := w.walk(reflect.ValueOf(v), "$"); err != nil {
		return "", err
	}

	b, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnkeyable, err)
	}

	out := strings.TrimRight(string(b), "\n")
	if len(w.types) > 0 {
		sort.Strings(w.types)
		out += "\n# " + strings.Join(w.types, " ")
	}
	return out, nil
}

var (
	yamlMarshaler = reflect.TypeFor[yaml.Marshaler]()
	textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

// walker checks that every part of a value reaches the YAML form and collects
// the dynamic types of interface-held values as path=type.
type walker struct {
	types []string
	stack map[uintptr]bool
}

func (w *walker) walk(v reflect.Value, path string) error {
	if !v.IsValid() {
		return nil
	}

	t := v.Type()
	if t.Implements(yamlMarshaler) || t.Implements(textMarshaler) ||
		reflect.PointerTo(t).Implements(yamlMarshaler) || reflect.PointerTo(t).Implements(textMarshaler) {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		e := v.Elem()
		w.types = append(w.types, path+"="+e.Type().String())
		return w.walk(e, path)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		p := v.Pointer()
		if w.stack[p] {
			return fmt.Errorf("%w: cyclic value at %s", ErrUnkeyable, path)
		}
		w.stack[p] = true
		defer delete(w.stack, p)
		return w.walk(v.Elem(), path)

	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("yaml"), ",")[0]
			if !f.IsExported() || name == "-" {
				return fmt.Errorf("%w: field %s of %s is not part of the key", ErrUnkeyable, f.Name, t)
			}
			if name == "" {
				name = strings.ToLower(f.Name)
			}
			if err := w.walk(v.Field(i), path+"."+name); err != nil {
				return err
			}
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			if err := w.walk(iter.Key(), path+"{"+k+"}"); err != nil {
				return err
			}
			if err := w.walk(iter.Value(), path+"["+k+"]"); err != nil {
				return err
			}
		}

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := w.walk(v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Errorf("%w: %s at %s", ErrUnkeyable, t, path)
	}

	return nil
}

// encodeKey returns the sanitized identity followed by the hex SHA-256 of
// the clear key.
func encodeKey(id Identity, clear string) string {
	sum := sha256.Sum256([]byte(clear))
	hash := hex.EncodeToString(sum[:])

	prefix := sanitize(id.String())
	if prefix == "" {
		return hash
	}
	return prefix + "-" + hash
}

// sanitize maps s onto [A-Za-z0-9._-], never starting with a dot.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxPrefix {
			break
		}
	}
	out := b.String()
	if len(out) > maxPrefix {
		out = out[:maxPrefix]
	}
	if strings.HasPrefix(out, ".") {
		out = "_" + out[1:]
	}
	return out
}
