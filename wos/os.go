// env placeholders for config values
package wos

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrUnset = errors.New("env var not set")

// If s has a $ prefix then s names an env var
// (upper cased) that holds the value.
// Otherwise s is returned.
func Getenv(s string) (string, error) {
	name, ok := strings.CutPrefix(s, "$")
	if !ok {
		return s, nil
	}
	name = strings.ToUpper(name)
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%s: %w", name, ErrUnset)
	}
	return v, nil
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("want quoted string got: %s", data)
	}
	return strconv.Unquote(string(data))
}

type EnvString string

func (es *EnvString) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	v, err := Getenv(s)
	if err != nil {
		return err
	}
	*es = EnvString(v)
	return nil
}

// EnvInt accepts a JSON number, a quoted number
// or a quoted env placeholder.
type EnvInt int

func (ei *EnvInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		u, err := unquote(data)
		if err != nil {
			return err
		}
		if s, err = Getenv(u); err != nil {
			return err
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("EnvInt: %w", err)
	}
	*ei = EnvInt(n)
	return nil
}
