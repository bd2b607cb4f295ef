// config file for soltype check
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wos"

	"github.com/goccy/go-json"
)

// Root is the JSON config file. String and int
// fields accept $ENV placeholders.
//
//	{
//	  "workers": "$SOLTYPE_WORKERS",
//	  "listen": "localhost:8547",
//	  "strict": true,
//	  "files": ["build/ast/*.json.gz"]
//	}
type Root struct {
	Workers wos.EnvInt    `json:"workers"`
	Listen  wos.EnvString `json:"listen"`
	Strict  bool          `json:"strict"`
	JSON    bool          `json:"json"`
	Files   []string      `json:"files"`
}

var ErrNoMatch = errors.New("pattern matched no files")

func Load(path string) (Root, error) {
	var conf Root
	b, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(b, &conf); err != nil {
		return conf, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return conf, nil
}

func ValidateFix(conf *Root) error {
	switch {
	case conf.Workers < 0:
		return fmt.Errorf("workers must be >= 0. got: %d", conf.Workers)
	case conf.Workers == 0:
		conf.Workers = wos.EnvInt(runtime.GOMAXPROCS(0))
	}
	if conf.Listen != "" {
		if _, _, err := net.SplitHostPort(string(conf.Listen)); err != nil {
			return fmt.Errorf("listen address %q: %w", conf.Listen, err)
		}
	}
	files, err := Expand(conf.Files)
	if err != nil {
		return fmt.Errorf("expanding files: %w", err)
	}
	conf.Files = files
	return nil
}

// Expands glob patterns in order, dropping duplicates.
// Paths without glob meta characters are kept as is
// so that a missing file is reported when it is opened.
func Expand(patterns []string) ([]string, error) {
	var res []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		switch {
		case err != nil:
			return nil, fmt.Errorf("%q: %w", p, err)
		case len(matches) == 0 && isGlob(p):
			return nil, fmt.Errorf("%q: %w", p, ErrNoMatch)
		case len(matches) == 0:
			matches = []string{p}
		}
		for _, m := range matches {
			if !slices.Contains(res, m) {
				res = append(res, m)
			}
		}
	}
	return res, nil
}

func isGlob(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}
