package figure

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed figures/*.yaml
var builtinFS embed.FS

// ErrUnknownFigure is returned for a name that is neither a built-in
// figure nor a readable YAML file.
var ErrUnknownFigure = errors.New("unknown figure")

// Parse decodes a YAML figure definition on top of Default(). Unknown keys
// are rejected so typos in tunables do not pass silently.
func Parse(data []byte) (*Figure, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse figure: %w", err)
	}
	// Trim keys so "PE " and "PE" address the same province. An exact key
	// wins over a padded one; padded duplicates are kept in sorted order.
	for _, k := range sortedKeys(f.Styles) {
		t := strings.TrimSpace(k)
		if t == k {
			continue
		}
		s := f.Styles[k]
		delete(f.Styles, k)
		if _, dup := f.Styles[t]; dup {
			f.droppedStyleKeys = append(f.droppedStyleKeys, k)
			continue
		}
		f.Styles[t] = s
	}
	return &f, nil
}

// Load resolves ref as a YAML file path when it has a .yaml or .yml
// extension, and as a built-in figure name otherwise.
func Load(ref string) (*Figure, error) {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, err
		}
		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		if f.Name == "" {
			f.Name = strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
		}
		return f, nil
	}
	return Builtin(ref)
}

// Builtin returns a copy of an embedded figure definition.
func Builtin(name string) (*Figure, error) {
	data, err := builtinFS.ReadFile(path.Join("figures", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFigure, name)
		}
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("builtin %s: %w", name, err)
	}
	if f.Name == "" {
		f.Name = name
	}
	return f, nil
}

// Builtins lists the embedded figure names in sorted order.
func Builtins() []string {
	entries, err := fs.ReadDir(builtinFS, "figures")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if n := e.Name(); strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}

// Marshal encodes a figure back to YAML.
func Marshal(f *Figure) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
