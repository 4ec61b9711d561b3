package config

import (
	"embed"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/relcm/relcm/pkg/errors"
	"github.com/relcm/relcm/pkg/logging"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

// Resolver loads named configuration documents, resolves their extends
// chains and answers dotted-path lookups against the root document.
// Documents are parsed at most once per name; the cache lives for the
// resolver's lifetime and is never invalidated (configuration is
// immutable once loaded).
type Resolver struct {
	name    string
	root    *Mapping
	cache   map[string]*Mapping
	loading map[string]bool
	log     zerolog.Logger
}

// NewResolver loads the named root document and everything it extends
func NewResolver(name string) (*Resolver, error) {
	r := &Resolver{
		name:    name,
		cache:   make(map[string]*Mapping),
		loading: make(map[string]bool),
		log:     logging.GetLogger("config"),
	}
	root, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	r.root = root
	return r, nil
}

// Name returns the root document name, used in diagnostics
func (r *Resolver) Name() string {
	return r.name
}

// Root returns the fully resolved root document
func (r *Resolver) Root() *Mapping {
	return r.root
}

// Load resolves a document by name: the bundled template directory is
// checked first, then the name is treated as a filesystem path. An
// `extends` key chains to a base document resolved through the same
// loader, merged with the current document as override.
func (r *Resolver) Load(name string) (*Mapping, error) {
	if doc, ok := r.cache[name]; ok {
		return doc, nil
	}
	if r.loading[name] {
		return nil, errors.Newf(errors.ErrConfigLoad, "%s: extends cycle", name)
	}
	r.loading[name] = true
	defer delete(r.loading, name)

	data, err := readSource(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "%s", name)
	}
	doc, err := Parse(name, data)
	if err != nil {
		return nil, err
	}

	if ext, ok := doc.Get("extends"); ok {
		extName, isString := ext.(string)
		if !isString || extName == "" {
			return nil, errors.Newf(errors.ErrConfigParse, "%s: extends must name a document", name)
		}
		base, err := r.Load(extName)
		if err != nil {
			return nil, err
		}
		doc = Merge(base, doc).(*Mapping)
	}

	r.log.Debug().Str("name", name).Int("keys", doc.Len()).Msg("Loaded configuration document")
	r.cache[name] = doc
	return doc, nil
}

func readSource(name string) ([]byte, error) {
	if data, err := templatesFS.ReadFile(path.Join("templates", name)); err == nil {
		return data, nil
	}
	return os.ReadFile(name)
}

// Get traverses the root document along a dotted path, returning def when
// any segment is absent or not a mapping. An empty path returns the whole
// document.
func (r *Resolver) Get(path string, def Value) Value {
	if path == "" {
		if r.root == nil {
			return def
		}
		return r.root
	}
	var cur Value = r.root
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(*Mapping)
		if !ok {
			return def
		}
		v, ok := m.Get(seg)
		if !ok {
			return def
		}
		cur = v
	}
	return cur
}

// GetString is Get for string-valued paths
func (r *Resolver) GetString(path, def string) string {
	if s, ok := r.Get(path, def).(string); ok {
		return s
	}
	return def
}

// GetBool is Get for boolean-valued paths
func (r *Resolver) GetBool(path string, def bool) bool {
	if b, ok := r.Get(path, def).(bool); ok {
		return b
	}
	return def
}

// Require checks that every path holds a non-empty value. Nil, empty
// strings, empty sequences and empty mappings are empty; numbers and
// booleans never are, so 0 and false pass. All violations are collected
// before failing, reported as a single aggregate naming the source and
// each offending path.
func (r *Resolver) Require(paths ...string) error {
	agg := errors.NewAggregate(errors.ErrConfigRequire, r.name)
	for _, p := range paths {
		if isEmpty(r.Get(p, nil)) {
			agg.Append(p + " empty")
		}
	}
	if agg.Len() > 0 {
		return agg
	}
	return nil
}

func isEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []Value:
		return len(t) == 0
	case *Mapping:
		return t.Len() == 0
	default:
		return false
	}
}
