package syntax

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/zjrosen/scribe/internal/log"
)

// Registry holds the compiled languages from configuration.
type Registry struct {
	langs  []*Syntax
	byExt  map[string]*Syntax
	byName map[string]*Syntax
}

// NewRegistry compiles defs. Definitions that fail are skipped and their
// errors returned alongside the registry.
func NewRegistry(defs []Definition) (*Registry, []error) {
	r := &Registry{
		byExt:  make(map[string]*Syntax),
		byName: make(map[string]*Syntax),
	}
	var errs []error
	for _, def := range defs {
		syn, err := Compile(def)
		if err != nil {
			log.ErrorErr(log.CatSyntax, "skipping language", err, "language", def.Name)
			errs = append(errs, err)
			continue
		}
		r.langs = append(r.langs, syn)
		r.byName[strings.ToLower(syn.Name)] = syn
		for _, ext := range syn.Extensions {
			r.byExt[normalizeExt(ext)] = syn
		}
	}
	return r, errs
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Languages returns every compiled language sorted by name.
func (r *Registry) Languages() []*Syntax {
	out := append([]*Syntax(nil), r.langs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByName finds a language case-insensitively.
func (r *Registry) ByName(name string) *Syntax {
	return r.byName[strings.ToLower(name)]
}

// ForPath picks the language for a file: by extension first, then by the
// file name and content using go-enry. It returns nil when nothing matches.
func (r *Registry) ForPath(path string, content []byte) *Syntax {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		if syn, ok := r.byExt[normalizeExt(ext)]; ok {
			return syn
		}
	}
	if syn, ok := r.byExt[strings.ToLower(base)]; ok {
		return syn
	}
	lang := enry.GetLanguage(base, content)
	if lang == "" {
		return nil
	}
	syn := r.ByName(lang)
	if syn != nil {
		log.Debug(log.CatSyntax, "language detected", "path", path, "language", lang)
	}
	return syn
}
