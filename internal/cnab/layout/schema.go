package layout

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Record kinds, one schema each.
const (
	HeaderArquivo  = "header_arquivo"
	HeaderLote     = "header_lote"
	SegmentoP      = "segmento_p"
	SegmentoQ      = "segmento_q"
	SegmentoR      = "segmento_r"
	TrailerLote    = "trailer_lote"
	TrailerArquivo = "trailer_arquivo"
	SegmentoT      = "segmento_t"
	SegmentoU      = "segmento_u"
	SegmentoW      = "segmento_w"
)

//go:embed layouts/*.yaml
var layoutFS embed.FS

const baseLayout = "layouts/cnab240.yaml"

// Schema is the compiled layout of one record kind.
type Schema struct {
	Name   string
	Fields []Field
	index  map[string]int
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// HasField reports whether the schema defines the named field.
func (s *Schema) HasField(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Set holds every record schema resolved for one bank.
type Set struct {
	Bank    int
	schemas map[string]*Schema
}

// Schema returns the schema for a record kind.
func (s *Set) Schema(kind string) (*Schema, error) {
	sc, ok := s.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("layout: no schema %s for bank %03d", kind, s.Bank)
	}
	return sc, nil
}

// MustSchema is Schema for kinds every set is known to carry.
func (s *Set) MustSchema(kind string) *Schema {
	sc, err := s.Schema(kind)
	if err != nil {
		panic(err)
	}
	return sc
}

var (
	setsMu sync.Mutex
	sets   = map[int]*Set{}
)

// Load returns the layout set of a bank: the base layout with the bank's
// overlay applied, if one exists. Sets are compiled once and shared.
func Load(bank int) (*Set, error) {
	setsMu.Lock()
	defer setsMu.Unlock()

	if s, ok := sets[bank]; ok {
		return s, nil
	}

	base, err := readLayout(baseLayout)
	if err != nil {
		return nil, err
	}

	overlay, err := readLayout(fmt.Sprintf("layouts/%03d.yaml", bank))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	s := &Set{Bank: bank, schemas: make(map[string]*Schema, len(base))}
	for kind, fields := range base {
		if extra, ok := overlay[kind]; ok {
			fields = applyOverlay(fields, extra)
		}
		sc, err := compile(kind, fields)
		if err != nil {
			return nil, err
		}
		s.schemas[kind] = sc
	}
	for kind := range overlay {
		if _, ok := base[kind]; !ok {
			return nil, fmt.Errorf("layout: overlay for bank %03d names unknown record %s", bank, kind)
		}
	}

	sets[bank] = s
	return s, nil
}

func readLayout(path string) (map[string][]Field, error) {
	raw, err := layoutFS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string][]Field{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("layout: parse %s: %w", path, err)
	}
	return out, nil
}

// applyOverlay drops every base field intersecting an overlay field.
func applyOverlay(base, overlay []Field) []Field {
	out := make([]Field, 0, len(base)+len(overlay))
	for _, f := range base {
		keep := true
		for _, o := range overlay {
			if f.overlaps(o) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, f)
		}
	}
	return append(out, overlay...)
}

func compile(kind string, fields []Field) (*Schema, error) {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Pos[0] < sorted[j].Pos[0] })

	sc := &Schema{Name: kind, Fields: sorted, index: make(map[string]int, len(sorted))}
	next := 1
	for i := range sc.Fields {
		f := &sc.Fields[i]
		if err := f.compile(); err != nil {
			return nil, fmt.Errorf("layout %s: %w", kind, err)
		}
		if f.Start() != next {
			return nil, fmt.Errorf("layout %s: field %s starts at %d, expected %d", kind, f.Name, f.Start(), next)
		}
		if _, dup := sc.index[f.Name]; dup {
			return nil, fmt.Errorf("layout %s: duplicate field %s", kind, f.Name)
		}
		sc.index[f.Name] = i
		next = f.End() + 1
	}
	if next != LineLength+1 {
		return nil, fmt.Errorf("layout %s: covers %d positions, expected %d", kind, next-1, LineLength)
	}
	return sc, nil
}
