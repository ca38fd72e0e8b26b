package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"github.com/km-arc/canister/framework/container"
	"github.com/km-arc/canister/framework/validation"
)

// ── HCL schema ───────────────────────────────────────────────────────────────

type hclFile struct {
	Values      []*hclValue   `hcl:"value,block"`
	Aliases     []*hclAlias   `hcl:"alias,block"`
	Factories   []*hclBinding `hcl:"factory,block"`
	Shares      []*hclBinding `hcl:"share,block"`
	Definitions []*hclDefine  `hcl:"define,block"`
}

type hclValue struct {
	Name     string    `hcl:"name,label"`
	Value    cty.Value `hcl:"value"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclAlias struct {
	Name     string    `hcl:"name,label"`
	Target   string    `hcl:"target"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclBinding struct {
	Name     string    `hcl:"name,label"`
	Target   *string   `hcl:"target,optional"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclDefine struct {
	Name     string            `hcl:"name,label"`
	Values   cty.Value         `hcl:"values,optional"`
	Refs     map[string]string `hcl:"refs,optional"`
	DefRange hcl.Range         `hcl:",def_range"`
}

// ── Manifest ─────────────────────────────────────────────────────────────────

// Value is a plain value stored with Canister.Set.
type Value struct {
	Name   string
	Value  any
	Source string
}

// Binding is an alias, factory or share registration. An empty Target on a
// factory or share means the name itself.
type Binding struct {
	Name   string
	Target string
	Source string
}

// Define is a set of parameter overrides for one target.
type Define struct {
	Name   string
	Values map[string]any
	Refs   map[string]string
	Source string
}

// Manifest is the merged content of one or more wiring files, in file order.
type Manifest struct {
	Files       []string
	Values      []Value
	Aliases     []Binding
	Factories   []Binding
	Shared      []Binding
	Definitions []Define
}

var reserved = strings.Join([]string{
	container.KeyAliases,
	container.KeyShared,
	container.KeyFactories,
	container.KeyDefinitions,
}, ",")

// Load parses every path and merges the results.
//
//	m, err := manifest.Load("wiring/base.hcl", "wiring/prod.hcl")
//	if err != nil { ... }
//	err = m.Apply(c)
func Load(paths ...string) (*Manifest, error) {
	parser := hclparse.NewParser()
	m := &Manifest{}
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse manifest %s: %w", path, diags)
		}
		if err := m.decode(path, file); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Parse decodes a single manifest held in memory. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse manifest %s: %w", filename, diags)
	}
	m := &Manifest{}
	if err := m.decode(filename, file); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) decode(path string, file *hcl.File) error {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("decode manifest %s: %w", path, diags)
	}

	for _, b := range parsed.Values {
		if err := checkLabel("value", b.Name, b.DefRange); err != nil {
			return err
		}
		v, err := toNative(b.Value)
		if err != nil {
			return fmt.Errorf("%s: value %q: %w", b.DefRange, b.Name, err)
		}
		m.Values = append(m.Values, Value{Name: b.Name, Value: v, Source: b.DefRange.String()})
	}

	for _, b := range parsed.Aliases {
		if err := checkLabel("alias", b.Name, b.DefRange); err != nil {
			return err
		}
		if strings.TrimSpace(b.Target) == "" {
			return fmt.Errorf("%s: alias %q: target is required", b.DefRange, b.Name)
		}
		m.Aliases = append(m.Aliases, Binding{Name: b.Name, Target: b.Target, Source: b.DefRange.String()})
	}

	for _, set := range []struct {
		block string
		from  []*hclBinding
		into  *[]Binding
	}{
		{"factory", parsed.Factories, &m.Factories},
		{"share", parsed.Shares, &m.Shared},
	} {
		for _, b := range set.from {
			if err := checkLabel(set.block, b.Name, b.DefRange); err != nil {
				return err
			}
			binding := Binding{Name: b.Name, Source: b.DefRange.String()}
			if b.Target != nil {
				binding.Target = *b.Target
			}
			*set.into = append(*set.into, binding)
		}
	}

	for _, b := range parsed.Definitions {
		if err := checkLabel("define", b.Name, b.DefRange); err != nil {
			return err
		}
		values := map[string]any{}
		if !b.Values.IsNull() {
			if !b.Values.Type().IsObjectType() && !b.Values.Type().IsMapType() {
				return fmt.Errorf("%s: define %q: values must be an object", b.DefRange, b.Name)
			}
			native, err := toNative(b.Values)
			if err != nil {
				return fmt.Errorf("%s: define %q: %w", b.DefRange, b.Name, err)
			}
			values = native.(map[string]any)
		}
		for param := range b.Refs {
			if _, clash := values[param]; clash {
				return fmt.Errorf("%s: define %q: parameter %q is both a value and a ref", b.DefRange, b.Name, param)
			}
		}
		m.Definitions = append(m.Definitions, Define{
			Name:   b.Name,
			Values: values,
			Refs:   b.Refs,
			Source: b.DefRange.String(),
		})
	}

	m.Files = append(m.Files, path)
	return nil
}

func checkLabel(block, name string, at hcl.Range) error {
	err := validation.Validate(
		map[string]string{"name": name},
		validation.Rules{"name": "required|not_in:" + reserved},
	)
	if err != nil {
		return fmt.Errorf("%s: %s block: %w", at, block, err)
	}
	return nil
}

// ── Apply ────────────────────────────────────────────────────────────────────

// Apply registers the manifest on c: values, then definitions, aliases,
// factories and shares. Registrations follow the Canister's first-write-wins
// rule, so earlier files take precedence over later ones.
//
// A factory or share target that names a provided type is bound to that
// type's constructor, so the name resolves through it.
func (m *Manifest) Apply(c *container.Canister) error {
	for _, v := range m.Values {
		c.Set(v.Name, v.Value)
	}

	for _, d := range m.Definitions {
		defs := make(container.Definitions, len(d.Values)+len(d.Refs))
		for param, v := range d.Values {
			defs[param] = container.Val(v)
		}
		for param, key := range d.Refs {
			defs[param] = container.Ref(key)
		}
		if err := c.Define(d.Name, defs); err != nil {
			return fmt.Errorf("%s: %w", d.Source, err)
		}
	}

	for _, a := range m.Aliases {
		if err := c.Alias(a.Name, a.Target); err != nil {
			return fmt.Errorf("%s: %w", a.Source, err)
		}
	}

	for _, b := range m.Factories {
		if err := c.Factory(b.Name, target(c, b)...); err != nil {
			return fmt.Errorf("%s: %w", b.Source, err)
		}
	}
	for _, b := range m.Shared {
		if err := c.Share(b.Name, target(c, b)...); err != nil {
			return fmt.Errorf("%s: %w", b.Source, err)
		}
	}

	c.Logger().Debug("manifest applied",
		zap.Strings("files", m.Files),
		zap.Int("entries", m.Len()),
	)
	return nil
}

// target binds a factory or share to the provided type it names. The
// constructor is looked up on each resolution, so a type provided after the
// manifest is applied still binds. Until then the binding resolves to nil.
// Definitions registered under the binding name feed the constructor.
func target(c *container.Canister, b Binding) []any {
	if b.Target == "" {
		return nil
	}
	return []any{container.Fn(func() (any, error) {
		ctor, err := c.GetProvided(b.Target)
		if err != nil {
			return nil, nil
		}
		return c.Reflector().ResolveCallable(b.Name, ctor, true)
	})}
}

// Len is the number of entries across all block kinds.
func (m *Manifest) Len() int {
	return len(m.Values) + len(m.Aliases) + len(m.Factories) + len(m.Shared) + len(m.Definitions)
}
