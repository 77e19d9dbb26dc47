package descriptor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// fixtureDoc builds a graph with three bindable types: a record with
// fields, methods, operators and interface impls (Vec2), a bare record
// (Color), and a tagged union (Visibility).
func fixtureDoc() *graph.Document {
	selfParam := graph.Param{Name: "self", Type: *generic("Self")}

	items := map[string]*graph.Item{
		"v1": {
			ID: "v1", Name: "Vec2", Kind: graph.KindRecord,
			Docs: "A 2D vector.\n",
			Record: &graph.Record{
				Style:  graph.FieldsPlain,
				Fields: []string{"vf_x", "vf_value", "vf_w", "vf_flag"},
				Impls:  []string{"vi_self", "vi_reflect", "vi_display", "vi_clone", "vi_add", "vi_neg"},
			},
		},
		"vf_x": {
			ID: "vf_x", Name: "x", Kind: graph.KindField,
			Docs:  "X component.\n",
			Field: primitive("f32"),
		},
		"vf_value": {
			ID: "vf_value", Name: "value", Kind: graph.KindField,
			Field: primitive("f32"),
		},
		"vf_w": {
			ID: "vf_w", Name: "w", Kind: graph.KindField,
			Field: &graph.TypeExpr{Kind: graph.ExprTuple},
		},
		"vf_flag": {
			ID: "vf_flag", Name: "flag", Kind: graph.KindField,
			Attrs: []string{"#[reflect(ignore)]"},
			Field: primitive("bool"),
		},
		"vi_self": {
			ID: "vi_self", Kind: graph.KindImpl,
			Impl: &graph.Impl{
				For:   *named("Vec2"),
				Items: []string{"vm_length", "vm_splat", "vm_as_ref", "vm_lerp", "vm_value"},
			},
		},
		"vm_length": {
			ID: "vm_length", Name: "length", Kind: graph.KindFunction,
			Docs: "Computes length.\n",
			Function: &graph.Function{
				Inputs: []graph.Param{selfParam},
				Output: primitive("f32"),
			},
		},
		"vm_splat": {
			ID: "vm_splat", Name: "splat", Kind: graph.KindFunction,
			Function: &graph.Function{
				Inputs: []graph.Param{{Name: "v", Type: *primitive("f32")}},
				Output: generic("Self"),
			},
		},
		"vm_as_ref": {
			ID: "vm_as_ref", Name: "as_ref", Kind: graph.KindFunction,
			Function: &graph.Function{
				Inputs: []graph.Param{selfParam},
				Output: ref(false, primitive("f32")),
			},
		},
		"vm_lerp": {
			ID: "vm_lerp", Name: "lerp", Kind: graph.KindFunction,
			Function: &graph.Function{
				Inputs: []graph.Param{selfParam, {Name: "other", Type: *named("Mat3")}},
				Output: primitive("f32"),
			},
		},
		"vm_value": {
			ID: "vm_value", Name: "value", Kind: graph.KindFunction,
			Function: &graph.Function{
				Inputs: []graph.Param{selfParam},
				Output: primitive("f32"),
			},
		},
		"vi_reflect": {
			ID: "vi_reflect", Kind: graph.KindImpl,
			Impl: &graph.Impl{
				Interface: "Reflect",
				For:       *named("Vec2"),
				Items:     []string{"vm_reflect_name"},
			},
		},
		"vm_reflect_name": {
			ID: "vm_reflect_name", Name: "reflect_name", Kind: graph.KindFunction,
			Function: &graph.Function{Inputs: []graph.Param{selfParam}},
		},
		"vi_display": {
			ID: "vi_display", Kind: graph.KindImpl,
			Impl: &graph.Impl{
				Interface: "Display",
				For:       *named("Vec2"),
				Items:     []string{"vm_fmt"},
			},
		},
		"vm_fmt": {
			ID: "vm_fmt", Name: "fmt", Kind: graph.KindFunction,
			Function: &graph.Function{Inputs: []graph.Param{selfParam}},
		},
		"vi_clone": {
			ID: "vi_clone", Kind: graph.KindImpl,
			Impl: &graph.Impl{Interface: "Clone", For: *named("Vec2")},
		},
		"vi_add": {
			ID: "vi_add", Kind: graph.KindImpl,
			Impl: &graph.Impl{
				Interface: "Add",
				For:       *named("Vec2"),
				Items:     []string{"vm_add", "va_out"},
			},
		},
		"vm_add": {
			ID: "vm_add", Name: "add", Kind: graph.KindFunction,
			Function: &graph.Function{
				Inputs: []graph.Param{selfParam, {Name: "rhs", Type: *named("Vec2")}},
			},
		},
		"va_out": {
			ID: "va_out", Name: "Output", Kind: graph.KindAssocType,
			Assoc: &graph.AssocType{Default: named("Vec2")},
		},
		"vi_neg": {
			ID: "vi_neg", Kind: graph.KindImpl,
			Impl: &graph.Impl{
				Interface: "Neg",
				For:       *named("Vec2"),
				Items:     []string{"vm_neg"},
			},
		},
		"vm_neg": {
			ID: "vm_neg", Name: "neg", Kind: graph.KindFunction,
			Function: &graph.Function{
				Inputs: []graph.Param{selfParam},
				Output: generic("Self"),
			},
		},

		"c1": {
			ID: "c1", Name: "Color", Kind: graph.KindRecord,
			Docs: "Graph-sourced color doc.\n",
			Record: &graph.Record{
				Style:  graph.FieldsPlain,
				Fields: []string{"cf_r"},
			},
		},
		"cf_r": {
			ID: "cf_r", Name: "r", Kind: graph.KindField,
			Field: primitive("f32"),
		},

		"s1": {
			ID: "s1", Name: "Visibility", Kind: graph.KindUnion,
			Union: &graph.Union{Impls: []string{"si_self"}},
		},
		"si_self": {
			ID: "si_self", Kind: graph.KindImpl,
			Impl: &graph.Impl{
				For:   *named("Visibility"),
				Items: []string{"sm_toggle"},
			},
		},
		"sm_toggle": {
			ID: "sm_toggle", Name: "toggle", Kind: graph.KindFunction,
			Function: &graph.Function{Inputs: []graph.Param{selfParam}},
		},
	}

	return &graph.Document{
		Root:          "loom",
		FormatVersion: 1,
		Index:         items,
		Paths: map[string][]string{
			"v1": {"loom_math", "vec2", "Vec2"},
			"c1": {"loom_render", "color", "Color"},
			"s1": {"loom_render", "view", "Visibility"},
		},
	}
}

const fixtureConfigTOML = `
api_name = "LoomAPI"
output_file = "out.rs"
primitives = ["f32", "usize", "bool"]
imports = """
use mag_scripting::prelude::*;
"""
other = """
// end of generated blocks
"""
provider_defaults = """
fn setup_script_runtime(&mut self, _world: MagWorldPointer) {}
"""

[[types]]
type = "Vec2"
source = "loom_math"
required_features = ["math"]
derive_flags = ["AutoDocs"]
manual_methods = ["fn extra(self)"]

[[types.interfaces]]
name = "Reflect"
import = "loom::reflect::Reflect"

[[types]]
type = "Color"
source = "loom_render"
doc = "An RGBA color."

[[types]]
type = "Visibility"
source = "loom_render"
required_features = ["render", "view"]

[[manual_types]]
name = "MagWorld"
proxy_name = "world"
include_global_instance = true

[[manual_types]]
name = "MagScriptHandle"
proxy_name = "script"
include_global_instance = true
use_dummy_proxy = true
skip_docs = true
`

func loadConfig(t *testing.T, content string) *bindings.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := bindings.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func generateFixture(t *testing.T, opts Options) *Result {
	t.Helper()
	cfg := loadConfig(t, fixtureConfigTOML)
	set := &graph.Set{Docs: []*graph.Document{fixtureDoc()}}
	result, err := Generate(set, cfg, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return result
}

func mustContain(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q", want)
	}
}

func mustNotContain(t *testing.T, out, unwanted string) {
	t.Helper()
	if strings.Contains(out, unwanted) {
		t.Errorf("output should not contain %q", unwanted)
	}
}

func TestGenerateHeaderAndImports(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	if !strings.HasPrefix(out, "#![allow(clippy::all, unused_imports)]\n") {
		t.Error("artifact should start with the allow header")
	}
	mustContain(t, out, "use mag_scripting::prelude::*;")
	mustContain(t, out, "use loom::math::vec2::Vec2;")
	mustContain(t, out, "use loom::render::color::Color;")
	mustContain(t, out, "use loom::render::view::Visibility;")
	mustContain(t, out, "use loom::reflect::Reflect;")
}

func TestGenerateMethodSelection(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "/// Computes length.\nlength(self:) -> Raw(f32),")
	mustContain(t, out, "splat(Raw(f32)) -> self,")
	mustContain(t, out, "value(self:) -> Raw(f32),")
	mustContain(t, out, "reflect_name(self:),")
	mustContain(t, out, "toggle(self:),")

	// reference return: hard exclusion
	mustNotContain(t, out, "as_ref")
	// unsupported parameter, diagnostics off: dropped without trace
	mustNotContain(t, out, "lerp")
	// interface not on the allow-list: not even a candidate
	mustNotContain(t, out, "fmt(")
}

func TestGenerateDiagnosticTrail(t *testing.T) {
	out := string(generateFixture(t, Options{Diagnostics: true}).Output)

	mustContain(t, out, "// Exclusion reason: unsupported argument Mat3, not a wrapped type or primitive")
	mustContain(t, out, "// lerp(self:<invalid: Mat3>) -> Raw(f32)")

	// hard exclusions stay invisible even with diagnostics on
	mustNotContain(t, out, "as_ref")
	mustNotContain(t, out, "fmt(")
}

func TestGenerateFields(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "/// X component.\nx: Raw(f32),")
	// collision with the selected method "value"
	mustContain(t, out, "#[rename(\"value\")]\n_value: Raw(f32),")
	mustNotContain(t, out, "\nvalue: Raw(f32),")
	// unsupported type degrades to the reflected placeholder
	mustContain(t, out, "w: Raw(ReflectedValue),")
	// ignore annotation excludes the field entirely
	mustNotContain(t, out, "flag")
}

func TestGenerateOperators(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "self Add Wrapped(Vec2) -> Wrapped(Vec2),")
	mustContain(t, out, "Neg self -> self")
}

func TestGenerateDeriveFlagsAndManualMethods(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "Clone +")
	mustNotContain(t, out, "Debug +")
	mustContain(t, out, "+ AutoDocs")
	mustContain(t, out, "fn extra(self);")
}

func TestGenerateFeatureGates(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "#[cfg(feature=\"math\")]\nimpl_mag_newtype!{")
	mustContain(t, out, "#[cfg(all(\nfeature=\"render\",\nfeature=\"view\",\n))]")
}

func TestGenerateDocOverride(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "/// A 2D vector.")
	mustContain(t, out, "/// An RGBA color.")
	mustNotContain(t, out, "Graph-sourced color doc.")
}

func TestGenerateScaffolding(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	mustContain(t, out, "pub(crate) struct LoomAPIGlobals;")
	// splat has no receiver, so Vec2 exposes globals
	mustContain(t, out, `instances.add_instance("Vec2", mag_scripting::InstanceProxy::<MagVec2>::new)?;`)
	mustNotContain(t, out, `instances.add_instance("Visibility"`)
	mustNotContain(t, out, `instances.add_instance("Color"`)

	mustContain(t, out, `instances.add_instance("world", mag_scripting::InstanceProxy::<MagWorld>::new)?;`)
	mustContain(t, out, `instances.add_instance("script", crate::mag::util::DummyTypeName::<MagScriptHandle>::new)?;`)

	mustContain(t, out, ".process_type::<MagVec2>()")
	mustContain(t, out, ".process_type::<mag_scripting::InstanceProxy<MagVec2>>()")
	mustContain(t, out, ".process_type::<MagWorld>()")
	mustNotContain(t, out, ".process_type::<MagScriptHandle>")

	mustContain(t, out, "fn setup_script_runtime(&mut self, _world: MagWorldPointer) {}")

	mustContain(t, out, "app.register_foreign_mag_type::<Vec2>();")
	mustContain(t, out, "app.register_foreign_mag_type::<Visibility>();")
	mustContain(t, out, "app.register_foreign_mag_type::<f32>();")
	mustContain(t, out, "app.register_foreign_mag_type::<bool>();")

	mustContain(t, out, "// end of generated blocks")
}

func TestGenerateOrdering(t *testing.T) {
	out := string(generateFixture(t, Options{}).Output)

	iVec2 := strings.Index(out, "loom::math::vec2::Vec2 :")
	iColor := strings.Index(out, "loom::render::color::Color :")
	iVis := strings.Index(out, "loom::render::view::Visibility :")
	if iVec2 < 0 || iColor < 0 || iVis < 0 {
		t.Fatalf("descriptor headers missing (%d, %d, %d)", iVec2, iColor, iVis)
	}
	if !(iVec2 < iColor && iColor < iVis) {
		t.Errorf("blocks out of configuration order: Vec2@%d Color@%d Visibility@%d", iVec2, iColor, iVis)
	}
}

func TestGenerateDeterminism(t *testing.T) {
	cfg := loadConfig(t, fixtureConfigTOML)

	var first []byte
	for i := 0; i < 5; i++ {
		set := &graph.Set{Docs: []*graph.Document{fixtureDoc()}}
		result, err := Generate(set, cfg, Options{Diagnostics: true})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if first == nil {
			first = result.Output
			continue
		}
		if !bytes.Equal(first, result.Output) {
			t.Fatalf("run %d produced different bytes", i)
		}
	}
}

func TestGenerateReport(t *testing.T) {
	report := generateFixture(t, Options{}).Report

	if len(report.Types) != 3 {
		t.Fatalf("report has %d types, want 3", len(report.Types))
	}

	vec2 := report.Types[0]
	if vec2.Name != "Vec2" {
		t.Fatalf("first report entry = %s, want Vec2", vec2.Name)
	}
	if got := vec2.MethodsIncluded(); got != 4 {
		t.Errorf("Vec2 methods included = %d, want 4", got)
	}
	if got := vec2.MethodsExcluded(); got != 2 {
		t.Errorf("Vec2 methods excluded = %d, want 2", got)
	}
	if vec2.Fields != 3 {
		t.Errorf("Vec2 fields = %d, want 3", vec2.Fields)
	}
	if vec2.BinOps != 1 || vec2.UnaryOps != 1 {
		t.Errorf("Vec2 ops = (%d, %d), want (1, 1)", vec2.BinOps, vec2.UnaryOps)
	}
	if !vec2.HasGlobal {
		t.Error("Vec2 should expose global methods")
	}

	vis := report.Types[2]
	if vis.HasGlobal {
		t.Error("Visibility methods all take a receiver; no globals expected")
	}
	if vis.Fields != 0 {
		t.Errorf("Visibility fields = %d, want 0 for a tagged union", vis.Fields)
	}
}

func TestGenerateMissingTypesAggregated(t *testing.T) {
	cfg := loadConfig(t, fixtureConfigTOML+`
[[types]]
type = "Ghost"

[[types]]
type = "Phantom"
`)
	set := &graph.Set{Docs: []*graph.Document{fixtureDoc()}}

	_, err := Generate(set, cfg, Options{})
	if err == nil {
		t.Fatal("expected aggregated missing-type error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Ghost") || !strings.Contains(msg, "Phantom") {
		t.Errorf("error %q should list every missing name", msg)
	}
	if !strings.Contains(msg, "not found in the supplied type graphs") {
		t.Errorf("error %q should be the aggregated form", msg)
	}
}

func TestGenerateMalformedImplRef(t *testing.T) {
	doc := fixtureDoc()
	// point one of Vec2's impl ids at a field item
	doc.Index["v1"].Record.Impls[0] = "vf_x"

	cfg := loadConfig(t, fixtureConfigTOML)
	_, err := Generate(&graph.Set{Docs: []*graph.Document{doc}}, cfg, Options{})
	if err == nil {
		t.Fatal("expected consistency error for non-impl block id")
	}
	if !strings.Contains(err.Error(), "implementation block") {
		t.Errorf("error %q should mention the expected kind", err)
	}
}

func TestGenerateMultipleDocuments(t *testing.T) {
	full := fixtureDoc()

	// split Visibility into its own document
	second := &graph.Document{
		Root:          "loom_render",
		FormatVersion: 1,
		Index:         map[string]*graph.Item{},
		Paths:         map[string][]string{},
	}
	for _, id := range []string{"s1", "si_self", "sm_toggle"} {
		second.Index[id] = full.Index[id]
		delete(full.Index, id)
	}
	second.Paths["s1"] = full.Paths["s1"]
	delete(full.Paths, "s1")

	cfg := loadConfig(t, fixtureConfigTOML)
	result, err := Generate(&graph.Set{Docs: []*graph.Document{full, second}}, cfg, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	mustContain(t, string(result.Output), "toggle(self:),")
}
