package descriptor

import (
	"fmt"
	"strings"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// artifactHeader is the first line of every generated artifact.
const artifactHeader = "#![allow(clippy::all, unused_imports)]"

// run holds the only mutable state of one emission pass: the output
// buffer and the run-scoped bookkeeping sets. Nothing here outlives a
// single Generate call.
type run struct {
	cfg         *bindings.Config
	diagnostics bool
	out         strings.Builder
	imported    map[string]bool // interface names already imported, first-use order
}

func newRun(cfg *bindings.Config, diagnostics bool) *run {
	return &run{
		cfg:         cfg,
		diagnostics: diagnostics,
		imported:    make(map[string]bool),
	}
}

func (r *run) line(s string) {
	r.out.WriteString(s)
	r.out.WriteString("\n")
}

func (r *run) linef(format string, args ...any) {
	fmt.Fprintf(&r.out, format, args...)
	r.out.WriteString("\n")
}

// writeFeatureGate emits the conditional compilation guard for a type:
// a simple guard for one feature, a conjunctive guard for several,
// nothing for none.
func (r *run) writeFeatureGate(features []string) {
	switch len(features) {
	case 0:
	case 1:
		r.linef("#[cfg(feature=%q)]", features[0])
	default:
		r.line("#[cfg(all(")
		for _, f := range features {
			r.linef("feature=%q,", f)
		}
		r.line("))]")
	}
}

// writeUseStatement emits the import for one wrapped type. The
// configured import path wins; otherwise the declaring module name
// (umbrella rewrite applied) is joined with the remaining resolved path
// segments.
func (r *run) writeUseStatement(w *WrappedItem) {
	r.out.WriteString("use ")
	if w.Config.ImportPath != "" {
		r.out.WriteString(w.Config.ImportPath)
	} else {
		r.out.WriteString(graph.RewriteModule(w.Config.Source))
		if len(w.PathSegments) > 1 {
			for _, seg := range w.PathSegments[1:] {
				r.out.WriteString("::")
				r.out.WriteString(seg)
			}
		}
	}
	r.line(";")
}

// writeInterfaceImports emits one use-statement per accepted interface,
// deduplicated across the run in first-use order.
func (r *run) writeInterfaceImports(items []*WrappedItem) {
	for _, w := range items {
		for _, ic := range w.Config.Interfaces {
			if r.imported[ic.Name] {
				continue
			}
			r.imported[ic.Name] = true
			r.linef("use %s;", ic.Import)
		}
	}
}

// writeTypeDoc emits the type's doc comment; a config override takes
// precedence over the graph-sourced doc.
func (r *run) writeTypeDoc(w *WrappedItem) {
	doc := w.Item.Docs
	if w.Config.Doc != nil {
		doc = *w.Config.Doc
	}
	for _, line := range docLines(doc) {
		r.linef("/// %s", line)
	}
}

// writeDescriptorBlock emits one binding-descriptor invocation for a
// wrapped type and reports its selection counts.
func (r *run) writeDescriptorBlock(w *WrappedItem) TypeReport {
	r.writeFeatureGate(w.Config.RequiredFeatures)
	r.line("impl_mag_newtype!{")
	r.line("#[languages(on_feature(mag))]")
	r.writeTypeDoc(w)
	r.linef("%s :", w.FullPath())

	if w.Interfaces["Clone"] {
		r.line("Clone +")
	}
	if w.Interfaces["Debug"] {
		r.line("Debug +")
	}

	used := make(map[string]bool)

	r.line("Methods")
	r.line("(")
	methods := w.writeMethods(&r.out, r.cfg, r.diagnostics, used)
	r.line(")")

	r.line("+ Fields")
	r.line("(")
	fields := w.writeFields(&r.out, r.cfg, used)
	r.line(")")

	r.line("+ BinOps")
	r.line("(")
	binOps := w.writeBinOps(&r.out, r.cfg)
	r.line(")")

	r.line("+ UnaryOps")
	r.line("(")
	unaryOps := w.writeUnaryOps(&r.out)
	r.line(")")

	for _, flag := range w.Config.DeriveFlags {
		r.out.WriteString("+ ")
		for _, line := range strings.Split(strings.TrimRight(flag, "\n"), "\n") {
			r.line(line)
		}
	}

	r.line("mag impl")
	r.line("{")
	for _, m := range w.Config.ManualMethods {
		r.linef("%s;", m)
	}
	r.line("}")
	r.line("}")

	return TypeReport{
		Name:      w.TypeName,
		Methods:   methods,
		Fields:    fields,
		BinOps:    binOps,
		UnaryOps:  unaryOps,
		HasGlobal: w.HasGlobalMethods,
	}
}

// writeScaffolding emits the once-per-run global registration section:
// the globals registry, the documentation hook and the runtime
// registration routine.
func (r *run) writeScaffolding(items []*WrappedItem) {
	api := r.cfg.APIName

	// globals registry
	r.line("#[derive(Default)]")
	r.linef("pub(crate) struct %sGlobals;", api)
	r.linef("impl mag_scripting::ExportInstances for %sGlobals", api)
	r.line("{")
	r.line("fn add_instances<T: mag_scripting::InstanceCollector>(self, instances: &mut T) -> mag_scripting::Result<()>")
	r.line("{")
	for _, w := range items {
		if !w.HasGlobalMethods {
			continue
		}
		r.linef("instances.add_instance(%q, mag_scripting::InstanceProxy::<%s>::new)?;", w.TypeName, w.WrapperName)
	}
	for _, mt := range r.cfg.ManualTypes {
		if !mt.IncludeGlobalInstance {
			continue
		}
		if mt.UseDummyProxy {
			r.linef("instances.add_instance(%q, crate::mag::util::DummyTypeName::<%s>::new)?;", mt.ProxyName, mt.Name)
		} else {
			r.linef("instances.add_instance(%q, mag_scripting::InstanceProxy::<%s>::new)?;", mt.ProxyName, mt.Name)
		}
	}
	r.line("Ok(())")
	r.line("}")
	r.line("}")

	// provider
	r.linef("pub struct Mag%sProvider;", api)
	r.linef("impl APIProvider for Mag%sProvider", api)
	r.line("{")
	r.line("type APITarget = Mutex<mag_scripting::Engine>;")
	r.line("type ScriptContext = Mutex<mag_scripting::Engine>;")
	r.line("type DocTarget = MagDocFragment;")

	r.line("fn attach_api(&mut self, ctx: &mut Self::APITarget) -> Result<(), ScriptError>")
	r.line("{")
	r.line("let ctx = ctx.get_mut().expect(\"Unable to acquire lock on Mag context\");")
	r.linef("mag_scripting::set_global_env(%sGlobals, ctx).map_err(|e| ScriptError::Other(e.to_string()))", api)
	r.line("}")

	// documentation hook
	r.line("fn get_doc_fragment(&self) -> Option<Self::DocTarget>")
	r.line("{")
	r.linef("Some(MagDocFragment::new(%q, |tw|", api)
	r.line("{")
	r.line("tw")
	r.linef(".document_global_instance::<%sGlobals>().expect(\"Something went wrong documenting globals\")", api)
	for _, w := range items {
		r.linef(".process_type::<%s>()", w.WrapperName)
		if w.HasGlobalMethods {
			r.linef(".process_type::<mag_scripting::InstanceProxy<%s>>()", w.WrapperName)
		}
	}
	for _, mt := range r.cfg.ManualTypes {
		if mt.SkipDocs {
			continue
		}
		r.linef(".process_type::<%s>()", mt.Name)
		if mt.IncludeGlobalInstance {
			r.linef(".process_type::<mag_scripting::InstanceProxy<%s>>()", mt.Name)
		}
	}
	r.line("}")
	r.line("))")
	r.line("}")

	for _, line := range textLines(r.cfg.ProviderDefaults) {
		r.line(line)
	}

	// runtime foreign-type registration
	r.line("fn register_with_app(&self, app: &mut App)")
	r.line("{")
	for _, w := range items {
		r.linef("app.register_foreign_mag_type::<%s>();", w.TypeName)
	}
	for _, p := range r.cfg.Primitives {
		r.linef("app.register_foreign_mag_type::<%s>();", p)
	}
	r.line("}")
	r.line("}")
}

// emit drives the single deterministic pass over the wrapped items,
// which must already be in configuration order.
func (r *run) emit(items []*WrappedItem) *Report {
	report := &Report{}

	r.line(artifactHeader)
	for _, line := range textLines(r.cfg.Imports) {
		r.line(line)
	}
	for _, w := range items {
		r.writeUseStatement(w)
	}
	r.writeInterfaceImports(items)

	for _, w := range items {
		report.Types = append(report.Types, r.writeDescriptorBlock(w))
	}

	for _, line := range textLines(r.cfg.Other) {
		r.line(line)
	}

	r.writeScaffolding(items)
	return report
}

// textLines splits a free-text config block into lines, preserving
// interior blank lines and dropping only a trailing newline. Empty
// blocks yield nothing.
func textLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
