package descriptor

import (
	"fmt"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// WrapperPrefix is prepended to a type name to form its generated proxy
// name.
const WrapperPrefix = "Mag"

// MemberRef pairs a candidate member with the implementation block it
// came from. A member name can carry several refs when it is inherited
// from more than one interface.
type MemberRef struct {
	Block  *graph.Impl
	Member *graph.Item
}

// WrappedItem is the per-type working state of one generation pass. It
// is owned by exactly one run and never persisted.
type WrappedItem struct {
	WrapperName string
	TypeName    string
	Source      *graph.Document
	Item        *graph.Item
	Config      *bindings.TypeConfig

	PathSegments []string

	// SelfImpl is the type's own implementation block, when one exists.
	// A malformed graph with several is not validated; the last wins.
	SelfImpl *graph.Impl

	// Members maps member name to its candidates in insertion order;
	// memberNames preserves first-seen key order so no phase ever
	// depends on map iteration.
	Members     map[string][]MemberRef
	memberNames []string

	// Interfaces is the set of interface names the type implements.
	Interfaces map[string]bool

	// HasGlobalMethods is set during method selection when at least one
	// selected method has no receiver parameter.
	HasGlobalMethods bool
}

// Collect walks every implementation block reachable from the target
// item and builds the name-indexed member multi-map. The item must be a
// record or tagged union; an impl id resolving to anything but an
// implementation block is an input-graph consistency violation and
// fails the run.
func Collect(doc *graph.Document, item *graph.Item, tc *bindings.TypeConfig) (*WrappedItem, error) {
	var implIDs []string
	switch item.Kind {
	case graph.KindRecord:
		implIDs = item.Record.Impls
	case graph.KindUnion:
		implIDs = item.Union.Impls
	default:
		return nil, fmt.Errorf("item %s (%s) is neither a record nor a tagged union", item.ID, item.Name)
	}

	w := &WrappedItem{
		WrapperName: WrapperPrefix + item.Name,
		TypeName:    item.Name,
		Source:      doc,
		Item:        item,
		Config:      tc,
		Members:     make(map[string][]MemberRef),
		Interfaces:  make(map[string]bool),
	}

	for _, id := range implIDs {
		blockItem, ok := doc.Item(id)
		if !ok {
			return nil, fmt.Errorf("impl id %s on %s does not resolve", id, item.Name)
		}
		if blockItem.Kind != graph.KindImpl || blockItem.Impl == nil {
			return nil, fmt.Errorf("impl id %s on %s resolves to a %s item, expected an implementation block",
				id, item.Name, blockItem.Kind)
		}
		block := blockItem.Impl

		if block.Interface != "" {
			w.Interfaces[block.Interface] = true
		} else {
			w.SelfImpl = block
		}

		for _, memberID := range block.Items {
			member, ok := doc.Item(memberID)
			if !ok {
				return nil, fmt.Errorf("member id %s in impl %s does not resolve", memberID, id)
			}
			w.addMember(member.Name, MemberRef{Block: block, Member: member})
		}
	}

	segs, err := doc.Path(item.ID)
	if err != nil {
		return nil, err
	}
	w.PathSegments = segs

	return w, nil
}

func (w *WrappedItem) addMember(name string, ref MemberRef) {
	if _, seen := w.Members[name]; !seen {
		w.memberNames = append(w.memberNames, name)
	}
	w.Members[name] = append(w.Members[name], ref)
}

// MemberNames returns member names in first-declaration order.
func (w *WrappedItem) MemberNames() []string {
	return w.memberNames
}

// FullPath is the import-ready path of the wrapped type: the configured
// override when present, otherwise the resolved path segments with the
// umbrella module rewrite applied.
func (w *WrappedItem) FullPath() string {
	if w.Config.ImportPath != "" {
		return w.Config.ImportPath
	}
	return graph.ImportPath(w.PathSegments)
}
