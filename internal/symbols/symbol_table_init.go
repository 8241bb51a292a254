package symbols

import "sort"

// BuiltinCategory groups builtin operators for documentation and listings.
type BuiltinCategory string

const (
	CategoryLiteral  BuiltinCategory = "literal"
	CategoryBoolean  BuiltinCategory = "boolean"
	CategoryInteger  BuiltinCategory = "integer"
	CategorySet      BuiltinCategory = "set"
	CategoryMap      BuiltinCategory = "map"
	CategorySequence BuiltinCategory = "sequence"
	CategoryRecord   BuiltinCategory = "record"
	CategoryTemporal BuiltinCategory = "temporal"
	CategoryAction   BuiltinCategory = "action"
	CategoryTesting  BuiltinCategory = "testing"
)

// builtinCatalog is the fixed set of operators available in every module
// without an import. Order within a category follows the language reference.
var builtinCatalog = []struct {
	Category BuiltinCategory
	Names    []string
}{
	{CategoryLiteral, []string{"Bool", "Int", "Nat", "false", "true"}},
	{CategoryBoolean, []string{"eq", "neq", "iff", "implies", "not", "and", "or", "ite", "exists", "forall"}},
	{CategoryInteger, []string{"igt", "ilt", "igte", "ilte", "iadd", "isub", "iuminus", "imul", "idiv", "imod", "ipow", "to"}},
	{CategorySet, []string{
		"Set", "in", "contains", "notin", "union", "intersect", "exclude", "subseteq",
		"filter", "map", "fold", "powerset", "flatten", "allLists", "allListsUpTo",
		"chooseSome", "oneOf", "isFinite", "size", "getOnlyElement",
	}},
	{CategoryMap, []string{"Map", "get", "put", "keys", "mapBy", "setToMap", "setOfMaps", "set", "setBy"}},
	{CategorySequence, []string{
		"List", "range", "append", "concat", "head", "tail", "length", "nth",
		"indices", "replaceAt", "slice", "select", "foldl", "foldr",
	}},
	{CategoryRecord, []string{"Rec", "Tup", "field", "fields", "with", "item", "tuples", "variant", "matchVariant"}},
	{CategoryTemporal, []string{"always", "eventually", "next", "orKeep", "mustChange", "enabled", "weakFair", "strongFair", "guarantees"}},
	{CategoryAction, []string{"assign", "actionAll", "actionAny", "then", "reps", "fail", "assert", "expect"}},
	{CategoryTesting, []string{"q::debug", "q::lastTrace", "q::test", "q::testOnce", "apalache::generate"}},
}

var (
	builtinSet      map[string]BuiltinCategory
	builtinNamesAll []string
)

func init() {
	builtinSet = make(map[string]BuiltinCategory)
	for _, group := range builtinCatalog {
		for _, name := range group.Names {
			builtinSet[name] = group.Category
		}
	}
	builtinNamesAll = make([]string, 0, len(builtinSet))
	for name := range builtinSet {
		builtinNamesAll = append(builtinNamesAll, name)
	}
	sort.Strings(builtinNamesAll)
}

// IsBuiltin reports whether name belongs to the Builtin Registry.
func IsBuiltin(name string) bool {
	_, ok := builtinSet[name]
	return ok
}

// BuiltinCategoryOf returns the category of a builtin name.
func BuiltinCategoryOf(name string) (BuiltinCategory, bool) {
	c, ok := builtinSet[name]
	return c, ok
}

// BuiltinCategories returns the categories in catalog order.
func BuiltinCategories() []BuiltinCategory {
	out := make([]BuiltinCategory, len(builtinCatalog))
	for i, group := range builtinCatalog {
		out[i] = group.Category
	}
	return out
}

// BuiltinNames returns all builtin names, sorted.
func BuiltinNames() []string {
	out := make([]string, len(builtinNamesAll))
	copy(out, builtinNamesAll)
	return out
}

// builtinDefinition is the table entry every module starts with for name.
func builtinDefinition(name string) ValueDefinition {
	return ValueDefinition{Kind: KindDef, Identifier: name}
}

// NewLookupTable creates a lookup table seeded with the Builtin Registry.
func NewLookupTable() LookupTable {
	lt := make(LookupTable, len(builtinNamesAll))
	for _, name := range builtinNamesAll {
		lt[name] = &DefinitionTable{Values: []ValueDefinition{builtinDefinition(name)}}
	}
	return lt
}
