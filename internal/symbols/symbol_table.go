// symbols/symbol_table.go - Lookup table entry point
//
// The package is split into focused files:
// - symbol_table_core.go: kinds, definitions, table types
// - symbol_table_init.go: Builtin Registry and table seeding
// - symbol_table_operations.go: adding, copying and exporting definitions
// - symbol_table_resolution.go: scope-aware resolution order
// - symbol_table_aliases.go: type namespacing and alias lookup

package symbols
