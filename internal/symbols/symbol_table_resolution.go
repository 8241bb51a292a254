package symbols

// ResolveValue picks the definition visible from a point nested inside scopes
// (outermost first, innermost last).
//
// The definition scoped to the nearest enclosing scope wins; otherwise the
// module-level definition is used. Among equals the later definition wins.
func (d *DefinitionTable) ResolveValue(scopes []uint64) (ValueDefinition, bool) {
	if d == nil {
		return ValueDefinition{}, false
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		for j := len(d.Values) - 1; j >= 0; j-- {
			if d.Values[j].Scope == scopes[i] && d.Values[j].IsScoped() {
				return d.Values[j], true
			}
		}
	}
	for j := len(d.Values) - 1; j >= 0; j-- {
		if !d.Values[j].IsScoped() {
			return d.Values[j], true
		}
	}
	return ValueDefinition{}, false
}

// ResolveType returns the latest type definition of the cell.
func (d *DefinitionTable) ResolveType() (TypeDefinition, bool) {
	if d == nil || len(d.Types) == 0 {
		return TypeDefinition{}, false
	}
	return d.Types[len(d.Types)-1], true
}

// ResolveValue looks up name as seen from inside scopes.
func (lt LookupTable) ResolveValue(name string, scopes []uint64) (ValueDefinition, bool) {
	cell, ok := lt[name]
	if !ok {
		return ValueDefinition{}, false
	}
	return cell.ResolveValue(scopes)
}

// ResolveType looks up a type name.
func (lt LookupTable) ResolveType(name string) (TypeDefinition, bool) {
	cell, ok := lt[name]
	if !ok {
		return TypeDefinition{}, false
	}
	return cell.ResolveType()
}
