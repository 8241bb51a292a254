package utils

import "strings"

// NamespaceSeparator joins an instance or nested-module name with a member name.
const NamespaceSeparator = "::"

// Qualify prefixes name with namespace: Qualify("N", "x") -> "N::x".
// An empty namespace returns name unchanged.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + NamespaceSeparator + name
}

// Namespace returns the prefix of a qualified name without the trailing
// separator: "A::B::x" -> "A::B". Unqualified names return "".
func Namespace(name string) string {
	i := strings.LastIndex(name, NamespaceSeparator)
	if i < 0 {
		return ""
	}
	return name[:i]
}

// Unqualified returns the last segment of a qualified name: "A::B::x" -> "x".
func Unqualified(name string) string {
	i := strings.LastIndex(name, NamespaceSeparator)
	if i < 0 {
		return name
	}
	return name[i+len(NamespaceSeparator):]
}

// HasNamespace reports whether name lives directly or transitively under namespace.
func HasNamespace(name, namespace string) bool {
	return strings.HasPrefix(name, namespace+NamespaceSeparator)
}
