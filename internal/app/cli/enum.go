package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// EnumValue is a pflag.Value restricted to a fixed set of strings.
type EnumValue struct {
	value    string
	allowed  []string
	typeName string
}

// NewEnumValue creates an EnumValue. An empty default means "not given".
func NewEnumValue(typeName, defaultVal string, allowed []string) *EnumValue {
	if defaultVal != "" && !slices.Contains(allowed, defaultVal) {
		panic(fmt.Sprintf("default value %q not in allowed set", defaultVal))
	}
	return &EnumValue{
		value:    defaultVal,
		allowed:  allowed,
		typeName: typeName,
	}
}

func (e *EnumValue) String() string     { return e.value }
func (e *EnumValue) HelpString() string { return "[" + strings.Join(e.allowed, ", ") + "]" }
func (e *EnumValue) Type() string       { return e.typeName }
func (e *EnumValue) Value() string      { return e.value }

func (e *EnumValue) Set(v string) error {
	if slices.Contains(e.allowed, v) {
		e.value = v
		return nil
	}
	return fmt.Errorf("invalid %s %q: must be one of: %s", e.typeName, v, strings.Join(e.allowed, ", "))
}

func (e *EnumValue) AllowedKeys() []string {
	return slices.Clone(e.allowed)
}

func (e *EnumValue) CompletionFunc() func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return e.AllowedKeys(), cobra.ShellCompDirectiveNoFileComp
	}
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
