// Package policy evaluates project policies written as expr expressions.
//
// The only policy today decides whether the Vulkan SDK comes from the package
// manager graph or from a system install. It is evaluated over the resolved
// invocation, for example:
//
//	platform != "macos" && pipeline == "conan"
package policy

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// VulkanDefinition is the CMake cache variable the policy result is passed in.
const VulkanDefinition = "ENGINE_VULKAN_FROM_PACKAGE_MANAGER"

// Env is what a policy expression can see.
type Env struct {
	Platform  string `expr:"platform"`
	Compiler  string `expr:"compiler"`
	BuildType string `expr:"build_type"`
	Pipeline  string `expr:"pipeline"`
}

// Policy is a compiled boolean expression.
type Policy struct {
	source  string
	program *vm.Program
}

// Compile parses expression. An empty expression always evaluates to true.
func Compile(expression string) (*Policy, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		expression = "true"
	}
	program, err := expr.Compile(expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy %q: %w", expression, err)
	}
	return &Policy{source: expression, program: program}, nil
}

// Eval runs the policy against env.
func (p *Policy) Eval(env Env) (bool, error) {
	result, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("failed to run policy %q: %w", p.source, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("policy %q returned %T, want bool", p.source, result)
	}
	return matched, nil
}

func (p *Policy) String() string {
	return p.source
}

// Definition renders a boolean as a CMake -D value.
func Definition(name string, on bool) string {
	if on {
		return name + "=ON"
	}
	return name + "=OFF"
}
