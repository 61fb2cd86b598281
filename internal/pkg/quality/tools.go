package quality

// Tool names
const (
	ClangFormat = "clang-format"
	ClangTidy   = "clang-tidy"
	Black       = "black"
	Pylint      = "pylint"
)

type language struct {
	name  string
	tool  string
	globs []string
	args  func(files []string) []string
}

func formatters(opts Options, check bool) []language {
	return []language{
		{
			name:  "C++",
			tool:  ClangFormat,
			globs: opts.CppGlobs,
			args: func(files []string) []string {
				if check {
					return append([]string{"--dry-run", "--Werror"}, files...)
				}
				return append([]string{"-i"}, files...)
			},
		},
		{
			name:  "Python",
			tool:  Black,
			globs: opts.PythonGlobs,
			args: func(files []string) []string {
				if check {
					return append([]string{"--check"}, files...)
				}
				return append([]string{}, files...)
			},
		},
	}
}

func linters(opts Options, fix bool) []language {
	return []language{
		{
			name:  "C++",
			tool:  ClangTidy,
			globs: opts.CppGlobs,
			args: func(files []string) []string {
				var args []string
				if opts.CompileCommandsDir != "" {
					args = append(args, "-p", opts.CompileCommandsDir)
				}
				if fix {
					args = append(args, "-fix")
				}
				return append(args, files...)
			},
		},
		{
			name:  "Python",
			tool:  Pylint,
			globs: opts.PythonGlobs,
			args: func(files []string) []string {
				return append([]string{}, files...)
			},
		},
	}
}

func installHint(tool string) string {
	switch tool {
	case ClangFormat, ClangTidy:
		return "install LLVM (apt install " + tool + ", brew install llvm, or the LLVM Windows installer)"
	case Black, Pylint:
		return "pip install " + tool
	default:
		return ""
	}
}
