package emit

import (
	"strings"

	"github.com/darklink/dlgen/internal/genkit"
)

// MatchEnum is an enum type and its members in declaration order.
type MatchEnum struct {
	PkgName  string
	TypeName string
	// Underlying is the basic type the raw value is printed as.
	Underlying string
	Members    []string
	// FuncName names the value-returning helper, e.g. MatchColor.
	FuncName string
	IsFlags  bool
	// Fmt is the local name of the fmt import.
	Fmt     string
	Imports *Imports
}

// MatchParams returns the callback parameter names for members, in order.
// Names are on<Member> and never shadow a member.
func MatchParams(members []string) []string {
	reserved := reservedSet(members)
	params := make([]string, len(members))
	for i, m := range members {
		name := pickName(reserved, "on"+genkit.Capitalize(strings.TrimLeft(m, "_")))
		reserved[name] = true
		params[i] = name
	}
	return params
}

// Match renders the dispatch unit of one enum.
func Match(e MatchEnum) ([]byte, error) {
	var imports []Import
	var importNames []string
	if e.Imports != nil {
		imports = e.Imports.List()
		importNames = e.Imports.Names()
	}
	fmtName := e.Fmt
	if fmtName == "" {
		fmtName = "fmt"
	}

	params := MatchParams(e.Members)
	reserved := reservedSet(e.Members, params, importNames, []string{e.Underlying, e.TypeName})
	recv := pickName(reserved, "v", "val", "value")
	reserved[recv] = true
	result := pickName(reserved, "R", "Result", "T")
	flag := pickName(reserved, "flag", "f", "mask")

	panicArg := e.Underlying + "(" + recv + ")"
	verb := "%v"
	if e.Underlying == "string" {
		verb = "%q"
	}
	w := &writer{}
	w.header(e.PkgName, imports)

	w.printf("\n// Match calls the callback of the member %s equals. It panics when %s is not a\n// declared %s.\n", recv, recv, e.TypeName)
	w.printf("func (%s %s) Match(", recv, e.TypeName)
	for i, p := range params {
		if i > 0 {
			w.printf(", ")
		}
		w.printf("%s func()", p)
	}
	w.printf(") {\n\tswitch %s {\n", recv)
	for i, m := range e.Members {
		w.printf("\tcase %s:\n\t\t%s()\n", m, params[i])
	}
	w.printf("\tdefault:\n\t\tpanic(%s.Sprintf(\"%s.%s: unsupported value %s\", %s))\n\t}\n}\n",
		fmtName, e.PkgName, e.TypeName, verb, panicArg)

	w.printf("\n// %s returns the result of the callback of the member %s equals. It panics\n// when %s is not a declared %s.\n", e.FuncName, recv, recv, e.TypeName)
	w.printf("func %s[%s any](%s %s", e.FuncName, result, recv, e.TypeName)
	for _, p := range params {
		w.printf(", %s func() %s", p, result)
	}
	w.printf(") %s {\n\tswitch %s {\n", result, recv)
	for i, m := range e.Members {
		w.printf("\tcase %s:\n\t\treturn %s()\n", m, params[i])
	}
	w.printf("\tdefault:\n\t\tpanic(%s.Sprintf(\"%s.%s: unsupported value %s\", %s))\n\t}\n}\n",
		fmtName, e.PkgName, e.TypeName, verb, panicArg)

	if e.IsFlags {
		w.printf("\n// Has reports whether every bit of %s is set in %s.\n", flag, recv)
		w.printf("func (%s %s) Has(%s %s) bool {\n\treturn %s&%s == %s\n}\n", recv, e.TypeName, flag, e.TypeName, recv, flag, flag)
	}
	return w.format(e.TypeName + " dispatch")
}
