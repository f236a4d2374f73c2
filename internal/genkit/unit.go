package genkit

import (
	"go/types"

	"github.com/darklink/dlgen/internal/host"
)

// Unit is one generated source file.
type Unit struct {
	// Name identifies the unit and is derived from the owner's package path and
	// name, e.g. example.com/demo.Counter.notify.
	Name string
	// Package is the run package the unit belongs to.
	Package *host.Package
	// FileName is the base name of the file in the package directory.
	FileName string
	Source   []byte
	// Owner is the declaration the unit extends, nil for package-wide units.
	// A unit whose owner is declared in a _test.go file is written as one.
	Owner types.Object
}

// UnitName derives the unit name for an owner declared in pkgPath.
func UnitName(pkgPath, owner, suffix string) string {
	if owner == "" {
		return pkgPath + "." + suffix
	}
	return pkgPath + "." + owner + "." + suffix
}

// UnitFileName derives the file name for an owner, e.g. HTTPServer and
// "notify" give http_server_notify.go.
func UnitFileName(owner, suffix string) string {
	return SnakeCase(owner) + "_" + suffix + ".go"
}
