package emit

import (
	"strings"
)

// NotifyField is one validated field of a notifying struct.
type NotifyField struct {
	Name          string
	Type          string
	PrivateSetter bool
}

// NotifyClass is a struct and its validated fields, in first-seen order.
type NotifyClass struct {
	PkgName    string
	TypeName   string
	TypeParams []string
	Fields     []NotifyField
	// Embed is the field notify.Notifier is embedded as, Notifier when empty.
	Embed string
	// Notifier is the qualified name of notify.PropertyChangedNotifier as seen
	// from the generated file. Non-generic types assert it when set.
	Notifier string
	Imports  *Imports
}

// Notify renders the accessor unit of one struct.
func Notify(c NotifyClass) ([]byte, error) {
	var imports []Import
	var importNames []string
	if c.Imports != nil {
		imports = c.Imports.List()
		importNames = c.Imports.Names()
	}

	reserved := reservedSet(importNames, c.TypeParams)
	param := pickName(reserved, "value", "v", "newValue")
	reserved[param] = true
	recv := pickName(reserved, receiverName(c.TypeName), "r", "recv")

	recvType := "*" + c.TypeName
	if len(c.TypeParams) > 0 {
		recvType += "[" + strings.Join(c.TypeParams, ", ") + "]"
	}

	embed := c.Embed
	if embed == "" {
		embed = "Notifier"
	}

	w := &writer{}
	w.header(c.PkgName, imports)
	if c.Notifier != "" && len(c.TypeParams) == 0 {
		w.printf("\nvar _ %s = (*%s)(nil)\n", c.Notifier, c.TypeName)
	}
	for _, f := range c.Fields {
		prop := PropertyName(f.Name)
		setter := SetterName(f.Name, f.PrivateSetter)

		w.printf("\n// %s returns the %s field.\n", prop, f.Name)
		w.printf("func (%s %s) %s() %s {\n", recv, recvType, prop, f.Type)
		w.printf("\treturn %s.%s\n}\n", recv, f.Name)

		w.printf("\n// %s assigns the %s field and raises PropertyChanged for %q when the value changes.\n", setter, f.Name, prop)
		w.printf("func (%s %s) %s(%s %s) {\n", recv, recvType, setter, param, f.Type)
		w.printf("\tif %s.%s == %s {\n\t\treturn\n\t}\n", recv, f.Name, param)
		w.printf("\t%s.%s = %s\n", recv, f.Name, param)
		w.printf("\t%s.%s.RaisePropertyChanged(%s, %q)\n}\n", recv, embed, recv, prop)
	}
	return w.format(c.TypeName + " accessors")
}

func receiverName(typeName string) string {
	name := strings.TrimLeft(typeName, "_")
	if name == "" {
		return "r"
	}
	for _, r := range name {
		return strings.ToLower(string(r))
	}
	return "r"
}
