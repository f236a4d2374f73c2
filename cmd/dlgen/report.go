package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/darklink/dlgen/internal/diagfmt"
	"github.com/darklink/dlgen/internal/observ"
	"github.com/darklink/dlgen/internal/output"
	"github.com/darklink/dlgen/internal/version"
)

// runReport is the machine-readable summary written by --report.
type runReport struct {
	Tool        string                    `json:"tool" msgpack:"tool"`
	Version     string                    `json:"version" msgpack:"version"`
	Command     string                    `json:"command" msgpack:"command"`
	Units       []string                  `json:"units" msgpack:"units"`
	Written     []string                  `json:"written,omitempty" msgpack:"written,omitempty"`
	Unchanged   []string                  `json:"unchanged,omitempty" msgpack:"unchanged,omitempty"`
	Removed     []string                  `json:"removed,omitempty" msgpack:"removed,omitempty"`
	Drift       []driftJSON               `json:"drift,omitempty" msgpack:"drift,omitempty"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics" msgpack:"diagnostics"`
	Load        observ.Report             `json:"load" msgpack:"load"`
	Run         observ.Report             `json:"run" msgpack:"run"`
}

type driftJSON struct {
	Path string `json:"path" msgpack:"path"`
	Kind string `json:"kind" msgpack:"kind"`
}

func buildReport(command string, sess *session, rep *output.Report, drifts []output.Drift) runReport {
	r := runReport{
		Tool:    "dlgen",
		Version: version.Version,
		Command: command,
		Units:   []string{},
		Load:    sess.timer.Report(),
	}
	cwd, _ := os.Getwd()
	if sess.result != nil {
		for _, u := range sess.result.Units {
			r.Units = append(r.Units, u.Name)
		}
		r.Diagnostics = diagfmt.BuildDiagnosticsOutput(sess.result.Diagnostics.Items(), diagfmt.JSONOpts{BaseDir: cwd, IncludeNotes: true})
		r.Run = sess.result.Timings
	}
	if rep != nil {
		r.Written, r.Unchanged, r.Removed = rep.Written, rep.Unchanged, rep.Removed
	}
	for _, d := range drifts {
		r.Drift = append(r.Drift, driftJSON{Path: d.Path, Kind: string(d.Kind)})
	}
	return r
}

// writeReport stores r at path, as msgpack when the extension says so and as
// indented JSON otherwise.
func writeReport(path string, r runReport) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		var err error
		if data, err = msgpack.Marshal(&r); err != nil {
			return errors.Wrap(err, "encode report")
		}
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&r); err != nil {
			return errors.Wrap(err, "encode report")
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}
