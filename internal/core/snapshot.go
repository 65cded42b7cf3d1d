package core

import "time"

// SnapshotVersion is the export document format version.
const SnapshotVersion = "1.0"

// Snapshot is the portable export document: the four top-level
// collections verbatim plus export metadata. Export is one-directional;
// there is no import path.
type Snapshot struct {
	ExportDate   time.Time     `json:"exportDate"`
	Version      string        `json:"version"`
	Children     []Child       `json:"children"`
	Transactions []Transaction `json:"transactions"`
	Goals        []Goal        `json:"goals"`
	Settings     Settings      `json:"settings"`
}
