package casefile

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jrctsi/AdaptiveStarter/internal/clock"
	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/crop"
	"github.com/jrctsi/AdaptiveStarter/internal/fsops"
	"github.com/jrctsi/AdaptiveStarter/internal/hash"
)

// Report is the YAML run report a planning command can write alongside its
// console output: provenance of the source case plus the resulting
// structure inventory.
type Report struct {
	// Tool and Version identify the producing binary.
	Tool    string `yaml:"tool"`
	Version string `yaml:"version"`

	// GeneratedAt is the report timestamp, RFC 3339.
	GeneratedAt string `yaml:"generated_at"`

	// Session is the per-run session identifier.
	Session string `yaml:"session"`

	Case       CaseRef         `yaml:"case"`
	Structures []StructureInfo `yaml:"structures"`

	// Cascade holds the produced (target, cropped, dose) triples for
	// cascade runs; empty otherwise.
	Cascade []CascadeEntry `yaml:"cascade,omitempty"`
}

// CaseRef ties a report to the case file it was produced from.
type CaseRef struct {
	Path   string `yaml:"path"`
	SHA256 string `yaml:"sha256"`
	Label  string `yaml:"label"`
	UID    string `yaml:"uid,omitempty"`
}

// StructureInfo is one row of the report's structure inventory.
type StructureInfo struct {
	Name       string  `yaml:"name"`
	Category   string  `yaml:"category"`
	Resolution string  `yaml:"resolution"`
	Color      string  `yaml:"color"`
	Voxels     int     `yaml:"voxels"`
	VolumeCC   float64 `yaml:"volume_cc"`
}

// CascadeEntry mirrors one cascade output record.
type CascadeEntry struct {
	Target  string  `yaml:"target"`
	Cropped string  `yaml:"cropped"`
	DoseGy  float64 `yaml:"dose_gy"`
}

// ReportWriter assembles and persists run reports.
type ReportWriter struct {
	fs     fsops.FS
	hasher hash.Hasher
	clock  clock.Clock
}

// NewReportWriter creates a ReportWriter with the given dependencies.
func NewReportWriter(fs fsops.FS, hasher hash.Hasher, clk clock.Clock) *ReportWriter {
	return &ReportWriter{fs: fs, hasher: hasher, clock: clk}
}

// Build assembles a report for the collection's current state. casePath is
// hashed for provenance; entries may be nil for non-cascade runs.
func (w *ReportWriter) Build(tool, version, casePath string, c *Case, col contour.Collection, entries []crop.Entry) (*Report, error) {
	checksum, err := w.hasher.HashFile(casePath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash case file: %w", err)
	}

	r := &Report{
		Tool:        tool,
		Version:     version,
		GeneratedAt: w.clock.Now().Format("2006-01-02T15:04:05Z07:00"),
		Session:     uuid.NewString(),
		Case: CaseRef{
			Path:   casePath,
			SHA256: checksum,
			Label:  c.Label,
			UID:    c.UID,
		},
	}
	for _, v := range col.Volumes() {
		shape := v.Shape()
		info := StructureInfo{
			Name:       v.Name(),
			Category:   string(v.Category()),
			Resolution: string(v.Resolution()),
			Color:      v.Color().Hex(),
			Voxels:     shape.Voxels(),
		}
		if g, ok := shape.(*contour.GridShape); ok {
			info.VolumeCC = g.VolumeCC()
		}
		r.Structures = append(r.Structures, info)
	}
	for _, e := range entries {
		r.Cascade = append(r.Cascade, CascadeEntry{Target: e.Target, Cropped: e.Cropped, DoseGy: e.DoseGy})
	}
	return r, nil
}

// Write persists the report atomically.
func (w *ReportWriter) Write(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := w.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
