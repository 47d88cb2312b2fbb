package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

// Target is the store an import is applied to. *core.Service satisfies it.
type Target interface {
	Lookup(date string) (core.Note, bool)
	ImportBatch(ctx context.Context, notes []core.Note) (int, error)
}

// Plan is a validated import that has not been applied yet.
type Plan struct {
	Codec   string
	Format  Format
	Notes   []core.Note
	Skipped []Skip
	// Overwrites lists dates that already hold a note and would be replaced.
	Overwrites []string
}

// ImportResult summarizes an import, applied or not.
type ImportResult struct {
	Codec       string   `json:"codec"`
	Imported    int      `json:"imported"`
	Skipped     []Skip   `json:"skipped"`
	Overwritten []string `json:"overwritten"`
	DryRun      bool     `json:"dryRun"`
}

// Request describes one import.
type Request struct {
	// Format names the codec; empty means detect from Filename.
	Format   string
	Filename string
	Data     []byte
	DryRun   bool
}

// Importer validates backup files and merges them into a Target.
type Importer struct {
	Registry *Registry
	Clock    func() time.Time
	Logger   *slog.Logger
}

// NewImporter creates an Importer over the default codecs.
func NewImporter(logger *slog.Logger) *Importer {
	return &Importer{Registry: DefaultRegistry(), Clock: time.Now, Logger: logger}
}

// Plan decodes and validates a backup without touching the target.
func (i *Importer) Plan(target Target, req Request) (Plan, error) {
	codec, err := i.registry().Resolve(req.Format, req.Filename)
	if err != nil {
		return Plan{}, err
	}

	batch, err := codec.Decode(req.Data, i.now())
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Codec:      codec.Name(),
		Format:     codec.Format(),
		Notes:      batch.Notes,
		Skipped:    batch.Skipped,
		Overwrites: []string{},
	}
	if plan.Skipped == nil {
		plan.Skipped = []Skip{}
	}
	for _, n := range batch.Notes {
		if _, exists := target.Lookup(n.Date); exists {
			plan.Overwrites = append(plan.Overwrites, n.Date)
		}
	}

	for _, s := range plan.Skipped {
		i.log().Debug("backup entry skipped", "codec", plan.Codec, "key", s.Key, "reason", s.Reason)
	}

	if len(plan.Notes) == 0 {
		return plan, fmt.Errorf("%w: no valid notes in backup (%d skipped)", core.ErrEmptyResult, len(plan.Skipped))
	}
	return plan, nil
}

// Apply merges a plan into the target with a single write.
func (i *Importer) Apply(ctx context.Context, target Target, plan Plan) (ImportResult, error) {
	res := plan.result(false)
	n, err := target.ImportBatch(ctx, plan.Notes)
	res.Imported = n
	if err != nil {
		return res, err
	}
	i.log().Info("backup imported", "codec", plan.Codec, "imported", n, "skipped", len(plan.Skipped), "overwritten", len(plan.Overwrites))
	return res, nil
}

// Import plans and, unless req.DryRun is set, applies a backup.
// On any validation failure the target is left untouched.
func (i *Importer) Import(ctx context.Context, target Target, req Request) (ImportResult, error) {
	plan, err := i.Plan(target, req)
	if err != nil {
		return plan.result(req.DryRun), err
	}
	if req.DryRun {
		return plan.result(true), nil
	}
	return i.Apply(ctx, target, plan)
}

func (p Plan) result(dryRun bool) ImportResult {
	res := ImportResult{
		Codec:       p.Codec,
		Skipped:     p.Skipped,
		Overwritten: p.Overwrites,
		DryRun:      dryRun,
	}
	if dryRun {
		res.Imported = len(p.Notes)
	}
	if res.Skipped == nil {
		res.Skipped = []Skip{}
	}
	if res.Overwritten == nil {
		res.Overwritten = []string{}
	}
	return res
}

func (i *Importer) registry() *Registry {
	if i.Registry == nil {
		return DefaultRegistry()
	}
	return i.Registry
}

func (i *Importer) now() time.Time {
	if i.Clock == nil {
		return time.Now()
	}
	return i.Clock()
}

func (i *Importer) log() *slog.Logger {
	if i.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return i.Logger
}
