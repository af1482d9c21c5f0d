// Package importer synchronizes directories of JSON definition files into
// database tables. Each directory is handled by a Strategy: FullReplace
// empties and refills its table, Variables upserts keyed records and prunes
// those whose file is gone.
//
// Every run is a full pass over the directories; no state is kept between
// runs, so rerunning after a failure converges on the directory contents.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"flat-backend/internal/store"
)

// Files lists and reads definition files relative to the template directory.
type Files interface {
	DirExists(ctx context.Context, subdir string) (bool, error)
	List(ctx context.Context, subdir, suffix string) ([]string, error)
	ReadRegular(ctx context.Context, elem ...string) ([]byte, error)
}

// Report summarizes one strategy's pass.
type Report struct {
	Dir      string
	Table    string
	Found    int
	Imported int
	Skipped  int
	Pruned   int64
}

// Importer runs its strategies in order against the store.
//
// With Atomic unset a write failure leaves earlier writes of the run in
// place, including a FullReplace truncate; the caller must rerun. With
// Atomic set the whole run shares one transaction and a failure rolls back.
type Importer struct {
	store      *store.Store
	files      Files
	strategies []Strategy
	Atomic     bool
}

func New(s *store.Store, files Files, strategies ...Strategy) *Importer {
	return &Importer{store: s, files: files, strategies: strategies}
}

// Strategies returns the registered strategies in run order.
func (im *Importer) Strategies() []Strategy {
	return im.strategies
}

// Run imports every strategy's directory. The first write failure aborts
// the remaining files and strategies.
func (im *Importer) Run(ctx context.Context) ([]Report, error) {
	runID := uuid.New().String()
	log.Printf("Import %s started (%d strategies, atomic: %t)", runID, len(im.strategies), im.Atomic)

	var reports []Report
	run := func(t Tables) error {
		reports = reports[:0]
		for _, s := range im.strategies {
			rep, err := RunStrategy(ctx, im.files, t, s)
			if err != nil {
				return fmt.Errorf("import %s: %w", s.Dir(), err)
			}
			reports = append(reports, rep)
		}
		return nil
	}

	var err error
	if im.Atomic {
		err = im.store.WithTx(ctx, func(t *store.Tables) error { return run(t) })
	} else {
		err = run(im.store.Tables())
	}
	if err != nil {
		log.Printf("ERROR: import %s failed: %v", runID, err)
		return reports, err
	}

	for _, rep := range reports {
		log.Printf("Import %s: %s -> %s: imported %d of %d definitions, skipped %d, pruned %d",
			runID, rep.Dir, rep.Table, rep.Imported, rep.Found, rep.Skipped, rep.Pruned)
	}
	return reports, nil
}

// OnReady runs the import for the host's ready event and reports success.
func (im *Importer) OnReady(ctx context.Context) bool {
	_, err := im.Run(ctx)
	return err == nil
}

// RunStrategy walks one strategy's directory. A missing directory is a
// successful no-op. Files that cannot be read or decoded are skipped.
func RunStrategy(ctx context.Context, files Files, t Tables, s Strategy) (Report, error) {
	rep := Report{Dir: s.Dir(), Table: s.Table()}

	exists, err := files.DirExists(ctx, s.Dir())
	if err != nil {
		return rep, err
	}
	if !exists {
		return rep, nil
	}

	names, err := files.List(ctx, s.Dir(), DefinitionExt)
	if err != nil {
		return rep, err
	}
	rep.Found = len(names)

	columns, err := t.Columns(ctx, s.Table())
	if err != nil {
		return rep, err
	}

	if err := s.Begin(ctx, t); err != nil {
		return rep, err
	}

	seen := make(map[string]string, len(names))
	var manifest []*Definition
	for _, file := range names {
		def, ok := readDefinition(ctx, files, s.Dir(), file)
		if !ok {
			rep.Skipped++
			continue
		}

		folded := strings.ToLower(def.Name)
		if first, dup := seen[folded]; dup {
			log.Printf("WARN: skipping %s/%s (same name as %s)", s.Dir(), file, first)
			rep.Skipped++
			continue
		}
		seen[folded] = file

		if err := s.Import(ctx, t, def, columns); err != nil {
			if errors.Is(err, ErrInvalidDefinition) {
				log.Printf("WARN: skipping %s/%s (%v)", s.Dir(), file, err)
				rep.Skipped++
				continue
			}
			return rep, err
		}
		manifest = append(manifest, def)
		rep.Imported++
	}

	pruned, err := s.Prune(ctx, t, manifest)
	if err != nil {
		return rep, err
	}
	rep.Pruned = pruned
	return rep, nil
}

func readDefinition(ctx context.Context, files Files, dir, file string) (*Definition, bool) {
	data, err := files.ReadRegular(ctx, dir, file)
	if err != nil {
		log.Printf("WARN: skipping %s/%s (unreadable): %v", dir, file, err)
		return nil, false
	}
	attrs, err := DecodeDefinition(data)
	if err != nil {
		log.Printf("WARN: skipping %s/%s: %v", dir, file, err)
		return nil, false
	}
	return &Definition{Name: NameFromFile(file), File: file, Attrs: attrs}, true
}
