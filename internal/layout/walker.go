// Package layout copies assemblies from an NCBI Datasets download into a
// species/accession tree and writes a metadata sidecar for each accession.
package layout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"

	"github.com/fulmenhq/ncbisort/internal/manifest"
	"github.com/fulmenhq/ncbisort/internal/species"
	"github.com/fulmenhq/ncbisort/pkg/logger"
	"github.com/fulmenhq/ncbisort/pkg/safeio"
)

// DataDir holds one subdirectory per accession under the download root.
const DataDir = "data"

// ErrGenomeNotFound is returned when an accession directory has no genome file.
// It matches fs.ErrNotExist.
var ErrGenomeNotFound = fmt.Errorf("genome file not found: %w", fs.ErrNotExist)

// Summary counts the work done by a run.
type Summary struct {
	Accessions int
	Files      int
	Bytes      int64
}

func (s *Summary) add(o Summary) {
	s.Accessions += o.Accessions
	s.Files += o.Files
	s.Bytes += o.Bytes
}

// HumanBytes renders the copied byte total.
func (s Summary) HumanBytes() string {
	return humanize.Bytes(uint64(s.Bytes))
}

// Walker sorts a flattened manifest from a source download into a target tree.
type Walker struct {
	source billy.Filesystem
	target billy.Filesystem
	out    io.Writer
}

// NewWalker returns a Walker reading from source (the download root) and
// writing under target. Confirmation lines are printed to out.
func NewWalker(source, target billy.Filesystem, out io.Writer) *Walker {
	return &Walker{source: source, target: target, out: out}
}

// Run processes every row of table in order. Rows sharing an accession are
// processed once per occurrence, each time writing all of them. The first
// failure stops the run; output already written is left in place.
func (w *Walker) Run(ctx context.Context, table *manifest.Table) (Summary, error) {
	var total Summary
	columns := table.Columns()
	for i, row := range table.Rows() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		acc := row.Value(manifest.AccessionField)
		if acc.IsNull() {
			return total, fmt.Errorf("manifest row %d: %w: %s", i+1, species.ErrMissingField, manifest.AccessionField)
		}
		accession := acc.String()
		sum, err := w.sortAccession(columns, accession, table.Select(accession))
		total.add(sum)
		if err != nil {
			return total, fmt.Errorf("accession %s: %w", accession, err)
		}
	}
	return total, nil
}

func (w *Walker) sortAccession(columns []string, accession string, rows []*manifest.Record) (Summary, error) {
	var sum Summary
	if _, err := safeio.CleanComponent(accession); err != nil {
		return sum, err
	}
	label, err := species.Label(rows[0])
	if err != nil {
		return sum, err
	}
	if _, err := safeio.CleanComponent(label); err != nil {
		return sum, err
	}

	srcDir := w.source.Join(DataDir, accession)
	genomes, err := matchFiles(w.source, srcDir, GenomePattern)
	if err != nil {
		return sum, err
	}
	if len(genomes) == 0 {
		return sum, fmt.Errorf("%w: no %s in %s", ErrGenomeNotFound, GenomePattern, srcDir)
	}
	name := stem(genomes[0])
	annotations, err := matchFiles(w.source, srcDir, AnnotationPattern)
	if err != nil {
		return sum, err
	}

	dest := w.target.Join(label, accession)
	if err := w.target.MkdirAll(dest, 0o755); err != nil {
		return sum, fmt.Errorf("create %s: %w", dest, err)
	}

	if err := w.copyAll(&sum, genomes, w.target.Join(dest, name+".fna")); err != nil {
		return sum, err
	}
	if len(annotations) == 0 {
		logger.Debug("No annotation file", logger.String("accession", accession))
	}
	if err := w.copyAll(&sum, annotations, w.target.Join(dest, name+".gff")); err != nil {
		return sum, err
	}

	var buf bytes.Buffer
	if err := WriteMetadata(&buf, columns, rows); err != nil {
		return sum, err
	}
	info := MetadataPath(w.target, label, accession)
	if err := safeio.WriteFilePreservePerms(w.target, info, buf.Bytes()); err != nil {
		return sum, fmt.Errorf("write metadata: %w", err)
	}

	sum.Accessions++
	if _, err := fmt.Fprintf(w.out, "%s genome, annotation and metadata copied!\n", label); err != nil {
		return sum, err
	}
	return sum, nil
}

// copyAll copies each source onto the same destination; the last one wins.
func (w *Walker) copyAll(sum *Summary, sources []string, dst string) error {
	for _, src := range sources {
		n, err := safeio.CopyFile(w.source, src, w.target, dst)
		if err != nil {
			return err
		}
		sum.Files++
		sum.Bytes += n
		logger.Trace("Copied file",
			logger.String("from", src),
			logger.String("to", dst),
			logger.Int64("bytes", n),
			logger.String("size", humanize.Bytes(uint64(n))))
	}
	return nil
}
