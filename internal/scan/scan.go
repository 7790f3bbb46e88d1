// Package scan walks an input tree and turns every supported document into a
// conversion job. The queue order is deterministic: jobs are sorted by full
// source path, so two runs over the same tree process files identically.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"docmill/internal/convert"
	"docmill/internal/docformat"
	"docmill/internal/logging"
)

// Scanner builds job queues from directory trees.
type Scanner struct {
	logger *slog.Logger
}

// New returns a Scanner that reports skipped files through logger.
func New(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logging.NewComponentLogger(logger, "scan")}
}

// Build walks inputDir recursively and returns one job per supported document
// admitted by filter, sorted by source path. Destinations mirror the source
// layout under outputDir with the extension replaced by .pdf. Any directory
// that cannot be enumerated fails the whole build; a file that disappears
// mid-walk is skipped with a warning.
func (s *Scanner) Build(inputDir, outputDir string, filter docformat.Filter) ([]convert.Job, error) {
	sources := make([]string, 0, 64)

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return convert.Wrap(convert.ErrDirectory, "scan", "walk", path, walkErr)
		}
		if d.IsDir() {
			return nil
		}
		if _, statErr := d.Info(); statErr != nil {
			logging.WarnWithContext(s.logger, "skipping file that vanished during scan", "scan_skip",
				logging.String(logging.FieldSource, path),
				logging.Error(statErr),
			)
			return nil
		}
		if !filter.Admits(docformat.Detect(path)) {
			return nil
		}
		sources = append(sources, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(sources)

	jobs := make([]convert.Job, 0, len(sources))
	byDestination := make(map[string]string, len(sources))
	for _, source := range sources {
		destination, destErr := DestinationFor(inputDir, outputDir, source)
		if destErr != nil {
			return nil, destErr
		}
		if prior, clash := byDestination[destination]; clash {
			logging.WarnWithContext(s.logger, "two sources map to the same destination; later output overwrites earlier", "destination_clash",
				logging.String(logging.FieldSource, source),
				logging.String("prior_source", prior),
				logging.String(logging.FieldDestination, destination),
			)
		} else {
			byDestination[destination] = source
		}
		jobs = append(jobs, convert.NewJob(source, destination, docformat.Detect(source)))
	}
	return jobs, nil
}

// DestinationFor maps a source document to its mirrored PDF path under
// outputDir. The watch daemon uses the same mapping, so one-shot batches and
// watched conversions agree on where output lands.
func DestinationFor(inputDir, outputDir, source string) (string, error) {
	rel, err := filepath.Rel(inputDir, source)
	if err != nil {
		return "", convert.Wrap(convert.ErrDirectory, "scan", "relativize",
			fmt.Sprintf("%s under %s", source, inputDir), err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".pdf"
	return filepath.Join(outputDir, rel), nil
}
