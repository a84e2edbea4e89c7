package bandtools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// LoadOpts configures Load. Zero values fall back to DefaultLoadOpts.
type LoadOpts struct {
	// Start and End bound the band numbers to load, inclusive.
	Start int
	End   int
	// Extensions lists the accepted file extensions, compared case-insensitively.
	Extensions []string
	// ReferenceBand pins the target grid to one band instead of the band with
	// the largest pixel count.
	ReferenceBand string
	NumWorkers    int
	ShowProgress  bool
	Reader        RasterReader
}

func DefaultLoadOpts() LoadOpts {
	return LoadOpts{
		Start:      1,
		End:        12,
		Extensions: []string{".tif"},
		NumWorkers: runtime.NumCPU(),
	}
}

func (o LoadOpts) withDefaults() LoadOpts {
	def := DefaultLoadOpts()
	if o.Start == 0 && o.End == 0 {
		o.Start, o.End = def.Start, def.End
	}
	if len(o.Extensions) == 0 {
		o.Extensions = def.Extensions
	}
	if o.NumWorkers < 1 {
		o.NumWorkers = def.NumWorkers
	}
	if o.Reader == nil {
		o.Reader = NewGDALReader()
	}
	return o
}

type bandFile struct {
	id   string
	path string
	rows int
	cols int
}

// Load reads every band raster of dir, resamples them onto the grid of the
// reference band and normalizes each by its own maximum.
func Load(dir string, opts LoadOpts) (*Collection, error) {
	logrus.Debug("Entered Load")
	opts = opts.withDefaults()

	files, err := scanDir(dir, opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyDirectory)
	}

	logrus.Infof("Reading %d bands from %s", len(files), dir)
	if err := probeSizes(files, opts.Reader); err != nil {
		return nil, err
	}

	ref, err := referenceBand(files, opts.ReferenceBand)
	if err != nil {
		return nil, err
	}
	grid, err := targetGrid(ref, opts.Reader)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Target grid %dx%d from band %s", grid.Rows, grid.Cols, ref.id)

	start := time.Now()
	bands, err := resampleAll(files, grid, opts)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Resampling time: %s", time.Since(start).Round(time.Millisecond))

	logrus.Debug("Exited Load")
	return NewCollection(grid, bands)
}

func scanDir(dir string, opts LoadOpts) ([]bandFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &FileAccessError{Path: dir, Err: err}
	}

	byID := make(map[string]bandFile)
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), opts.Extensions) {
			continue
		}
		id, err := BandIDFromFilename(entry.Name())
		if err != nil {
			logrus.Warn(err)
			continue
		}
		num, err := BandNumber(id)
		if err != nil {
			logrus.Warnf("Skipping %s: %v", entry.Name(), err)
			continue
		}
		if num < opts.Start || num > opts.End {
			logrus.Debugf("Skipping %s: band %d outside [%d, %d]", entry.Name(), num, opts.Start, opts.End)
			continue
		}
		if prev, ok := byID[id]; ok {
			logrus.Warnf("Band %s found in both %s and %s, using the latter", id, prev.path, entry.Name())
		}
		byID[id] = bandFile{id: id, path: filepath.Join(dir, entry.Name())}
	}

	files := make([]bandFile, 0, len(byID))
	for _, f := range byID {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].id < files[j].id })
	return files, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func probeSizes(files []bandFile, reader RasterReader) error {
	for i := range files {
		h, err := reader.Open(files[i].path)
		if err != nil {
			return &FileAccessError{Path: files[i].path, Err: err}
		}
		files[i].rows, files[i].cols = h.Size()
		if err := h.Close(); err != nil {
			return &FileAccessError{Path: files[i].path, Err: err}
		}
		logrus.Debugf("Band %s is %dx%d", files[i].id, files[i].rows, files[i].cols)
	}
	return nil
}

// referenceBand picks the band defining the target grid: the override when
// given, otherwise the largest pixel count, ties going to the lowest band
// identifier.
func referenceBand(files []bandFile, override string) (bandFile, error) {
	if override != "" {
		for _, f := range files {
			if f.id == override {
				return f, nil
			}
		}
		return bandFile{}, &MissingBandError{Band: override}
	}
	ref := files[0]
	for _, f := range files[1:] {
		if f.rows*f.cols > ref.rows*ref.cols {
			ref = f
		}
	}
	return ref, nil
}

func targetGrid(ref bandFile, reader RasterReader) (grid Grid, err error) {
	h, err := reader.Open(ref.path)
	if err != nil {
		return Grid{}, &FileAccessError{Path: ref.path, Err: err}
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()

	grid = Grid{Rows: ref.rows, Cols: ref.cols}
	gt, gtErr := h.GeoTransform()
	if gtErr != nil {
		logrus.Debugf("Band %s has no geotransform: %v", ref.id, gtErr)
		return grid, nil
	}
	grid.GeoTransform = gt
	grid.Projection = h.Projection()
	return grid, nil
}

func resampleAll(files []bandFile, grid Grid, opts LoadOpts) (map[string]*mat.Dense, error) {
	logrus.Debug("Entered resampleAll")
	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(files)), "Resampling")
	} else {
		bar = progressbar.DefaultSilent(int64(len(files)), "Resampling")
	}

	results := make([]*mat.Dense, len(files))
	var g errgroup.Group
	g.SetLimit(opts.NumWorkers)
	for i, f := range files {
		g.Go(func() error {
			band, err := readResampled(opts.Reader, f, grid)
			if err != nil {
				return err
			}
			if err := NormalizeByMax(band, f.id); err != nil {
				return err
			}
			results[i] = band
			return bar.Add(1)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bands := make(map[string]*mat.Dense, len(files))
	for i, f := range files {
		bands[f.id] = results[i]
	}
	logrus.Debug("Exited resampleAll")
	return bands, nil
}

func readResampled(reader RasterReader, f bandFile, grid Grid) (band *mat.Dense, err error) {
	h, err := reader.Open(f.path)
	if err != nil {
		return nil, &FileAccessError{Path: f.path, Err: err}
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			err = errors.Join(err, &FileAccessError{Path: f.path, Err: cerr})
		}
	}()

	band, err = h.Read(1, grid.Rows, grid.Cols)
	if err != nil {
		return nil, &FileAccessError{Path: f.path, Err: err}
	}
	return band, nil
}
