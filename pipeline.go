package apw

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/apw/metadata"
	goerrors "github.com/go-errors/errors"
)

const outputExt = ".apw"

var sourceExts = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

func isSource(file string) bool {
	_, ok := sourceExts[strings.ToLower(filepath.Ext(file))]
	return ok
}

func (c *Converter) findDirectories(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		if err := filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && dir != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsDir() {
				return nil
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		}); err != nil {
			errc <- goerrors.Wrap(err, 0)
		}
	}()
	return out, errc, nil
}

// convertDirectory converts every source image directly within dir, writing
// each one alongside as .apw and all of them to the bundle
func (c *Converter) convertDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	db := metadata.New()
	for _, entry := range entries {
		name := entry.Name()
		if name[0] == '.' || !entry.Type().IsRegular() || !isSource(name) {
			continue
		}

		file := filepath.Join(dir, name)
		b, err := c.convertFile(file)
		if err != nil {
			return err
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		if err := os.WriteFile(filepath.Join(dir, base+outputExt), b, 0644); err != nil {
			return err
		}

		crc := metadata.CRCFilename(base)
		if _, ok := db.Get(crc); ok {
			c.logger.Printf("Skipping \"%s\", name already bundled\n", file)
			continue
		}
		if err := db.Set(crc, b); err != nil {
			return err
		}
	}

	if db.Length() == 0 {
		return nil
	}

	b, err := db.MarshalBinary()
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, metadata.Filename), b, 0644)
}

func (c *Converter) directoryWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			if err := c.convertDirectory(dir); err != nil {
				errc <- goerrors.WrapPrefix(err, dir, 0)
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and converts the source images found in every directory,
// writing an .apw file for each one and a bundle of them all per directory.
func (c *Converter) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := c.findDirectories(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < c.opts.Workers; i++ {
		errc, err := c.directoryWorker(ctx, dirs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
