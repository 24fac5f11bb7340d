// Package docs inventories the local documents directory the front-end
// owns. The backend keeps its own index; this listing is operator-facing
// (CLI and /documents) and never touches the index.
package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// Info describes one file in the documents directory.
type Info struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	// Pages is the PDF page count, 0 for non-PDF files.
	Pages int `json:"pages"`
}

// Scan lists the files directly under dir, sorted by name. PDF page
// counts are read concurrently; a PDF that fails to parse is listed with
// zero pages rather than failing the whole scan.
func Scan(ctx context.Context, dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		infos = append(infos, Info{Name: e.Name(), Size: fi.Size()})
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound concurrent PDF parses.

	for i := range infos {
		if !strings.EqualFold(filepath.Ext(infos[i].Name), ".pdf") {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			infos[i].Pages = pageCount(filepath.Join(dir, infos[i].Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(infos, func(a, b int) bool { return infos[a].Name < infos[b].Name })
	return infos, nil
}

// pageCount returns the PDF's page count, 0 when the file cannot be
// parsed as a PDF.
func pageCount(path string) (n int) {
	// The pdf package panics on some malformed files.
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	return r.NumPage()
}
