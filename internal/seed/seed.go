// Package seed loads measure catalogs from YAML and bootstraps an empty
// catalog with the bundled starter set.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var bundledCatalog []byte

var ErrNoCatalogFiles = errors.New("no catalog files matched")

var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, svc measuredomain.Service, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				_, err := EnsureCatalog(ctx, svc, log)
				return err
			},
		})
	}),
)

// Bundled returns the starter catalog compiled into the binary.
func Bundled() (measuredomain.Catalog, error) {
	return Decode(bytes.NewReader(bundledCatalog))
}

// Decode parses one catalog document. Unknown keys are rejected.
func Decode(r io.Reader) (measuredomain.Catalog, error) {
	var catalog measuredomain.Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return measuredomain.Catalog{}, nil
		}
		return measuredomain.Catalog{}, err
	}
	return catalog, nil
}

// LoadFiles merges every catalog file matching pattern, in path order.
// Patterns use doublestar syntax, e.g. "catalogs/**/*.yml".
func LoadFiles(pattern string) (measuredomain.Catalog, []string, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return measuredomain.Catalog{}, nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return measuredomain.Catalog{}, nil, fmt.Errorf("%w: %s", ErrNoCatalogFiles, pattern)
	}
	sort.Strings(paths)

	var merged measuredomain.Catalog
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return measuredomain.Catalog{}, nil, err
		}
		catalog, err := Decode(f)
		f.Close()
		if err != nil {
			return measuredomain.Catalog{}, nil, fmt.Errorf("%s: %w", path, err)
		}
		merged.QualityMeasures = append(merged.QualityMeasures, catalog.QualityMeasures...)
		merged.PIMeasures = append(merged.PIMeasures, catalog.PIMeasures...)
		merged.Activities = append(merged.Activities, catalog.Activities...)
	}
	return merged, paths, nil
}

// EnsureCatalog imports the bundled catalog when no quality measures exist.
// It reports whether an import happened.
func EnsureCatalog(ctx context.Context, svc measuredomain.Service, log *zap.Logger) (bool, error) {
	existing, err := svc.ListCatalog(ctx, "")
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	catalog, err := Bundled()
	if err != nil {
		return false, fmt.Errorf("bundled catalog: %w", err)
	}
	result, err := svc.ImportCatalog(ctx, catalog)
	if err != nil {
		return false, err
	}
	if log != nil {
		log.Named("seed").Info("seeded bundled measure catalog",
			zap.Int("quality_measures", result.QualityMeasures),
			zap.Int("pi_measures", result.PIMeasures),
			zap.Int("improvement_activities", result.Activities),
		)
	}
	return true, nil
}
