package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/meritscore/internal/clock"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	"github.com/smallbiznis/meritscore/internal/measure/repository"
	"github.com/smallbiznis/meritscore/internal/measure/service"
	"github.com/smallbiznis/meritscore/internal/testutil"
	pkgrepo "github.com/smallbiznis/meritscore/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBundledCatalogParses(t *testing.T) {
	catalog, err := Bundled()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(catalog.QualityMeasures), measuredomain.MinimumSelectedMeasures)
	assert.NotEmpty(t, catalog.PIMeasures)
	assert.NotEmpty(t, catalog.Activities)

	var outcomes int
	for _, m := range catalog.QualityMeasures {
		if m.IsOutcome {
			outcomes++
		}
	}
	assert.Positive(t, outcomes)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("quality_measures:\n  - code: \"1\"\n    titel: typo\n"))
	assert.Error(t, err)
}

func TestLoadFilesMergesInPathOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024", "pi"), 0o755))
	write := func(rel, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte(body), 0o600))
	}
	write("2024/quality.yml", "quality_measures:\n  - code: \"236\"\n    title: Controlling High Blood Pressure\n    outcome: true\n")
	write("2024/pi/pi.yml", "pi_measures:\n  - code: PI_EP_1\n    title: e-Prescribing\n    required: true\n    max_points: 10\n")
	write("2024/notes.txt", "ignored")

	catalog, paths, err := LoadFiles(filepath.Join(dir, "**", "*.yml"))
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	require.Len(t, catalog.QualityMeasures, 1)
	assert.True(t, catalog.QualityMeasures[0].IsOutcome)
	require.Len(t, catalog.PIMeasures, 1)
	assert.True(t, catalog.PIMeasures[0].RequiredMeasure)
	assert.Equal(t, 10.0, catalog.PIMeasures[0].MaxPoints)
}

func TestLoadFilesNoMatch(t *testing.T) {
	_, _, err := LoadFiles(filepath.Join(t.TempDir(), "*.yml"))
	assert.ErrorIs(t, err, ErrNoCatalogFiles)
}

func TestEnsureCatalogImportsOnce(t *testing.T) {
	db := testutil.OpenDB(t,
		&measuredomain.QualityMeasure{},
		&measuredomain.PIMeasure{},
		&measuredomain.ImprovementActivity{},
		&measuredomain.ProviderMeasureSelection{},
	)
	svc := service.New(service.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      testutil.Node(t),
		Clock:      clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Measures:   pkgrepo.ProvideStore[measuredomain.QualityMeasure](db),
		PIMeasures: pkgrepo.ProvideStore[measuredomain.PIMeasure](db),
		Activities: pkgrepo.ProvideStore[measuredomain.ImprovementActivity](db),
		Selections: repository.ProvideSelections(),
	})
	ctx := context.Background()

	imported, err := EnsureCatalog(ctx, svc, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, imported)

	imported, err = EnsureCatalog(ctx, svc, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, imported)

	bundled, err := Bundled()
	require.NoError(t, err)
	measures, err := svc.ListCatalog(ctx, "")
	require.NoError(t, err)
	assert.Len(t, measures, len(bundled.QualityMeasures))
}
