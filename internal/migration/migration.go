package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	eligibilitydomain "github.com/smallbiznis/meritscore/internal/eligibility/domain"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	providerdomain "github.com/smallbiznis/meritscore/internal/provider/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every persisted model, for dialects without SQL migrations.
func Models() []any {
	return []any{
		&providerdomain.Provider{},
		&measuredomain.QualityMeasure{},
		&measuredomain.PIMeasure{},
		&measuredomain.ImprovementActivity{},
		&measuredomain.ProviderMeasureSelection{},
		&perfdomain.QualityPerformance{},
		&perfdomain.PIPerformance{},
		&perfdomain.IAAttestation{},
		&perfdomain.CostPerformance{},
		&eligibilitydomain.EligibilityRecord{},
		&compositedomain.Submission{},
		&gapdomain.DataGap{},
		&programdomain.ProgramYearConfig{},
		&auditdomain.AuditLog{},
	}
}

// Migrate brings the schema up to date for the connection's dialect.
func Migrate(conn *gorm.DB) error {
	if conn.Dialector.Name() == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
