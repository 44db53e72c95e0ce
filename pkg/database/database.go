package database

import (
	"fmt"
	"time"

	"github.com/clinsys/examflow/internal/config"
	"github.com/clinsys/examflow/internal/domain"
	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/domain/examrequest"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"intake", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&catalog.Partner{},
		&catalog.Doctor{},
		&catalog.Insurance{},
		&catalog.Battery{},
		&catalog.Unit{},
		&examrequest.ExamRequest{},
		&checkuprequest.CheckupRequest{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := applyConstraints(db); err != nil {
		return fmt.Errorf("applying constraints: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// applyConstraints pins the status enums and the payment/insurance rule at
// the database level; the audit stamp columns stay nullable and are only ever
// written once by the services.
func applyConstraints(db *gorm.DB) error {
	constraints := []struct {
		name  string
		query string
	}{
		{
			name: "chk_exam_requests_status",
			query: `ALTER TABLE intake.exam_requests ADD CONSTRAINT chk_exam_requests_status
				CHECK (status IN ('encaminhado', 'executado'))`,
		},
		{
			name: "chk_exam_requests_insurance",
			query: `ALTER TABLE intake.exam_requests ADD CONSTRAINT chk_exam_requests_insurance
				CHECK ((payment_type = 'convenio') = (insurance_id IS NOT NULL))`,
		},
		{
			name: "chk_exam_requests_conduct",
			query: `ALTER TABLE intake.exam_requests ADD CONSTRAINT chk_exam_requests_conduct
				CHECK (conduct IS NULL OR status = 'executado')`,
		},
		{
			name: "chk_checkup_requests_status",
			query: `ALTER TABLE intake.checkup_requests ADD CONSTRAINT chk_checkup_requests_status
				CHECK (status IN ('solicitado', 'encaminhado', 'executado', 'laudos_prontos'))`,
		},
	}

	for _, c := range constraints {
		var exists bool
		db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists)
		if exists {
			continue
		}
		if err := db.Exec(c.query).Error; err != nil {
			return fmt.Errorf("constraint %s: %w", c.name, err)
		}
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Partner list views poll frequently; this covers the common filter.
		{
			name:  "idx_exam_requests_partner_status",
			query: `CREATE INDEX IF NOT EXISTS idx_exam_requests_partner_status ON intake.exam_requests (partner_id, status, created_at DESC)`,
		},
		// Patient search: trigram index for case-insensitive substring match
		{
			name:  "idx_exam_requests_patient_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_exam_requests_patient_trgm ON intake.exam_requests USING gin (patient_name gin_trgm_ops)`,
		},
		{
			name:  "idx_checkup_requests_pending",
			query: `CREATE INDEX IF NOT EXISTS idx_checkup_requests_pending ON intake.checkup_requests (status, unit_id, created_at DESC) WHERE status <> 'laudos_prontos' OR laudos_buscados_at IS NULL`,
		},
		{
			name:  "idx_checkup_requests_company_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_checkup_requests_company_trgm ON intake.checkup_requests USING gin (company gin_trgm_ops)`,
		},
	}

	_ = db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("index %s: %w", idx.name, err)
		}
	}

	return nil
}
