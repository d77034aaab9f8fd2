package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pnab-cultura/engine/internal/models"
)

// registerModels returns all models that need migration, parents first.
func registerModels() []any {
	return []any{
		&models.User{},
		&models.Proponent{},
		&models.Notice{},

		&models.Project{},
		&models.BudgetItem{},
		&models.TeamMember{},
		&models.Activity{},
		&models.Goal{},

		&models.Evaluation{},
		&models.HabilitacaoDocument{},
	}
}

// Migrate brings the schema up to date. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := enableUUIDExtension(db); err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle.
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addForeignKeys,
		addProjectIndexes,
		addCriterionChecks,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

func addForeignKeys(db *gorm.DB) error {
	stmts := []string{
		`DO $$ BEGIN
			ALTER TABLE projects ADD CONSTRAINT fk_projects_notice FOREIGN KEY (notice_id) REFERENCES notices(id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
			ALTER TABLE projects ADD CONSTRAINT fk_projects_proponent FOREIGN KEY (proponent_id) REFERENCES proponents(id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
			ALTER TABLE evaluations ADD CONSTRAINT fk_evaluations_project FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
			ALTER TABLE habilitacao_documents ADD CONSTRAINT fk_hab_docs_project FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}
	for _, child := range []string{"budget_items", "team_members", "activities", "goals"} {
		stmts = append(stmts, fmt.Sprintf(`DO $$ BEGIN
			ALTER TABLE %[1]s ADD CONSTRAINT fk_projects_%[1]s FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`, child))
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("add foreign keys: %w", err)
		}
	}
	return nil
}

func addProjectIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_projects_notice_numbered
		ON projects(notice_id)
		WHERE registration_number IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("add project indexes: %w", err)
	}
	return nil
}

func addCriterionChecks(db *gorm.DB) error {
	checks := map[string]string{
		"chk_evaluations_mandatory": `criterion_a BETWEEN 0 AND 10 AND criterion_b BETWEEN 0 AND 10 AND criterion_c BETWEEN 0 AND 10 AND criterion_d BETWEEN 0 AND 10 AND criterion_e BETWEEN 0 AND 10`,
		"chk_evaluations_bonus":     `criterion_f BETWEEN 0 AND 5 AND criterion_g BETWEEN 0 AND 5 AND criterion_h BETWEEN 0 AND 5 AND criterion_i BETWEEN 0 AND 5`,
	}
	for name, expr := range checks {
		stmt := fmt.Sprintf(`DO $$ BEGIN
			ALTER TABLE evaluations ADD CONSTRAINT %s CHECK (%s);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`, name, expr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add criterion checks: %w", err)
		}
	}
	return nil
}
