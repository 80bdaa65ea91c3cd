package linemap

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RoutineRecord is one analysed routine in the bundle.
type RoutineRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Owner      string `gorm:"uniqueIndex:idx_routine_signature"`
	Name       string `gorm:"uniqueIndex:idx_routine_signature"`
	Descriptor string `gorm:"uniqueIndex:idx_routine_signature"`
	Size       int
	Blocks     []BlockRecord `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE"`
}

// BlockRecord is one basic block of a routine.
type BlockRecord struct {
	RoutineID  uint `gorm:"primaryKey;index"`
	BlockIndex int  `gorm:"primaryKey"`
	FirstIndex int
	LastIndex  int
}

// BlockLine records that a block executes a source line.
type BlockLine struct {
	RoutineID  uint `gorm:"primaryKey;index"`
	BlockIndex int  `gorm:"primaryKey"`
	Line       int  `gorm:"primaryKey;index"`
}

// getMigrations returns the list of migrations for the bundle database.
func getMigrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202610170001",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&RoutineRecord{},
					&BlockRecord{},
					&BlockLine{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&BlockLine{},
					&BlockRecord{},
					&RoutineRecord{},
				)
			},
		},
	}
}

// Migrate performs database migrations using gormigrate.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, getMigrations())
	return m.Migrate()
}

// CheckMigration checks if the database schema is up to date.
func CheckMigration(db *gorm.DB) (bool, error) {
	// A missing migrations table means nothing has been applied yet. Use a
	// silent logger to avoid spurious warnings on fresh databases.
	var lastMigration string
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Table(gormigrate.DefaultOptions.TableName).
		Select("id").
		Order("id DESC").
		Limit(1).
		Scan(&lastMigration).Error

	if err != nil {
		return false, nil
	}

	migrations := getMigrations()
	if len(migrations) == 0 {
		return true, nil
	}

	// The last migration in our list should match the last applied migration.
	expectedLastID := migrations[len(migrations)-1].ID
	return lastMigration == expectedLastID, nil
}
