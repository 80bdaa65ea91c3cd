package linemap

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Store persists block line maps in a SQLite bundle.
type Store struct {
	db      *gorm.DB
	options analysis.Options
	log     zerolog.Logger
}

// NewStore opens (or creates) the bundle at dbPath.
func NewStore(dbPath string, options analysis.Options, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{
		db:      db,
		options: options,
		log:     log,
	}, nil
}

// Migrate performs database migrations.
func (s *Store) Migrate() error {
	return Migrate(s.db)
}

// CheckMigration checks if the database schema is up to date.
func (s *Store) CheckMigration() (bool, error) {
	return CheckMigration(s.db)
}

// SaveUnit analyses and stores every routine of unit in one transaction.
// Routines already in the bundle are replaced.
func (s *Store) SaveUnit(unit *common.Unit) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, r := range unit.Routines {
			if err := s.saveRoutine(tx, r); err != nil {
				return fmt.Errorf("failed to save routine %s: %w", r.Signature(), err)
			}
		}
		return nil
	})
}

func (s *Store) saveRoutine(tx *gorm.DB, r *common.Routine) error {
	blocks := analysis.AnalyzeWithOptions(r, s.options)

	var rec RoutineRecord
	result := tx.Where("owner = ? AND name = ? AND descriptor = ?", r.Owner, r.Name, r.Descriptor).Limit(1).Find(&rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		rec = RoutineRecord{Owner: r.Owner, Name: r.Name, Descriptor: r.Descriptor, Size: r.Size()}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
	} else {
		rec.Size = r.Size()
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		if err := tx.Where("routine_id = ?", rec.ID).Delete(&BlockLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("routine_id = ?", rec.ID).Delete(&BlockRecord{}).Error; err != nil {
			return err
		}
	}

	for i, b := range blocks {
		block := BlockRecord{RoutineID: rec.ID, BlockIndex: i, FirstIndex: b.FirstIndex, LastIndex: b.LastIndex}
		if err := tx.Create(&block).Error; err != nil {
			return fmt.Errorf("failed to save block %d: %w", i, err)
		}
		for _, line := range b.Lines {
			if err := tx.Create(&BlockLine{RoutineID: rec.ID, BlockIndex: i, Line: line}).Error; err != nil {
				return fmt.Errorf("failed to save line %d of block %d: %w", line, i, err)
			}
		}
	}

	s.log.Debug().Str("routine", r.Signature()).Int("blocks", len(blocks)).Msg("saved routine")
	return nil
}

// LinesFor returns the lines of the block at loc. Unknown locations yield
// no lines.
func (s *Store) LinesFor(loc BlockLocation) ([]int, error) {
	lines := []int{}
	err := s.db.Model(&BlockLine{}).
		Joins("JOIN routine_records ON routine_records.id = block_lines.routine_id").
		Where("routine_records.owner = ? AND routine_records.name = ? AND routine_records.descriptor = ?", loc.Owner, loc.Routine, loc.Descriptor).
		Where("block_lines.block_index = ?", loc.Block).
		Order("block_lines.line").
		Pluck("block_lines.line", &lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of %s: %w", loc, err)
	}
	return lines, nil
}

// Load returns the full line map held in the bundle.
func (s *Store) Load() (LineMap, error) {
	var routines []RoutineRecord
	if err := s.db.Preload("Blocks").Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("failed to load routines: %w", err)
	}
	var lines []BlockLine
	if err := s.db.Order("routine_id, block_index, line").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load block lines: %w", err)
	}

	type key struct {
		routine uint
		block   int
	}
	byBlock := make(map[key][]int)
	for _, l := range lines {
		k := key{l.RoutineID, l.BlockIndex}
		byBlock[k] = append(byBlock[k], l.Line)
	}

	result := make(LineMap)
	for _, r := range routines {
		for _, b := range r.Blocks {
			loc := BlockLocation{Owner: r.Owner, Routine: r.Name, Descriptor: r.Descriptor, Block: b.BlockIndex}
			blockLines := byBlock[key{r.ID, b.BlockIndex}]
			if blockLines == nil {
				blockLines = []int{}
			}
			result[loc] = blockLines
		}
	}
	return result, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
