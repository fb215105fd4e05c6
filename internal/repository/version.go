package repository

import (
	"github.com/Maksumys/migration-verify/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetHeads возвращает записанные головы, отсортированные по идентификатору.
func GetHeads(db *gorm.DB, table string) ([]string, error) {
	var heads []string
	err := db.Table(table).Order("version_num").Pluck("version_num", &heads).Error
	return heads, err
}

// SaveHeads заменяет содержимое таблицы версий переданными головами.
func SaveHeads(db *gorm.DB, table string, heads []string) error {
	err := db.Exec("DELETE FROM ?", clause.Table{Name: table}).Error
	if err != nil {
		return err
	}

	for _, head := range heads {
		err = db.Table(table).Create(&models.VersionModel{VersionNum: head}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func HasVersionTable(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}

func CreateVersionTable(db *gorm.DB, table string) error {
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS ? (
			version_num VARCHAR(32) NOT NULL,
			PRIMARY KEY (version_num)
		)
	`, clause.Table{Name: table}).Error
}
