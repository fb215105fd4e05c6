package models

// VersionModel - строка таблицы версий. Имя таблицы задается при запросе,
// поэтому TableName не объявлен.
type VersionModel struct {
	VersionNum string `gorm:"column:version_num;primaryKey"`
}
