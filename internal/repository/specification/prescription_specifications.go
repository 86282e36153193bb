package specification

import "gorm.io/gorm"

type ByPrescriptionID struct {
	ID uint
}

func (s ByPrescriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}
