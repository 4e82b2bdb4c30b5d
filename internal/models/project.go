package models

import "time"

// Project is one carbon-offset project: a single asset class in the credit
// ledger. Ids are assigned sequentially starting at 0 and a project is never
// deleted. TotalTons records cumulative issuance, not circulating supply;
// retirement burns circulating balance without touching it.
type Project struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Location  string    `gorm:"column:location;type:varchar(255);not null" json:"location"`
	TotalTons int64     `gorm:"column:total_tons;not null" json:"total_tons"`
	CreatedAt time.Time `json:"created_at"`
}

func (Project) TableName() string {
	return "projects"
}
