package domain

import "time"

// SysOprLog operator action audit entry
type SysOprLog struct {
	ID        int64     `json:"id,string" gorm:"primaryKey"`
	OprName   string    `json:"opr_name" gorm:"size:100;index"`
	OprIp     string    `json:"opr_ip" gorm:"size:64"`
	OptAction string    `json:"opt_action" gorm:"size:64;index"`
	OptDesc   string    `json:"opt_desc" gorm:"size:1024"`
	OptTime   time.Time `json:"opt_time" gorm:"index"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
